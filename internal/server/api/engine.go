package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
)

// Engine is the part of the running app the API exposes.
type Engine interface {
	State() app.State
	SetEnabled(enabled bool)
	DisplayOptions() store.DisplayOptions
	SetDisplayOptions(opts store.DisplayOptions) error
}

// StateHandler serves /api/state. GET returns the buttons and indicator;
// PUT {"enabled":bool} toggles classification.
type StateHandler struct {
	engine Engine
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(e Engine) *StateHandler {
	return &StateHandler{engine: e}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.engine.State())
	case http.MethodPut:
		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.engine.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, h.engine.State())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// SettingsHandler serves /api/settings, the persisted display options.
type SettingsHandler struct {
	engine Engine
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(e Engine) *SettingsHandler {
	return &SettingsHandler{engine: e}
}

type settingsRequest struct {
	DisplayBoneHand  *bool `json:"displayBoneHand"`
	DisplayDebugDump *bool `json:"displayDebugDump"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.engine.DisplayOptions())
	case http.MethodPut:
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		opts := h.engine.DisplayOptions()
		if req.DisplayBoneHand != nil {
			opts.DisplayBoneHand = *req.DisplayBoneHand
		}
		if req.DisplayDebugDump != nil {
			opts.DisplayDebugDump = *req.DisplayDebugDump
		}

		if err := h.engine.SetDisplayOptions(opts); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		writeJSON(w, http.StatusOK, opts)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
