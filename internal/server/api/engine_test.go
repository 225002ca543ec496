package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/store"
)

type failingEngine struct {
	*app.App
}

func (failingEngine) SetDisplayOptions(store.DisplayOptions) error {
	return errors.New("disk full")
}

func TestStateHandler(t *testing.T) {
	a := app.New(app.Config{ManualPoll: true})
	handler := NewStateHandler(a)

	a.HandleFrame(sensor.PointingFrame(sensor.RightHand, 0.7, 0))
	a.Poll()

	rec := do(t, handler, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got app.State
	decode(t, rec, &got)
	if !got.Buttons[input.Right] || got.Buttons[input.Left] {
		t.Errorf("unexpected buttons: %v", got.Buttons)
	}
	if got.Indicator != "→" || !got.Enabled {
		t.Errorf("unexpected state: %+v", got)
	}
	if len(got.Buttons) != len(input.Buttons) {
		t.Errorf("expected every button in the response, got %v", got.Buttons)
	}
}

func TestStateHandler_Toggle(t *testing.T) {
	a := app.New(app.Config{ManualPoll: true})
	handler := NewStateHandler(a)

	rec := do(t, handler, http.MethodPut, "/api/state", `{"enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if a.IsEnabled() {
		t.Error("expected app disabled")
	}

	if rec := do(t, handler, http.MethodPut, "/api/state", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing enabled: expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if rec := do(t, handler, http.MethodPost, "/api/state", `{}`); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestSettingsHandler(t *testing.T) {
	s := newTestStore(t)
	a := app.New(app.Config{Store: s, ManualPoll: true, Display: store.DisplayOptions{DisplayBoneHand: true}})
	handler := NewSettingsHandler(a)

	rec := do(t, handler, http.MethodGet, "/api/settings", "")
	var got store.DisplayOptions
	decode(t, rec, &got)
	if !got.DisplayBoneHand || got.DisplayDebugDump {
		t.Errorf("unexpected defaults: %+v", got)
	}

	// Partial update leaves displayBoneHand alone.
	rec = do(t, handler, http.MethodPut, "/api/settings", `{"displayDebugDump":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	decode(t, rec, &got)
	want := store.DisplayOptions{DisplayBoneHand: true, DisplayDebugDump: true}
	if got != want {
		t.Errorf("PUT returned %+v, want %+v", got, want)
	}

	persisted, err := s.Settings().DisplayOptions(store.DisplayOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if persisted != want {
		t.Errorf("persisted %+v, want %+v", persisted, want)
	}

	if rec := do(t, handler, http.MethodPut, "/api/settings", `nope`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSettingsHandler_SaveError(t *testing.T) {
	handler := NewSettingsHandler(failingEngine{app.New(app.Config{ManualPoll: true})})

	rec := do(t, handler, http.MethodPut, "/api/settings", `{"displayBoneHand":false}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}
