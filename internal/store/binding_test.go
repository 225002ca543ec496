package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBindingRepository_CRUD(t *testing.T) {
	repo := newTestStore(t).Bindings()

	b := &Binding{
		ID:         "binding-1",
		Button:     "ok",
		PluginName: "keyboard",
		ActionName: "key",
		Params:     json.RawMessage(`{"key":"return"}`),
		Enabled:    true,
	}

	if err := repo.Create(b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	got, err := repo.GetByID("binding-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Button != "ok" || got.PluginName != "keyboard" || got.ActionName != "key" {
		t.Errorf("unexpected binding: %+v", got)
	}
	if string(got.Config) != "{}" {
		t.Errorf("expected default config {}, got %s", got.Config)
	}
	if string(got.Params) != `{"key":"return"}` {
		t.Errorf("unexpected params: %s", got.Params)
	}
	if !got.Enabled {
		t.Error("expected binding enabled")
	}

	got.Enabled = false
	got.Button = "cancel"
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	updated, _ := repo.GetByID("binding-1")
	if updated.Enabled || updated.Button != "cancel" {
		t.Errorf("update not persisted: %+v", updated)
	}

	if err := repo.Delete("binding-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID("binding-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBindingRepository_NotFound(t *testing.T) {
	repo := newTestStore(t).Bindings()

	if err := repo.Update(&Binding{ID: "nope", Button: "ok", PluginName: "p", ActionName: "a"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestBindingRepository_InvalidButton(t *testing.T) {
	repo := newTestStore(t).Bindings()

	err := repo.Create(&Binding{ID: "x", Button: "jump", PluginName: "p", ActionName: "a"})
	if err == nil {
		t.Error("expected check constraint violation for unknown button")
	}
}

func TestBindingRepository_ListByButton(t *testing.T) {
	repo := newTestStore(t).Bindings()

	fixtures := []*Binding{
		{ID: "a", Button: "left", PluginName: "keyboard", ActionName: "key", Enabled: true},
		{ID: "b", Button: "left", PluginName: "keyboard", ActionName: "key", Enabled: false},
		{ID: "c", Button: "right", PluginName: "keyboard", ActionName: "key", Enabled: true},
	}
	for _, b := range fixtures {
		if err := repo.Create(b); err != nil {
			t.Fatalf("Create(%s) error = %v", b.ID, err)
		}
	}

	left, err := repo.ListByButton("left")
	if err != nil {
		t.Fatalf("ListByButton() error = %v", err)
	}
	if len(left) != 1 || left[0].ID != "a" {
		t.Errorf("expected only enabled binding a, got %v", left)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 bindings, got %d", len(all))
	}
}
