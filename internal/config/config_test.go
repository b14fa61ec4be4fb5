package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Open on missing file should not fail: %v", err)
	}

	cfg := store.Config()
	if cfg.Port != 587 {
		t.Errorf("Default port should be 587, got %d", cfg.Port)
	}
	if cfg.Server == "" {
		t.Error("Default server should not be empty")
	}
}

func TestSetSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Set(KeyServer, "mail.example.com")
	store.Set(KeySender, "me@example.com")
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	cfg := reloaded.Config()
	if cfg.Server != "mail.example.com" {
		t.Errorf("Server not persisted, got %q", cfg.Server)
	}
	if cfg.Sender != "me@example.com" {
		t.Errorf("Sender not persisted, got %q", cfg.Sender)
	}
	// Keys not edited keep their values
	if cfg.Port != 587 {
		t.Errorf("Unedited port should stay 587, got %d", cfg.Port)
	}
}

func TestEditLeavesOtherKeysUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	store, _ := Open(path)
	store.Set(KeyReceiver, "ops@example.com")
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Second edit touches only the port
	store2, _ := Open(path)
	store2.Set(KeyPort, 465)
	if err := store2.Save(); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	final, _ := Open(path)
	cfg := final.Config()
	if cfg.Receiver != "ops@example.com" {
		t.Errorf("Receiver lost across edits, got %q", cfg.Receiver)
	}
	if cfg.Port != 465 {
		t.Errorf("Port edit not persisted, got %d", cfg.Port)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	store, _ := Open(path)
	store.Set(KeyServer, "mail.example.com")
	if err := store.Save(); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading config file failed: %v", err)
	}

	store2, _ := Open(path)
	store2.Set(KeyServer, "mail.example.com")
	if err := store2.Save(); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading config file failed: %v", err)
	}

	if string(first) != string(second) {
		t.Error("Repeated identical edits should produce identical files")
	}
}
