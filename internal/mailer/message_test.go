package mailer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/enotify/enotify/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Server:   "mail.example.com",
		Port:     587,
		Sender:   "me@example.com",
		Receiver: "fallback@example.com",
	}
}

func TestBuildExplicitRecipients(t *testing.T) {
	log, _ := testLogger()
	builder := NewBuilder(testConfig(), log)

	to := []string{"b@example.com", "a@example.com"}
	msg, err := builder.Build("subject", "body", to, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// Order preserved verbatim, no deduplication or sorting
	if !reflect.DeepEqual(msg.To, to) {
		t.Errorf("Recipients changed: got %v, want %v", msg.To, to)
	}
	if msg.From != "me@example.com" {
		t.Errorf("From should come from config, got %q", msg.From)
	}
}

func TestBuildDestListRecipients(t *testing.T) {
	destList := filepath.Join(t.TempDir(), "receivers.txt")
	content := "one@example.com\ntwo@example.com\n\nthree@example.com\n"
	if err := os.WriteFile(destList, []byte(content), 0644); err != nil {
		t.Fatalf("writing destlist: %v", err)
	}

	log, _ := testLogger()
	builder := NewBuilder(testConfig(), log)

	msg, err := builder.Build("subject", "body", nil, destList, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"one@example.com", "two@example.com", "three@example.com"}
	if !reflect.DeepEqual(msg.To, want) {
		t.Errorf("Destlist recipients: got %v, want %v", msg.To, want)
	}
}

func TestBuildFallsBackToConfiguredReceiver(t *testing.T) {
	log, buf := testLogger()
	builder := NewBuilder(testConfig(), log)

	msg, err := builder.Build("subject", "body", nil, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(msg.To, []string{"fallback@example.com"}) {
		t.Errorf("Expected configured receiver, got %v", msg.To)
	}
	if !strings.Contains(buf.String(), "defaulting") {
		t.Error("Fallback to the configured receiver should be logged")
	}
}

func TestBuildNoDefaultReceiverFails(t *testing.T) {
	cfg := testConfig()
	cfg.Receiver = ""
	log, _ := testLogger()
	builder := NewBuilder(cfg, log)

	if _, err := builder.Build("subject", "body", nil, "", nil); err == nil {
		t.Error("Build without any receiver should fail")
	}
}

func TestBuildNoAttachmentsFastPath(t *testing.T) {
	log, _ := testLogger()
	builder := NewBuilder(testConfig(), log)

	msg, err := builder.Build("subject", "body", []string{"x@example.com"}, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(msg.Parts) != 0 {
		t.Errorf("Expected zero parts, got %d", len(msg.Parts))
	}
}

func TestBuildAttachesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "one.json"), []byte(`{"a":1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "two.json"), []byte(`{"b":2}`), 0644); err != nil {
		t.Fatal(err)
	}

	log, _ := testLogger()
	builder := NewBuilder(testConfig(), log)

	patterns := []string{
		filepath.Join(dir, "*.json"),
		filepath.Join(dir, "missing-*"), // matches nothing, must not abort
	}
	msg, err := builder.Build("subject", "body", []string{"x@example.com"}, "", patterns)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(msg.Parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(msg.Parts))
	}
	if msg.Parts[0].Filename != "one.json" {
		t.Errorf("Part filename should be the base name, got %q", msg.Parts[0].Filename)
	}
	if string(msg.Parts[0].Data) != `{"a":1}` {
		t.Errorf("Part content mismatch: %q", msg.Parts[0].Data)
	}
}

func TestBuildUnreadableAttachmentFailsBuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	// The file exists at collection time but the read fails, as if the
	// permission was revoked mid-run.
	readFile = func(string) ([]byte, error) {
		return nil, os.ErrPermission
	}
	defer func() { readFile = os.ReadFile }()

	log, _ := testLogger()
	builder := NewBuilder(testConfig(), log)

	_, err := builder.Build("subject", "body", []string{"x@example.com"}, "", []string{path})
	if !errors.Is(err, ErrAttachmentUnreadable) {
		t.Errorf("Expected ErrAttachmentUnreadable, got %v", err)
	}
}
