package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewEmptyOutputIsNop(t *testing.T) {
	log, err := New("debug", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("expected nop logger")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nbook.log")
	log, err := New("warn", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("expected info filtered, got %s", data)
	}
	if !strings.Contains(string(data), `"msg":"shown"`) {
		t.Fatalf("expected json warn line, got %s", data)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("loud", "stderr"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
