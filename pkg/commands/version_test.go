package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionShort(t *testing.T) {
	t.Setenv("NBOOK_CONFIG_PATH", t.TempDir())

	var buf bytes.Buffer
	cmd := New()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); !strings.Contains(got, version) {
		t.Fatalf("expected %q in output, got %q", version, got)
	}
}
