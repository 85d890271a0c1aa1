package watch

import (
	"bytes"
	"testing"
)

func TestWatchCommand_RequiresSourceAndOutput(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"-s", t.TempDir()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error when --output is missing")
	}
}

func TestWatchCommand_RejectsUnknownPolicy(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"-s", t.TempDir(), "-o", t.TempDir(), "--tie-break", "dice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown tie-break policy")
	}
}
