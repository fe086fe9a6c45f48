package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLog_WritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	defer SetEnabled(false)

	Log("toggled row %d", 3)
	Section("filter")

	out := buf.String()
	if !strings.Contains(out, "toggled row 3") {
		t.Errorf("expected log line, got %q", out)
	}
	if !strings.Contains(out, "=== filter ===") {
		t.Errorf("expected section line, got %q", out)
	}
	if !strings.Contains(out, "[CT_DEBUG]") {
		t.Errorf("expected prefix, got %q", out)
	}
}

func TestLog_SilentWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	SetEnabled(false)

	Log("nothing")
	LogEnterExit("nothing")()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
