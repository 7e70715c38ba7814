package models

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinnerLineRemembersLastRepaint(t *testing.T) {
	var buf bytes.Buffer
	line := &SpinnerLine{out: &buf}

	for _, frame := range []string{"| Deploying", "/ Deploying", "- Deploying"} {
		if _, err := line.Write([]byte(frame)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := string(line.snapshot()); got != "- Deploying" {
		t.Fatalf("expected the last frame, got %q", got)
	}
	if buf.String() != "| Deploying/ Deploying- Deploying" {
		t.Fatalf("frames not passed through: %q", buf.String())
	}
}

func TestStageEchoRedrawsSpinner(t *testing.T) {
	var buf bytes.Buffer
	line := &SpinnerLine{out: &buf}
	echo := &StageEcho{out: &buf, spinner: line}

	if _, err := line.Write([]byte("| Deploying")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := echo.Printf("Repository %s created\n", "octo/demo-app"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	stage := strings.Index(out, "Repository octo/demo-app created\n")
	if stage < 0 {
		t.Fatalf("stage line missing: %q", out)
	}
	if !strings.Contains(out[:stage], "\033[2K\r") {
		t.Fatalf("spinner line not erased before the stage line: %q", out)
	}
	if !strings.HasSuffix(out, "| Deploying") {
		t.Fatalf("spinner not redrawn after the stage line: %q", out)
	}
}
