package models

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// SpinnerLine is the spinner's output target. It passes repaints through and
// remembers the most recent one so StageEcho can redraw the spinner after
// printing a stage line over it.
type SpinnerLine struct {
	mu   sync.Mutex
	out  io.Writer
	last []byte
}

func NewSpinnerLine() *SpinnerLine {
	return &SpinnerLine{out: os.Stdout}
}

func (l *SpinnerLine) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.out.Write(p); err != nil {
		return 0, err
	}
	l.last = append(l.last[:0], p...)

	return len(p), nil
}

func (l *SpinnerLine) snapshot() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.last...)
}

// StageEcho prints deployment stage lines above a live spinner: erase the
// spinner's line, write the stage text, redraw the spinner.
type StageEcho struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *SpinnerLine
}

func NewStageEcho(spinner *SpinnerLine) *StageEcho {
	return &StageEcho{out: os.Stdout, spinner: spinner}
}

func (e *StageEcho) Printf(format string, a ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.out, "\033[2K\r"+format, a...); err != nil {
		return err
	}

	_, err := e.out.Write(e.spinner.snapshot())
	return err
}
