package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var SectionHeaderColor = color.New(color.BgHiBlue, color.FgHiWhite, color.Bold)

type Spinner struct {
	*spinner.Spinner
	out io.Writer
	msg string
}

// NewSpinner creates a new spinner with the given message.
// When stderr is not a terminal, nothing is animated and only the final message is printed.
func NewSpinner(msg string) *Spinner {
	s := &Spinner{out: os.Stderr, msg: msg}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return s
	}

	s.Spinner = spinner.New(
		spinner.CharSets[14],
		200*time.Millisecond,
		spinner.WithHiddenCursor(true),
		spinner.WithWriter(os.Stderr),
		spinner.WithSuffix(" "+fit(msg)),
	)
	s.Start()
	return s
}

// fit shortens msg so that the spinner line never wraps.
func fit(msg string) string {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width < 8 || len(msg)+2 < width {
		return msg
	}
	return msg[:width-6] + "..."
}

// UpdateMessage updates the spinner message.
// This function is safe to call on a nil Spinner.
func (s *Spinner) UpdateMessage(msg string) {
	if s == nil {
		return
	}
	if s.Spinner != nil {
		s.Spinner.Suffix = " " + fit(msg)
	}
	s.msg = msg
}

// Success stops the spinner and prints a success message.
// This function is safe to call on a nil Spinner.
func (s *Spinner) Success(msg ...string) {
	s.finish(color.HiGreenString("✓"), msg)
}

// Warn stops the spinner and prints a warning message.
// This function is safe to call on a nil Spinner.
func (s *Spinner) Warn(msg ...string) {
	s.finish(color.HiYellowString("!"), msg)
}

// Fail stops the spinner and prints a failure message.
// This function is safe to call on a nil Spinner.
func (s *Spinner) Fail(msg ...string) {
	s.finish(color.HiRedString("✗"), msg)
}

func (s *Spinner) finish(symbol string, msg []string) {
	if s == nil {
		return
	}
	if len(msg) == 0 {
		msg = []string{s.msg}
	}

	final := fmt.Sprintf("%s %s\n", symbol, msg[0])
	if s.Spinner == nil {
		_, _ = fmt.Fprint(s.out, final)
		return
	}
	s.Spinner.FinalMSG = final
	s.Stop()
}
