package prerequisite

import (
	"fmt"
	"strings"
)

type Interpreter string

const (
	ShellScript  Interpreter = "linux shell script"
	WindowsBatch Interpreter = "windows batch script"
)

// Interpreters returns the interpreters an operator can choose from, in display order.
func Interpreters() []Interpreter {
	return []Interpreter{ShellScript, WindowsBatch}
}

func ParseInterpreter(s string) (Interpreter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ShellScript), "shell", "sh", "bash":
		return ShellScript, nil
	case string(WindowsBatch), "batch", "bat", "cmd":
		return WindowsBatch, nil
	default:
		return "", fmt.Errorf("unsupported interpreter '%s'", s)
	}
}

// Platform returns the platform scripts for this interpreter are written for.
func (i Interpreter) Platform() Platform {
	if i == WindowsBatch {
		return PlatformWindows
	}
	return PlatformPOSIX
}

func (i Interpreter) String() string {
	return string(i)
}

// Spec is the prerequisite configuration attached to a job.
type Spec struct {
	Script      string      `json:"script" yaml:"script"`
	Interpreter Interpreter `json:"interpreter" yaml:"interpreter"`
}

func (s Spec) Validate() error {
	if s.Interpreter == "" {
		return fmt.Errorf("interpreter is required")
	}
	if _, err := ParseInterpreter(string(s.Interpreter)); err != nil {
		return err
	}

	if strings.TrimSpace(s.Script) == "" {
		return fmt.Errorf("script is required")
	}

	return nil
}

type Platform int

const (
	PlatformPOSIX Platform = iota
	PlatformWindows
)

// ParsePlatform maps an operating system name (as in runtime.GOOS) to a Platform.
func ParsePlatform(goos string) Platform {
	if strings.EqualFold(strings.TrimSpace(goos), "windows") {
		return PlatformWindows
	}
	return PlatformPOSIX
}

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	default:
		return "posix"
	}
}
