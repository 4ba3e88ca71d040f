package prerequisite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	causeMarker   = "#:#:#"
	causeVariable = "CAUSE"
	crlf          = "\r\n"
)

// Script is the content and file extension of a materialized prerequisite script.
type Script struct {
	Content   string
	Extension string
}

// Materialize renders the operator script for the given platform.
//
// On Windows the script is wrapped in a batch scaffold: it runs as the
// :TheActualScript subroutine, then prints the CAUSE variable between markers
// (#:#:#CAUSE#:#:#<value>#:#:#) so that a caller may extract it from the output.
func Materialize(script string, platform Platform) Script {
	if platform != PlatformWindows {
		return Script{Content: script, Extension: ".sh"}
	}

	content := strings.Join([]string{
		"@set " + causeVariable + "=",
		"@echo off",
		"call :TheActualScript",
		"@echo off",
		"echo " + causeMarker + causeVariable + causeMarker + "%" + causeVariable + "%" + causeMarker,
		"goto :EOF",
		":TheActualScript",
		script,
	}, crlf) + crlf

	return Script{Content: content, Extension: ".bat"}
}

// CommandLine returns the argv running the script file at path.
// The path is always a separate argument, it is never spliced into a command string.
func CommandLine(path string, platform Platform) []string {
	if platform == PlatformWindows {
		return []string{"cmd", "/c", "call", path}
	}
	return []string{"bash", path}
}

// CreateScriptFile materializes the script for the node's platform into a new
// temporary file under root and returns its path on the node.
func CreateScriptFile(ctx context.Context, node Node, root, prefix, script string, log *slog.Logger) (string, error) {
	s := Materialize(script, node.Platform())

	path, err := node.CreateTempFile(ctx, root, prefix, s.Extension, s.Content)
	if err != nil {
		return "", fmt.Errorf("failed to create script file in '%s': %w", root, err)
	}

	log.Debug("Created script file", "path", path, "platform", node.Platform())
	return path, nil
}
