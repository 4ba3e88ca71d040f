package prerequisite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeShellScript(t *testing.T) {
	script := "#!/bin/bash\ntest -x /usr/bin/docker\n"

	s := Materialize(script, PlatformPOSIX)

	assert.Equal(t, script, s.Content)
	assert.Equal(t, ".sh", s.Extension)
}

func TestMaterializeBatchScript(t *testing.T) {
	s := Materialize("echo hi", PlatformWindows)

	expected := "@set CAUSE=\r\n" +
		"@echo off\r\n" +
		"call :TheActualScript\r\n" +
		"@echo off\r\n" +
		"echo #:#:#CAUSE#:#:#%CAUSE%#:#:#\r\n" +
		"goto :EOF\r\n" +
		":TheActualScript\r\n" +
		"echo hi\r\n"

	assert.Equal(t, expected, s.Content)
	assert.Equal(t, ".bat", s.Extension)
	assert.NotContains(t, strings.ReplaceAll(s.Content, "\r\n", ""), "\n")
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, []string{"bash", "/tmp/x.sh"}, CommandLine("/tmp/x.sh", PlatformPOSIX))
	assert.Equal(t, []string{"cmd", "/c", "call", `C:\tmp\x.bat`}, CommandLine(`C:\tmp\x.bat`, PlatformWindows))
}

func TestCommandLineKeepsPathAsSingleArgument(t *testing.T) {
	argv := CommandLine("/tmp/my dir/x; rm -rf.sh", PlatformPOSIX)
	assert.Equal(t, []string{"bash", "/tmp/my dir/x; rm -rf.sh"}, argv)
}

func TestCreateScriptFile(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	node := newMockNode("agent-1")

	p, err := CreateScriptFile(context.Background(), node, "/work", "prereq", "exit 0", log)
	require.NoError(t, err)

	assert.Equal(t, "/work/prereq0.sh", p)
	assert.Equal(t, "exit 0", node.files[p])
}

func TestCreateScriptFileFailure(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	node := newMockNode("agent-1")
	node.createErr = errors.New("read-only file system")

	_, err := CreateScriptFile(context.Background(), node, "/work", "prereq", "exit 0", log)
	assert.EqualError(t, err, "failed to create script file in '/work': read-only file system")
}
