package local

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gammadia/prereq/prerequisite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T) (*Node, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("these tests run bash scripts")
	}
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash is not available")
	}

	root := t.TempDir()
	node, err := New(Config{Name: "test-node", Workspace: root})
	require.NoError(t, err)
	return node, root
}

func newTestGate(t *testing.T, script string, timeout time.Duration) *prerequisite.Gate {
	t.Helper()
	gate, err := prerequisite.New(
		prerequisite.Spec{Script: script, Interpreter: prerequisite.ShellScript},
		prerequisite.Config{Timeout: timeout},
	)
	require.NoError(t, err)
	return gate
}

func workspaceEntries(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRootPath(t *testing.T) {
	node, root := newTestNode(t)

	p, ok := node.RootPath()
	assert.True(t, ok)
	assert.Equal(t, root, p)

	require.NoError(t, os.Remove(root))
	_, ok = node.RootPath()
	assert.False(t, ok)
}

func TestCreateTempFile(t *testing.T) {
	node, root := newTestNode(t)

	p, err := node.CreateTempFile(context.Background(), root, "prereq", ".sh", "exit 0\n")
	require.NoError(t, err)

	assert.Equal(t, root, filepath.Dir(p))
	assert.Equal(t, ".sh", filepath.Ext(p))
	content, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "exit 0\n", string(content))

	require.NoError(t, node.Delete(context.Background(), p))
	assert.Empty(t, workspaceEntries(t, root))
	assert.NoError(t, node.Delete(context.Background(), p))
}

func TestCreateTempFileMissingDirectory(t *testing.T) {
	node, root := newTestNode(t)

	_, err := node.CreateTempFile(context.Background(), filepath.Join(root, "missing"), "prereq", ".sh", "")
	assert.Error(t, err)
}

func TestLaunch(t *testing.T) {
	node, root := newTestNode(t)

	var output bytes.Buffer
	code, err := node.Launch(context.Background(), prerequisite.Command{
		Argv:   []string{"bash", "-c", `echo "$GREETING from $(pwd)"; echo oops >&2; exit 4`},
		Env:    map[string]string{"GREETING": "hello"},
		Dir:    root,
		Output: &output,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, code)
	assert.Contains(t, output.String(), "hello from "+root)
	assert.Contains(t, output.String(), "oops")
}

func TestLaunchKeepsAmbientEnvironment(t *testing.T) {
	node, root := newTestNode(t)
	t.Setenv("PREREQ_AMBIENT", "yes")

	var output bytes.Buffer
	code, err := node.Launch(context.Background(), prerequisite.Command{
		Argv:   []string{"bash", "-c", `echo "$PREREQ_AMBIENT"`},
		Dir:    root,
		Output: &output,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "yes\n", output.String())
}

func TestLaunchMissingBinary(t *testing.T) {
	node, root := newTestNode(t)

	_, err := node.Launch(context.Background(), prerequisite.Command{
		Argv:   []string{"this-binary-does-not-exist"},
		Dir:    root,
		Output: &bytes.Buffer{},
	})
	assert.ErrorContains(t, err, "failed to run 'this-binary-does-not-exist'")
}

func TestLaunchTimeout(t *testing.T) {
	node, root := newTestNode(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := node.Launch(ctx, prerequisite.Command{
		Argv:   []string{"bash", "-c", "sleep 30"},
		Dir:    root,
		Output: &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestCheckAdmitted(t *testing.T) {
	node, root := newTestNode(t)
	item := &prerequisite.Item{Groups: []prerequisite.ParameterGroup{{Parameters: []prerequisite.ParameterValue{
		prerequisite.StringParameterValue{Name: "BRANCH", Value: "main"},
		prerequisite.BooleanParameterValue{Name: "DEPLOY", Value: true},
	}}}}

	gate := newTestGate(t, `test "$BRANCH" = main && test "$DEPLOY" = true && test "$(pwd)" = "`+root+`"`, 0)

	cause, err := gate.Check(context.Background(), node, item)
	require.NoError(t, err)
	assert.Nil(t, cause)
	assert.Empty(t, workspaceEntries(t, root))
}

func TestCheckNotMet(t *testing.T) {
	node, root := newTestNode(t)

	cause, err := newTestGate(t, "exit 1", 0).Check(context.Background(), node, &prerequisite.Item{})
	require.NoError(t, err)
	assert.Equal(t, prerequisite.BecausePrerequisitesArentMet{Node: "test-node"}, cause)
	assert.Empty(t, workspaceEntries(t, root))
}

func TestCheckTimeout(t *testing.T) {
	node, root := newTestNode(t)

	start := time.Now()
	cause, err := newTestGate(t, "sleep 30", 300*time.Millisecond).Check(context.Background(), node, &prerequisite.Item{})
	require.NoError(t, err)

	assert.Equal(t, prerequisite.BecausePrerequisitesArentMet{Node: "test-node"}, cause)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Empty(t, workspaceEntries(t, root))
}

func TestCheckOffline(t *testing.T) {
	node, err := New(Config{Name: "gone", Workspace: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	cause, err := newTestGate(t, "exit 0", 0).Check(context.Background(), node, &prerequisite.Item{})
	require.NoError(t, err)
	assert.Equal(t, prerequisite.BecauseNodeIsOffline{Node: "gone"}, cause)
}
