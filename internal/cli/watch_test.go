package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/patchbind/internal/store"
)

// syncBuffer is a bytes.Buffer safe to read while the watch loop writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const (
	livePatch = `chains:
  - name: lead
    nodes:
      - { type: saw, params: [110] }
      - { type: lpf, params: [~lfo, 1.0] }
  - name: ~lfo
    nodes:
      - { type: sin, params: [0.5] }
`
	liveTypo = `chains:
  - name: lead
    nodes:
      - { type: sawx, params: [110] }
`
)

// startWatch runs the watch command until the returned stop func is called.
func startWatch(t *testing.T, opts *WatchOptions, args ...string) (*syncBuffer, func() error) {
	t.Helper()
	out := &syncBuffer{}
	cmd := newWatchCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	stop := func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop")
			return nil
		}
	}
	return out, stop
}

func TestWatchRecompilesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.yaml")
	require.NoError(t, os.WriteFile(path, []byte(livePatch), 0o644))

	out, stop := startWatch(t, &WatchOptions{RootOptions: &RootOptions{Format: "text"}}, path, "--debounce", "20ms")

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[1] ✓ "+path+": 2 chain(s), 3 node(s), 1 edge(s)")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(liveTypo), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "✗ "+path+": 1 error(s)")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, stop())
	assert.Contains(t, out.String(), "E201: chain lead node 0 (sawx): UNKNOWN_NODE_TYPE: sawx: unknown node type")
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.yaml")
	require.NoError(t, os.WriteFile(path, []byte(livePatch), 0o644))

	out, stop := startWatch(t, &WatchOptions{RootOptions: &RootOptions{Format: "text"}}, path, "--debounce", "20ms")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[1] ✓")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, stop())
	assert.NotContains(t, out.String(), "[2]")
}

func TestWatchJSONAndHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.yaml")
	dbPath := filepath.Join(dir, "history.db")
	require.NoError(t, os.WriteFile(path, []byte(livePatch), 0o644))

	opts := &WatchOptions{
		RootOptions: &RootOptions{Format: "json"},
		IDGenerator: store.NewFixedGenerator("w-1", "w-2", "w-3", "w-4"),
	}
	out, stop := startWatch(t, opts, path, "--debounce", "20ms", "--db", dbPath)

	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "\n") >= 1
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, stop())

	firstLine, _, _ := strings.Cut(out.String(), "\n")
	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(firstLine), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"lead"}, resp.Data.Outputs)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	p, err := st.ReadPass(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, p.OK)
	assert.Equal(t, 3, p.NodeCount)
}

func TestWatchMissingDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewWatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing", "live.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E008]")
}
