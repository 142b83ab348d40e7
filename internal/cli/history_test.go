package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/patchbind/internal/store"
)

// seedHistory records three passes: two of one patch and a failed one.
func seedHistory(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	passes := []store.Pass{
		{ID: "pass-1", Source: "live.yaml", PatchHash: "aaa", Mode: "fail-fast", SampleRate: 44100, BPM: 120, Seed: 42,
			OK: true, NodeCount: 9, EdgeCount: 2, Patch: "{}"},
		{ID: "pass-2", Source: "live.yaml", PatchHash: "bbb", Mode: "fail-fast", SampleRate: 44100, BPM: 120, Seed: 42,
			NodeCount: 3, Patch: "{}", Errors: []store.PassError{
				{Code: "UNKNOWN_NODE_TYPE", Message: "UNKNOWN_NODE_TYPE: sawx: unknown node type"},
			}},
		{ID: "pass-3", Source: "live.yaml", PatchHash: "aaa", Mode: "collect-all", SampleRate: 48000, BPM: 90, Seed: 7,
			OK: true, NodeCount: 9, EdgeCount: 2, Warnings: 1, Patch: "{}"},
	}
	for _, p := range passes {
		_, err := st.RecordPass(ctx, p)
		require.NoError(t, err)
	}
	return dbPath
}

func runHistoryCmd(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestHistoryText(t *testing.T) {
	dbPath := seedHistory(t)

	buf, err := runHistoryCmd(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "Passes (3):\n"+
		"  1 ✓ pass-1 live.yaml: 9 node(s), 2 edge(s), 0 warning(s)\n"+
		"  2 ✗ pass-2 live.yaml: 3 node(s), 0 edge(s), 0 warning(s)\n"+
		"  3 ✓ pass-3 live.yaml: 9 node(s), 2 edge(s), 1 warning(s)\n", buf.String())
}

func TestHistorySelection(t *testing.T) {
	dbPath := seedHistory(t)

	tests := []struct {
		name    string
		args    []string
		wantIDs []string
	}{
		{"all", []string{"--limit", "0"}, []string{"pass-1", "pass-2", "pass-3"}},
		{"limit_keeps_most_recent", []string{"-n", "2"}, []string{"pass-2", "pass-3"}},
		{"by_hash", []string{"--hash", "aaa"}, []string{"pass-1", "pass-3"}},
		{"unknown_hash", []string{"--hash", "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := runHistoryCmd(t, "json", append([]string{"--db", dbPath}, tt.args...)...)
			require.NoError(t, err)

			var resp struct {
				Status string       `json:"status"`
				Data   []PassReport `json:"data"`
			}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			ids := []string{}
			for _, p := range resp.Data {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestHistoryByID(t *testing.T) {
	dbPath := seedHistory(t)

	t.Run("with_errors", func(t *testing.T) {
		buf, err := runHistoryCmd(t, "text", "--db", dbPath, "--id", "pass-2")
		require.NoError(t, err)
		assert.Equal(t, "Passes (1):\n"+
			"  2 ✗ pass-2 live.yaml: 3 node(s), 0 edge(s), 0 warning(s)\n"+
			"      UNKNOWN_NODE_TYPE: UNKNOWN_NODE_TYPE: sawx: unknown node type\n", buf.String())
	})

	t.Run("json_fields", func(t *testing.T) {
		buf, err := runHistoryCmd(t, "json", "--db", dbPath, "--id", "pass-3")
		require.NoError(t, err)

		var resp struct {
			Data []PassReport `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, PassReport{
			Seq: 3, ID: "pass-3", Source: "live.yaml", PatchHash: "aaa", Mode: "collect-all",
			SampleRate: 48000, BPM: 90, Seed: 7, OK: true, NodeCount: 9, EdgeCount: 2, Warnings: 1,
		}, resp.Data[0])
	})

	t.Run("not_found", func(t *testing.T) {
		buf, err := runHistoryCmd(t, "text", "--db", dbPath, "--id", "pass-9")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, buf.String(), "Error [E005]")
	})
}

func TestHistoryEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	buf, err := runHistoryCmd(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No passes recorded\n", buf.String())
}

func TestHistoryRequiresDB(t *testing.T) {
	_, err := runHistoryCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}
