package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTypesCmd(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTypesCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTypesGolden(t *testing.T) {
	buf, err := runTypesCmd(t, "text")
	require.NoError(t, err)
	newGolden(t).Assert(t, "types", buf.Bytes())
}

func TestTypesJSON(t *testing.T) {
	buf, err := runTypesCmd(t, "json", "lpf", "mix", "seq")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []TypeReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))

	cutoff := 100.0
	assert.Equal(t, []TypeReport{
		{Name: "lpf", Slots: []string{"number_or_reference", "number"}, Default: &cutoff},
		{Name: "mix", Slots: []string{"reference"}, Variadic: true},
		{Name: "seq", Slots: []string{"sequence"}},
	}, resp.Data)
}

func TestTypesUnknown(t *testing.T) {
	buf, err := runTypesCmd(t, "text", "sin", "wobble")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E201]: unknown node type \"wobble\"\n", buf.String())
}
