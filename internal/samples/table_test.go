package samples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAddLookupView(t *testing.T) {
	tbl := NewTable()
	data := []float32{0.1, -0.1, 0.2, -0.2}

	h, err := tbl.Add("808", data, 2)
	require.NoError(t, err)
	assert.True(t, h.Valid())

	got, ok := tbl.Lookup("808")
	require.True(t, ok)
	assert.Equal(t, h, got)

	view, ok := tbl.View(h)
	require.True(t, ok)
	assert.Equal(t, 2, view.Channels)
	assert.Equal(t, 2, view.Frames)
	assert.Same(t, &data[0], &view.Data[0], "view must alias the arena, not copy it")
}

func TestTableLookupMiss(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Lookup("missing")
	assert.False(t, ok)

	var nilTable *Table
	_, ok = nilTable.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, nilTable.Len())

	_, ok = tbl.View(Handle(0))
	assert.False(t, ok)
	_, ok = tbl.View(Handle(7))
	assert.False(t, ok)
}

func TestTableAddErrors(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add("a", []float32{1, 2, 3}, 2)
	assert.ErrorContains(t, err, "do not divide")

	_, err = tbl.Add("a", nil, 0)
	assert.ErrorContains(t, err, "channel count")

	_, err = tbl.Add("a", []float32{1}, 1)
	require.NoError(t, err)
	_, err = tbl.Add("a", []float32{1}, 1)
	assert.ErrorIs(t, err, ErrDuplicate)

	tbl.Freeze()
	_, err = tbl.Add("b", []float32{1}, 1)
	assert.ErrorIs(t, err, ErrFrozen)
	assert.True(t, tbl.Frozen())
}

func TestTableNamesSorted(t *testing.T) {
	tbl := NewTable()
	for _, name := range []string{"snare", "808", "kick"} {
		_, err := tbl.Add(name, []float32{0}, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"808", "kick", "snare"}, tbl.Names())
	assert.Equal(t, 3, tbl.Len())
}

func TestManifestSilentTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
samples:
  "808": { channels: 2, frames: 4 }
  kick: { channels: 1, frames: 3 }
`), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	tbl, err := m.SilentTable()
	require.NoError(t, err)
	assert.True(t, tbl.Frozen())

	h, ok := tbl.Lookup("808")
	require.True(t, ok)
	view, _ := tbl.View(h)
	assert.Equal(t, 4, view.Frames)
	assert.Len(t, view.Data, 8)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading sample manifest")
}
