package samples

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ManifestEntry describes one sample by shape only.
type ManifestEntry struct {
	Channels int `yaml:"channels"`
	Frames   int `yaml:"frames"`
}

// Manifest lists the samples a patch may reference, keyed by name.
//
// Example:
//
//	samples:
//	  808: { channels: 2, frames: 44100 }
//	  kick: { channels: 1, frames: 22050 }
type Manifest struct {
	Samples map[string]ManifestEntry `yaml:"samples"`
}

// LoadManifest reads a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing sample manifest %s: %w", path, err)
	}
	return &m, nil
}

// SilentTable builds a frozen table of zeroed buffers matching the manifest.
// Used for dry-run compiles where only the table's shape matters.
func (m *Manifest) SilentTable() (*Table, error) {
	t := NewTable()
	if m != nil {
		for _, name := range sortedKeys(m.Samples) {
			e := m.Samples[name]
			if e.Frames < 0 {
				return nil, fmt.Errorf("sample %q: negative frame count %d", name, e.Frames)
			}
			if _, err := t.Add(name, make([]float32, e.Frames*e.Channels), e.Channels); err != nil {
				return nil, err
			}
		}
	}
	t.Freeze()
	return t, nil
}

func sortedKeys(m map[string]ManifestEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
