package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes body next to a copy of the lfo patch and returns its path.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "patches", "lfo.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lfo.yaml"), data, 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "drums.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "drums", s.Name)
	assert.Equal(t, filepath.Join("testdata", "patches", "drums.yaml"), s.Patch)
	require.NotNil(t, s.Env.Seed)
	assert.Equal(t, uint64(7), *s.Env.Seed)
	assert.Equal(t, 1, s.Env.Samples["808"].Channels)
	assert.Len(t, s.Assertions, 3)

	cfg := s.Env.Config()
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 90.0, cfg.BPM)
	assert.Equal(t, "fail-fast", cfg.Mode)
}

func TestEnvConfigDefaults(t *testing.T) {
	cfg := Env{}.Config()
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 120.0, cfg.BPM)
	assert.Equal(t, uint64(42), cfg.Seed)

	zero := uint64(0)
	assert.Equal(t, uint64(0), Env{Seed: &zero}.Config().Seed)
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown_field",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertion:\n  - type: compiles\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing_name",
			body:    "description: d\npatch: lfo.yaml\nassertions:\n  - type: compiles\n",
			wantErr: "name is required",
		},
		{
			name:    "missing_description",
			body:    "name: x\npatch: lfo.yaml\nassertions:\n  - type: compiles\n",
			wantErr: "description is required",
		},
		{
			name:    "missing_patch",
			body:    "name: x\ndescription: d\nassertions:\n  - type: compiles\n",
			wantErr: "patch is required",
		},
		{
			name:    "patch_not_found",
			body:    "name: x\ndescription: d\npatch: nope.yaml\nassertions:\n  - type: compiles\n",
			wantErr: "patch file not found",
		},
		{
			name:    "no_assertions",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions: []\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "invalid_env",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nenv:\n  mode: eager\nassertions:\n  - type: compiles\n",
			wantErr: "env: invalid config",
		},
		{
			name:    "unknown_sample_field",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nenv:\n  samples:\n    kick: { chans: 1 }\nassertions:\n  - type: compiles\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "assertion_without_type",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - code: X\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "unknown_assertion",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: sounds_good\n",
			wantErr: `unknown assertion type "sounds_good"`,
		},
		{
			name:    "rejects_without_code",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: rejects\n",
			wantErr: "code is required for rejects",
		},
		{
			name:    "edge_without_to",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: edge\n    from: lfo\n",
			wantErr: "from and to are required for edge",
		},
		{
			name:    "refs_without_node",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: refs\n    chain: lead\n",
			wantErr: "chain and node are required for refs",
		},
		{
			name:    "outputs_without_list",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: outputs\n",
			wantErr: "outputs list is required",
		},
		{
			name:    "warning_without_contains",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: warning\n",
			wantErr: "contains is required for warning",
		},
		{
			name:    "negative_count",
			body:    "name: x\ndescription: d\npatch: lfo.yaml\nassertions:\n  - type: error_count\n    count: -1\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "scenarios", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioAbsolutePatch(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join("testdata", "patches", "lfo.yaml"))
	require.NoError(t, err)

	path := writeScenario(t, "name: x\ndescription: d\npatch: "+abs+"\nassertions:\n  - type: compiles\n")
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, abs, s.Patch)
}
