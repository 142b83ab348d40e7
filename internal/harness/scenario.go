package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/patchbind/internal/config"
	"github.com/roach88/patchbind/internal/samples"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Patch is the path of the patch file to compile, relative to the
	// scenario file.
	Patch string `yaml:"patch"`

	// Env overrides the default compile environment.
	Env Env `yaml:"env,omitempty"`

	// Assertions validate the outcome of the compile pass.
	Assertions []Assertion `yaml:"assertions"`
}

// Env is the compile environment of a scenario. Zero fields keep the
// defaults from config.Default.
type Env struct {
	SampleRate int     `yaml:"sample_rate,omitempty"`
	BPM        float64 `yaml:"bpm,omitempty"`
	Seed       *uint64 `yaml:"seed,omitempty"`
	Mode       string  `yaml:"mode,omitempty"`

	// Samples is an inline sample manifest. Buffers are silent.
	Samples map[string]samples.ManifestEntry `yaml:"samples,omitempty"`
}

// Config layers the scenario environment over the defaults.
func (e Env) Config() config.Config {
	cfg := config.Default()
	if e.SampleRate != 0 {
		cfg.SampleRate = e.SampleRate
	}
	if e.BPM != 0 {
		cfg.BPM = e.BPM
	}
	if e.Seed != nil {
		cfg.Seed = *e.Seed
	}
	if e.Mode != "" {
		cfg.Mode = e.Mode
	}
	return cfg
}

// Assertion validates one aspect of a compile pass.
type Assertion struct {
	// Type specifies the assertion type:
	// - "compiles": the patch compiled
	// - "rejects": a compile error with Code, optionally at Chain and Node
	// - "edge": an edge From -> To, landing on Node and Port when set
	// - "refs": node Node of Chain reads exactly Refs, in order
	// - "outputs": the output chains are exactly Outputs, in order
	// - "warning": some feedback warning contains Contains
	// - "error_count": exactly Count compile errors
	Type string `yaml:"type"`

	Code  string `yaml:"code,omitempty"`
	Chain string `yaml:"chain,omitempty"`
	Node  *int   `yaml:"node,omitempty"`

	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
	Port *int   `yaml:"port,omitempty"`

	Refs    []string `yaml:"refs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`

	Contains string `yaml:"contains,omitempty"`
	Count    int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCompiles   = "compiles"
	AssertRejects    = "rejects"
	AssertEdge       = "edge"
	AssertRefs       = "refs"
	AssertOutputs    = "outputs"
	AssertWarning    = "warning"
	AssertErrorCount = "error_count"
)

// LoadScenario reads and parses a scenario YAML file. The patch path is
// resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Patch != "" && !filepath.IsAbs(scenario.Patch) {
		scenario.Patch = filepath.Join(filepath.Dir(path), scenario.Patch)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Patch == "" {
		return fmt.Errorf("patch is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := os.Stat(s.Patch); os.IsNotExist(err) {
		return fmt.Errorf("patch file not found: %s", s.Patch)
	}
	if err := s.Env.Config().Validate(); err != nil {
		return fmt.Errorf("env: %w", err)
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCompiles:
	case AssertRejects:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for rejects", index)
		}
	case AssertEdge:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("assertions[%d]: from and to are required for edge", index)
		}
	case AssertRefs:
		if a.Chain == "" || a.Node == nil {
			return fmt.Errorf("assertions[%d]: chain and node are required for refs", index)
		}
	case AssertOutputs:
		if a.Outputs == nil {
			return fmt.Errorf("assertions[%d]: outputs list is required for outputs", index)
		}
	case AssertWarning:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for warning", index)
		}
	case AssertErrorCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for error_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
