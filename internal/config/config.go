// Package config holds the compile environment: sample rate, tempo, seed,
// error mode and the optional sample manifest.
//
// Values come from defaults, then an optional YAML file, then command-line
// flags. The merged result is validated once before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/patchbind/internal/dsp"
	"github.com/roach88/patchbind/internal/samples"
)

// Config is the compile environment.
type Config struct {
	SampleRate  int     `yaml:"sample_rate" validate:"gt=0,lte=384000"`
	BPM         float64 `yaml:"bpm" validate:"gt=0,lte=999"`
	Seed        uint64  `yaml:"seed"`
	Mode        string  `yaml:"mode" validate:"oneof=fail-fast collect-all"`
	Samples     string  `yaml:"samples"`
	DB          string  `yaml:"db"`
	MetricsAddr string  `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Default returns the built-in configuration: 44.1 kHz, 120 BPM, seed 42,
// fail-fast.
func Default() Config {
	return Config{
		SampleRate: 44100,
		BPM:        120,
		Seed:       42,
		Mode:       "fail-fast",
	}
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}()

// Load reads path over the defaults. Fields absent from the file keep their
// default values. The result is not validated; call Validate after applying
// any overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all violations at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// SampleTable builds the table compile passes look samples up in. With no
// manifest configured the table is empty.
func (c Config) SampleTable() (*samples.Table, error) {
	if c.Samples == "" {
		t := samples.NewTable()
		t.Freeze()
		return t, nil
	}
	m, err := samples.LoadManifest(c.Samples)
	if err != nil {
		return nil, err
	}
	return m.SilentTable()
}

// Context returns the dsp context for a compile pass over table.
func (c Config) Context(table *samples.Table) dsp.Context {
	return dsp.Context{
		SampleRate: c.SampleRate,
		BPM:        c.BPM,
		Seed:       c.Seed,
		Samples:    table,
	}
}
