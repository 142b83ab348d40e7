package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbind/internal/config"
	"github.com/roach88/patchbind/internal/patch"
	"github.com/roach88/patchbind/internal/samples"
)

// EnvOptions holds the compile environment flags shared by compile,
// validate and watch. Only flags set explicitly override the config file.
type EnvOptions struct {
	SampleRate  int
	BPM         float64
	Seed        uint64
	Mode        string
	Samples     string
	DB          string
	MetricsAddr string
}

func addEnvFlags(cmd *cobra.Command, env *EnvOptions) {
	d := config.Default()
	cmd.Flags().IntVar(&env.SampleRate, "sample-rate", d.SampleRate, "sample rate in Hz")
	cmd.Flags().Float64Var(&env.BPM, "bpm", d.BPM, "tempo in beats per minute")
	cmd.Flags().Uint64Var(&env.Seed, "seed", d.Seed, "seed for random node types")
	cmd.Flags().StringVar(&env.Samples, "samples", "", "sample manifest (YAML)")
}

// resolveConfig layers the defaults, the --config file and every flag set
// on cmd, then validates the result.
func resolveConfig(opts *RootOptions, env *EnvOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("sample-rate") {
		cfg.SampleRate = env.SampleRate
	}
	if flags.Changed("bpm") {
		cfg.BPM = env.BPM
	}
	if flags.Changed("seed") {
		cfg.Seed = env.Seed
	}
	if flags.Changed("mode") {
		cfg.Mode = env.Mode
	}
	if flags.Changed("samples") {
		cfg.Samples = env.Samples
	}
	if flags.Changed("db") {
		cfg.DB = env.DB
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = env.MetricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger configures the process logger. Warnings and errors are always
// shown; --verbose adds per-node debug records.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// session is everything a compile pass needs once flags are resolved.
type session struct {
	cfg      config.Config
	table    *samples.Table
	compiler *patch.Compiler
	logger   *slog.Logger
}

// newSession resolves config and samples. A failure is reported through
// formatter and returned as an ExitError.
func newSession(opts *RootOptions, env *EnvOptions, cmd *cobra.Command, formatter *OutputFormatter, extra ...patch.Option) (*session, error) {
	cfg, err := resolveConfig(opts, env, cmd)
	if err != nil {
		return nil, commandError(formatter, ErrCodeConfig, err)
	}
	table, err := cfg.SampleTable()
	if err != nil {
		return nil, commandError(formatter, ErrCodeSamples, err)
	}
	mode, err := patch.ParseMode(cfg.Mode)
	if err != nil {
		return nil, commandError(formatter, ErrCodeConfig, err)
	}

	logger := newLogger(opts, formatter.GetErrWriter())
	compilerOpts := append([]patch.Option{patch.WithMode(mode), patch.WithLogger(logger)}, extra...)

	formatter.VerboseLog("Environment: %d Hz, %g BPM, seed %d, %s, %d sample(s)",
		cfg.SampleRate, cfg.BPM, cfg.Seed, mode, table.Len())

	return &session{
		cfg:      cfg,
		table:    table,
		compiler: patch.New(compilerOpts...),
		logger:   logger,
	}, nil
}

// compile runs one pass over p.
func (s *session) compile(p patch.Patch) (*patch.Result, error) {
	return s.compiler.Compile(p, s.cfg.Context(s.table))
}

// commandError reports err with code and returns an ExitCommandError.
func commandError(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}
