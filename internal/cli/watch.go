package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/patchbind/internal/loader"
	"github.com/roach88/patchbind/internal/patch"
	"github.com/roach88/patchbind/internal/store"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Env      EnvOptions
	Debounce time.Duration

	// IDGenerator allows overriding the pass ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return newWatchCommand(&WatchOptions{RootOptions: rootOpts})
}

func newWatchCommand(opts *WatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <patch>",
		Short: "Recompile a patch every time it changes",
		Long: `Compile a patch, then recompile it whenever the file is written.

A failed pass is reported and watching continues. Bursts of writes within
the debounce window trigger a single pass. With --metrics-addr compile
metrics are served at /metrics.

Example:
  patchbind watch ./live.yaml --samples ./samples.yaml
  patchbind watch ./live.cue --metrics-addr localhost:9464 --db ./patchbind.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	addEnvFlags(cmd, &opts.Env)
	cmd.Flags().StringVar(&opts.Env.Mode, "mode", "fail-fast", "error mode (fail-fast|collect-all)")
	cmd.Flags().StringVar(&opts.Env.DB, "db", "", "record every pass in this SQLite database")
	cmd.Flags().StringVar(&opts.Env.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 100*time.Millisecond, "quiet period before recompiling")

	return cmd
}

func runWatch(opts *WatchOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	reg := prometheus.NewRegistry()
	sess, err := newSession(opts.RootOptions, &opts.Env, cmd, formatter, patch.WithMetrics(patch.NewMetrics(reg)))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := sess.cfg.MetricsAddr; addr != "" {
		srv := serveMetrics(addr, reg, sess)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		formatter.VerboseLog("Serving metrics on http://%s/metrics", addr)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return commandError(formatter, ErrCodeWatchFailed, err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen too.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return commandError(formatter, ErrCodeWatchFailed, err)
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	w := &patchWatcher{path: path, sess: sess, formatter: formatter, gen: gen, cmd: cmd}

	w.pass()
	return w.loop(ctx, watcher, target, opts.Debounce)
}

func serveMetrics(addr string, reg *prometheus.Registry, sess *session) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sess.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}

// patchWatcher runs one compile pass per settled change.
type patchWatcher struct {
	path      string
	sess      *session
	formatter *OutputFormatter
	gen       store.IDGenerator
	cmd       *cobra.Command
	passes    int
}

// loop waits for writes to target and recompiles after debounce of quiet.
func (w *patchWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, target string, debounce time.Duration) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.formatter.VerboseLog("Stopped after %d pass(es)", w.passes)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.pass()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.sess.logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

// pass loads and compiles the patch once and reports the outcome. Failures
// are printed, never returned.
func (w *patchWatcher) pass() {
	w.passes++
	p, err := loader.Load(w.path)
	if err != nil {
		w.report(nil, describeErrors(err))
		return
	}

	res, compileErr := w.sess.compile(p)
	if w.sess.cfg.DB != "" {
		if id, err := recordPass(w.cmd, w.sess, w.gen, w.path, p, res, compileErr); err != nil {
			w.sess.logger.Error("recording pass failed", "db", w.sess.cfg.DB, "error", err)
		} else {
			w.formatter.VerboseLog("Recorded pass %s", id)
		}
	}

	if compileErr != nil {
		w.report(nil, describeErrors(compileErr))
		return
	}
	w.report(res, nil)
}

// report writes one line (text) or one JSON document per pass.
func (w *patchWatcher) report(res *patch.Result, errs []CLIError) {
	out := w.formatter.Writer
	if w.formatter.Format == "json" {
		resp := CLIResponse{Status: "ok"}
		if res != nil {
			resp.Data = buildReport(w.path, w.sess.compiler.Mode(), res)
		} else {
			resp.Status = "error"
			resp.Error = &errs[0]
			resp.Data = errs
		}
		_ = json.NewEncoder(out).Encode(resp)
		return
	}

	stamp := fmt.Sprintf("[%d]", w.passes)
	if res == nil {
		fmt.Fprintf(out, "%s ✗ %s: %d error(s)\n", stamp, w.path, len(errs))
		for _, e := range errs {
			if e.Location != "" {
				fmt.Fprintf(out, "    %s: %s: %s\n", e.Code, e.Location, e.Message)
			} else {
				fmt.Fprintf(out, "    %s: %s\n", e.Code, e.Message)
			}
		}
		return
	}
	fmt.Fprintf(out, "%s ✓ %s: %d chain(s), %d node(s), %d edge(s)\n",
		stamp, w.path, len(res.Chains), res.NodeCount(), len(res.Edges))
	for _, warn := range res.Warnings {
		fmt.Fprintf(out, "    warning: %s\n", warn.Message)
	}
}
