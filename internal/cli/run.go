package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/undoable/internal/harness"
	"github.com/roach88/undoable/internal/journal"
	"github.com/roach88/undoable/internal/metrics"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filter  string // scenario filter (glob on the file name)
	Trace   bool   // print every traced event in text output
	Golden  string // directory of golden traces to compare against
	Update  bool   // rewrite golden traces instead of comparing
	Journal string // SQLite journal to record history events in
	Metrics string // file for Prometheus metrics, "-" for stderr
}

// ScenarioResult holds the outcome of one scenario file.
type ScenarioResult struct {
	Name    string               `json:"name"`
	File    string               `json:"file"`
	Pass    bool                 `json:"pass"`
	Errors  []string             `json:"errors,omitempty"`
	Steps   int                  `json:"steps"`
	Live    int                  `json:"live"`
	Session string               `json:"session,omitempty"`
	Trace   []harness.TraceEvent `json:"trace,omitempty"`
}

// RunResult holds the outcome of a run command.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <path>...",
		Short: "Run scenario files",
		Long: `Run scenarios against a fresh object factory each.

Paths may be scenario files or directories, which are searched for
.yaml and .yml files. Every step is traced; expectations that do not
hold fail the scenario.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, journal errors, etc.)

Examples:
  undoctl run ./testdata/scenarios
  undoctl run ./testdata/scenarios --filter "cascade_*" --trace
  undoctl run ./testdata/scenarios --golden ./golden --update
  undoctl run ./scenario.yaml --journal ./history.db --metrics -`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print traced events")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "directory of golden trace files")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "write Prometheus metrics to file (- for stderr)")

	return cmd
}

// runEnv holds what every scenario of one command shares.
type runEnv struct {
	ctx       context.Context
	logger    *slog.Logger
	journal   *journal.Journal
	registry  *prometheus.Registry
	collector *metrics.Collector
	gauge     *metrics.FactoryGauge
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Update && opts.Golden == "" {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, "--update requires --golden", nil)
	}

	files, err := findScenarioFiles(paths, opts.Filter)
	if err != nil {
		return failLoad(formatter, err)
	}

	env, err := newRunEnv(opts, cmd)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return formatter.Fail(exitErr.Code, ErrCodeJournal, exitErr.Message, exitErr.Err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeMetrics, "set up metrics", err)
	}
	defer env.close()

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		formatter.VerboseLog("running %s", file)
		sr, err := env.runFile(opts, file)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "journal write failed", err)
		}
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if !formatter.JSON() {
			writeScenarioText(formatter.Writer, sr, opts.Trace)
		}
		if !opts.Trace {
			sr.Trace = nil
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	if err := env.writeMetrics(opts.Metrics, formatter.GetErrWriter()); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeMetrics, "write metrics", err)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeRunFailed,
				Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
			}
		}
		if err := formatter.encode(resp); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	} else {
		w := formatter.Writer
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		if result.Failed == 0 {
			fmt.Fprintln(w, "✓ All scenarios passed")
		}
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

func newRunEnv(opts *RunOptions, cmd *cobra.Command) (*runEnv, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env := &runEnv{
		ctx:    ctx,
		logger: newLogger(opts.RootOptions, cmd.ErrOrStderr()),
	}

	if opts.Metrics != "" {
		env.registry = prometheus.NewRegistry()
		c, err := metrics.NewCollector(env.registry)
		if err != nil {
			return nil, err
		}
		g, err := metrics.RegisterFactory(env.registry, nil)
		if err != nil {
			return nil, err
		}
		env.collector, env.gauge = c, g
	}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal, journal.WithLogger(env.logger))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open journal", err)
		}
		env.journal = j
		env.logger.Debug("journal opened", "path", opts.Journal)
	}
	return env, nil
}

func (e *runEnv) close() {
	if e.journal == nil {
		return
	}
	if err := e.journal.Close(); err != nil {
		e.logger.Error("error closing journal", "error", err)
	}
}

// runFile loads and runs one scenario. Load and run failures fail the
// scenario; only journal write failures are returned.
func (e *runEnv) runFile(opts *RunOptions, file string) (ScenarioResult, error) {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load: %v", err)}
		return sr, nil
	}
	sr.Name = scenario.Name

	hopts := []harness.Option{harness.WithLogger(e.logger)}
	if e.collector != nil {
		hopts = append(hopts,
			harness.WithObserver(e.collector),
			harness.WithFactoryHook(e.gauge.Track),
		)
	}
	var session *journal.Session
	if e.journal != nil {
		session, err = e.journal.Begin(e.ctx, scenario.Name)
		if err != nil {
			return sr, err
		}
		sr.Session = session.ID()
		hopts = append(hopts, harness.WithObserver(session))
	}

	result, err := harness.Run(scenario, hopts...)
	if session != nil && session.Err() != nil {
		return sr, session.Err()
	}
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("run: %v", err)}
		return sr, nil
	}

	sr.Pass = result.Pass
	sr.Errors = result.Errors
	sr.Steps = result.Steps
	sr.Live = result.Live
	sr.Trace = result.Trace

	if opts.Golden != "" {
		if err := checkGolden(opts, scenario.Name, result); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
	}
	return sr, nil
}

func (e *runEnv) writeMetrics(dest string, stderr io.Writer) error {
	if e.registry == nil {
		return nil
	}
	if dest == "-" {
		return metrics.WriteText(stderr, e.registry)
	}
	var buf bytes.Buffer
	if err := metrics.WriteText(&buf, e.registry); err != nil {
		return err
	}
	return os.WriteFile(dest, buf.Bytes(), 0o644)
}

// checkGolden compares the trace with {golden}/{name}.golden, or rewrites
// the file when updating.
func checkGolden(opts *RunOptions, name string, result *harness.Result) error {
	snapshot := harness.TraceSnapshot{ScenarioName: name, Trace: result.Trace}
	data, err := snapshot.Marshal()
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}

	path := filepath.Join(opts.Golden, name+".golden")
	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return fmt.Errorf("create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return errors.New("trace does not match golden file (run with --update to regenerate)")
	}
	return nil
}

func writeScenarioText(w io.Writer, sr ScenarioResult, trace bool) {
	mark := "✓"
	if !sr.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", mark, sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if !trace {
		return
	}
	for _, ev := range sr.Trace {
		fmt.Fprintf(w, "  %3d  step %-3d %-8s %s\n", ev.Seq, ev.Step, ev.Op, ev.Event)
	}
}
