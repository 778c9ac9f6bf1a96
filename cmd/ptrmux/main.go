// ptrmux demultiplexes interleaved STDF parametric results into a
// per-test, per-coordinate measurement table.
//
// Usage:
//
//	ptrmux lot1.stdf lot2.stdf
//	stdf2events lot.stdf | ptrmux --policy round-robin
//	ptrmux convert lot.stdf > lot.ndjson
//	ptrmux synth --tests VDD,IDD --multiple 4 --coords 16 --to stdf --out fixture.stdf
//
// Accepts two input formats, sniffed per file:
//   - STDF V4 (PTR and PRR records; everything else is skipped)
//   - NDJSON events: {"kind":"ptr","label":...,"result":...} and {"kind":"prr","x":...,"y":...}
//
// Output modes (auto-detected):
//
//	terminal  styled Unicode output (default when TTY)
//	llm       terse plain text for AI consumption (default when piped)
//	json      structured JSON for automation
//
// Exit codes: 0 on success, 1 when any input failed to decode, 2 on usage
// or configuration errors.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/ptrmux/internal/batch"
	"github.com/dkoosis/ptrmux/internal/config"
	"github.com/dkoosis/ptrmux/internal/logging"
	"github.com/dkoosis/ptrmux/internal/store"
	"github.com/dkoosis/ptrmux/internal/version"
	"github.com/dkoosis/ptrmux/pkg/demux"
	"github.com/dkoosis/ptrmux/pkg/eventjson"
	"github.com/dkoosis/ptrmux/pkg/mapper"
	"github.com/dkoosis/ptrmux/pkg/render"
	"github.com/dkoosis/ptrmux/pkg/stdf"
	"github.com/dkoosis/ptrmux/pkg/synth"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// usageError marks failures that exit with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, code: exitOK}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ptrmux: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return exitUsage
		}
		return exitFailed
	}
	return a.code
}

// app carries the streams and raw flag values shared by all commands.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	code           int
	logger         *zap.Logger

	configPath   string
	verbose      bool
	noColor      bool
	format       string
	theme        string
	storePath    string
	policy       string
	maxLookahead int
	maxMultiple  int
	sample       int
	top          int
	workers      int
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ptrmux [files...]",
		Short: "Demultiplex interleaved STDF parametric results per test and coordinate",
		Long: `ptrmux reads STDF V4 files (or ptr/prr NDJSON event streams) in which a
multi-site tester interleaved the parametric results of several units, and
attributes every result to the (X, Y) coordinate of the unit it measured.

With no files, or with "-", input is read from stdin.`,
		Args:          usageArgs(cobra.ArbitraryArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			a.logger = logging.New(a.stderr, a.verbose || os.Getenv("PTRMUX_DEBUG") != "")
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runDemux,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default .ptrmux.yaml, then ~/.config/ptrmux/.ptrmux.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log every demux step to stderr")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colors")
	pf.StringVar(&a.format, "format", render.FormatAuto, "Output format: auto, terminal, llm, json")
	pf.StringVar(&a.theme, "theme", "default", "Theme: default, orca, mono")
	pf.StringVar(&a.storePath, "store", "", "SQLite database to persist results in")

	f := root.Flags()
	f.StringVar(&a.policy, "policy", string(demux.Sequential), "Coordinate policy: sequential, round-robin")
	f.IntVar(&a.maxLookahead, "max-lookahead", demux.DefaultMaxLookahead, "Events inspected when detecting the base pattern")
	f.IntVar(&a.maxMultiple, "max-multiple", demux.DefaultMaxMultiple, "Largest repetition multiple tried")
	f.IntVar(&a.sample, "sample", mapper.DefaultOptions().SampleCoords, "Coordinates listed per test (0 disables)")
	f.IntVar(&a.top, "top", mapper.DefaultOptions().Top, "Tests in the widest-spread leaderboard (0 disables)")
	f.IntVar(&a.workers, "workers", 0, "Files processed concurrently (default: number of CPUs)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	root.AddCommand(a.convertCmd(), a.synthCmd(), a.runsCmd(), a.versionCmd())
	return root
}

// usageArgs reports argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// resolve merges the flags the user actually set with env, file and defaults.
func (a *app) resolve(cmd *cobra.Command) (*config.Resolved, error) {
	changed := cmd.Flags().Changed
	flags := config.Flags{ConfigPath: a.configPath, Verbose: a.verbose}
	if changed("max-lookahead") {
		flags.MaxLookahead = &a.maxLookahead
	}
	if changed("max-multiple") {
		flags.MaxMultiple = &a.maxMultiple
	}
	if changed("policy") {
		flags.Policy = &a.policy
	}
	if changed("format") {
		flags.Format = &a.format
	}
	if changed("theme") {
		flags.Theme = &a.theme
	}
	if changed("sample") {
		flags.SampleCoords = &a.sample
	}
	if changed("top") {
		flags.Top = &a.top
	}
	if changed("workers") {
		flags.Workers = &a.workers
	}
	if changed("store") {
		flags.Store = &a.storePath
	}
	if changed("no-color") {
		flags.NoColor = &a.noColor
	}

	cfg, err := config.Resolve(flags)
	if err != nil {
		return nil, usageError{err}
	}
	a.logger.Debug("configuration resolved",
		zap.String("file", cfg.ConfigPath),
		zap.Any("sources", cfg.Sources))
	return cfg, nil
}

func (a *app) runDemux(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolve(cmd)
	if err != nil {
		return err
	}

	sources, err := a.sources(args)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.Store != "" {
		st, err = store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	outcomes, err := batch.Run(cmd.Context(), sources, batch.Options{
		Workers: cfg.Workers,
		Demux:   cfg.DemuxOptions(a.logger),
		Store:   st,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	patterns := mapper.FromBatch(outcomes, cfg.MapperOptions())
	fmt.Fprint(a.stdout, render.Select(cfg.Format, cfg.ThemeName(), a.stdout).Render(patterns))
	if mapper.HasErrors(patterns) {
		a.code = exitFailed
	}
	return nil
}

// sources maps arguments to inputs; none or "-" reads stdin, which must not
// be empty.
func (a *app) sources(args []string) ([]batch.Source, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	out := make([]batch.Source, 0, len(args))
	stdinUsed := false
	for _, arg := range args {
		if arg != "-" {
			out = append(out, batch.FileSource(arg))
			continue
		}
		if stdinUsed {
			return nil, usagef("stdin given more than once")
		}
		stdinUsed = true
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if len(data) == 0 {
			return nil, usagef("no input on stdin")
		}
		out = append(out, batch.ReaderSource("stdin", bytes.NewReader(data)))
	}
	return out, nil
}

// --- ptrmux convert ---

func (a *app) convertCmd() *cobra.Command {
	var to, out string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert STDF to NDJSON events (or back)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := a.stdin
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			ev, err := batch.Ingest(src, a.logger)
			if err != nil {
				a.code = exitFailed
				fmt.Fprintf(a.stderr, "ptrmux convert: %v\n", err)
				return nil
			}
			return a.writeEvents(ev, to, out)
		},
	}
	cmd.Flags().StringVar(&to, "to", "ndjson", "Output encoding: ndjson, stdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// --- ptrmux synth ---

func (a *app) synthCmd() *cobra.Command {
	var (
		tests    []string
		multiple int
		coords   int
		width    int
		to, out  string
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic interleaved event stream",
		Long: `synth writes an event stream with a known base pattern and repetition
multiple. Demultiplexing the output reproduces every (test, coordinate)
value exactly, which makes it a fixture generator and a self-check.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			layout := synth.Layout{
				Tests:    tests,
				Multiple: multiple,
				Coords:   synth.Grid(coords, width),
			}
			ev, err := synth.Generate(layout)
			if err != nil {
				return usageError{err}
			}
			return a.writeEvents(ev, to, out)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&tests, "tests", []string{"VDD", "IDD", "FMAX"}, "Base pattern test names")
	f.IntVar(&multiple, "multiple", 2, "Sites tested per block")
	f.IntVar(&coords, "coords", 8, "Units tested; must be a multiple of --multiple")
	f.IntVar(&width, "width", 4, "Wafer map columns used for coordinates")
	f.StringVar(&to, "to", "ndjson", "Output encoding: ndjson, stdf")
	f.StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) writeEvents(ev demux.Events, to, out string) error {
	var w io.Writer = a.stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch to {
	case "ndjson", "json":
		return eventjson.Write(w, ev)
	case "stdf":
		if out == "" && render.IsTTY(a.stdout) {
			return usagef("refusing to write binary STDF to a terminal; use --out")
		}
		return stdf.WriteEvents(w, ev)
	default:
		return usagef("unknown encoding %q (expected ndjson, stdf)", to)
	}
}

// --- ptrmux runs ---

func (a *app) runsCmd() *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, or report one with --run",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.resolve(cmd)
			if err != nil {
				return err
			}
			if cfg.Store == "" {
				return usagef("runs needs --store or PTRMUX_STORE")
			}
			st, err := store.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			if runID == "" {
				runs, err := st.Runs(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintf(a.stdout, "%s  %s  %-11s  %d values  %s\n",
						r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Policy, r.Values, r.Source)
				}
				return nil
			}

			runs, err := st.Runs(cmd.Context())
			if err != nil {
				return err
			}
			var found *store.Run
			for i := range runs {
				if runs[i].ID == runID {
					found = &runs[i]
					break
				}
			}
			if found == nil {
				return usagef("no run %q in %s", runID, st.Path())
			}
			table, err := st.Table(cmd.Context(), runID)
			if err != nil {
				return err
			}
			res := demux.Result{Table: table, Events: found.Events, Coords: found.Coords}
			res.Stats.Halted = found.Halted
			patterns := mapper.FromResult(runID, res, cfg.MapperOptions())
			fmt.Fprint(a.stdout, render.Select(cfg.Format, cfg.ThemeName(), a.stdout).Render(patterns))
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID to report")
	return cmd
}

// --- ptrmux version ---

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "ptrmux %s (commit %s, built %s)\n",
				version.Version, version.CommitHash, version.BuildDate)
		},
	}
}
