package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Iron-Ham/qanotes/internal/config"
	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/Iron-Ham/qanotes/internal/logging"
	"github.com/Iron-Ham/qanotes/internal/qanotes"
	"github.com/Iron-Ham/qanotes/internal/releasedb"
	"github.com/Iron-Ham/qanotes/internal/tickets"
	"github.com/Iron-Ham/qanotes/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <db.json|db.yaml>...",
	Short: "Render release databases to HTML",
	Long: `Render each release database to a QA Notes HTML page.

By default the page is written next to its database with the extension
replaced by output.suffix (".html"). Several databases are rendered
concurrently.

Examples:
  qanotes render releases.json
  qanotes render -o qa.html releases.yaml
  qanotes render --out-dir site/ app.json widget.json
  qanotes render --watch releases.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

var (
	renderOutput      string
	renderOutDir      string
	renderMaxReleases int
	renderWatch       bool
	renderStdout      bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (single database only)")
	renderCmd.Flags().StringVar(&renderOutDir, "out-dir", "", "directory for rendered pages (overrides output.dir)")
	renderCmd.Flags().IntVar(&renderMaxReleases, "max-releases", 0, "number of releases to render (overrides render.max_releases)")
	renderCmd.Flags().BoolVar(&renderWatch, "watch", false, "re-render when a database changes")
	renderCmd.Flags().BoolVar(&renderStdout, "stdout", false, "write the page to stdout (single database only)")
}

// renderResult describes one rendered page.
type renderResult struct {
	Input    string
	Output   string // empty when written to stdout
	Releases int
	Bytes    int
}

// renderJob carries everything needed to render databases for one invocation.
type renderJob struct {
	cfg      *config.Config
	renderer *qanotes.Renderer
	logger   *logging.Logger
	output   string
	stdout   io.Writer         // non-nil writes pages here instead of files
	outputs  map[string]string // input path -> page path, from planOutputs
}

func runRender(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && (renderOutput != "" || renderStdout) {
		return fmt.Errorf("--output and --stdout take a single database, got %d", len(args))
	}
	if renderOutput != "" && renderStdout {
		return fmt.Errorf("--output and --stdout are mutually exclusive")
	}
	if renderStdout && renderWatch {
		return fmt.Errorf("--watch cannot be combined with --stdout")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if renderOutDir != "" {
		cfg.Output.Dir = renderOutDir
	}
	if renderMaxReleases < 0 {
		return fmt.Errorf("--max-releases must be positive, got %d", renderMaxReleases)
	}
	if renderMaxReleases > 0 {
		cfg.Render.MaxReleases = renderMaxReleases
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	job, err := newRenderJob(cfg, logger)
	if err != nil {
		return err
	}
	job.output = renderOutput
	if renderStdout {
		job.stdout = cmd.OutOrStdout()
	}
	if err := job.planOutputs(args); err != nil {
		return err
	}

	ctx := cmd.Context()
	if renderWatch {
		// Failures are reported, not fatal: fixing the database re-renders it.
		for _, input := range args {
			res, err := job.renderOne(input, logger)
			if err != nil {
				PrintError(cmd.ErrOrStderr(), err)
				continue
			}
			printSummary(cmd.OutOrStdout(), []renderResult{res})
		}
		return job.watch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
	}

	results, err := job.renderAll(ctx, args)
	if err != nil {
		return err
	}
	if job.stdout == nil {
		printSummary(cmd.OutOrStdout(), results)
	}
	return nil
}

// newLogger builds the logger described by cfg.Logging.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level, cfg.Logging.Rotation())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return logger, nil
}

func newRenderJob(cfg *config.Config, logger *logging.Logger) (*renderJob, error) {
	matcher, err := tickets.NewMatcher(cfg.Tickets.Rules, cfg.Tickets.Strict)
	if err != nil {
		return nil, err
	}
	renderer, err := qanotes.New(qanotes.Options{
		Tickets:       matcher,
		Logger:        logger,
		OmitTimestamp: !cfg.Render.Timestamp,
		MaxReleases:   cfg.Render.MaxReleases,
		Locale:        cfg.Render.Locale,
	})
	if err != nil {
		return nil, err
	}
	return &renderJob{cfg: cfg, renderer: renderer, logger: logger}, nil
}

// planOutputs fixes every page path before anything is rendered. Two inputs
// resolving to the same page, or a page that would replace its own input,
// are rejected.
func (j *renderJob) planOutputs(inputs []string) error {
	j.outputs = make(map[string]string, len(inputs))
	if j.stdout != nil {
		return nil
	}

	owner := make(map[string]string, len(inputs))
	for _, input := range inputs {
		out := j.output
		if out == "" {
			out = j.cfg.Output.OutputPath(input)
		}
		abs := absPath(out)
		if abs == absPath(input) {
			return qaerrors.NewValidationError("page would overwrite its database").
				WithField("output").
				WithValue(out)
		}
		if prev, ok := owner[abs]; ok {
			return qaerrors.NewValidationError(fmt.Sprintf("%s and %s both render to %s", prev, input, out)).
				WithField("output").
				WithCause(qaerrors.ErrInvalidInput)
		}
		owner[abs] = input
		j.outputs[input] = out
	}
	return nil
}

// renderAll renders inputs concurrently. Results are in input order; the
// first failure cancels databases not yet started.
func (j *renderJob) renderAll(ctx context.Context, inputs []string) ([]renderResult, error) {
	results := make([]renderResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := j.renderOne(input, j.logger)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// renderOne loads, renders and writes a single database to its planned page.
func (j *renderJob) renderOne(input string, logger *logging.Logger) (renderResult, error) {
	log := logger.WithDatabase(input)

	db, err := releasedb.Load(input)
	if err != nil {
		log.Error("failed to load database", "error", err.Error())
		return renderResult{}, err
	}

	page, err := j.renderer.Render(db)
	if err != nil {
		log.Error("failed to render database", "error", err.Error())
		return renderResult{}, qaerrors.Wrap(err, input)
	}

	res := renderResult{
		Input:    input,
		Releases: min(len(db.Releases), j.cfg.Render.MaxReleases),
		Bytes:    len(page),
	}

	if j.stdout != nil {
		if _, err := io.WriteString(j.stdout, page); err != nil {
			return renderResult{}, fmt.Errorf("failed to write page: %w", err)
		}
		return res, nil
	}

	res.Output = j.outputs[input]
	if err := writePage(res.Output, page); err != nil {
		return renderResult{}, err
	}

	log.Info("rendered database", "output", res.Output, "releases", res.Releases, "bytes", res.Bytes)
	return res, nil
}

// watch re-renders each database when it changes until interrupted.
// Render failures are reported and watching continues.
func (j *renderJob) watch(ctx context.Context, out, errOut io.Writer, inputs []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(inputs, watch.DefaultDebounce, j.logger)
	if err != nil {
		return err
	}

	// Watch reports absolute paths; render using the path the user gave.
	byAbs := make(map[string]string, len(inputs))
	for _, in := range inputs {
		byAbs[absPath(in)] = in
	}
	logger := j.logger.With("trigger", "watch")

	_, _ = fmt.Fprintln(out, "Watching for changes (Ctrl+C to stop)...")
	return w.Run(ctx, func(changed string) {
		input, ok := byAbs[changed]
		if !ok {
			return
		}
		res, err := j.renderOne(input, logger)
		if err != nil {
			PrintError(errOut, err)
			return
		}
		printSummary(out, []renderResult{res})
	})
}
