package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mlreg/internal/config"
	"mlreg/internal/logging"
	"mlreg/internal/registry"
	"mlreg/internal/submission"
	"mlreg/internal/telemetry"
	"mlreg/internal/ui"
	"mlreg/internal/ui/textutil"
)

const shutdownTimeout = 5 * time.Second

// env is the state shared by the root command and its subcommands. wrap
// fills it with setup before each RunE and releases it with teardown.
type env struct {
	configPath string
	flags      config.Config

	cfg     config.Config
	log     zerolog.Logger
	logFile *os.File
	tp      *telemetry.Provider
	client  *registry.Client

	// now stamps manual registrations.
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	e := &env{log: zerolog.Nop(), now: time.Now}

	root := &cobra.Command{
		Use:   "mlreg",
		Short: "Terminal console for an ML model registry",
		Long: `mlreg browses and populates an ML model registry over its REST API.

Without a subcommand it opens the interactive console with three views:
the dashboard summary, the registration form and the models table.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: e.wrap(func(cmd *cobra.Command) error {
			return e.runTUI(cmd.Context())
		}),
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "config file (.yaml, .json or .toml); defaults to $"+config.EnvConfigPath)
	pf.StringVar(&e.flags.BaseURL, "base-url", "", "registry address (default "+config.DefaultBaseURL+")")
	pf.IntVar(&e.flags.PageSize, "page-size", 0, "rows per page in the models table")
	pf.StringVar(&e.flags.LogFile, "log-file", "", "console log file (default <user cache dir>/mlreg/"+logging.DefaultFileName+")")
	pf.StringVar(&e.flags.LogLevel, "log-level", "", "debug|info|warn|error|off")

	root.AddCommand(summaryCmd(e), listCmd(e), registerCmd(e), versionCmd())
	return root
}

// setup resolves configuration, opens the log sink and builds the registry
// client. The console logs to a file because it owns the terminal;
// subcommands log to stderr.
func (e *env) setup(cmd *cobra.Command, console bool) error {
	cfg, err := config.Resolve(e.configPath, e.flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	e.cfg = cfg

	var w io.Writer = cmd.ErrOrStderr()
	if console {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		e.logFile = f
		w = f
	}
	log, err := logging.New(w, cfg.LogLevel)
	if err != nil {
		e.teardown(cmd.Context())
		return err
	}
	e.log = log.With().Str("cmd", cmd.Name()).Logger()

	tp, err := telemetry.Setup(cmd.Context())
	if err != nil {
		e.log.Warn().Err(err).Msg("tracing disabled")
	}
	e.tp = tp

	client, err := registry.New(cfg.BaseURL,
		registry.WithTracer(e.tp.Tracer(registry.TracerName)),
		registry.WithLogger(e.log),
	)
	if err != nil {
		e.teardown(cmd.Context())
		return err
	}
	e.client = client
	e.log.Debug().Str("base_url", cfg.BaseURL).Int("page_size", cfg.PageSize).Msg("configured")
	return nil
}

// teardown flushes spans and closes the log file. Safe to call twice.
func (e *env) teardown(ctx context.Context) {
	if e.tp != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		if err := e.tp.Shutdown(ctx); err != nil {
			e.log.Warn().Err(err).Msg("flush traces")
		}
		cancel()
		e.tp = nil
	}
	if e.logFile != nil {
		e.logFile.Close()
		e.logFile = nil
		e.log = zerolog.Nop()
	}
}

// wrap sets the env up for cmd, runs fn and always tears the env down.
// Setup happens here rather than in a pre-run hook so that flag validation
// failures never leave a log file or exporter open.
func (e *env) wrap(fn func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := e.setup(cmd, cmd == cmd.Root()); err != nil {
			return err
		}
		defer e.teardown(cmd.Context())
		return fn(cmd)
	}
}

func (e *env) runTUI(ctx context.Context) error {
	m := ui.NewAppModel(e.client, ui.Options{
		BaseURL:  e.cfg.BaseURL,
		PageSize: e.cfg.PageSize,
		Logger:   &e.log,
	})
	e.log.Info().Str("base_url", e.cfg.BaseURL).Msg("console started")
	p := tea.NewProgram(m.AsTeaModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run console: %w", err)
	}
	e.log.Info().Msg("console stopped")
	return nil
}

func summaryCmd(e *env) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: e.wrap(func(cmd *cobra.Command) error {
			s, err := e.client.Summary(cmd.Context())
			if err != nil {
				e.log.Error().Err(err).Str("endpoint", registry.PathSummary).Msg("load summary")
				return fmt.Errorf("load summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSummary(s, width))
			return nil
		}),
	}
	cmd.Flags().IntVar(&width, "width", 0, "wrap cards to this many columns (0 prints three per row)")
	return cmd
}

func listCmd(e *env) *cobra.Command {
	var (
		algorithm string
		sortBy    string
		desc      bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the registered models as a table",
		Example: "  mlreg list --algorithm XGBoost --sort modified --desc",
		Args:    cobra.NoArgs,
		RunE: e.wrap(func(cmd *cobra.Command) error {
			field, err := ui.ParseSortField(sortBy)
			if err != nil {
				return err
			}
			if desc && field == ui.SortNone {
				return errors.New("--desc needs --sort")
			}

			models, err := e.client.ListModels(cmd.Context())
			if err != nil {
				e.log.Error().Err(err).Str("endpoint", registry.PathModels).Msg("load models")
				return fmt.Errorf("load models: %w", err)
			}
			visible := ui.SortModels(ui.FilterModels(models, algorithm), ui.ListSort{Field: field, Desc: desc})

			out := cmd.OutOrStdout()
			if len(visible) == 0 {
				fmt.Fprintln(out, "No models")
				return nil
			}
			fmt.Fprintln(out, ui.RenderModelsTable(visible, -1))
			fmt.Fprintf(out, "%d of %d models\n", len(visible), len(models))
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&algorithm, "algorithm", "", "only models using this algorithm")
	f.StringVar(&sortBy, "sort", "", "sort by name or modified")
	f.BoolVar(&desc, "desc", false, "reverse the sort")
	return cmd
}

// manualFlags are the register flags that conflict with --file.
var manualFlags = []string{"name", "description", "algorithm", "function", "model-type", "target-level", "modeler"}

func registerCmd(e *env) *cobra.Command {
	var (
		file string
		vals submission.FormValues
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a model from a JSON descriptor or from flags",
		Example: `  mlreg register --file churn.json
  mlreg register --name churn --description "predicts churn" --algorithm XGBoost \
    --function classification --model-type python --target-level nominal --modeler ana`,
		Args: cobra.NoArgs,
		RunE: e.wrap(func(cmd *cobra.Command) error {
			sub, err := buildSubmission(file, vals, e.now())
			if err != nil {
				return err
			}
			m, err := submission.Submit(cmd.Context(), e.client, sub)
			if err != nil {
				e.log.Error().Err(err).Msg("registration failed")
				return errors.New(submission.FailureMessage(err))
			}
			id := ""
			if m != nil {
				id = m.ID
			}
			e.log.Info().Str("id", id).Msg("model registered")
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", submission.SuccessMessage(sub), textutil.OrDash(id))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&file, "file", "", "upload this .json model descriptor")
	f.StringVar(&vals.Name, "name", "", "model name")
	f.StringVar(&vals.Description, "description", "", "model description")
	f.StringVar(&vals.Algorithm, "algorithm", "", "one of "+strings.Join(registry.ChoiceValues(registry.Algorithms), ", "))
	f.StringVar(&vals.Function, "function", "", "one of "+strings.Join(registry.ChoiceValues(registry.Functions), ", "))
	f.StringVar(&vals.ModelType, "model-type", "", "one of "+strings.Join(registry.ChoiceValues(registry.ModelTypes), ", "))
	f.StringVar(&vals.TargetLevel, "target-level", "", "one of "+strings.Join(registry.ChoiceValues(registry.TargetLevels), ", "))
	f.StringVar(&vals.Modeler, "modeler", "", "who built the model")
	for _, name := range manualFlags {
		cmd.MarkFlagsMutuallyExclusive("file", name)
	}
	return cmd
}

// buildSubmission picks file mode when file is set, otherwise validates
// vals and synthesizes the manual payload.
func buildSubmission(file string, vals submission.FormValues, now time.Time) (submission.Submission, error) {
	if file != "" {
		a, err := submission.Attach(file)
		if err != nil {
			if errors.Is(err, submission.ErrNotJSON) {
				return nil, fmt.Errorf("%s: %w", submission.MsgNotJSON, err)
			}
			return nil, err
		}
		return submission.FileSubmission{Attachment: a}, nil
	}
	if err := vals.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fields %s: %w", strings.Join(submission.InvalidFields(err), ", "), err)
	}
	return submission.ManualSubmission{Model: submission.BuildPayload(vals, now)}, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mlreg %s (%s)\n", version, commit)
		},
	}
}
