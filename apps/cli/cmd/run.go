package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/config"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/bookcheck/packages/export/metrics"
	"github.com/abdul-hamid-achik/bookcheck/packages/fake"
	"github.com/abdul-hamid-achik/bookcheck/packages/notify"
	"github.com/abdul-hamid-achik/bookcheck/packages/output"
	"github.com/abdul-hamid-achik/bookcheck/packages/stress"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	runFlags          chainFlags
	timeoutFlag       int
	seedFlag          int64
	outputFlag        string
	outputFileFlag    string
	verboseFlag       bool
	repeatFlag        int
	rateFlag          float64
	thresholdFlag     string
	stopOnFailureFlag bool
	proxyFlag         string
	insecureFlag      bool
	watchFlag         bool

	metricsFlag      string
	metricsFileFlag  string
	slackWebhookFlag string
	slackChannelFlag string
	notifyOnFlag     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the order lifecycle against the API",
	Long: `Run registers a fresh API client and drives one order through its
lifecycle. The run stops at the first failing step; later steps are
reported as not run.

Settings come from, in increasing precedence: built-in defaults, the
config file (bookcheck.yaml or bookcheck.json), the .env file,
BOOKCHECK_* environment variables and flags.

Examples:
  bookcheck run
  bookcheck run --base-url http://localhost:3000
  bookcheck run --output junit --output-file report.xml
  bookcheck run --repeat 50 --rate 5 --threshold "p95<500ms,failures<1%"
  bookcheck run --watch`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

func init() {
	fs := runCmd.Flags()
	runFlags.register(fs)
	fs.IntVar(&timeoutFlag, "timeout", 0, "Request timeout in milliseconds (default 30000)")
	fs.Int64Var(&seedFlag, "seed", 0, "Seed for generated identities; 0 picks one and logs it")
	fs.StringVarP(&outputFlag, "output", "o", "", "Output format: console, json, junit, tap")
	fs.StringVar(&outputFileFlag, "output-file", "", "Write results to a file instead of stdout")
	fs.BoolVarP(&verboseFlag, "verbose", "v", false, "Show status codes, captured values and attachments")
	fs.IntVar(&repeatFlag, "repeat", 0, "Run the lifecycle N times and report latency percentiles")
	fs.Float64Var(&rateFlag, "rate", 0, "Maximum lifecycle starts per second when repeating")
	fs.StringVar(&thresholdFlag, "threshold", "", "Pass/fail thresholds for repeated runs (e.g. \"p95<500ms,failures<1%\")")
	fs.BoolVar(&stopOnFailureFlag, "stop-on-failure", false, "Stop repeating at the first failed run")
	fs.StringVar(&proxyFlag, "proxy", getEnvString("HTTP_PROXY", ""), "Proxy URL for HTTP requests (env: HTTP_PROXY)")
	fs.BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	fs.BoolVarP(&watchFlag, "watch", "w", false, "Re-run when the config or .env file changes")

	fs.StringVar(&metricsFlag, "metrics", getEnvString("BOOKCHECK_METRICS", ""), "Metrics export format: prometheus, json (env: BOOKCHECK_METRICS)")
	fs.StringVar(&metricsFileFlag, "metrics-file", getEnvString("BOOKCHECK_METRICS_FILE", ""), "Output file for metrics, stderr when empty (env: BOOKCHECK_METRICS_FILE)")
	fs.StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("BOOKCHECK_SLACK_WEBHOOK", ""), "Slack webhook URL for run notifications (env: BOOKCHECK_SLACK_WEBHOOK)")
	fs.StringVar(&slackChannelFlag, "slack-channel", getEnvString("BOOKCHECK_SLACK_CHANNEL", ""), "Slack channel override (env: BOOKCHECK_SLACK_CHANNEL)")
	fs.StringVar(&notifyOnFlag, "notify-on", getEnvString("BOOKCHECK_NOTIFY_ON", "failure"), "When to notify: always, failure, success, recovery (env: BOOKCHECK_NOTIFY_ON)")
}

// reporting holds the optional sinks a run feeds besides the formatter.
type reporting struct {
	notifier *notify.Manager
	baseURL  string
}

func newReporting(baseURL string) (*reporting, error) {
	rep := &reporting{baseURL: baseURL}
	if metricsFlag != "" {
		if _, err := metrics.New(metricsFlag, io.Discard); err != nil {
			return nil, err
		}
	}
	if slackWebhookFlag != "" {
		on, err := notify.ParseNotifyOn(notifyOnFlag)
		if err != nil {
			return nil, err
		}
		var opts []notify.SlackOption
		if slackChannelFlag != "" {
			opts = append(opts, notify.WithSlackChannel(slackChannelFlag))
		}
		rep.notifier = notify.NewManager(on, notify.NewSlackNotifier(slackWebhookFlag, opts...))
	}
	return rep, nil
}

func (rep *reporting) notify(result *runner.RunResult) {
	if rep.notifier == nil {
		return
	}
	if err := rep.notifier.Notify(notify.Summarize(result, rep.baseURL)); err != nil {
		slog.Warn("failed to send notification", "error", err)
	}
}

func (rep *reporting) export(cmd *cobra.Command, snapshot *metrics.Snapshot) error {
	if metricsFlag == "" {
		return nil
	}
	w := cmd.ErrOrStderr()
	if metricsFileFlag != "" {
		f, err := os.Create(metricsFileFlag)
		if err != nil {
			return fmt.Errorf("failed to create metrics file: %w", err)
		}
		defer f.Close()
		w = f
	}
	exp, err := metrics.New(metricsFlag, w)
	if err != nil {
		return err
	}
	return exp.Export(snapshot)
}

func runFlagOverrides(cmd *cobra.Command) func(*config.Config) {
	fs := cmd.Flags()
	return func(o *config.Config) {
		if fs.Changed("timeout") {
			o.Timeout = timeoutFlag
		}
		if fs.Changed("seed") {
			o.Seed = seedFlag
		}
		if fs.Changed("output") {
			o.Output = outputFlag
		}
		if fs.Changed("output-file") {
			o.OutputFile = outputFileFlag
		}
		if fs.Changed("verbose") {
			o.Verbose = config.BoolPtr(verboseFlag)
		}
		if fs.Changed("repeat") {
			o.Repeat = repeatFlag
		}
		if fs.Changed("rate") {
			o.Rate = rateFlag
		}
		if fs.Changed("threshold") {
			o.Thresholds = thresholdFlag
		}
		if fs.Changed("stop-on-failure") {
			o.StopOnFailure = config.BoolPtr(stopOnFailureFlag)
		}
		if proxyFlag != "" {
			o.Proxy = proxyFlag
		}
		if fs.Changed("insecure") {
			o.ValidateSSL = config.BoolPtr(!insecureFlag)
		}
		if fs.Changed("no-color") || noColorFlag {
			o.NoColor = config.BoolPtr(noColorFlag)
		}
		if fs.Changed("log-level") {
			o.LogLevel = logLevelFlag
		}
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := runFlags.resolveConfig(cmd.Flags(), runFlagOverrides(cmd))
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	rep, err := newReporting(cfg.BaseURL)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	code, err := execute(ctx, cmd, cfg, rep)
	if !watchFlag {
		if err != nil {
			return err
		}
		if code != ExitSuccess {
			return &exitError{code: code}
		}
		return nil
	}
	if err != nil {
		slog.Error("run failed", "error", err)
	}
	return watch(ctx, cmd, cfg, rep)
}

// execute performs one single or repeated run and returns the exit code it
// maps to. The error is set only when nothing could run.
func execute(ctx context.Context, cmd *cobra.Command, cfg *config.Config, rep *reporting) (int, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.GetNoColor())
	if err != nil {
		return ExitConfigError, &exitError{code: ExitConfigError, err: err}
	}
	slog.SetDefault(logger)

	gen := fake.New(cfg.Seed)
	logger.Info("identity seed", "seed", gen.Seed())

	client := newClient(cfg)
	build := chainBuilder(cfg, client, gen)
	r := newRunner("order lifecycle", logger)

	w := cmd.OutOrStdout()
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return ExitConfigError, &exitError{code: ExitConfigError, err: fmt.Errorf("failed to create output file: %w", err)}
		}
		defer f.Close()
		w = f
	}

	rep.baseURL = cfg.BaseURL
	if cfg.Repeat > 1 {
		return executeRepeated(ctx, cmd, w, cfg, r, build, rep, logger)
	}
	return executeOnce(ctx, cmd, w, cfg, r, build, rep)
}

func executeOnce(ctx context.Context, cmd *cobra.Command, w io.Writer, cfg *config.Config, r *runner.Runner, build func() []*runner.Step, rep *reporting) (int, error) {
	formatter, err := output.New(cfg.Output, w, cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return ExitConfigError, &exitError{code: ExitConfigError, err: err}
	}
	formatter.FormatHeader(version)

	result, err := r.Run(ctx, build())
	if err != nil {
		formatter.FormatError(err)
		return ExitConfigError, &exitError{code: ExitConfigError, err: err}
	}
	formatter.FormatResult(result)

	if f, ok := formatter.(output.Flushable); ok {
		if err := f.Flush(result.Duration); err != nil {
			return ExitConfigError, &exitError{code: ExitConfigError, err: fmt.Errorf("failed to write results: %w", err)}
		}
	}

	rep.notify(result)
	if err := rep.export(cmd, metrics.FromResult(result)); err != nil {
		slog.Warn("failed to export metrics", "error", err)
	}
	return exitCodeFor(result.Failure), nil
}

func executeRepeated(ctx context.Context, cmd *cobra.Command, w io.Writer, cfg *config.Config, r *runner.Runner, build func() []*runner.Step, rep *reporting, logger *slog.Logger) (int, error) {
	thresholds, err := stress.ParseThresholds(cfg.Thresholds)
	if err != nil {
		return ExitConfigError, &exitError{code: ExitConfigError, err: err}
	}

	s, err := stress.New(&stress.Config{
		Iterations:    cfg.Repeat,
		Rate:          cfg.Rate,
		StopOnFailure: cfg.GetStopOnFailure(),
		Thresholds:    thresholds,
	}, r, build, stress.WithLogger(logger))
	if err != nil {
		return ExitConfigError, &exitError{code: ExitConfigError, err: err}
	}

	report, err := s.Run(ctx)
	if err != nil {
		return ExitConfigError, &exitError{code: ExitConfigError, err: err}
	}
	stress.WriteReport(w, report)
	if err := rep.export(cmd, metrics.FromReport(report)); err != nil {
		slog.Warn("failed to export metrics", "error", err)
	}

	if report.OK() {
		return ExitSuccess, nil
	}
	if report.Failed > 0 && report.Failed == report.Failures[runner.FailureTransport] {
		return ExitNetworkError, nil
	}
	return ExitTestFailure, nil
}

func exitCodeFor(f *runner.Failure) int {
	switch {
	case f == nil:
		return ExitSuccess
	case f.Kind == runner.FailureTransport:
		return ExitNetworkError
	default:
		return ExitTestFailure
	}
}

// watch re-resolves the configuration and re-runs whenever the config or
// .env file is written, until ctx ends.
func watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, rep *reporting) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	files := watchedFiles(cfg)
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			slog.Warn("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		watchedDirs[dir] = true
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to exit)")

	rerun := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isWatched(event.Name, files) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nChange detected, re-running...")
			next, err := runFlags.resolveConfig(cmd.Flags(), runFlagOverrides(cmd))
			if err != nil {
				slog.Error("invalid configuration", "error", err)
				continue
			}
			if _, err := execute(ctx, cmd, next, rep); err != nil {
				slog.Error("run failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// watchedFiles lists the files whose changes trigger a re-run.
func watchedFiles(cfg *config.Config) []string {
	var files []string
	configPath := runFlags.configPath
	if configPath == "" {
		configPath = config.FindConfigFile(".")
	}
	if configPath == "" {
		// Watch for a config file being created.
		files = append(files, config.ConfigFilenames...)
	} else {
		files = append(files, configPath)
	}
	if cfg.EnvFile != "" {
		files = append(files, cfg.EnvFile)
	} else {
		files = append(files, ".env")
	}
	return files
}

func isWatched(name string, files []string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, f := range files {
		if fa, err := filepath.Abs(f); err == nil && fa == abs {
			return true
		}
	}
	return false
}
