package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/smbenum/cmd/smbenum/cmdutil"
	"github.com/marmos91/smbenum/internal/cli/output"
	"github.com/marmos91/smbenum/internal/cli/prompt"
	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/internal/telemetry"
	"github.com/marmos91/smbenum/internal/watch"
	"github.com/marmos91/smbenum/pkg/auth"
	"github.com/marmos91/smbenum/pkg/browse"
	"github.com/marmos91/smbenum/pkg/config"
	"github.com/marmos91/smbenum/pkg/metrics"
	promsrv "github.com/marmos91/smbenum/pkg/metrics/prometheus"
	"github.com/marmos91/smbenum/pkg/results"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

var browseFlags struct {
	targetsFile   string
	watch         bool
	maxDepth      int
	concurrency   int
	showHidden    bool
	failOnPartial bool

	workgroup   string
	username    string
	password    string
	ntHash      string
	anonymous   bool
	askPassword bool

	rateLimit      float64
	requireSigning bool
	record         bool
}

var browseCmd = &cobra.Command{
	Use:   "browse [target...]",
	Short: "Enumerate shares and walk them",
	Long: `Browse one or more SMB locators and report the accessibility of every
entry found down to --max-depth levels below each target.

A target is smb://host[:port][/share[/path...]]. Targets may be given as
arguments, read from --targets-file (one per line, # comments), or both.
Each target gets its own connection; --concurrency bounds how many run at
once.

Exit status is 2 when any target failed critically (unreachable host,
denied session, failed listing), 1 when --fail-on-partial is set and some
entries could not be read, 0 otherwise.

Examples:
  # Enumerate the shares of a host anonymously
  smbenum browse smb://fs01 --max-depth 0

  # Walk one share two levels deep as a domain user
  smbenum browse smb://fs01/public -W CORP -U alice --ask-password

  # Pass-the-hash over a list of hosts, as JSON lines
  smbenum browse --targets-file hosts.txt -U admin --nt-hash 8846f7ea... -o json

  # Re-run whenever the targets file changes
  smbenum browse --targets-file hosts.txt --watch`,
	RunE: runBrowse,
}

func init() {
	f := browseCmd.Flags()
	f.StringVarP(&browseFlags.targetsFile, "targets-file", "f", "", "File with one target per line")
	f.BoolVar(&browseFlags.watch, "watch", false, "Re-run the targets file whenever it changes (requires --targets-file)")
	f.IntVarP(&browseFlags.maxDepth, "max-depth", "d", config.DefaultMaxDepth, "Levels to descend below each target (0 lists only the target)")
	f.IntVarP(&browseFlags.concurrency, "concurrency", "c", config.DefaultConcurrency, "Targets browsed at once")
	f.BoolVar(&browseFlags.showHidden, "show-hidden", false, "Show administrative shares (NAME$)")
	f.BoolVar(&browseFlags.failOnPartial, "fail-on-partial", false, "Exit 1 when some entries could not be read")

	f.StringVarP(&browseFlags.workgroup, "workgroup", "W", "", "Workgroup or domain")
	f.StringVarP(&browseFlags.username, "user", "U", "", "User name (empty for an anonymous session)")
	f.StringVar(&browseFlags.password, "password", "", "Password (prefer --ask-password or SMBENUM_CREDENTIALS_PASSWORD)")
	f.StringVar(&browseFlags.ntHash, "nt-hash", "", "Hex NT hash used instead of the password")
	f.BoolVarP(&browseFlags.anonymous, "anonymous", "N", false, "Ignore configured credentials and use a null session")
	f.BoolVar(&browseFlags.askPassword, "ask-password", false, "Prompt for the password")

	f.Float64Var(&browseFlags.rateLimit, "rate-limit", 0, "Protocol calls per second per target (0 = unlimited)")
	f.BoolVar(&browseFlags.requireSigning, "require-signing", false, "Refuse sessions the server will not sign")
	f.BoolVar(&browseFlags.record, "record", false, "Record runs in the history database")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.Setup()
	if err != nil {
		return err
	}
	applyBrowseFlags(cmd, cfg)

	if browseFlags.watch && browseFlags.targetsFile == "" {
		return fmt.Errorf("--watch requires --targets-file")
	}

	targets, err := collectTargets(args, browseFlags.targetsFile)
	if err != nil {
		return err
	}
	if len(targets) == 0 && !browseFlags.watch {
		return fmt.Errorf("no targets: pass locators as arguments or use --targets-file")
	}

	creds, err := resolveCredentials(cmd, cfg)
	if err != nil {
		return err
	}
	defer creds.Wipe()

	p, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.Telemetry.TelemetryConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if telemetry.IsEnabled() {
		logger.Debug("Tracing enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	defer func() {
		// ctx may be cancelled already; spans still need flushing.
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	bm := startMetrics(ctx, cfg)

	recorder, closeStore, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Debug("Configuration loaded", "source", cmdutil.ConfigSource())
	r := &runner{
		manager:     smbclient.NewManager(smbclient.NewSMB2Dialer(), auth.NewStatic(creds), cfg.Browse.Options(), bm),
		reporter:    output.NewReporter(p, cfg.Browse.ShowHidden),
		recorder:    recorder,
		metrics:     bm,
		maxDepth:    cfg.Browse.MaxDepth,
		concurrency: cfg.Browse.Concurrency,
	}

	sum := r.run(ctx, targets)
	if !browseFlags.watch {
		return sum.err(browseFlags.failOnPartial)
	}

	w := watch.New(browseFlags.targetsFile, func(ctx context.Context) error {
		targets, err := watch.ReadTargets(browseFlags.targetsFile)
		if err != nil {
			return err
		}
		r.run(ctx, targets)
		return nil
	})
	return w.Run(ctx)
}

// applyBrowseFlags lets explicitly set flags override the configuration.
func applyBrowseFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("max-depth") {
		cfg.Browse.MaxDepth = browseFlags.maxDepth
	}
	if f.Changed("concurrency") {
		cfg.Browse.Concurrency = browseFlags.concurrency
	}
	if f.Changed("show-hidden") {
		cfg.Browse.ShowHidden = browseFlags.showHidden
	}
	if f.Changed("rate-limit") {
		cfg.Browse.RateLimit = browseFlags.rateLimit
	}
	if f.Changed("require-signing") {
		cfg.Browse.RequireSigning = browseFlags.requireSigning
	}
	if f.Changed("record") {
		cfg.Database.Enabled = browseFlags.record
	}
	if cfg.Browse.Concurrency < 1 {
		cfg.Browse.Concurrency = 1
	}
	if cfg.Browse.MaxDepth < 0 {
		cfg.Browse.MaxDepth = 0
	}
}

// collectTargets merges argument targets with the targets file, keeping the
// first occurrence of each.
func collectTargets(args []string, file string) ([]string, error) {
	targets := make([]string, 0, len(args))
	seen := make(map[string]struct{})
	add := func(list []string) {
		for _, t := range list {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			targets = append(targets, t)
		}
	}

	add(args)
	if file != "" {
		fromFile, err := watch.ReadTargets(file)
		if err != nil {
			return nil, err
		}
		add(fromFile)
	}
	return targets, nil
}

// resolveCredentials builds the identity presented to every host from the
// configuration, the credential flags and, when asked, an interactive prompt.
func resolveCredentials(cmd *cobra.Command, cfg *config.Config) (auth.Credentials, error) {
	cc := cfg.Credentials
	f := cmd.Flags()
	if f.Changed("workgroup") {
		cc.Workgroup = browseFlags.workgroup
	}
	if f.Changed("user") {
		cc.Username = browseFlags.username
	}
	if f.Changed("password") {
		cc.Password = browseFlags.password
	}
	if f.Changed("nt-hash") {
		cc.NTHash = browseFlags.ntHash
	}
	if browseFlags.anonymous {
		cc = config.CredentialsConfig{}
	}

	creds, err := cc.AuthCredentials()
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("invalid credentials: %w", err)
	}
	if !browseFlags.askPassword || browseFlags.anonymous {
		return creds, nil
	}

	if creds.Username == "" {
		return prompt.Credentials(creds)
	}
	password, err := prompt.PasswordFor(creds.Identity(), "")
	if err != nil {
		return auth.Credentials{}, err
	}
	creds.Password = password
	creds.Hash = nil
	return creds, nil
}

// startMetrics starts the Prometheus endpoint when metrics are enabled and
// returns the recorder the browse layers report to (nil when disabled).
func startMetrics(ctx context.Context, cfg *config.Config) metrics.BrowseMetrics {
	if !cfg.Metrics.Enabled {
		logger.Debug("Metrics collection disabled")
		return nil
	}

	reg := metrics.InitRegistry()
	srv := promsrv.NewServer(cfg.Metrics.Port, reg)
	go func() {
		if err := srv.Start(ctx); err != nil {
			logger.Error("Metrics server error", logger.Err(err))
		}
	}()
	return metrics.NewBrowseMetrics()
}

// openRecorder opens the run history when it is enabled. The returned close
// function is always safe to call.
func openRecorder(cfg *config.Config) (*results.Recorder, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}

	store, err := results.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return results.NewRecorder(store), func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close run history", logger.Err(err))
		}
	}, nil
}

// runner browses a set of targets with bounded concurrency.
type runner struct {
	manager     *smbclient.Manager
	reporter    *output.Reporter
	recorder    *results.Recorder
	metrics     metrics.BrowseMetrics
	maxDepth    int
	concurrency int
}

// summary counts target outcomes of one run over a target set.
type summary struct {
	total    int
	partial  int
	critical int
}

// err maps the summary onto the process exit status.
func (s summary) err(failOnPartial bool) error {
	switch {
	case s.critical > 0:
		return &cmdutil.ExitError{Code: 2, Err: fmt.Errorf("%d of %d targets failed", s.critical, s.total)}
	case s.partial > 0 && failOnPartial:
		return &cmdutil.ExitError{Code: 1, Err: fmt.Errorf("%d of %d targets were only partially readable", s.partial, s.total)}
	}
	return nil
}

func (r *runner) run(ctx context.Context, targets []string) summary {
	start := time.Now()
	outcomes := make([]browse.HostResult, len(targets))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			outcomes[i] = r.target(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	sum := summary{total: len(targets)}
	for _, res := range outcomes {
		switch {
		case res.IsCritical():
			sum.critical++
		case res.IsPartial():
			sum.partial++
		}
	}

	logger.Info("Browse finished", "targets", sum.total, "partial", sum.partial,
		"critical", sum.critical, logger.DurationMs(time.Since(start)))
	return sum
}

func (r *runner) target(ctx context.Context, target string) browse.HostResult {
	runID := uuid.NewString()
	ctx = browse.WithRunID(ctx, runID)

	report := r.reporter.Run(runID)
	observers := browse.Observers{report}
	if r.recorder != nil {
		observers = append(observers, r.recorder)
	}

	res := browse.NewBrowser(r.manager, observers, r.metrics).Target(ctx, target, r.maxDepth)

	if err := report.Finish(res); err != nil {
		logger.Warn("Failed to print report", logger.RunID(runID), logger.Err(err))
	}
	if r.recorder != nil {
		// Record interrupted runs too. Failures are logged by Finish.
		_ = r.recorder.Finish(context.WithoutCancel(ctx), res, r.maxDepth)
	}
	return res
}
