package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ciwait/ciwait"
	"github.com/ciwait/ciwait/config"
	"github.com/ciwait/ciwait/internal/gh"
	"github.com/ciwait/ciwait/internal/gitcfg"
	"github.com/ciwait/ciwait/internal/notify"
)

// configSection is the git config namespace for settings and history.
const configSection = "ci-wait"

// loadConfig resolves the session configuration: defaults, then the
// optional YAML file, then the repository's git config overrides, then
// the safety clamps.
func loadConfig(cmd *cobra.Command, store *gitcfg.Store) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		cfg, err = cfg.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
	}

	return cfg.FromStore(store).Normalize(), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	store := gitcfg.New(configSection)
	cfg, err := loadConfig(cmd, store)
	if err != nil {
		return err
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := gh.NewRunner(logger)
	if err := runner.Preflight(ctx); err != nil {
		return err
	}

	explicit := ""
	if len(args) == 1 {
		explicit = args[0]
	}
	target, err := runner.ResolveTarget(ctx, explicit)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(notify.Options{
		Bell:        cfg.TryEmitBell,
		Sound:       cfg.TrySoundPlayer,
		Desktop:     cfg.TryDesktopNotify,
		Hooks:       cfg.TryHooks,
		SoundPlayer: cfg.SoundPlayer,
	}, os.Stdout, logger)

	w, err := ciwait.New(target,
		ciwait.WithConfig(cfg),
		ciwait.WithProvider(runner),
		ciwait.WithStore(store),
		ciwait.WithNotifier(&dispatcherNotifier{d: dispatcher, cfg: cfg}),
		ciwait.WithLogger(logger),
		ciwait.WithInteractive(isatty.IsTerminal(os.Stdout.Fd())),
	)
	if err != nil {
		return err
	}

	logger.Info("watching", "target", target, slog.Int("timeout_seconds", cfg.TimeoutSeconds))

	if _, err := w.Start(ctx); err != nil {
		return err
	}

	// the closing pass-through query decides the exit status
	listing, code := runner.FinalStatus(ctx, target)
	fmt.Print(listing)
	if code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

// dispatcherNotifier adapts the notify dispatcher to the watcher's
// Notifier interface, attaching the configured hook per outcome category.
type dispatcherNotifier struct {
	d   *notify.Dispatcher
	cfg config.Config
}

func (n *dispatcherNotifier) Increment() {
	n.d.Dispatch(notify.Intent{Event: notify.EventIncrement})
}

func (n *dispatcherNotifier) Terminal(outcome ciwait.Outcome, target string, snap ciwait.Snapshot) {
	category := outcome.Category()

	title := "ciwait: checks passed"
	hook := n.cfg.SuccessHook
	if category == "failure" {
		title = "ciwait: checks failed"
		hook = n.cfg.FailureHook
	}

	n.d.Dispatch(notify.Intent{
		Event:   notify.EventTerminal,
		Outcome: category,
		Title:   title,
		Body: fmt.Sprintf("%s: %d passed, %d failed, %d pending of %d",
			target, snap.Passed, snap.Failed, snap.Pending, snap.Total),
		Hook: hook,
	})
}
