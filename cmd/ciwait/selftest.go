package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ciwait/ciwait/internal/estimate"
	"github.com/ciwait/ciwait/internal/gitcfg"
	"github.com/ciwait/ciwait/internal/notify"
)

// selftestCmd exercises every notification path without touching CI, so
// a user can check what a finishing session will look and sound like.
var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Exercise the progress bar and notification paths",
	Long: `Render a progress bar sweep and fire the bell, sound, desktop
notification and hook paths as a finished session would, without
querying CI. Disabled channels (try-* settings) stay silent here too.`,
	Args: cobra.NoArgs,
	RunE: runSelftest,
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}

func runSelftest(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	cfg, err := loadConfig(cmd, gitcfg.New(configSection))
	if err != nil {
		return err
	}

	if cfg.TryProgressBar {
		for pct := 0; pct <= 100; pct += 5 {
			fmt.Fprintf(cmd.OutOrStdout(), "\r%s", estimate.Render(pct, cfg.ProgressBarWidth))
			time.Sleep(40 * time.Millisecond)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	dispatcher := notify.NewDispatcher(notify.Options{
		Bell:        cfg.TryEmitBell,
		Sound:       cfg.TrySoundPlayer,
		Desktop:     cfg.TryDesktopNotify,
		Hooks:       cfg.TryHooks,
		SoundPlayer: cfg.SoundPlayer,
	}, os.Stdout, logger)

	dispatcher.Dispatch(notify.Intent{
		Event:   notify.EventTerminal,
		Outcome: "success",
		Title:   "ciwait: selftest",
		Body:    "this is what a finished session looks like",
		Hook:    cfg.SuccessHook,
	})
	dispatcher.Flush()

	cmd.Println("selftest complete")
	return nil
}
