// Package notify performs the fire-and-forget side effects of a watch
// session: terminal bell, sound playback, desktop notification and user
// hooks. Every intent is dispatched on its own goroutine and its outcome
// is discarded; a missing player binary, a failing hook or a panic in
// any of them must never affect the poll loop or the exit status.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// Event distinguishes the two intent classes.
type Event int

const (
	// EventIncrement signals that one more check just passed.
	EventIncrement Event = iota

	// EventTerminal signals the end of a session.
	EventTerminal
)

// Intent is one queued notification: what happened and how to announce it.
type Intent struct {
	Event   Event
	Outcome string // "success" or "failure"; terminal intents only
	Title   string
	Body    string
	Hook    string // user shell command; terminal intents only
}

// Options selects which side-effect channels a [Dispatcher] attempts.
type Options struct {
	Bell        bool
	Sound       bool
	Desktop     bool
	Hooks       bool
	SoundPlayer string // override for the auto-detected player command
}

// Dispatcher executes notification intents asynchronously.
//
// Dispatch never blocks and never reports failure. [Dispatcher.Flush]
// exists for tests and the selftest command, which need the side effects
// to have happened before the process exits.
type Dispatcher struct {
	opts     Options
	out      io.Writer
	logger   *slog.Logger
	runCmd   func(name string, args ...string) error
	lookPath func(file string) (string, error)
	wg       sync.WaitGroup
}

// NewDispatcher creates a [Dispatcher]. The bell is written to out
// (typically os.Stdout); a nil out or logger falls back to os.Stdout and
// [slog.Default].
func NewDispatcher(opts Options, out io.Writer, logger *slog.Logger) *Dispatcher {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		opts:     opts,
		out:      out,
		logger:   logger,
		runCmd:   runCommand,
		lookPath: exec.LookPath,
	}
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Dispatch hands an intent to a background goroutine and returns
// immediately.
func (d *Dispatcher) Dispatch(intent Intent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.perform(intent)
	}()
}

// Flush blocks until every dispatched intent has been attempted. The poll
// loop never calls this; it is for tests and the selftest command.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

// perform executes one intent with panic recovery. Failures are logged at
// debug level and otherwise swallowed.
func (d *Dispatcher) perform(intent Intent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	d.bell()

	if intent.Event == EventIncrement {
		return
	}

	d.sound(intent.Outcome)
	d.desktop(intent.Title, intent.Body)
	d.hook(intent)
}

func (d *Dispatcher) bell() {
	if !d.opts.Bell {
		return
	}
	_, _ = io.WriteString(d.out, "\a")
}

// soundFile maps an outcome to the platform's stock sound path.
func soundFile(outcome string) string {
	if runtime.GOOS == "darwin" {
		if outcome == "failure" {
			return "/System/Library/Sounds/Basso.aiff"
		}
		return "/System/Library/Sounds/Glass.aiff"
	}
	if outcome == "failure" {
		return "/usr/share/sounds/freedesktop/stereo/dialog-error.oga"
	}
	return "/usr/share/sounds/freedesktop/stereo/complete.oga"
}

func (d *Dispatcher) sound(outcome string) {
	if !d.opts.Sound {
		return
	}

	player := d.opts.SoundPlayer
	if player == "" {
		for _, candidate := range []string{"paplay", "aplay", "afplay"} {
			if _, err := d.lookPath(candidate); err == nil {
				player = candidate
				break
			}
		}
	}
	if player == "" {
		return
	}

	if err := d.runCmd(player, soundFile(outcome)); err != nil {
		d.logger.Debug("sound playback failed", "player", player, "error", err)
	}
}

func (d *Dispatcher) desktop(title, body string) {
	if !d.opts.Desktop {
		return
	}

	var err error
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		err = d.runCmd("osascript", "-e", script)
	default:
		err = d.runCmd("notify-send", title, body)
	}
	if err != nil {
		d.logger.Debug("desktop notification failed", "error", err)
	}
}

func (d *Dispatcher) hook(intent Intent) {
	if !d.opts.Hooks || intent.Hook == "" {
		return
	}

	if err := d.runCmd("sh", "-c", intent.Hook); err != nil {
		d.logger.Debug("hook failed",
			"correlation_id", uuid.NewString(),
			"outcome", intent.Outcome,
			"error", err,
		)
	}
}
