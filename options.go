package ciwait

import (
	"errors"
	"io"
	"log/slog"

	"github.com/ciwait/ciwait/config"
)

// wConfig holds mutable state during Watcher construction.
type wConfig struct {
	cfg         config.Config
	provider    Provider
	store       Store
	notifier    Notifier
	logger      *slog.Logger
	out         io.Writer
	interactive bool
	callbacks   []func(StatusUpdate)
}

// Option is a function that configures a [Watcher] instance during
// construction.
//
// Option implements the functional options pattern. Options return an
// error if validation fails.
type Option func(*wConfig) error

// WithConfig supplies the resolved session configuration. If not given,
// [config.Default] is used. The value is normalized (clamped to safe
// floors) inside [New] regardless of origin.
func WithConfig(cfg config.Config) Option {
	return func(w *wConfig) error {
		w.cfg = cfg
		return nil
	}
}

// WithProvider substitutes the CI status provider. Defaults to the
// gh-CLI-backed provider. Mainly useful for tests and custom frontends.
func WithProvider(p Provider) Option {
	return func(w *wConfig) error {
		if p == nil {
			return errors.New("provider cannot be nil")
		}
		w.provider = p
		return nil
	}
}

// WithStore substitutes the persistence backend for run-duration
// history. Defaults to the repository's git config under the "ci-wait"
// section.
func WithStore(s Store) Option {
	return func(w *wConfig) error {
		if s == nil {
			return errors.New("store cannot be nil")
		}
		w.store = s
		return nil
	}
}

// WithNotifier sets the side-effect sink for increment and terminal
// events. Defaults to a no-op notifier; the CLI wires the dispatcher
// from internal/notify here.
func WithNotifier(n Notifier) Option {
	return func(w *wConfig) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		w.notifier = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the watcher.
//
// If not specified, [slog.Default] is used.
func WithLogger(logger *slog.Logger) Option {
	return func(w *wConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		w.logger = logger
		return nil
	}
}

// WithOutput sets where progress lines are written. Defaults to
// os.Stdout.
func WithOutput(out io.Writer) Option {
	return func(w *wConfig) error {
		if out == nil {
			return errors.New("output cannot be nil")
		}
		w.out = out
		return nil
	}
}

// WithInteractive enables in-place progress redraw using carriage
// returns. Only sensible when the output is a terminal; the CLI decides
// via TTY detection.
func WithInteractive(interactive bool) Option {
	return func(w *wConfig) error {
		w.interactive = interactive
		return nil
	}
}

// WithStatusCallback registers a function invoked after every poll with
// the freshly observed [StatusUpdate].
//
// Multiple callbacks may be registered; they run in registration order,
// synchronously from the poll loop. Panics within callbacks are
// recovered and logged; they do not stop the session. Nil callbacks are
// silently ignored.
func WithStatusCallback(cb func(StatusUpdate)) Option {
	return func(w *wConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		w.callbacks = append(w.callbacks, cb)
		return nil
	}
}
