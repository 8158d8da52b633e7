// Package config builds the immutable settings struct for a watch
// session.
//
// Settings are resolved in three layers, each overriding the last:
//
//  1. compiled defaults ([Default]),
//  2. an optional YAML file ([Config.Load]),
//  3. the repository-scoped key-value store, namespaced under the
//     "ci-wait." prefix ([Config.FromStore]).
//
// The resolved Config is then clamped to safe floors with
// [Config.Normalize] and passed by value into every component; there is
// no ambient mutable configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Safe floors for the polling knobs. Values below these would impose an
// unreasonable query rate on the CI provider, so overrides are clamped.
const (
	MinSlowPollSeconds = 20
	MinFastPollSeconds = 5
	MinFastPollPercent = 75
	minBarWidth        = 5
)

// Config holds every tunable of a watch session.
//
// Construct it once at startup via [Default], optionally layered with
// [Config.Load] and [Config.FromStore], then [Config.Normalize]. The
// struct is treated as immutable afterwards.
type Config struct {
	// BeforePollSeconds is an initial delay before the first provider
	// query, to avoid racing a commit that was pushed a moment ago.
	BeforePollSeconds int `yaml:"before_poll_seconds"`

	// SlowPollSeconds is the steady-state sleep between queries.
	SlowPollSeconds int `yaml:"slow_poll_seconds"`

	// FastPollSeconds is the sleep used near expected completion and
	// while waiting for CI to report its first check.
	FastPollSeconds int `yaml:"fast_poll_seconds"`

	// FastPollPercent is the percentage of the historical median at
	// which polling switches to the fast tier.
	FastPollPercent int `yaml:"fast_poll_percent"`

	// TimeoutSeconds bounds the whole session in wall-clock time.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// ExitEarlyOnFail stops the session as soon as any check fails,
	// without waiting for the remaining checks.
	ExitEarlyOnFail bool `yaml:"exit_early_on_fail"`

	// ProgressBarWidth is the bar width in cells.
	ProgressBarWidth int `yaml:"progress_bar_width"`

	// HistorySize is the rolling run-duration retention cap per outcome
	// category. 0 disables history tracking (and with it the progress
	// estimate and the near-completion fast-poll tier).
	HistorySize int `yaml:"rolling_history_size"`

	// TryProgressBar, TryEmitBell, TrySoundPlayer, TryDesktopNotify and
	// TryHooks gate the corresponding best-effort side effects.
	TryProgressBar   bool `yaml:"try_progress_bar"`
	TryEmitBell      bool `yaml:"try_emit_bell"`
	TrySoundPlayer   bool `yaml:"try_sound_player"`
	TryDesktopNotify bool `yaml:"try_desktop_notify"`
	TryHooks         bool `yaml:"try_hooks"`

	// SuccessHook and FailureHook are user shell commands run (fire and
	// forget) when a session ends in the matching category. Empty means
	// no hook.
	SuccessHook string `yaml:"success_hook"`
	FailureHook string `yaml:"failure_hook"`

	// SoundPlayer overrides the auto-detected sound player command.
	SoundPlayer string `yaml:"sound_player"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		BeforePollSeconds: 0,
		SlowPollSeconds:   30,
		FastPollSeconds:   10,
		FastPollPercent:   80,
		TimeoutSeconds:    3600,
		ExitEarlyOnFail:   true,
		ProgressBarWidth:  30,
		HistorySize:       10,
		TryProgressBar:    true,
		TryEmitBell:       true,
		TrySoundPlayer:    true,
		TryDesktopNotify:  true,
		TryHooks:          true,
	}
}

// yamlConfig mirrors Config with pointer fields so that an absent key is
// distinguishable from an explicit zero or false.
type yamlConfig struct {
	BeforePollSeconds *int    `yaml:"before_poll_seconds"`
	SlowPollSeconds   *int    `yaml:"slow_poll_seconds"`
	FastPollSeconds   *int    `yaml:"fast_poll_seconds"`
	FastPollPercent   *int    `yaml:"fast_poll_percent"`
	TimeoutSeconds    *int    `yaml:"timeout_seconds"`
	ExitEarlyOnFail   *bool   `yaml:"exit_early_on_fail"`
	ProgressBarWidth  *int    `yaml:"progress_bar_width"`
	HistorySize       *int    `yaml:"rolling_history_size"`
	TryProgressBar    *bool   `yaml:"try_progress_bar"`
	TryEmitBell       *bool   `yaml:"try_emit_bell"`
	TrySoundPlayer    *bool   `yaml:"try_sound_player"`
	TryDesktopNotify  *bool   `yaml:"try_desktop_notify"`
	TryHooks          *bool   `yaml:"try_hooks"`
	SuccessHook       *string `yaml:"success_hook"`
	FailureHook       *string `yaml:"failure_hook"`
	SoundPlayer       *string `yaml:"sound_player"`
}

// Load overlays the receiver with settings from a YAML file.
//
// Keys absent from the file keep their current values. A missing or
// unreadable file is an error; an empty file is fine.
func (c Config) Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return c, fmt.Errorf("parse config file: %w", err)
	}

	setInt(&c.BeforePollSeconds, yc.BeforePollSeconds)
	setInt(&c.SlowPollSeconds, yc.SlowPollSeconds)
	setInt(&c.FastPollSeconds, yc.FastPollSeconds)
	setInt(&c.FastPollPercent, yc.FastPollPercent)
	setInt(&c.TimeoutSeconds, yc.TimeoutSeconds)
	setBool(&c.ExitEarlyOnFail, yc.ExitEarlyOnFail)
	setInt(&c.ProgressBarWidth, yc.ProgressBarWidth)
	setInt(&c.HistorySize, yc.HistorySize)
	setBool(&c.TryProgressBar, yc.TryProgressBar)
	setBool(&c.TryEmitBell, yc.TryEmitBell)
	setBool(&c.TrySoundPlayer, yc.TrySoundPlayer)
	setBool(&c.TryDesktopNotify, yc.TryDesktopNotify)
	setBool(&c.TryHooks, yc.TryHooks)
	setString(&c.SuccessHook, yc.SuccessHook)
	setString(&c.FailureHook, yc.FailureHook)
	setString(&c.SoundPlayer, yc.SoundPlayer)

	return c, nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Source is where persisted per-repository overrides come from. The git
// config store satisfies it; a missing key is reported as ok == false.
type Source interface {
	Get(key string) (value string, ok bool, err error)
}

// FromStore overlays the receiver with any recognized keys present in the
// repository-scoped store. Unparseable values are ignored; a damaged
// store never prevents a session from starting.
func (c Config) FromStore(src Source) Config {
	overlayInt(src, "before-poll-seconds", &c.BeforePollSeconds)
	overlayInt(src, "slow-poll-seconds", &c.SlowPollSeconds)
	overlayInt(src, "fast-poll-seconds", &c.FastPollSeconds)
	overlayInt(src, "fast-poll-percent", &c.FastPollPercent)
	overlayInt(src, "timeout-seconds", &c.TimeoutSeconds)
	overlayBool(src, "exit-early-on-fail", &c.ExitEarlyOnFail)
	overlayInt(src, "progress-bar-width", &c.ProgressBarWidth)
	overlayInt(src, "rolling-history-size", &c.HistorySize)
	overlayBool(src, "try-progress-bar", &c.TryProgressBar)
	overlayBool(src, "try-emit-bell", &c.TryEmitBell)
	overlayBool(src, "try-sound-player", &c.TrySoundPlayer)
	overlayBool(src, "try-desktop-notify", &c.TryDesktopNotify)
	overlayBool(src, "try-hooks", &c.TryHooks)
	overlayString(src, "success-hook", &c.SuccessHook)
	overlayString(src, "failure-hook", &c.FailureHook)
	overlayString(src, "sound-player", &c.SoundPlayer)
	return c
}

func overlayInt(src Source, key string, dst *int) {
	raw, ok, err := src.Get(key)
	if err != nil || !ok {
		return
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*dst = n
	}
}

func overlayBool(src Source, key string, dst *bool) {
	raw, ok, err := src.Get(key)
	if err != nil || !ok {
		return
	}
	// true/false are accepted as aliases for 1/0
	switch raw {
	case "1", "true":
		*dst = true
	case "0", "false":
		*dst = false
	}
}

func overlayString(src Source, key string, dst *string) {
	raw, ok, err := src.Get(key)
	if err != nil || !ok {
		return
	}
	*dst = raw
}

// Normalize clamps the polling knobs to their safe floors and repairs
// nonsensical values, returning the result. It never fails: a bad
// override degrades to a usable setting.
func (c Config) Normalize() Config {
	d := Default()

	if c.SlowPollSeconds < MinSlowPollSeconds {
		c.SlowPollSeconds = MinSlowPollSeconds
	}
	if c.FastPollSeconds < MinFastPollSeconds {
		c.FastPollSeconds = MinFastPollSeconds
	}
	if c.FastPollPercent < MinFastPollPercent {
		c.FastPollPercent = MinFastPollPercent
	}
	if c.BeforePollSeconds < 0 {
		c.BeforePollSeconds = 0
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.ProgressBarWidth < minBarWidth {
		c.ProgressBarWidth = d.ProgressBarWidth
	}
	if c.HistorySize < 0 {
		c.HistorySize = 0
	}
	return c
}
