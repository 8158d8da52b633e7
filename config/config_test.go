package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource is a Source backed by a plain map, for overlay tests.
type mapSource map[string]string

func (m mapSource) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 30, c.SlowPollSeconds)
	assert.Equal(t, 10, c.FastPollSeconds)
	assert.Equal(t, 80, c.FastPollPercent)
	assert.Equal(t, 10, c.HistorySize)
	assert.True(t, c.ExitEarlyOnFail)

	// defaults must already satisfy the floors
	assert.Equal(t, c, c.Normalize())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ciwait.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"slow_poll_seconds: 45\nexit_early_on_fail: false\nsuccess_hook: \"say done\"\n"), 0o644))

	c, err := Default().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45, c.SlowPollSeconds)
	assert.False(t, c.ExitEarlyOnFail)
	assert.Equal(t, "say done", c.SuccessHook)
	// untouched keys keep defaults
	assert.Equal(t, 10, c.FastPollSeconds)
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ciwait.yaml")
	require.NoError(t, os.WriteFile(path, []byte("try_emit_bell: false\n"), 0o644))

	c, err := Default().Load(path)
	require.NoError(t, err)
	assert.False(t, c.TryEmitBell)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Default().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ciwait.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slow_poll_seconds: [oops\n"), 0o644))

	_, err := Default().Load(path)
	assert.Error(t, err)
}

func TestFromStore(t *testing.T) {
	src := mapSource{
		"slow-poll-seconds":  "60",
		"exit-early-on-fail": "0",
		"try-emit-bell":      "false",
		"try-hooks":          "1",
		"failure-hook":       "notify-send failed",
	}

	c := Default().FromStore(src)

	assert.Equal(t, 60, c.SlowPollSeconds)
	assert.False(t, c.ExitEarlyOnFail)
	assert.False(t, c.TryEmitBell, "false accepted as alias for 0")
	assert.True(t, c.TryHooks)
	assert.Equal(t, "notify-send failed", c.FailureHook)
}

func TestFromStore_IgnoresUnparseable(t *testing.T) {
	src := mapSource{
		"slow-poll-seconds":  "soon",
		"exit-early-on-fail": "maybe",
	}

	c := Default().FromStore(src)

	assert.Equal(t, Default().SlowPollSeconds, c.SlowPollSeconds)
	assert.Equal(t, Default().ExitEarlyOnFail, c.ExitEarlyOnFail)
}

func TestNormalize_Clamps(t *testing.T) {
	c := Config{
		BeforePollSeconds: -5,
		SlowPollSeconds:   1,
		FastPollSeconds:   1,
		FastPollPercent:   10,
		TimeoutSeconds:    0,
		ProgressBarWidth:  1,
		HistorySize:       -2,
	}.Normalize()

	assert.Equal(t, MinSlowPollSeconds, c.SlowPollSeconds)
	assert.Equal(t, MinFastPollSeconds, c.FastPollSeconds)
	assert.Equal(t, MinFastPollPercent, c.FastPollPercent)
	assert.Equal(t, 0, c.BeforePollSeconds)
	assert.Equal(t, Default().TimeoutSeconds, c.TimeoutSeconds)
	assert.Equal(t, Default().ProgressBarWidth, c.ProgressBarWidth)
	assert.Equal(t, 0, c.HistorySize)
}

func TestNormalize_KeepsValidValues(t *testing.T) {
	c := Default()
	c.SlowPollSeconds = 120
	c.HistorySize = 0 // disabling history is a valid choice

	got := c.Normalize()
	assert.Equal(t, 120, got.SlowPollSeconds)
	assert.Equal(t, 0, got.HistorySize)
}
