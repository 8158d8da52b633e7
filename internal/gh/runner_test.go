package gh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeExec serves canned responses keyed by the command line.
type fakeExec struct {
	responses map[string]response
}

type response struct {
	out  string
	code int
	err  error
}

func newFakeExec() *fakeExec {
	return &fakeExec{responses: map[string]response{}}
}

func (f *fakeExec) respond(cmdline, out string, code int, err error) {
	f.responses[cmdline] = response{out, code, err}
}

func (f *fakeExec) run(_ context.Context, name string, args ...string) (string, int, error) {
	if r, ok := f.responses[name+" "+strings.Join(args, " ")]; ok {
		return r.out, r.code, r.err
	}
	return "", 0, nil
}

func testRunner(f *fakeExec) *Runner {
	return &Runner{
		logger:   testLogger(),
		run:      f.run,
		lookPath: func(string) (string, error) { return "/usr/bin/gh", nil },
	}
}

func TestPreflight_OK(t *testing.T) {
	f := newFakeExec()
	f.respond("gh --version", "gh version 2.40.1 (2023-12-13)\n", 0, nil)
	f.respond("git rev-parse --is-inside-work-tree", "true\n", 0, nil)
	f.respond("gh auth status", "", 0, nil)

	assert.NoError(t, testRunner(f).Preflight(context.Background()))
}

func TestPreflight_MissingGH(t *testing.T) {
	r := testRunner(newFakeExec())
	r.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	assert.ErrorIs(t, r.Preflight(context.Background()), ErrMissingGH)
}

func TestPreflight_OldGH(t *testing.T) {
	f := newFakeExec()
	f.respond("gh --version", "gh version 1.14.0 (2021-10-26)\n", 0, nil)

	assert.ErrorIs(t, testRunner(f).Preflight(context.Background()), ErrOldGH)
}

func TestPreflight_UnparseableVersionIsTolerated(t *testing.T) {
	f := newFakeExec()
	f.respond("gh --version", "gh built from source\n", 0, nil)
	f.respond("git rev-parse --is-inside-work-tree", "true\n", 0, nil)
	f.respond("gh auth status", "", 0, nil)

	assert.NoError(t, testRunner(f).Preflight(context.Background()))
}

func TestPreflight_NotRepository(t *testing.T) {
	f := newFakeExec()
	f.respond("gh --version", "gh version 2.40.1 (2023-12-13)\n", 0, nil)
	f.respond("git rev-parse --is-inside-work-tree", "", 128, nil)

	assert.ErrorIs(t, testRunner(f).Preflight(context.Background()), ErrNotRepository)
}

func TestPreflight_Unauthenticated(t *testing.T) {
	f := newFakeExec()
	f.respond("gh --version", "gh version 2.40.1 (2023-12-13)\n", 0, nil)
	f.respond("git rev-parse --is-inside-work-tree", "true\n", 0, nil)
	f.respond("gh auth status", "", 1, nil)

	assert.ErrorIs(t, testRunner(f).Preflight(context.Background()), ErrUnauthenticated)
}

func TestResolveTarget_ExplicitPassesThrough(t *testing.T) {
	for _, explicit := range []string{"128", "https://github.com/o/r/pull/128", "someone:feature"} {
		got, err := testRunner(newFakeExec()).ResolveTarget(context.Background(), explicit)
		require.NoError(t, err)
		assert.Equal(t, explicit, got)
	}
}

func TestResolveTarget_CurrentBranch(t *testing.T) {
	f := newFakeExec()
	f.respond("git branch --show-current", "feature/polling\n", 0, nil)
	f.respond("git remote", "origin\n", 0, nil)

	got, err := testRunner(f).ResolveTarget(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "feature/polling", got)
}

func TestResolveTarget_ForkQualifiesOwner(t *testing.T) {
	f := newFakeExec()
	f.respond("git branch --show-current", "feature\n", 0, nil)
	f.respond("git remote", "origin\nupstream\n", 0, nil)
	f.respond("git remote get-url origin", "git@github.com:someone/fork.git\n", 0, nil)

	got, err := testRunner(f).ResolveTarget(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "someone:feature", got)
}

func TestResolveTarget_DetachedHead(t *testing.T) {
	f := newFakeExec()
	f.respond("git branch --show-current", "\n", 0, nil)

	_, err := testRunner(f).ResolveTarget(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoBranch)
}

func TestOwnerFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:someone/fork.git", "someone"},
		{"https://github.com/someone/fork.git", "someone"},
		{"https://github.com/someone/fork", "someone"},
		{"https://gitlab.example.com/x/y", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ownerFromURL(tt.url), tt.url)
	}
}

func TestChecks_NonZeroExitStillReturnsListing(t *testing.T) {
	f := newFakeExec()
	f.respond("gh pr checks feature", "build\tpending\t1m 02s\n", 8, nil)

	out, err := testRunner(f).Checks(context.Background(), "feature")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")
}

func TestChecks_ExecFailure(t *testing.T) {
	f := newFakeExec()
	f.respond("gh pr checks feature", "", -1, errors.New("boom"))

	_, err := testRunner(f).Checks(context.Background(), "feature")
	assert.Error(t, err)
}

func TestFinalStatus(t *testing.T) {
	f := newFakeExec()
	f.respond("gh pr checks feature", "build\tfail\t1m 02s\n", 1, nil)

	out, code := testRunner(f).FinalStatus(context.Background(), "feature")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "fail")
}

func TestFinalStatus_ExecFailureReadsAsExit1(t *testing.T) {
	f := newFakeExec()
	f.respond("gh pr checks feature", "", -1, errors.New("boom"))

	out, code := testRunner(f).FinalStatus(context.Background(), "feature")
	assert.Empty(t, out)
	assert.Equal(t, 1, code)
}
