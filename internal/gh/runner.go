// Package gh talks to the GitHub CLI. It is the system's status provider
// and target resolver: everything here is subprocess plumbing around
// "gh" and "git", kept deliberately free of polling logic.
package gh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// minGHVersion is the oldest GitHub CLI this tool is known to work with;
// "gh pr checks" grew its current output format in the 2.x line.
const minGHVersion = "2.0.0"

// Precondition failures. These abort before any polling begins.
var (
	ErrMissingGH       = errors.New("gh executable not found in PATH")
	ErrOldGH           = errors.New("gh version too old")
	ErrNotRepository   = errors.New("not inside a git repository")
	ErrUnauthenticated = errors.New("gh is not authenticated, run 'gh auth login'")
	ErrNoBranch        = errors.New("cannot resolve a branch to watch (detached HEAD?)")
)

// execFunc runs one external command and returns its stdout, exit code
// and any execution error. Non-zero exits are data, not errors: gh uses
// exit codes to report pending and failing checks.
type execFunc func(ctx context.Context, name string, args ...string) (stdout string, exitCode int, err error)

// Runner queries CI status through the gh CLI.
type Runner struct {
	logger   *slog.Logger
	run      execFunc
	lookPath func(file string) (string, error)
}

// NewRunner creates a [Runner]. A nil logger falls back to [slog.Default].
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:   logger,
		run:      runCommand,
		lookPath: exec.LookPath,
	}
}

func runCommand(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), exitErr.ExitCode(), nil
		}
		return "", -1, fmt.Errorf("run %s: %w", name, err)
	}
	return out.String(), 0, nil
}

// Preflight verifies the environment preconditions: gh present and recent
// enough, the working directory inside a git repository, and gh
// authenticated. The first failed check is returned; nothing is retried.
func (r *Runner) Preflight(ctx context.Context) error {
	if _, err := r.lookPath("gh"); err != nil {
		return ErrMissingGH
	}

	if v, ok := r.ghVersion(ctx); ok {
		min := goversion.Must(goversion.NewVersion(minGHVersion))
		if v.LessThan(min) {
			return fmt.Errorf("%w: found %s, need >= %s", ErrOldGH, v, minGHVersion)
		}
	}

	if _, code, err := r.run(ctx, "git", "rev-parse", "--is-inside-work-tree"); err != nil || code != 0 {
		return ErrNotRepository
	}

	if _, code, err := r.run(ctx, "gh", "auth", "status"); err != nil || code != 0 {
		return ErrUnauthenticated
	}

	return nil
}

// ghVersion parses "gh --version" output ("gh version 2.40.1 (...)").
// An unparseable version is reported as ok == false and skipped rather
// than failing preflight; the format is not a contract.
func (r *Runner) ghVersion(ctx context.Context) (*goversion.Version, bool) {
	out, code, err := r.run(ctx, "gh", "--version")
	if err != nil || code != 0 {
		return nil, false
	}

	fields := strings.Fields(strings.SplitN(out, "\n", 2)[0])
	if len(fields) < 3 {
		return nil, false
	}
	v, err := goversion.NewVersion(fields[2])
	if err != nil {
		r.logger.Debug("unrecognised gh version output", "line", fields)
		return nil, false
	}
	return v, true
}

// ResolveTarget maps an optional user-supplied reference to the argument
// handed to "gh pr checks".
//
// An explicit reference (PR number, URL or owner:branch) passes through
// unchanged. Otherwise the current branch is used, qualified with the
// origin owner ("owner:branch") when the repository has an "upstream"
// remote, which is the usual sign of a fork workflow.
func (r *Runner) ResolveTarget(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	out, code, err := r.run(ctx, "git", "branch", "--show-current")
	if err != nil || code != 0 {
		return "", ErrNoBranch
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", ErrNoBranch
	}

	if owner := r.forkOwner(ctx); owner != "" {
		return owner + ":" + branch, nil
	}
	return branch, nil
}

// forkOwner returns the origin remote's owner when the repository looks
// like a fork (an "upstream" remote exists), otherwise "".
func (r *Runner) forkOwner(ctx context.Context) string {
	remotes, code, err := r.run(ctx, "git", "remote")
	if err != nil || code != 0 {
		return ""
	}

	hasUpstream := false
	for _, name := range strings.Fields(remotes) {
		if name == "upstream" {
			hasUpstream = true
			break
		}
	}
	if !hasUpstream {
		return ""
	}

	url, code, err := r.run(ctx, "git", "remote", "get-url", "origin")
	if err != nil || code != 0 {
		return ""
	}
	return ownerFromURL(strings.TrimSpace(url))
}

// ownerFromURL extracts the owner from an ssh or https GitHub remote URL.
func ownerFromURL(url string) string {
	// git@github.com:owner/repo.git or https://github.com/owner/repo.git
	var path string
	switch {
	case strings.Contains(url, "github.com:"):
		path = url[strings.Index(url, "github.com:")+len("github.com:"):]
	case strings.Contains(url, "github.com/"):
		path = url[strings.Index(url, "github.com/")+len("github.com/"):]
	default:
		return ""
	}
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return ""
}

// Checks performs one best-effort status query for target and returns the
// raw tab-separated check listing.
//
// gh uses its exit code to distinguish pending (8) and failing (1) check
// sets while still printing the listing, so a non-zero exit with output
// is a normal answer here. Only a failure to execute at all is an error,
// and callers treat that as an empty snapshot, never as fatal.
func (r *Runner) Checks(ctx context.Context, target string) (string, error) {
	out, _, err := r.run(ctx, "gh", "pr", "checks", target)
	if err != nil {
		return "", err
	}
	return out, nil
}

// FinalStatus performs the pass-through status query that closes a
// session: the listing is returned for display and the exit code becomes
// the process exit status. An execution failure reads as exit 1.
func (r *Runner) FinalStatus(ctx context.Context, target string) (string, int) {
	out, code, err := r.run(ctx, "gh", "pr", "checks", target)
	if err != nil {
		r.logger.Debug("final status query failed", "error", err)
		return "", 1
	}
	return out, code
}
