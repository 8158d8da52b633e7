// Package gitcfg persists ciwait's per-repository state in git config,
// namespaced under a single section ("ci-wait" by default). git config
// is already repository-scoped and survives across invocations, which is
// exactly the lifetime the rolling duration history and user overrides
// need. Access is last-writer-wins; no transactional guarantee is made
// or required.
package gitcfg

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// execFunc runs a git invocation and returns its stdout, exit code and
// any execution error. Factored out so tests can substitute a fake git.
type execFunc func(args ...string) (stdout string, exitCode int, err error)

// Store reads and writes keys in one git config section.
type Store struct {
	section string
	run     execFunc
}

// New creates a [Store] over the given git config section, e.g. "ci-wait"
// for keys like "ci-wait.slow-poll-seconds".
func New(section string) *Store {
	return &Store{section: section, run: runGit}
}

// runGit shells out to git and normalises the result into (stdout, exit
// code, error). A non-zero exit is not an error here; callers decide what
// it means for the subcommand they invoked.
func runGit(args ...string) (string, int, error) {
	cmd := exec.Command("git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), exitErr.ExitCode(), nil
		}
		return "", -1, fmt.Errorf("run git: %w", err)
	}
	return out.String(), 0, nil
}

// Get returns the value stored under key, reporting a missing key as
// ok == false rather than an error. git config exits 1 for a missing key.
func (s *Store) Get(key string) (string, bool, error) {
	out, code, err := s.run("config", "--get", s.section+"."+key)
	if err != nil {
		return "", false, err
	}
	switch code {
	case 0:
		return strings.TrimRight(out, "\n"), true, nil
	case 1:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("git config --get %s.%s: exit %d", s.section, key, code)
	}
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, code, err := s.run("config", s.section+"."+key, value)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("git config %s.%s: exit %d", s.section, key, code)
	}
	return nil
}

// Unset removes key. git config exits 5 when the key did not exist; that
// is a successful no-op here.
func (s *Store) Unset(key string) error {
	_, code, err := s.run("config", "--unset-all", s.section+"."+key)
	if err != nil {
		return err
	}
	if code != 0 && code != 5 {
		return fmt.Errorf("git config --unset-all %s.%s: exit %d", s.section, key, code)
	}
	return nil
}
