package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits ledger changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string { return fmt.Sprintf("%s <%s>", a.Name, a.Email) }

// env sets the author as committer too, so commits work without a global
// git identity.
func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+a.Name,
		"GIT_AUTHOR_EMAIL="+a.Email,
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

func run(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	_, err := run(dir, nil, "init", "--quiet")
	return err
}

// HasChanges reports whether the work tree has uncommitted changes.
func HasChanges(dir string) (bool, error) {
	out, err := run(dir, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit
// hash, or "" when there was nothing to commit.
func CommitAll(dir, message string, author Author) (string, error) {
	if _, err := run(dir, nil, "add", "-A"); err != nil {
		return "", err
	}
	changed, err := HasChanges(dir)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}
	if _, err := run(dir, author.env(), "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}
	out, err := run(dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
