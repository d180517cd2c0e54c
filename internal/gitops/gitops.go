// Package gitops records project changes as git commits.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits imported data.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// env sets the committer to the author so commits work without global git config.
func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+a.Name,
		"GIT_AUTHOR_EMAIL="+a.Email,
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "init", "--quiet")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// CommitAll stages all files and creates a commit. Returns the short commit
// hash, or "" when nothing changed.
func CommitAll(ctx context.Context, dir, message string, author Author) (string, error) {
	add := exec.CommandContext(ctx, "git", "add", "-A")
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// Nothing staged means nothing to record.
	diff := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	diff.Dir = dir
	if err := diff.Run(); err == nil {
		return "", nil
	}

	commit := exec.CommandContext(ctx, "git", "commit", "--quiet", "-m", message, "--author", author.String())
	commit.Dir = dir
	commit.Env = author.env()
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	rev := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
