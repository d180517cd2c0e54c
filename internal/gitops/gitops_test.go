package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	err := Init(context.Background(), dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(context.Background(), dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll_All(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(context.Background(), dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0o644))

	hash, err := CommitAll(context.Background(), dir, "init: test commit", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Contains(t, gitLog(t, dir, "%s"), "init: test commit")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "Test Author <test@example.com>")
}

func TestCommitAll_NothingToCommit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(context.Background(), dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0o644))
	_, err := CommitAll(context.Background(), dir, "first", testAuthor)
	require.NoError(t, err)

	hash, err := CommitAll(context.Background(), dir, "second", testAuthor)
	require.NoError(t, err)
	assert.Empty(t, hash)
}
