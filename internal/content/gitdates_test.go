package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitDates_LastCommitTouchingFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(rel, body string, when time.Time) {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		_, err := wt.Add(rel)
		require.NoError(t, err)
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
		_, err = wt.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
	}

	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	commit("content/blog/a.md", "one", first)
	commit("content/blog/b.md", "two", second)

	dates, err := NewGitDates(filepath.Join(dir, "content"))
	require.NoError(t, err)

	when, ok := dates.LastModified(filepath.Join(dir, "content", "blog", "a.md"))
	require.True(t, ok)
	assert.True(t, first.Equal(when))

	when, ok = dates.LastModified(filepath.Join(dir, "content", "blog", "b.md"))
	require.True(t, ok)
	assert.True(t, second.Equal(when))

	_, ok = dates.LastModified(filepath.Join(dir, "content", "blog", "uncommitted.md"))
	assert.False(t, ok)
}

func TestNewGitDates_NotARepository(t *testing.T) {
	_, err := NewGitDates(t.TempDir())
	require.Error(t, err)
}
