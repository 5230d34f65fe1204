package content

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// GitDates reports the time of the last commit that touched a file.
type GitDates struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]cachedDate
}

type cachedDate struct {
	when time.Time
	ok   bool
}

// NewGitDates opens the repository containing dir.
func NewGitDates(dir string) (*GitDates, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "content directory is not inside a git repository").
			WithPath(dir).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "repository has no worktree").WithPath(dir).Build()
	}
	root := wt.Filesystem.Root()
	if resolved, rerr := filepath.EvalSymlinks(root); rerr == nil {
		root = resolved
	}
	return &GitDates{repo: repo, root: root, cache: make(map[string]cachedDate)}, nil
}

// LastModified implements DateSource. Uncommitted files report false.
func (g *GitDates) LastModified(absPath string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.cache[absPath]; ok {
		return c.when, c.ok
	}
	when, ok := g.lookup(absPath)
	g.cache[absPath] = cachedDate{when: when, ok: ok}
	return when, ok
}

func (g *GitDates) lookup(absPath string) (time.Time, bool) {
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}
	rel, err := filepath.Rel(g.root, absPath)
	if err != nil {
		return time.Time{}, false
	}
	rel = filepath.ToSlash(rel)

	iter, err := g.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		slog.Debug("git log unavailable", logfields.Path(rel), logfields.Error(err))
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return time.Time{}, false
	}
	return commit.Committer.When.UTC(), true
}
