package lint

import (
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatterops"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// FixResult contains the results of a fix operation.
type FixResult struct {
	FilesModified []string
	UIDsAdded     int
	Fingerprints  int
	Errors        []error
}

// HasChanges reports whether any file was (or would be) rewritten.
func (fr *FixResult) HasChanges() bool { return len(fr.FilesModified) > 0 }

// Fixer adds missing uids and refreshes fingerprints (and lastmod) in place.
type Fixer struct {
	DryRun bool
	Now    func() time.Time
	Logger *slog.Logger
}

// FixPath fixes every document below root whose front matter parses.
func (fx *Fixer) FixPath(ctx context.Context, root string) (*FixResult, error) {
	now := fx.Now
	if now == nil {
		now = time.Now
	}
	logger := fx.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rels, err := content.Discover(root)
	if err != nil {
		return nil, err
	}
	res := &FixResult{}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return res, errors.WrapError(err, errors.CategoryRuntime, "fix canceled").Build()
		}
		f, err := loadFile(root, rel)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		if f.ReadErr != nil || !f.Block.Had {
			continue
		}
		changed, err := fx.fixFile(f, now(), res)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		if changed {
			res.FilesModified = append(res.FilesModified, rel)
			logger.Info("Fixed front matter", logfields.Path(rel), slog.Bool("dry_run", fx.DryRun))
		}
	}
	return res, nil
}

func (fx *Fixer) fixFile(f *File, now time.Time, res *FixResult) (bool, error) {
	_, uidAdded, err := frontmatterops.EnsureUID(f.Fields)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryInternal, "failed to add uid").WithPath(f.Rel).Build()
	}
	_, fpChanged, err := frontmatterops.RefreshFingerprint(f.Fields, f.Block.Body, now)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryInternal, "failed to compute fingerprint").WithPath(f.Rel).Build()
	}
	if !uidAdded && !fpChanged {
		return false, nil
	}
	if uidAdded {
		res.UIDsAdded++
	}
	if fpChanged {
		res.Fingerprints++
	}
	if fx.DryRun {
		return true, nil
	}

	out, err := frontmatterops.Write(f.Fields, f.Block)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryInternal, "failed to serialize front matter").WithPath(f.Rel).Build()
	}
	// #nosec G306 -- content files are meant to be world-readable
	if err := os.WriteFile(f.Abs, out, 0o644); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to write document").WithPath(f.Rel).Build()
	}
	return true, nil
}
