package site

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// staging is an isolated sibling directory that becomes the output directory
// only when a build succeeds.
type staging struct {
	dir    string
	output string
}

// beginStaging creates <output>.staging-<id> next to the output directory.
func beginStaging(output, buildID string) (*staging, error) {
	output = filepath.Clean(output)
	dir := fmt.Sprintf("%s.staging-%s", output, buildID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create staging directory").
			WithPath(dir).Build()
	}
	slog.Debug("Initialized staging directory", slog.String("staging", dir), slog.String("final", output))
	return &staging{dir: dir, output: output}, nil
}

// seedFromOutput copies the current output into staging so files the build
// does not produce survive a non-clean build.
func (s *staging) seedFromOutput() error {
	if _, err := os.Stat(s.output); os.IsNotExist(err) {
		return nil
	}
	return copyTree(s.output, s.dir, nil)
}

// write stores data at the slash separated path rel inside staging.
func (s *staging) write(rel string, data []byte) error {
	target := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithPath(filepath.Dir(target)).Build()
	}
	if err := os.WriteFile(target, data, 0o644); err != nil { // #nosec G306 -- published site files
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithPath(target).Build()
	}
	return nil
}

// finalize promotes staging to the output location:
//  1. Move the existing output aside to <output>.prev.
//  2. Rename staging to output.
//  3. Remove the previous output.
func (s *staging) finalize() error {
	prev := s.output + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove previous backup").WithPath(prev).Build()
	}
	if _, err := os.Stat(s.output); err == nil {
		if err := os.Rename(s.output, prev); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to back up existing output").WithPath(s.output).Build()
		}
	}
	if err := os.Rename(s.dir, s.output); err != nil {
		// put the old output back so the site stays intact
		if _, statErr := os.Stat(prev); statErr == nil {
			_ = os.Rename(prev, s.output)
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to promote staging directory").WithPath(s.dir).Build()
	}
	s.dir = ""
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
	}
	slog.Debug("Promoted staging directory", slog.String("output", s.output))
	return nil
}

// abort removes the staging directory after a failed build.
func (s *staging) abort() {
	if s == nil || s.dir == "" {
		return
	}
	dir := s.dir
	s.dir = "" // prevent double cleanup
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", slog.String("staging", dir), logfields.Error(err))
		return
	}
	slog.Debug("Removed staging directory after abort", slog.String("staging", dir))
}

// copyTree copies regular files from src into dst, skipping hidden entries.
// A file whose slash separated relative path is a key of reserved collides
// with the generated file named by its value.
func copyTree(src, dst string, reserved map[string]string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if owner, ok := reserved[filepath.ToSlash(rel)]; ok {
			return errors.RouteCollision(filepath.ToSlash(filepath.Join(filepath.Base(src), rel)), owner, "/"+filepath.ToSlash(rel))
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- walking a configured directory
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) // #nosec G302 G304 -- published site files
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
