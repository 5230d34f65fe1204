package site

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/linkverify"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/notify"
	"git.home.luguber.info/inful/pagesmith/internal/render"
)

// Build stage names, used for metrics and logs.
const (
	StageLoad     = "load"
	StageAssemble = "assemble"
	StageConvert  = "convert"
	StageRender   = "render"
	StageStatic   = "static"
	StageSitemap  = "sitemap"
	StageManifest = "manifest"
	StageVerify   = "verify"
	StagePublish  = "publish"
)

// SitemapFile is written at the output root.
const SitemapFile = "sitemap.xml"

// Report describes a finished build.
type Report struct {
	BuildID      string
	OutputDir    string
	Documents    int // published documents
	Drafts       int
	Scheduled    int
	Routes       []string
	Layouts      map[string]int // rendered routes per layout
	Placeholders int
	BrokenLinks  []linkverify.BrokenLink
	Duration     time.Duration
	FinishedAt   time.Time
}

// Builder runs the full build: load, assemble, convert, render and publish.
// A Builder is not safe for concurrent Build calls; the preview server
// serialises rebuilds.
type Builder struct {
	cfg       *config.Config
	recorder  metrics.Recorder
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = metrics.OrNoop(r) }
}

// WithPublisher sets the build notification publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(b *Builder) {
		if p != nil {
			b.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock overrides the time source used to classify scheduled posts.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a Builder for cfg.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// Load reads the content tree.
func (b *Builder) Load(ctx context.Context) (*content.Store, error) {
	opts := content.Options{
		Dir:           b.cfg.Content.Dir,
		DraftsDir:     b.cfg.Content.DraftsDir,
		IncludeDrafts: b.cfg.Build.IncludeDrafts,
		IncludeFuture: b.cfg.Build.IncludeFuture,
		Now:           b.now,
	}
	if b.cfg.Content.GitDates {
		dates, err := content.NewGitDates(b.cfg.Content.Dir)
		if err != nil {
			b.logger.Warn("Git dates unavailable, using front matter dates only", logfields.Path(b.cfg.Content.Dir), logfields.Error(err))
		} else {
			opts.Dates = dates
		}
	}
	return content.Load(ctx, opts)
}

// Assemble loads the content tree and maps it to routes without writing output.
func (b *Builder) Assemble(ctx context.Context) (*content.Store, *Site, error) {
	store, err := b.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	s, err := Assemble(store, OptionsFromConfig(b.cfg))
	if err != nil {
		return nil, nil, err
	}
	return store, s, nil
}

// Build produces the site in the output directory. Output is all-or-nothing:
// every page is written to a staging directory that replaces the output
// directory only after every stage succeeded.
func (b *Builder) Build(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	report = &Report{BuildID: b.newID(), OutputDir: b.cfg.Output.Dir, Layouts: map[string]int{}}
	logger := b.logger.With(logfields.BuildID(report.BuildID))

	var stg *staging
	defer func() {
		report.Duration = time.Since(start)
		b.recorder.ObserveBuildDuration(report.Duration)
		switch {
		case err == nil && len(report.BrokenLinks) > 0:
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeWarning)
		case err == nil:
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		case ctx.Err() != nil:
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		default:
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		}
		if err != nil {
			stg.abort()
		}
	}()

	var store *content.Store
	if err = b.stage(ctx, logger, StageLoad, func() error {
		var lerr error
		store, lerr = b.Load(ctx)
		return lerr
	}); err != nil {
		return report, err
	}
	for _, d := range store.All() {
		switch d.Status {
		case content.StatusDraft:
			report.Drafts++
		case content.StatusScheduled:
			report.Scheduled++
		}
	}

	var s *Site
	if err = b.stage(ctx, logger, StageAssemble, func() error {
		var aerr error
		s, aerr = Assemble(store, OptionsFromConfig(b.cfg))
		return aerr
	}); err != nil {
		return report, err
	}

	results := make(map[*content.Document]*markdown.Result)
	if err = b.stage(ctx, logger, StageConvert, func() error {
		conv := markdown.New(markdown.Options{
			TOCMinLevel:       b.cfg.TOC.MinLevel,
			TOCMaxLevel:       b.cfg.TOC.MaxLevel,
			AllowPlaceholders: b.cfg.References.AllowPlaceholders,
		})
		for _, e := range s.Entries() {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			res, cerr := conv.Convert(e.Doc.SourcePath, e.Doc.Body, s.ResolverFor(e.Doc))
			if cerr != nil {
				return cerr
			}
			results[e.Doc] = res
			report.Placeholders += res.Placeholders + e.seriesPlaceholders()
			report.Documents++
		}
		return nil
	}); err != nil {
		return report, err
	}

	reserved := map[string]string{SitemapFile: "(generated sitemap)", ManifestFile: "(generated manifest)"}
	if err = b.stage(ctx, logger, StageRender, func() error {
		renderer, rerr := render.New(render.Options{LayoutsDir: b.cfg.LayoutsDir, BaseURL: b.cfg.Site.BaseURL})
		if rerr != nil {
			return rerr
		}
		if stg, rerr = beginStaging(b.cfg.Output.Dir, report.BuildID); rerr != nil {
			return rerr
		}
		if !b.cfg.Output.Clean {
			if rerr = stg.seedFromOutput(); rerr != nil {
				return errors.WrapError(rerr, errors.CategoryFileSystem, "failed to seed staging from output").
					WithPath(b.cfg.Output.Dir).Build()
			}
		}
		views := newViewBuilder(s, b.cfg, results)
		for _, r := range s.Routes {
			if rerr = ctx.Err(); rerr != nil {
				return rerr
			}
			html, rerr := renderer.Render(r.Source(), r.Layout, views.view(r))
			if rerr != nil {
				return rerr
			}
			if rerr = stg.write(r.File(), html); rerr != nil {
				return rerr
			}
			reserved[r.File()] = r.Source()
			report.Layouts[r.Layout]++
			report.Routes = append(report.Routes, r.Path)
		}
		return nil
	}); err != nil {
		return report, err
	}
	for layout, n := range report.Layouts {
		b.recorder.AddDocumentsRendered(layout, n)
	}

	if err = b.stage(ctx, logger, StageStatic, func() error {
		dir := b.cfg.StaticDir
		if dir == "" {
			return nil
		}
		if info, serr := os.Stat(dir); serr != nil || !info.IsDir() {
			logger.Debug("No static directory", logfields.Path(dir))
			return nil
		}
		if cerr := copyTree(dir, stg.dir, reserved); cerr != nil {
			if _, ok := errors.AsClassified(cerr); ok {
				return cerr
			}
			return errors.WrapError(cerr, errors.CategoryFileSystem, "failed to copy static files").WithPath(dir).Build()
		}
		return nil
	}); err != nil {
		return report, err
	}

	if err = b.stage(ctx, logger, StageSitemap, func() error {
		data, serr := s.Sitemap(b.cfg.Site.BaseURL)
		if serr != nil {
			return errors.WrapError(serr, errors.CategoryBuild, "failed to encode sitemap").Build()
		}
		return stg.write(SitemapFile, data)
	}); err != nil {
		return report, err
	}

	if err = b.stage(ctx, logger, StageManifest, func() error {
		m, merr := s.Manifest()
		if merr != nil {
			return errors.WrapError(merr, errors.CategoryBuild, "failed to fingerprint documents").Build()
		}
		data, merr := m.Encode()
		if merr != nil {
			return errors.WrapError(merr, errors.CategoryBuild, "failed to encode manifest").Build()
		}
		return stg.write(ManifestFile, data)
	}); err != nil {
		return report, err
	}

	if err = b.stage(ctx, logger, StageVerify, func() error {
		lv, verr := linkverify.New(b.cfg.Site.BaseURL, logger).VerifyDir(ctx, stg.dir)
		if verr != nil {
			return verr
		}
		report.BrokenLinks = lv.Broken
		if b.cfg.Build.StrictLinks && !lv.OK() {
			first := lv.Broken[0]
			return errors.BuildError(strconv.Itoa(len(lv.Broken))+" broken internal link(s)").
				WithPath(first.Page).
				WithContext(errors.ContextReference, first.URL).
				Build()
		}
		return nil
	}); err != nil {
		return report, err
	}

	if err = b.stage(ctx, logger, StagePublish, stg.finalize); err != nil {
		return report, err
	}

	report.FinishedAt = b.now().UTC()
	report.Duration = time.Since(start)
	b.recorder.SetRoutes(len(report.Routes))
	logger.Info("Build complete",
		logfields.Count(report.Documents),
		slog.Int("routes", len(report.Routes)),
		slog.Int("drafts", report.Drafts),
		slog.Int("broken_links", len(report.BrokenLinks)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000),
		logfields.Path(report.OutputDir))

	b.announce(ctx, logger, report)
	return report, nil
}

// announce publishes the build event. The site is already live, so failures
// are logged and not returned.
func (b *Builder) announce(ctx context.Context, logger *slog.Logger, report *Report) {
	event := notify.SiteBuilt{
		BuildID:    report.BuildID,
		OutputDir:  report.OutputDir,
		Routes:     report.Routes,
		Documents:  report.Documents,
		DurationMS: report.Duration.Milliseconds(),
		FinishedAt: report.FinishedAt,
	}
	if err := b.publisher.PublishSiteBuilt(ctx, event); err != nil {
		logger.Warn("Failed to publish build notification", logfields.Error(err))
	}
}

// stage runs fn as a named build stage, recording its duration and result.
func (b *Builder) stage(ctx context.Context, logger *slog.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		b.recorder.IncStageResult(name, metrics.ResultCanceled)
		return canceled(err)
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	b.recorder.ObserveStageDuration(name, d)

	switch {
	case err == nil:
		b.recorder.IncStageResult(name, metrics.ResultSuccess)
		logger.Debug("Stage complete", logfields.Stage(name), logfields.DurationMS(float64(d.Microseconds())/1000))
		return nil
	case ctx.Err() != nil:
		b.recorder.IncStageResult(name, metrics.ResultCanceled)
		return canceled(ctx.Err())
	default:
		b.recorder.IncStageResult(name, metrics.ResultFatal)
		logger.Debug("Stage failed", logfields.Stage(name), logfields.Error(err))
		return err
	}
}

func canceled(err error) error {
	return errors.WrapError(err, errors.CategoryRuntime, "build canceled").Build()
}
