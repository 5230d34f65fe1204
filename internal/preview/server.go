// Package preview serves a built site locally and rebuilds it when content,
// layouts, static files or the configuration change.
package preview

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/site"
)

const shutdownTimeout = 5 * time.Second

// BuilderFunc creates a site builder for a (re)loaded configuration.
type BuilderFunc func(cfg *config.Config) *site.Builder

// Options configures a preview Server.
type Options struct {
	// Metrics is served at /metrics when non-nil.
	Metrics  http.Handler
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Server runs the preview loop: an initial build, an HTTP server for the
// output directory and a watcher that triggers debounced rebuilds.
type Server struct {
	newBuilder BuilderFunc
	metrics    http.Handler
	logger     *slog.Logger
	hub        *LiveReloadHub
	status     *buildStatus
	liveReload bool

	mu      sync.RWMutex
	cfg     *config.Config
	builder *site.Builder

	configChanged atomic.Bool
	rebuildReq    chan struct{}
	addr          atomic.Value
}

// New creates a preview server for cfg.
func New(cfg *config.Config, newBuilder BuilderFunc, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		newBuilder: newBuilder,
		metrics:    opts.Metrics,
		logger:     logger,
		hub:        NewLiveReloadHub(opts.Recorder),
		status:     &buildStatus{},
		liveReload: cfg.Serve.LiveReload,
		cfg:        cfg,
		builder:    newBuilder(cfg),
		rebuildReq: make(chan struct{}, 1),
	}
}

// Addr returns the listen address once Run has bound it.
func (s *Server) Addr() string {
	if v, ok := s.addr.Load().(string); ok {
		return v
	}
	return ""
}

func (s *Server) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) outputDir() string { return s.config().Output.Dir }

// requestRebuild queues a rebuild; requests arriving while one is pending
// collapse into it.
func (s *Server) requestRebuild() {
	select {
	case s.rebuildReq <- struct{}{}:
	default:
	}
}

// Rebuild builds the site once. A failed build leaves the previous output in
// place and is reported to browsers through the error banner.
func (s *Server) Rebuild(ctx context.Context) error {
	if s.configChanged.Swap(false) {
		if err := s.reloadConfig(); err != nil {
			s.fail(err)
			return err
		}
	}
	s.mu.RLock()
	b := s.builder
	s.mu.RUnlock()

	report, err := b.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		s.fail(err)
		return err
	}
	s.status.recordSuccess(report)
	s.logger.Info("Site rebuilt",
		logfields.BuildID(report.BuildID),
		logfields.Count(len(report.Routes)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	s.hub.Broadcast(report.BuildID)
	return nil
}

func (s *Server) fail(err error) {
	now := time.Now()
	s.status.recordFailure(err, now)
	s.logger.Warn("Rebuild failed, serving last good output", logfields.Error(err))
	s.hub.Broadcast("error-" + strconv.FormatInt(now.UnixNano(), 36))
}

func (s *Server) reloadConfig() error {
	current := s.config()
	if current.Source == "" {
		return nil
	}
	cfg, err := config.Load(current.Source)
	if err != nil {
		return err
	}
	if cfg.Content.Dir != current.Content.Dir || cfg.LayoutsDir != current.LayoutsDir ||
		cfg.StaticDir != current.StaticDir || cfg.Output.Dir != current.Output.Dir {
		s.logger.Warn("Directory changes take effect after restarting the preview server")
	}
	s.mu.Lock()
	s.cfg = cfg
	s.builder = s.newBuilder(cfg)
	s.mu.Unlock()
	s.logger.Info("Configuration reloaded", logfields.Path(cfg.Source))
	return nil
}

// Run blocks until ctx is canceled or the HTTP server fails.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.config()
	if err := s.Rebuild(ctx); err != nil {
		s.logger.Error("Initial build failed; fix the error and save to retry", logfields.Error(err))
	}

	addr := net.JoinHostPort(cfg.Serve.Host, strconv.Itoa(cfg.Serve.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to listen").
			WithContext("addr", addr).Build()
	}
	s.addr.Store(ln.Addr().String())
	httpServer := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	s.logger.Info("Preview server listening", logfields.URL("http://"+ln.Addr().String()+"/"))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = httpServer.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	defer func() { _ = watcher.Close() }()
	s.watch(watcher, cfg)

	var sched *rebuildScheduler
	if cfg.Serve.RebuildEvery > 0 {
		sched, err = startRebuildScheduler(cfg.Serve.RebuildEvery, s.requestRebuild)
		if err != nil {
			_ = httpServer.Close()
			return err
		}
	}
	defer sched.Stop()

	deb := newDebouncer(cfg.Serve.Debounce)
	defer deb.Stop()

	workerCtx, stopWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.rebuildWorker(workerCtx)
	}()

	runErr := s.loop(ctx, watcher, deb, serveErr)

	stopWorker()
	wg.Wait()
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Preview server shutdown", logfields.Error(err))
	}
	s.logger.Info("Preview server stopped")
	return runErr
}

func (s *Server) watch(w *fsnotify.Watcher, cfg *config.Config) {
	for _, dir := range []string{cfg.Content.Dir, cfg.LayoutsDir, cfg.StaticDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := addDirsRecursive(w, dir); err != nil {
			s.logger.Warn("Failed to watch directory", logfields.Path(dir), logfields.Error(err))
		}
	}
	if cfg.Source != "" {
		// watch the directory so editors that replace the file are seen
		if err := w.Add(filepath.Dir(cfg.Source)); err != nil {
			s.logger.Warn("Failed to watch configuration", logfields.Path(cfg.Source), logfields.Error(err))
		}
	}
}

func (s *Server) loop(ctx context.Context, w *fsnotify.Watcher, deb *debouncer, serveErr <-chan error) error {
	cfg := s.config()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return errors.WrapError(err, errors.CategoryNetwork, "preview server failed").Build()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if s.handleFileEvent(w, ev, cfg) {
				deb.Trigger()
			}
		case <-deb.C:
			s.requestRebuild()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// handleFileEvent reports whether ev should trigger a rebuild.
func (s *Server) handleFileEvent(w *fsnotify.Watcher, ev fsnotify.Event, cfg *config.Config) bool {
	if cfg.Source != "" && filepath.Clean(ev.Name) == filepath.Clean(cfg.Source) {
		if ev.Op == fsnotify.Chmod {
			return false
		}
		s.configChanged.Store(true)
		return true
	}
	if cfg.Source != "" && filepath.Dir(ev.Name) == filepath.Dir(cfg.Source) && !s.inWatchedTree(ev.Name, cfg) {
		return false
	}
	if shouldIgnoreEvent(ev, cfg.Output.Dir) {
		return false
	}
	watchNewDir(w, ev)
	s.logger.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func (s *Server) inWatchedTree(name string, cfg *config.Config) bool {
	for _, dir := range []string{cfg.Content.Dir, cfg.LayoutsDir, cfg.StaticDir} {
		if dir == "" {
			continue
		}
		if rel, err := filepath.Rel(dir, name); err == nil && rel != ".." &&
			!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (s *Server) rebuildWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rebuildReq:
			_ = s.Rebuild(ctx)
		}
	}
}
