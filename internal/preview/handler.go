package preview

import (
	"encoding/json"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/site"
)

// Router returns the preview routes: the live reload stream, health, optional
// metrics and the built site itself.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(noCache)
	if s.liveReload {
		r.Handle("/livereload", s.hub).Methods(http.MethodGet)
		r.HandleFunc("/livereload.js", serveScript).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", s.serveHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	r.PathPrefix("/").HandlerFunc(s.serveSite).Methods(http.MethodGet, http.MethodHead)
	return r
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}

func serveScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(LiveReloadScript))
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.status.health(s.hub.Clients())
	w.Header().Set("Content-Type", "application/json")
	if h.Status == "error" && !s.hasGoodOutput() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(h)
}

func (s *Server) hasGoodOutput() bool {
	_, _, good := s.status.snapshot()
	return good
}

// serveSite serves files from the output directory. HTML responses get the
// live reload script and, after a failed rebuild, an error banner.
func (s *Server) serveSite(w http.ResponseWriter, r *http.Request) {
	root := s.outputDir()
	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	clean := path.Clean(urlPath)
	if strings.HasSuffix(urlPath, "/") && clean != "/" {
		clean += "/"
	}
	file := filepath.Join(root, filepath.FromSlash(site.FileForPath(clean)))

	fi, err := os.Stat(file)
	if err == nil && fi.IsDir() {
		http.Redirect(w, r, clean+"/", http.StatusMovedPermanently)
		return
	}
	if err != nil {
		s.serveNotFound(w, root)
		return
	}

	if strings.EqualFold(filepath.Ext(file), ".html") {
		s.serveHTML(w, file, http.StatusOK)
		return
	}
	f, err := os.Open(file) // #nosec G304 -- confined to the output directory
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

func (s *Server) serveNotFound(w http.ResponseWriter, root string) {
	file := filepath.Join(root, filepath.FromSlash(site.FileForPath(site.NotFoundPath)))
	if _, err := os.Stat(file); err != nil {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	s.serveHTML(w, file, http.StatusNotFound)
}

func (s *Server) serveHTML(w http.ResponseWriter, file string, status int) {
	data, err := os.ReadFile(file) // #nosec G304 -- confined to the output directory
	if err != nil {
		s.logger.Warn("Failed to read page", logfields.Path(file), logfields.Error(err))
		http.Error(w, "failed to read page", http.StatusInternalServerError)
		return
	}
	var extra string
	if buildErr, _, _ := s.status.snapshot(); buildErr != nil {
		extra += errorBanner(buildErr)
	}
	if s.liveReload {
		extra += `<script src="/livereload.js"></script>`
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(inject(data, extra))
}

// inject places snippet before the closing body tag, or appends it.
func inject(page []byte, snippet string) []byte {
	if snippet == "" {
		return page
	}
	idx := strings.LastIndex(strings.ToLower(string(page)), "</body>")
	if idx == -1 {
		return append(page, snippet...)
	}
	out := make([]byte, 0, len(page)+len(snippet))
	out = append(out, page[:idx]...)
	out = append(out, snippet...)
	return append(out, page[idx:]...)
}

func errorBanner(err error) string {
	return `<div id="pagesmith-build-error" style="position:fixed;bottom:0;left:0;right:0;z-index:9999;` +
		`background:#b00020;color:#fff;font:14px/1.4 monospace;padding:12px;white-space:pre-wrap">` +
		`Rebuild failed, showing the last good build.` + "\n" + html.EscapeString(err.Error()) + `</div>`
}
