package preview

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/site"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

// buildStatus tracks the most recent rebuild and whether good output exists.
type buildStatus struct {
	mu          sync.RWMutex
	lastErr     error
	lastBuildID string
	lastBuild   time.Time
	builds      int
	failures    int
	hasGood     bool
}

func (s *buildStatus) recordSuccess(r *site.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	s.lastBuildID = r.BuildID
	s.lastBuild = r.FinishedAt
	s.builds++
	s.hasGood = true
}

func (s *buildStatus) recordFailure(err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.lastBuild = at
	s.builds++
	s.failures++
}

func (s *buildStatus) snapshot() (err error, buildID string, hasGood bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr, s.lastBuildID, s.hasGood
}

// health is the JSON body served at /healthz.
type health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	BuildID   string    `json:"build_id,omitempty"`
	LastBuild time.Time `json:"last_build,omitempty"`
	Builds    int       `json:"builds"`
	Failures  int       `json:"failures"`
	Error     string    `json:"error,omitempty"`
	Clients   int       `json:"livereload_clients"`
}

func (s *buildStatus) health(clients int) health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := health{
		Status:    "ok",
		Version:   version.Version,
		BuildID:   s.lastBuildID,
		LastBuild: s.lastBuild,
		Builds:    s.builds,
		Failures:  s.failures,
		Clients:   clients,
	}
	switch {
	case s.lastErr != nil:
		h.Status = "error"
		h.Error = s.lastErr.Error()
	case !s.hasGood:
		h.Status = "starting"
	}
	return h
}
