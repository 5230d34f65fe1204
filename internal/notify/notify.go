// Package notify announces finished site builds to interested subscribers.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultSubject is the NATS subject used when none is configured.
const DefaultSubject = "pagesmith.site.built"

// SiteBuilt is published once a build has been swapped into the output directory.
type SiteBuilt struct {
	BuildID    string    `json:"build_id"`
	OutputDir  string    `json:"output_dir"`
	Routes     []string  `json:"routes"`
	Documents  int       `json:"documents"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// Encode returns the JSON wire form of the event.
func (e SiteBuilt) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers build events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishSiteBuilt(ctx context.Context, event SiteBuilt) error
	Close() error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishSiteBuilt(context.Context, SiteBuilt) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

// MemoryPublisher keeps events in memory. Used by tests and dry runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []SiteBuilt
}

func (m *MemoryPublisher) PublishSiteBuilt(_ context.Context, event SiteBuilt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Events returns a copy of the published events.
func (m *MemoryPublisher) Events() []SiteBuilt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SiteBuilt, len(m.events))
	copy(out, m.events)
	return out
}
