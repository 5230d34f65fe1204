package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

const connectTimeout = 5 * time.Second

// NATSPublisher publishes build events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if url == "" {
		return nil, errors.ConfigError("notify.nats_url is required").
			WithContext(errors.ContextField, "notify.nats_url").
			Build()
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("pagesmith"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}

	slog.Info("NATS publisher connected", logfields.URL(url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishSiteBuilt sends the event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) PublishSiteBuilt(ctx context.Context, event SiteBuilt) error {
	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish site built event").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to flush NATS connection").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}

	slog.Debug("Published site built event", logfields.BuildID(event.BuildID), slog.String("subject", p.subject))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
