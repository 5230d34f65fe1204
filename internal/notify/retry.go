package notify

import (
	"context"

	"git.home.luguber.info/inful/pagesmith/internal/retry"
)

// RetryingPublisher retries transient publish failures with backoff.
type RetryingPublisher struct {
	Publisher
	policy retry.Policy
}

// WithRetry wraps pub so retryable errors are retried according to policy.
func WithRetry(pub Publisher, policy retry.Policy) *RetryingPublisher {
	return &RetryingPublisher{Publisher: pub, policy: policy}
}

func (r *RetryingPublisher) PublishSiteBuilt(ctx context.Context, event SiteBuilt) error {
	return r.policy.Do(ctx, func(ctx context.Context) error {
		return r.Publisher.PublishSiteBuilt(ctx, event)
	})
}
