package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/retry"
)

func TestSiteBuiltEncode(t *testing.T) {
	ev := SiteBuilt{
		BuildID:    "b-1",
		OutputDir:  "public",
		Routes:     []string{"/", "/blog/"},
		Documents:  2,
		DurationMS: 42,
		FinishedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	data, err := ev.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "b-1", decoded["build_id"])
	assert.Equal(t, "2024-03-05T10:00:00Z", decoded["finished_at"])
	assert.Len(t, decoded["routes"], 2)
}

func TestMemoryPublisher(t *testing.T) {
	var pub Publisher = &MemoryPublisher{}
	require.NoError(t, pub.PublishSiteBuilt(context.Background(), SiteBuilt{BuildID: "a"}))
	require.NoError(t, pub.PublishSiteBuilt(context.Background(), SiteBuilt{BuildID: "b"}))

	events := pub.(*MemoryPublisher).Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[1].BuildID)
	assert.NoError(t, pub.Close())
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}
	assert.NoError(t, pub.PublishSiteBuilt(context.Background(), SiteBuilt{}))
	assert.NoError(t, pub.Close())
}

func TestNewNATSPublisherRequiresURL(t *testing.T) {
	_, err := NewNATSPublisher("", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
}

type flakyPublisher struct {
	MemoryPublisher
	failures int
	calls    int
}

func (f *flakyPublisher) PublishSiteBuilt(ctx context.Context, event SiteBuilt) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.NewError(errors.CategoryNetwork, "nats unavailable").Retryable().Build()
	}
	return f.MemoryPublisher.PublishSiteBuilt(ctx, event)
}

func TestRetryingPublisher(t *testing.T) {
	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)

	flaky := &flakyPublisher{failures: 2}
	pub := WithRetry(flaky, policy)
	require.NoError(t, pub.PublishSiteBuilt(context.Background(), SiteBuilt{BuildID: "x"}))
	assert.Equal(t, 3, flaky.calls)
	assert.Len(t, flaky.Events(), 1)
	assert.NoError(t, pub.Close())

	down := &flakyPublisher{failures: 10}
	err := WithRetry(down, policy).PublishSiteBuilt(context.Background(), SiteBuilt{BuildID: "y"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	assert.Equal(t, 3, down.calls)
}
