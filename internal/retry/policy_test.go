package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 5*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
	require.NoError(t, p.Validate())
}

// initial > max is clamped.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	p = NewPolicy("bogus", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestFromNotify(t *testing.T) {
	p := FromNotify(config.NotifyConfig{
		MaxRetries:   4,
		RetryBackoff: config.RetryBackoffLinear,
		RetryInitial: 100 * time.Millisecond,
		RetryMax:     time.Second,
	})
	assert.Equal(t, Policy{Mode: config.RetryBackoffLinear, Initial: 100 * time.Millisecond, Max: time.Second, MaxRetries: 4}, p)
}

func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 100*time.Millisecond, fixed.Delay(i), "attempt %d", i)
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	tests := []struct {
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{linear, 1, 100 * time.Millisecond},
		{linear, 2, 200 * time.Millisecond},
		{linear, 3, 250 * time.Millisecond},
		{exp, 1, 50 * time.Millisecond},
		{exp, 2, 100 * time.Millisecond},
		{exp, 3, 160 * time.Millisecond},
		{exp, 70, 160 * time.Millisecond},
		{exp, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.policy.Delay(tt.attempt), "%s attempt %d", tt.policy.Mode, tt.attempt)
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func transient() error {
	return errors.NewError(errors.CategoryNetwork, "connection reset").Retryable().Build()
}

func TestDo(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return transient()
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return transient()
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return stderrors.New("boom")
		})
		require.EqualError(t, err, "boom")
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		slow := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := slow.Do(ctx, func(context.Context) error {
			calls++
			cancel()
			return transient()
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
