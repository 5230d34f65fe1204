package preview

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// rebuildScheduler requests a rebuild on a fixed interval so date-gated posts
// appear without a content change.
type rebuildScheduler struct {
	scheduler gocron.Scheduler
}

func startRebuildScheduler(every time.Duration, trigger func()) (*rebuildScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	if _, err := s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(trigger),
		gocron.WithName("scheduled-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to schedule rebuild").
			WithContext("interval", every.String()).Build()
	}
	s.Start()
	return &rebuildScheduler{scheduler: s}, nil
}

func (r *rebuildScheduler) Stop() {
	if r == nil {
		return
	}
	_ = r.scheduler.Shutdown()
}
