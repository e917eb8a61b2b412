package jobs

import (
	"context"
	"log"
	"time"

	"pulselog/internal/auth"
	"pulselog/internal/event"

	"gorm.io/gorm"
)

// Scheduler fans out one DAILY_AGGREGATE job per user for the current day.
// It ticks well more often than once a day; EnqueueDailyAggregate dedup
// makes the extra passes no-ops, which also catches users created mid-day.
type Scheduler struct {
	DB       *gorm.DB
	Repo     *Repo
	Events   *event.Service
	Interval time.Duration
}

func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	var userIDs []uint64
	if err := s.DB.WithContext(ctx).Model(&auth.User{}).Pluck("id", &userIDs).Error; err != nil {
		log.Printf("scheduler list users error: %v\n", err)
		return
	}

	now := time.Now()
	for _, uid := range userIDs {
		// Each user's "today" follows their profile timezone.
		today := s.Events.DayFor(ctx, uid, now)
		if err := s.Repo.EnqueueDailyAggregate(uid, today); err != nil {
			log.Printf("scheduler enqueue error user=%d: %v\n", uid, err)
		}
	}
}
