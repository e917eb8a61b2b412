package insight

import (
	"context"
	"fmt"
	"time"

	"pulselog/internal/event"
)

// Source is the read side of the raw event stream.
type Source interface {
	FetchDay(ctx context.Context, userID uint64, day time.Time) (event.DaySnapshot, error)
}

// Store is the keyed persistence for aggregates. Upsert must serialize
// concurrent writers on the (user, day) key.
type Store interface {
	Upsert(ctx context.Context, ins *DailyInsight) error
	Recent(ctx context.Context, userID uint64, days int) ([]DailyInsight, error)
}

type Aggregator struct {
	Source Source
	Store  Store

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// AggregateDaily recomputes the aggregate for one (user, day) from scratch
// and upserts it. Safe to call for past, present or future days; a day with
// no events yields an all-absent aggregate. Idempotent: unchanged raw events
// produce an identical insight modulo ComputedAt/SourceRevision.
func (a *Aggregator) AggregateDaily(ctx context.Context, userID uint64, day time.Time) (*DailyInsight, error) {
	snap, err := a.Source.FetchDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	ins := Compute(userID, day, snap)

	// A cancelled aggregation performs no partial write.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ins.ComputedAt = a.now()
	if err := a.Store.Upsert(ctx, ins); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return ins, nil
}

// Compute is the pure merge of all extractor outputs. Exported so tests can
// exercise the aggregation without any I/O.
func Compute(userID uint64, day time.Time, snap event.DaySnapshot) *DailyInsight {
	m := ExtractMeasurements(snap.Events)

	return &DailyInsight{
		UserID: userID,
		Day:    event.DayOf(day, time.UTC),

		SleepHours:     m.SleepHours,
		MoodScore:      m.MoodScore,
		HydrationML:    m.HydrationML,
		Steps:          m.Steps,
		CaffeineDrinks: m.CaffeineDrinks,
		WorkoutCount:   m.WorkoutCount,
		WorkoutMinutes: m.WorkoutMinutes,

		TaskCompletion:      ExtractTaskCompletion(snap.Events),
		SupplementAdherence: ExtractSupplementAdherence(snap.Events, snap.ExpectedSupplements),

		TipsSeen:             ExtractTipsSeen(snap.Events),
		AchievementsUnlocked: ExtractAchievements(snap.Events),

		SourceRevision: 1,
	}
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
