package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulselog/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap event.DaySnapshot
	err  error
}

func (f *fakeSource) FetchDay(ctx context.Context, userID uint64, day time.Time) (event.DaySnapshot, error) {
	return f.snap, f.err
}

type fakeStore struct {
	upserts []DailyInsight
	err     error
}

func (f *fakeStore) Upsert(ctx context.Context, ins *DailyInsight) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, *ins)
	return nil
}

func (f *fakeStore) Recent(ctx context.Context, userID uint64, days int) ([]DailyInsight, error) {
	return nil, nil
}

func TestAggregateDailyIdempotent(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{snap: event.DaySnapshot{
		Events: []event.Event{
			measurement(event.MeasureSleepHours, 7),
			measurement(event.MeasureHydrationML, 1500),
			{Kind: event.KindTask, Label: "walk", Completed: bptr(true)},
			{Kind: event.KindTipView, Label: "tip-3"},
		},
	}}
	store := &fakeStore{}

	clock := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	agg := &Aggregator{Source: src, Store: store, Now: func() time.Time { return clock }}

	first, err := agg.AggregateDaily(context.Background(), 42, day)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := agg.AggregateDaily(context.Background(), 42, day)
	require.NoError(t, err)

	// Everything but the bookkeeping fields is byte-identical.
	a, b := *first, *second
	a.ComputedAt, b.ComputedAt = time.Time{}, time.Time{}
	a.SourceRevision, b.SourceRevision = 0, 0
	assert.Equal(t, a, b)

	assert.Len(t, store.upserts, 2)
	assert.NotEqual(t, first.ComputedAt, second.ComputedAt)
}

func TestAggregateDailySourceFailureWritesNothing(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	store := &fakeStore{}
	agg := &Aggregator{Source: src, Store: store}

	_, err := agg.AggregateDaily(context.Background(), 1, time.Now())
	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Empty(t, store.upserts)
}

func TestAggregateDailyStoreFailure(t *testing.T) {
	src := &fakeSource{}
	store := &fakeStore{err: errors.New("deadlock detected")}
	agg := &Aggregator{Source: src, Store: store}

	_, err := agg.AggregateDaily(context.Background(), 1, time.Now())
	require.ErrorIs(t, err, ErrPersistenceFailure)
}

func TestAggregateDailyCancelledWritesNothing(t *testing.T) {
	src := &fakeSource{}
	store := &fakeStore{}
	agg := &Aggregator{Source: src, Store: store}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.AggregateDaily(ctx, 1, time.Now())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.upserts)
}

func TestAggregateDailyFutureEmptyDay(t *testing.T) {
	src := &fakeSource{}
	store := &fakeStore{}
	agg := &Aggregator{Source: src, Store: store}

	future := time.Now().AddDate(0, 0, 30)
	ins, err := agg.AggregateDaily(context.Background(), 1, future)
	require.NoError(t, err)

	assert.Nil(t, ins.SleepHours)
	assert.Nil(t, ins.TaskCompletion)
	assert.Len(t, store.upserts, 1)
}
