package trend

import (
	"context"
	"testing"
	"time"

	"pulselog/internal/insight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

type fakeInsights struct {
	rows []insight.DailyInsight
	err  error
}

func (f *fakeInsights) Recent(ctx context.Context, userID uint64, days int) ([]insight.DailyInsight, error) {
	return f.rows, f.err
}

func newAnalyzer(rows []insight.DailyInsight) *Analyzer {
	return &Analyzer{
		Insights: &fakeInsights{rows: rows},
		Cfg:      DefaultConfig(),
		Now:      func() time.Time { return testToday },
	}
}

// seriesRows builds one insight per value, oldest value first, ending today.
// Rows come back newest-first, matching the store contract.
func seriesRows(set func(*insight.DailyInsight, float64), vals []float64) []insight.DailyInsight {
	n := len(vals)
	rows := make([]insight.DailyInsight, 0, n)
	for i := n - 1; i >= 0; i-- {
		ins := insight.DailyInsight{
			UserID: 1,
			Day:    testToday.AddDate(0, 0, -(n - 1 - i)),
		}
		set(&ins, vals[i])
		rows = append(rows, ins)
	}
	return rows
}

func setCaffeine(d *insight.DailyInsight, v float64) {
	n := int64(v)
	d.CaffeineDrinks = &n
}

func setSleep(d *insight.DailyInsight, v float64) {
	d.SleepHours = &v
}

func setTasks(d *insight.DailyInsight, v float64) {
	d.TaskCompletion = &v
}

func findResult(t *testing.T, results []Result, cat Category) *Result {
	t.Helper()
	for i := range results {
		if results[i].Category == cat {
			return &results[i]
		}
	}
	return nil
}

func TestAnalyzeCaffeineDropIsImproving(t *testing.T) {
	a := newAnalyzer(seriesRows(setCaffeine, []float64{5, 5, 5, 1, 1, 1, 1}))

	results, err := a.Analyze(context.Background(), 1, 7)
	require.NoError(t, err)

	r := findResult(t, results, CategoryCaffeine)
	require.NotNil(t, r)
	assert.Equal(t, DirectionImproving, r.Direction)
	assert.InDelta(t, 0.8, r.Magnitude, 1e-9)
}

func TestAnalyzeSleepDropIsDeclining(t *testing.T) {
	a := newAnalyzer(seriesRows(setSleep, []float64{8, 8, 8, 4, 4, 4, 4}))

	results, err := a.Analyze(context.Background(), 1, 7)
	require.NoError(t, err)

	r := findResult(t, results, CategorySleep)
	require.NotNil(t, r)
	assert.Equal(t, DirectionDeclining, r.Direction)
	assert.InDelta(t, 0.5, r.Magnitude, 1e-9)
}

func TestAnalyzeWithinThresholdIsFlat(t *testing.T) {
	a := newAnalyzer(seriesRows(setSleep, []float64{7, 7, 7, 7.2, 7.2, 7.2, 7.2}))

	results, err := a.Analyze(context.Background(), 1, 7)
	require.NoError(t, err)

	r := findResult(t, results, CategorySleep)
	require.NotNil(t, r)
	assert.Equal(t, DirectionFlat, r.Direction)
}

func TestAnalyzeEmptyHalfIsInsufficient(t *testing.T) {
	// Data only on the two most recent days: the older half is empty.
	rows := seriesRows(setSleep, []float64{6, 7})
	a := newAnalyzer(rows)

	results, err := a.Analyze(context.Background(), 1, 7)
	require.NoError(t, err)

	r := findResult(t, results, CategorySleep)
	require.NotNil(t, r)
	assert.Equal(t, DirectionInsufficient, r.Direction)
}

func TestAnalyzeSkipsCategoriesWithNoData(t *testing.T) {
	a := newAnalyzer(seriesRows(setSleep, []float64{7, 7, 7, 7, 7, 7, 7}))

	results, err := a.Analyze(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.Nil(t, findResult(t, results, CategoryHydration))
	assert.Nil(t, findResult(t, results, CategoryCaffeine))
}

func TestAnalyzeStreakBreak(t *testing.T) {
	// Four full-completion days, then a miss today.
	a := newAnalyzer(seriesRows(setTasks, []float64{1, 1, 1, 1, 0.5}))

	results, err := a.Analyze(context.Background(), 1, 14)
	require.NoError(t, err)

	r := findResult(t, results, CategoryTaskStreak)
	require.NotNil(t, r)
	assert.Equal(t, DirectionDeclining, r.Direction)
	assert.InDelta(t, 4.0/14.0, r.Magnitude, 1e-9)
}

func TestAnalyzeStreakAliveOrShort(t *testing.T) {
	// Still on a streak: no break to report.
	a := newAnalyzer(seriesRows(setTasks, []float64{1, 1, 1, 1, 1}))
	results, err := a.Analyze(context.Background(), 1, 14)
	require.NoError(t, err)
	assert.Nil(t, findResult(t, results, CategoryTaskStreak))

	// Broken, but the run was too short to call a streak.
	a = newAnalyzer(seriesRows(setTasks, []float64{1, 1, 0}))
	results, err = a.Analyze(context.Background(), 1, 14)
	require.NoError(t, err)
	assert.Nil(t, findResult(t, results, CategoryTaskStreak))
}

func TestAnalyzeStreakBreakMustBeRecent(t *testing.T) {
	ratios := func(days []int, vals []float64) []insight.DailyInsight {
		rows := make([]insight.DailyInsight, 0, len(days))
		for i, off := range days {
			ins := insight.DailyInsight{UserID: 1, Day: testToday.AddDate(0, 0, -off)}
			setTasks(&ins, vals[i])
			rows = append(rows, ins)
		}
		return rows
	}

	// Streak broken ten days ago, no task logs since: too stale to report.
	a := newAnalyzer(ratios([]int{10, 11, 12, 13}, []float64{0, 1, 1, 1}))
	results, err := a.Analyze(context.Background(), 1, 14)
	require.NoError(t, err)
	assert.Nil(t, findResult(t, results, CategoryTaskStreak))

	// Broken yesterday with no log today: still fresh.
	a = newAnalyzer(ratios([]int{1, 2, 3, 4}, []float64{0, 1, 1, 1}))
	results, err = a.Analyze(context.Background(), 1, 14)
	require.NoError(t, err)
	r := findResult(t, results, CategoryTaskStreak)
	require.NotNil(t, r)
	assert.Equal(t, DirectionDeclining, r.Direction)
}

func TestAnalyzeInvalidWindow(t *testing.T) {
	a := newAnalyzer(nil)

	_, err := a.Analyze(context.Background(), 1, 1)
	require.ErrorIs(t, err, insight.ErrInvalidWindow)

	_, err = a.Analyze(context.Background(), 1, insight.MaxWindowDays+1)
	require.ErrorIs(t, err, insight.ErrInvalidWindow)
}
