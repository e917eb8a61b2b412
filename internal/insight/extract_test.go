package insight

import (
	"testing"
	"time"

	"pulselog/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

func measurement(mt event.MeasurementType, v float64) event.Event {
	return event.Event{Kind: event.KindMeasurement, MeasureType: mt, Value: fptr(v)}
}

func TestExtractMeasurementsSumsAndAverages(t *testing.T) {
	events := []event.Event{
		measurement(event.MeasureHydrationML, 250),
		measurement(event.MeasureHydrationML, 500),
		measurement(event.MeasureSteps, 4000),
		measurement(event.MeasureSteps, 2500),
		measurement(event.MeasureCaffeineDrinks, 1),
		measurement(event.MeasureCaffeineDrinks, 2),
		measurement(event.MeasureMoodScore, 4),
		measurement(event.MeasureMoodScore, 8),
		measurement(event.MeasureWorkoutMinutes, 30),
		measurement(event.MeasureWorkoutMinutes, 20),
		measurement(event.MeasureSleepHours, 6.5),
		measurement(event.MeasureSleepHours, 1), // afternoon nap
	}

	m := ExtractMeasurements(events)

	require.NotNil(t, m.HydrationML)
	assert.Equal(t, 750.0, *m.HydrationML)
	require.NotNil(t, m.Steps)
	assert.Equal(t, int64(6500), *m.Steps)
	require.NotNil(t, m.CaffeineDrinks)
	assert.Equal(t, int64(3), *m.CaffeineDrinks)

	// Mood is a point metric: entries average, not sum.
	require.NotNil(t, m.MoodScore)
	assert.Equal(t, 6.0, *m.MoodScore)

	require.NotNil(t, m.WorkoutMinutes)
	assert.Equal(t, 50.0, *m.WorkoutMinutes)
	require.NotNil(t, m.WorkoutCount)
	assert.Equal(t, int64(2), *m.WorkoutCount)

	require.NotNil(t, m.SleepHours)
	assert.Equal(t, 7.5, *m.SleepHours)
}

func TestExtractMeasurementsAbsentVsZero(t *testing.T) {
	// No hydration logged at all: absent.
	m := ExtractMeasurements([]event.Event{measurement(event.MeasureSteps, 100)})
	assert.Nil(t, m.HydrationML)

	// Hydration logged as zero: present, value 0.
	m = ExtractMeasurements([]event.Event{measurement(event.MeasureHydrationML, 0)})
	require.NotNil(t, m.HydrationML)
	assert.Equal(t, 0.0, *m.HydrationML)
}

func TestExtractTaskCompletion(t *testing.T) {
	// No tasks scheduled: ratio absent, not 0 or 1.
	assert.Nil(t, ExtractTaskCompletion(nil))
	assert.Nil(t, ExtractTaskCompletion([]event.Event{measurement(event.MeasureSteps, 1)}))

	events := []event.Event{
		{Kind: event.KindTask, Label: "stretch", Completed: bptr(true)},
		{Kind: event.KindTask, Label: "journal", Completed: bptr(true)},
		{Kind: event.KindTask, Label: "meditate", Completed: bptr(false)},
		{Kind: event.KindTask, Label: "read", Completed: nil},
	}
	ratio := ExtractTaskCompletion(events)
	require.NotNil(t, ratio)
	assert.Equal(t, 0.5, *ratio)
}

func TestExtractSupplementAdherence(t *testing.T) {
	events := []event.Event{
		{Kind: event.KindSupplement, Label: "Magnesium"},
		{Kind: event.KindSupplement, Label: "magnesium"}, // duplicate dose, still one distinct
		{Kind: event.KindSupplement, Label: "creatine"},  // not expected, does not count
	}

	// No expected set supplied: absent.
	assert.Nil(t, ExtractSupplementAdherence(events, nil))

	ratio := ExtractSupplementAdherence(events, []string{"magnesium", "vitamin d"})
	require.NotNil(t, ratio)
	assert.Equal(t, 0.5, *ratio)
}

func TestExtractCountsZeroIsAValue(t *testing.T) {
	assert.Equal(t, int64(0), ExtractTipsSeen(nil))
	assert.Equal(t, int64(0), ExtractAchievements(nil))

	events := []event.Event{
		{Kind: event.KindTipView, Label: "tip-12"},
		{Kind: event.KindTipView, Label: "tip-40"},
		{Kind: event.KindAchievement, Label: "first_week"},
	}
	assert.Equal(t, int64(2), ExtractTipsSeen(events))
	assert.Equal(t, int64(1), ExtractAchievements(events))
}

func TestComputeEmptyDayIsAllAbsent(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ins := Compute(7, day, event.DaySnapshot{})

	assert.Nil(t, ins.SleepHours)
	assert.Nil(t, ins.MoodScore)
	assert.Nil(t, ins.HydrationML)
	assert.Nil(t, ins.Steps)
	assert.Nil(t, ins.CaffeineDrinks)
	assert.Nil(t, ins.WorkoutCount)
	assert.Nil(t, ins.WorkoutMinutes)
	assert.Nil(t, ins.TaskCompletion)
	assert.Nil(t, ins.SupplementAdherence)
	assert.Equal(t, int64(0), ins.TipsSeen)
	assert.Equal(t, int64(0), ins.AchievementsUnlocked)
	assert.Equal(t, day, ins.Day)
}
