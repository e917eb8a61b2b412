package insight

import (
	"strings"

	"pulselog/internal/event"
)

// Extractors are pure and total over the raw events of a single (user, day).
// A category with no contributing events comes back nil ("absent"), never
// zero — downstream trend math must be able to tell the two apart. The two
// count metrics (tips, achievements) are the exception: zero is a value.

// Measurements is the partial contribution of MEASUREMENT events.
type Measurements struct {
	SleepHours     *float64
	MoodScore      *float64
	HydrationML    *float64
	Steps          *int64
	CaffeineDrinks *int64
	WorkoutCount   *int64
	WorkoutMinutes *float64
}

// ExtractMeasurements folds every measurement entry of the day. Cumulative
// metrics (sleep, hydration, steps, caffeine, workout minutes) sum across
// entries; mood is a point metric and averages. Last-write-wins is
// deliberately not used: all entries for the day contribute.
func ExtractMeasurements(events []event.Event) Measurements {
	var m Measurements
	var moodSum float64
	var moodN int

	for _, ev := range events {
		if ev.Kind != event.KindMeasurement || ev.Value == nil {
			continue
		}
		v := *ev.Value
		switch ev.MeasureType {
		case event.MeasureSleepHours:
			m.SleepHours = addFloat(m.SleepHours, v)
		case event.MeasureMoodScore:
			moodSum += v
			moodN++
		case event.MeasureHydrationML:
			m.HydrationML = addFloat(m.HydrationML, v)
		case event.MeasureSteps:
			m.Steps = addInt(m.Steps, int64(v))
		case event.MeasureCaffeineDrinks:
			m.CaffeineDrinks = addInt(m.CaffeineDrinks, int64(v))
		case event.MeasureWorkoutMinutes:
			m.WorkoutMinutes = addFloat(m.WorkoutMinutes, v)
			m.WorkoutCount = addInt(m.WorkoutCount, 1)
		}
	}

	if moodN > 0 {
		avg := moodSum / float64(moodN)
		m.MoodScore = &avg
	}
	return m
}

// ExtractTaskCompletion returns completed/scheduled for the day, or nil when
// no tasks were scheduled (a ratio over zero tasks is absent, not 0 or 1).
func ExtractTaskCompletion(events []event.Event) *float64 {
	var scheduled, completed int
	for _, ev := range events {
		if ev.Kind != event.KindTask {
			continue
		}
		scheduled++
		if ev.Completed != nil && *ev.Completed {
			completed++
		}
	}
	if scheduled == 0 {
		return nil
	}
	ratio := float64(completed) / float64(scheduled)
	return &ratio
}

// ExtractSupplementAdherence returns distinct-logged / distinct-expected.
// With no expected set there is nothing to adhere to, so the ratio is absent.
// Logging a supplement outside the expected set does not raise the ratio.
func ExtractSupplementAdherence(events []event.Event, expected []string) *float64 {
	if len(expected) == 0 {
		return nil
	}

	want := make(map[string]struct{}, len(expected))
	for _, s := range expected {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			want[s] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}

	taken := make(map[string]struct{})
	for _, ev := range events {
		if ev.Kind != event.KindSupplement {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(ev.Label))
		if _, ok := want[name]; ok {
			taken[name] = struct{}{}
		}
	}

	ratio := float64(len(taken)) / float64(len(want))
	return &ratio
}

// ExtractTipsSeen counts tip views. Zero is a valid value.
func ExtractTipsSeen(events []event.Event) int64 {
	var n int64
	for _, ev := range events {
		if ev.Kind == event.KindTipView {
			n++
		}
	}
	return n
}

// ExtractAchievements counts unlocked achievements. Zero is a valid value.
func ExtractAchievements(events []event.Event) int64 {
	var n int64
	for _, ev := range events {
		if ev.Kind == event.KindAchievement {
			n++
		}
	}
	return n
}

func addFloat(acc *float64, v float64) *float64 {
	if acc == nil {
		return &v
	}
	sum := *acc + v
	return &sum
}

func addInt(acc *int64, v int64) *int64 {
	if acc == nil {
		return &v
	}
	sum := *acc + v
	return &sum
}
