package trend

import (
	"context"
	"fmt"
	"math"
	"time"

	"pulselog/internal/event"
	"pulselog/internal/insight"
)

type Direction string

const (
	DirectionImproving    Direction = "improving"
	DirectionDeclining    Direction = "declining"
	DirectionFlat         Direction = "flat"
	DirectionInsufficient Direction = "insufficient_data"
)

type Category string

const (
	CategorySleep        Category = "sleep"
	CategoryMood         Category = "mood"
	CategoryHydration    Category = "hydration"
	CategorySteps        Category = "steps"
	CategoryCaffeine     Category = "caffeine"
	CategoryWorkout      Category = "workout"
	CategoryTasks        Category = "tasks"
	CategorySupplements  Category = "supplements"
	CategoryTips         Category = "tips"
	CategoryAchievements Category = "achievements"

	// Streak breaks are detected from consecutive-day presence, not from
	// half-window magnitude, so they get their own category.
	CategoryTaskStreak Category = "task_streak"
)

// Result is ephemeral: computed fresh on every request, never persisted.
type Result struct {
	Category   Category  `json:"category"`
	Direction  Direction `json:"direction"`
	Magnitude  float64   `json:"magnitude"`
	WindowFrom time.Time `json:"window_from"`
	WindowTo   time.Time `json:"window_to"`
}

type Config struct {
	// Relative-delta band outside of which a trend stops being flat.
	Threshold float64
	// Floor for the relative-delta denominator.
	Epsilon float64
	// Minimum full-completion run length that counts as a streak.
	StreakMinDays int
	// Improvements at or above this magnitude in a safety category are
	// surfaced at high priority instead of low.
	MajorShiftMagnitude float64
}

func DefaultConfig() Config {
	return Config{
		Threshold:           0.10,
		Epsilon:             1e-9,
		StreakMinDays:       3,
		MajorShiftMagnitude: 0.5,
	}
}

// metricSpec binds a trend category to its insight accessor and its
// direction-of-good polarity. New categories are new rows here; the
// classification logic never changes.
type metricSpec struct {
	category     Category
	moreIsBetter bool
	value        func(*insight.DailyInsight) *float64
}

var metricTable = []metricSpec{
	{CategorySleep, true, func(d *insight.DailyInsight) *float64 { return d.SleepHours }},
	{CategoryMood, true, func(d *insight.DailyInsight) *float64 { return d.MoodScore }},
	{CategoryHydration, true, func(d *insight.DailyInsight) *float64 { return d.HydrationML }},
	{CategorySteps, true, func(d *insight.DailyInsight) *float64 { return intValue(d.Steps) }},
	{CategoryCaffeine, false, func(d *insight.DailyInsight) *float64 { return intValue(d.CaffeineDrinks) }},
	{CategoryWorkout, true, func(d *insight.DailyInsight) *float64 { return d.WorkoutMinutes }},
	{CategoryTasks, true, func(d *insight.DailyInsight) *float64 { return d.TaskCompletion }},
	{CategorySupplements, true, func(d *insight.DailyInsight) *float64 { return d.SupplementAdherence }},
	{CategoryTips, true, func(d *insight.DailyInsight) *float64 { v := float64(d.TipsSeen); return &v }},
	{CategoryAchievements, true, func(d *insight.DailyInsight) *float64 { v := float64(d.AchievementsUnlocked); return &v }},
}

func intValue(p *int64) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}

// InsightSource is the windowed read the analyzer runs on, newest day first.
type InsightSource interface {
	Recent(ctx context.Context, userID uint64, days int) ([]insight.DailyInsight, error)
}

type Analyzer struct {
	Insights InsightSource
	Cfg      Config

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Analyze computes one Result per category that has at least one non-absent
// data point in the window. The window splits into an older and a newer half
// by calendar date; a half with no data points degrades the category to
// insufficient_data rather than failing.
func (a *Analyzer) Analyze(ctx context.Context, userID uint64, windowDays int) ([]Result, error) {
	if windowDays < 2 || windowDays > insight.MaxWindowDays {
		return nil, fmt.Errorf("%w: %d days", insight.ErrInvalidWindow, windowDays)
	}

	rows, err := a.Insights.Recent(ctx, userID, windowDays)
	if err != nil {
		return nil, err
	}

	to := event.DayOf(a.now(), time.UTC)
	from := to.AddDate(0, 0, -(windowDays - 1))
	// First day of the newer half.
	mid := from.AddDate(0, 0, windowDays/2)

	var out []Result
	for _, spec := range metricTable {
		var older, newer []float64
		for i := range rows {
			v := spec.value(&rows[i])
			if v == nil {
				continue
			}
			if rows[i].Day.Before(mid) {
				older = append(older, *v)
			} else {
				newer = append(newer, *v)
			}
		}
		if len(older)+len(newer) == 0 {
			continue
		}

		res := Result{Category: spec.category, WindowFrom: from, WindowTo: to}
		if len(older) == 0 || len(newer) == 0 {
			res.Direction = DirectionInsufficient
			out = append(out, res)
			continue
		}

		delta := (mean(newer) - mean(older)) / math.Max(math.Abs(mean(older)), a.Cfg.Epsilon)
		res.Magnitude = math.Abs(delta)

		good := delta
		if !spec.moreIsBetter {
			good = -delta
		}
		switch {
		case good > a.Cfg.Threshold:
			res.Direction = DirectionImproving
		case good < -a.Cfg.Threshold:
			res.Direction = DirectionDeclining
		default:
			res.Direction = DirectionFlat
		}
		out = append(out, res)
	}

	if streak := a.streakResult(rows, from, to, windowDays); streak != nil {
		out = append(out, *streak)
	}
	return out, nil
}

// streakResult detects a run of fully-completed task days that just ended in
// a miss. Unlike the magnitude categories it walks consecutive calendar days:
// the most recent day with tasks scheduled must be a miss no older than
// yesterday, and the run of full-completion days immediately before it must
// be unbroken and long enough. An old break with no task logs since is stale
// news, not a fresh signal.
func (a *Analyzer) streakResult(rows []insight.DailyInsight, from, to time.Time, windowDays int) *Result {
	byDay := make(map[time.Time]*float64, len(rows))
	for i := range rows {
		byDay[rows[i].Day] = rows[i].TaskCompletion
	}

	// Latest day in the window with a task ratio at all.
	var missDay time.Time
	found := false
	for d := to; !d.Before(from); d = d.AddDate(0, 0, -1) {
		if r, ok := byDay[d]; ok && r != nil {
			if *r >= 1 {
				return nil // streak still alive
			}
			missDay = d
			found = true
			break
		}
	}
	if !found || missDay.Before(to.AddDate(0, 0, -1)) {
		return nil
	}

	streak := 0
	for d := missDay.AddDate(0, 0, -1); !d.Before(from); d = d.AddDate(0, 0, -1) {
		r, ok := byDay[d]
		if !ok || r == nil || *r < 1 {
			break
		}
		streak++
	}
	if streak < a.Cfg.StreakMinDays {
		return nil
	}

	return &Result{
		Category:   CategoryTaskStreak,
		Direction:  DirectionDeclining,
		Magnitude:  float64(streak) / float64(windowDays),
		WindowFrom: from,
		WindowTo:   to,
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
