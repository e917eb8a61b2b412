package event

import "time"

// Kind discriminates the raw event variants. Events are append-only:
// corrections are logged as additional entries for the same day, and the
// aggregation pass folds them all in.
type Kind string

const (
	KindMeasurement Kind = "MEASUREMENT"
	KindTask        Kind = "TASK"
	KindTipView     Kind = "TIP_VIEW"
	KindSupplement  Kind = "SUPPLEMENT"
	KindAchievement Kind = "ACHIEVEMENT"
	KindChatSession Kind = "CHAT_SESSION"
)

// MeasurementType selects the metric a MEASUREMENT event contributes to.
type MeasurementType string

const (
	MeasureSleepHours     MeasurementType = "SLEEP_HOURS"
	MeasureMoodScore      MeasurementType = "MOOD_SCORE"
	MeasureHydrationML    MeasurementType = "HYDRATION_ML"
	MeasureSteps          MeasurementType = "STEPS"
	MeasureCaffeineDrinks MeasurementType = "CAFFEINE_DRINKS"
	MeasureWorkoutMinutes MeasurementType = "WORKOUT_MINUTES"
)

// Event is one immutable raw record. An event belongs to exactly one
// calendar day, resolved by the caller in the user's timezone.
// Use IdempotencyKey to prevent duplicates per user (optional header).
type Event struct {
	ID     uint64    `gorm:"primaryKey"`
	UserID uint64    `gorm:"index;not null"`
	Day    time.Time `gorm:"type:date;not null"`
	Kind   Kind      `gorm:"type:text;not null"`

	// MEASUREMENT events only.
	MeasureType MeasurementType `gorm:"type:text;not null;default:''"`
	Value       *float64

	// Task title, supplement name, tip id or achievement code.
	Label string `gorm:"type:text;not null;default:''"`

	// TASK events only.
	Completed *bool

	IdempotencyKey *string   `gorm:"index"`
	CreatedAt      time.Time `gorm:"not null;default:now()"`
}

// DayOf truncates t to its calendar day in loc, normalized to midnight UTC
// so date-typed columns and map keys compare cleanly.
func DayOf(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD day string.
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(d time.Time) string {
	return d.Format("2006-01-02")
}
