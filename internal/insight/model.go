package insight

import "time"

// DailyInsight is the canonical aggregate for one (user, day). The composite
// primary key is the at-most-one-per-key invariant; recomputation overwrites
// in place. Metric fields are pointers: nil means the category was never
// logged that day, which is not the same thing as a logged zero.
type DailyInsight struct {
	UserID uint64    `gorm:"primaryKey"`
	Day    time.Time `gorm:"primaryKey;type:date"`

	SleepHours     *float64
	MoodScore      *float64
	HydrationML    *float64
	Steps          *int64
	CaffeineDrinks *int64
	WorkoutCount   *int64
	WorkoutMinutes *float64

	TaskCompletion      *float64
	SupplementAdherence *float64

	// Event-count metrics: zero is a real value here, not absence.
	TipsSeen             int64 `gorm:"not null;default:0"`
	AchievementsUnlocked int64 `gorm:"not null;default:0"`

	ComputedAt time.Time `gorm:"not null"`

	// Incremented by the store on every recompute of the same key.
	// Bookkeeping only; metric fields stay byte-identical across
	// recomputes of unchanged raw events.
	SourceRevision uint64 `gorm:"not null;default:1"`
}
