package insight

import (
	"context"
	"fmt"
	"time"

	"pulselog/internal/event"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxWindowDays bounds every range read.
const MaxWindowDays = 365

// GormStore keeps aggregates in Postgres. The conflict-target upsert is what
// serializes concurrent aggregations of the same (user, day): both writers
// compute a valid row, the store applies them one at a time, and
// source_revision counts how many times the key has been recomputed.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Upsert(ctx context.Context, ins *DailyInsight) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"sleep_hours":           ins.SleepHours,
			"mood_score":            ins.MoodScore,
			"hydration_ml":          ins.HydrationML,
			"steps":                 ins.Steps,
			"caffeine_drinks":       ins.CaffeineDrinks,
			"workout_count":         ins.WorkoutCount,
			"workout_minutes":       ins.WorkoutMinutes,
			"task_completion":       ins.TaskCompletion,
			"supplement_adherence":  ins.SupplementAdherence,
			"tips_seen":             ins.TipsSeen,
			"achievements_unlocked": ins.AchievementsUnlocked,
			"computed_at":           ins.ComputedAt,
			"source_revision":       gorm.Expr("daily_insights.source_revision + 1"),
		}),
	}).Create(ins).Error
}

// Recent returns the user's aggregates over the trailing window, newest day
// first. Days with no aggregate are simply missing from the result — the
// store never synthesizes empty rows.
func (s *GormStore) Recent(ctx context.Context, userID uint64, days int) ([]DailyInsight, error) {
	if days <= 0 || days > MaxWindowDays {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidWindow, days)
	}

	today := event.DayOf(time.Now(), time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	var out []DailyInsight
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, since, today).
		Order("day desc").
		Find(&out).Error
	return out, err
}
