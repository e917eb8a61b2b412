package auth

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}

// Profile holds per-user settings the aggregation path needs:
// the timezone used to resolve "today" and the expected supplement
// list that adherence is measured against.
type Profile struct {
	UserID   uint64 `gorm:"primaryKey"`
	Timezone string `gorm:"not null;default:'UTC'"`

	ExpectedSupplements pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	DailyStepGoal    *int64
	DailyHydrationML *float64

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// Location resolves the profile timezone, falling back to UTC on a bad name.
func (p *Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
