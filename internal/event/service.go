package event

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulselog/internal/auth"

	"gorm.io/gorm"
)

var ErrInvalidEvent = errors.New("invalid event")
var ErrDuplicate = errors.New("duplicate event")

// DaySnapshot is everything the aggregation pass needs for one (user, day):
// the raw events plus the caller context (expected supplement set).
type DaySnapshot struct {
	Events              []Event
	ExpectedSupplements []string
}

type Service struct {
	DB *gorm.DB
}

type LogInput struct {
	Day         time.Time
	Kind        Kind
	MeasureType MeasurementType
	Value       *float64
	Label       string
	Completed   *bool
	IdemKey     *string
}

// Log appends one raw event. Validation is per kind; the event row itself
// is immutable once written.
func (s *Service) Log(ctx context.Context, userID uint64, in LogInput) (uint64, error) {
	if err := validate(in); err != nil {
		return 0, err
	}

	ev := Event{
		UserID:         userID,
		Day:            DayOf(in.Day, time.UTC),
		Kind:           in.Kind,
		MeasureType:    in.MeasureType,
		Value:          in.Value,
		Label:          strings.TrimSpace(in.Label),
		Completed:      in.Completed,
		IdempotencyKey: in.IdemKey,
		CreatedAt:      time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return ev.ID, nil
}

func validate(in LogInput) error {
	switch in.Kind {
	case KindMeasurement:
		if in.Value == nil {
			return ErrInvalidEvent
		}
		switch in.MeasureType {
		case MeasureSleepHours, MeasureMoodScore, MeasureHydrationML,
			MeasureSteps, MeasureCaffeineDrinks, MeasureWorkoutMinutes:
		default:
			return ErrInvalidEvent
		}
	case KindTask:
		if in.Completed == nil || strings.TrimSpace(in.Label) == "" {
			return ErrInvalidEvent
		}
	case KindSupplement, KindTipView, KindAchievement:
		if strings.TrimSpace(in.Label) == "" {
			return ErrInvalidEvent
		}
	case KindChatSession:
	default:
		return ErrInvalidEvent
	}
	return nil
}

// ListDay returns the raw events of one (user, day), insertion order.
func (s *Service) ListDay(ctx context.Context, userID uint64, day time.Time) ([]Event, error) {
	var out []Event
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, DayOf(day, time.UTC)).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// DayFor resolves the calendar day of t for this user, in the profile
// timezone. No profile means UTC.
func (s *Service) DayFor(ctx context.Context, userID uint64, t time.Time) time.Time {
	var p auth.Profile
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return DayOf(t, time.UTC)
	}
	return DayOf(t, p.Location())
}

// FetchDay is the event-source read the aggregator runs on. It also loads
// the profile's expected supplement set; a missing profile just means no
// adherence context, not an error.
func (s *Service) FetchDay(ctx context.Context, userID uint64, day time.Time) (DaySnapshot, error) {
	snap := DaySnapshot{}

	events, err := s.ListDay(ctx, userID, day)
	if err != nil {
		return snap, err
	}
	snap.Events = events

	var p auth.Profile
	err = s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snap, nil
		}
		return snap, err
	}
	snap.ExpectedSupplements = []string(p.ExpectedSupplements)
	return snap, nil
}
