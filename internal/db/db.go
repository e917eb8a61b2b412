package db

import (
	"fmt"

	"pulselog/internal/auth"
	"pulselog/internal/event"
	"pulselog/internal/insight"
	"pulselog/internal/jobs"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&auth.Profile{},
		&event.Event{},
		&insight.DailyInsight{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Event idempotency: unique per user + idempotency_key where not null
	if err := gdb.Exec(`
create unique index if not exists uq_events_user_idem
on events(user_id, idempotency_key)
where idempotency_key is not null;
`).Error; err != nil {
		return err
	}

	// The (user_id, day) composite PK on daily_insights is the at-most-one
	// aggregate per key guarantee; nothing extra needed there.

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_events_user_day on events(user_id, day, kind);`,
		`create index if not exists idx_insights_user_day on daily_insights(user_id, day desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
		`create index if not exists idx_jobs_user_type on jobs(user_id, type, status);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
