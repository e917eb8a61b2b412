package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"pulselog/internal/event"
	"pulselog/internal/insight"
)

type Worker struct {
	ID   string
	Repo *Repo
	Agg  *insight.Aggregator
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("worker claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeDailyAggregate:
		w.handleAggregate(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleAggregate(ctx context.Context, job *Job) {
	type payload struct {
		Day string `json:"day"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}
	day, err := event.ParseDay(p.Day)
	if err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad day in payload")
		return
	}

	if _, err := w.Agg.AggregateDaily(ctx, job.UserID, day); err != nil {
		// Source and store outages are transient and the aggregation is
		// idempotent, so these always retry.
		if errors.Is(err, insight.ErrSourceUnavailable) || errors.Is(err, insight.ErrPersistenceFailure) {
			w.retry(job, err.Error())
			return
		}
		_ = w.Repo.MarkFailed(job.ID, err.Error())
		return
	}

	log.Printf("[AGGREGATE] user=%d day=%s done\n", job.UserID, p.Day)
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
