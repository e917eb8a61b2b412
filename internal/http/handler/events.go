package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pulselog/internal/auth"
	"pulselog/internal/event"
)

type EventHandler struct {
	Svc *event.Service
}

type logEventReq struct {
	Day         string   `json:"day"` // YYYY-MM-DD, defaults to today (UTC)
	Kind        string   `json:"kind"`
	MeasureType string   `json:"measure_type"`
	Value       *float64 `json:"value"`
	Label       string   `json:"label"`
	Completed   *bool    `json:"completed"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req logEventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	day := time.Now()
	if s := strings.TrimSpace(req.Day); s != "" {
		d, err := event.ParseDay(s)
		if err != nil {
			http.Error(w, "invalid day (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		day = d
	}

	var idem *string
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		idem = &k
	}

	id, err := h.Svc.Log(r.Context(), uid, event.LogInput{
		Day:         day,
		Kind:        event.Kind(strings.ToUpper(strings.TrimSpace(req.Kind))),
		MeasureType: event.MeasurementType(strings.ToUpper(strings.TrimSpace(req.MeasureType))),
		Value:       req.Value,
		Label:       req.Label,
		Completed:   req.Completed,
		IdemKey:     idem,
	})
	if err != nil {
		switch err {
		case event.ErrInvalidEvent:
			http.Error(w, "invalid event", http.StatusBadRequest)
		case event.ErrDuplicate:
			http.Error(w, "duplicate event", http.StatusConflict)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
}

type eventDTO struct {
	ID          uint64    `json:"id"`
	Day         string    `json:"day"`
	Kind        string    `json:"kind"`
	MeasureType string    `json:"measure_type,omitempty"`
	Value       *float64  `json:"value,omitempty"`
	Label       string    `json:"label,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *EventHandler) ListDay(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	day := time.Now()
	if s := strings.TrimSpace(r.URL.Query().Get("day")); s != "" {
		d, err := event.ParseDay(s)
		if err != nil {
			http.Error(w, "invalid day (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		day = d
	}

	evs, err := h.Svc.ListDay(r.Context(), uid, day)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]eventDTO, 0, len(evs))
	for _, e := range evs {
		out = append(out, eventDTO{
			ID:          e.ID,
			Day:         event.FormatDay(e.Day),
			Kind:        string(e.Kind),
			MeasureType: string(e.MeasureType),
			Value:       e.Value,
			Label:       e.Label,
			Completed:   e.Completed,
			CreatedAt:   e.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
