package http

import (
	"net/http"

	"pulselog/internal/auth"
	"pulselog/internal/config"
	"pulselog/internal/event"
	"pulselog/internal/http/handler"
	mw "pulselog/internal/http/middleware"
	"pulselog/internal/insight"
	"pulselog/internal/trend"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{DB: db}
	r.Route("/me", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Get("/", me.Me)
		r.Get("/profile", me.GetProfile)
		r.Put("/profile", me.PutProfile)
	})

	eventSvc := &event.Service{DB: db}
	store := &insight.GormStore{DB: db}
	agg := &insight.Aggregator{Source: eventSvc, Store: store}
	engine := &trend.Engine{
		Analyzer:   &trend.Analyzer{Insights: store, Cfg: trend.DefaultConfig()},
		WindowDays: cfg.TrendWindowDays,
	}

	evH := &handler.EventHandler{Svc: eventSvc}
	r.Route("/events", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Post("/", evH.Create)
		r.Get("/", evH.ListDay)
	})

	insH := &handler.InsightHandler{
		Agg:        agg,
		Store:      store,
		Engine:     engine,
		Events:     eventSvc,
		WindowDays: cfg.InsightWindowDays,
	}
	r.Route("/insights", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Post("/refresh", insH.Refresh)
		r.Get("/", insH.List)
		r.Get("/suggestions", insH.Suggestions)
	})

	return r
}
