package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/hub"
	"github.com/DoyleJ11/td-sync/internal/ws"
)

type Deps struct {
	Match Match
	Hub   *hub.Hub

	// Origins are the cross-origin hosts allowed on /ws.
	Origins []string

	// AdminTokenHash is a bcrypt hash. Admin routes are not mounted without one.
	AdminTokenHash string
	Logger         *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/match", GetMatch(d.Match))
	if d.Hub != nil {
		r.Get("/ws", ws.Spectate(d.Hub, log, d.Origins))
	}

	if d.AdminTokenHash != "" {
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin([]byte(d.AdminTokenHash)))
			r.Post("/match/start", StartMatch(d.Match, log))
			r.Post("/match/stop", StopMatch(d.Match, log))
		})
	}
	return r
}
