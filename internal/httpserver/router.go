package httpserver

import (
	"log/slog"
	"net/http"

	"physicstutor/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChatHandlers набор обработчиков веб-интерфейса чата.
type ChatHandlers interface {
	Page(w http.ResponseWriter, r *http.Request)
	ControlsJSON(w http.ResponseWriter, r *http.Request)
	Chat(w http.ResponseWriter, r *http.Request)
}

type RouterDeps struct {
	Logger *slog.Logger
	Chat   ChatHandlers
}

// NewRouter собирает chi-роутер с общими middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Metrics)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/", deps.Chat.Page)
	r.Route("/api", func(r chi.Router) {
		r.Get("/controls", deps.Chat.ControlsJSON)
		r.Post("/chat", deps.Chat.Chat)
	})

	return r
}
