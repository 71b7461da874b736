package router

import (
	"net/http"
	"path/filepath"

	"duonest/config"
	"duonest/internal/auth"
	contentHandler "duonest/internal/content"
	"duonest/internal/content/repository"
	"duonest/internal/content/service"
	"duonest/middleware"
	"duonest/pkg/metrics"
	"duonest/pkg/response"
	"duonest/socket"
	"duonest/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(cfg *config.Config, st *store.Store, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()

	// REST API
	contentRepo := repository.NewContentRepository(st)
	contentService := service.NewContentService(contentRepo, hub)
	content := contentHandler.NewContentHandler(contentService)

	mux.HandleFunc("/api/kiss", content.Kiss)
	mux.HandleFunc("/api/gallery", content.Gallery)
	mux.HandleFunc("/api/notes", content.Notes)
	mux.HandleFunc("/api/todos", content.Todos)
	mux.HandleFunc("/api/chats", content.Chats)
	mux.HandleFunc("/api/music", content.Music)

	// WebSocket
	hub.SetPoster(contentService)
	hub.SetAllowedOrigins(cfg.CORSOrigins)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	// Login gate
	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	verifier := auth.NewVerifier(cfg.Password, cfg.PasswordHash)
	login := auth.NewLoginHandler(verifier, sessions, cfg.LoginPerMinute, filepath.Join(cfg.StaticDir, "login.html"))
	mux.HandleFunc(middleware.LoginPath, login.Login)
	mux.HandleFunc("GET /logout", login.Logout)

	// Pages
	pages := &Pages{Dir: cfg.StaticDir}
	mux.HandleFunc("GET /{$}", pages.Index)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "static")))))

	// Ops
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Envelope{Success: true})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	gate := middleware.AuthMiddleware(sessions, middleware.LoginPath, "/logout", "/healthz", "/metrics", "/static/")
	cors := middleware.CORSMiddleware(cfg.CORSOrigins)
	return middleware.Observe(cors(gate(mux)))
}
