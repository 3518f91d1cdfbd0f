package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devilmonastery/pixelplaylist/web/internal/middleware"
)

// NewRouter sets up the HTTP router with all routes and middleware
func NewRouter(h *Handler, guard *middleware.RouteGuard, log *slog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RecordMetrics)

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Pages (the route guard decides who reaches them)
	router.HandleFunc("/sign-in", h.SignInPage).Methods("GET")
	router.HandleFunc("/recommendations", h.RecommendationsPage).Methods("GET")
	router.HandleFunc("/settings", h.Settings).Methods("GET")
	router.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	router.HandleFunc("/admin-page", h.AdminPage).Methods("GET")

	// Auth actions
	router.HandleFunc("/sign-in", h.SignIn).Methods("POST")
	router.HandleFunc("/sign-up", h.SignUp).Methods("POST")
	router.HandleFunc("/sign-out", h.SignOut).Methods("POST")

	// JSON API
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", h.Session).Methods("GET")
	api.HandleFunc("/genres", h.Genres).Methods("GET")
	api.HandleFunc("/recommendations", h.Recommendations).Methods("POST")
	api.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	api.HandleFunc("/playlists", h.SavePlaylist).Methods("POST")
	api.HandleFunc("/playlists/{id:[0-9]+}", h.DeletePlaylist).Methods("DELETE")
	api.HandleFunc("/user/profile", h.Settings).Methods("GET")
	api.HandleFunc("/user/profile", h.UpdateProfile).Methods("PATCH")
	api.HandleFunc("/user/change-password", h.ChangePassword).Methods("POST")
	api.HandleFunc("/send-email", h.SendWelcomeEmail).Methods("POST")

	return middleware.LogRequest(log)(guard.Wrap(router))
}
