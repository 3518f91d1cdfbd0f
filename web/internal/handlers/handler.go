package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
	"github.com/devilmonastery/pixelplaylist/web/internal/mail"
	"github.com/devilmonastery/pixelplaylist/web/internal/session"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Handler holds dependencies for all web handlers
type Handler struct {
	backendURL     string
	httpClient     *http.Client
	refresher      client.Refresher
	sessionManager *session.Manager
	mailer         *mail.Mailer
	mailAPIKey     string
	baseLog        *slog.Logger
	log            *slog.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithMailer enables the welcome mail endpoint for callers presenting apiKey
func WithMailer(m *mail.Mailer, apiKey string) Option {
	return func(h *Handler) {
		h.mailer = m
		h.mailAPIKey = apiKey
	}
}

// New creates a new handler with dependencies
func New(backendURL string, httpClient *http.Client, sessionManager *session.Manager, logger *slog.Logger, opts ...Option) *Handler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	h := &Handler{
		backendURL:     backendURL,
		httpClient:     httpClient,
		refresher:      client.NewHTTPRefresher(backendURL, httpClient),
		sessionManager: sessionManager,
		baseLog:        logger,
		log:            logger.With(slog.String("component", "web_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// requestServices are the domain services bound to one request's session
type requestServices struct {
	api       *client.Client
	auth      *services.AuthService
	users     *services.UserService
	genres    *services.GenreService
	recs      *services.RecommendationService
	playlists *services.PlaylistService
}

// getServices creates per-request services whose tokens live in the caller's session and cookies
func (h *Handler) getServices(w http.ResponseWriter, r *http.Request) *requestServices {
	tokens, rs := session.NewTokenManager(h.sessionManager, r, w, h.refresher)

	api := client.NewClient(h.backendURL, tokens,
		client.WithHTTPClient(h.httpClient),
		client.WithClientLogger(h.baseLog),
		client.WithAuthFailureHandler(func() {
			if err := rs.MarkSignedOut(); err != nil {
				h.log.Warn("failed to end session after auth failure", slog.String("error", err.Error()))
			}
		}),
	)

	return &requestServices{
		api:       api,
		auth:      services.NewAuthService(api, rs),
		users:     services.NewUserService(api),
		genres:    services.NewGenreService(api),
		recs:      services.NewRecommendationService(api),
		playlists: services.NewPlaylistService(api),
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &services.ValidationError{Message: "Invalid JSON"}
	}
	return nil
}

// writeJSON writes v as a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeResult writes a Result. A failure is answered with the status of its cause,
// or failureStatus when it has none.
func (h *Handler) writeResult(w http.ResponseWriter, res entities.Result, failureStatus int) {
	if res.Success {
		h.writeJSON(w, http.StatusOK, res)
		return
	}
	status := failureStatus
	if res.Cause != nil {
		status = statusFor(res.Cause)
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", slog.String("error", res.Error))
	}
	h.writeJSON(w, status, res)
}

// writeError converts err into a failed Result with a matching status
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", slog.String("error", err.Error()))
	}
	h.writeJSON(w, status, services.ResultFromError(err, fallback))
}

// statusFor maps domain and client errors to gateway response codes
func statusFor(err error) int {
	var apiErr *client.APIError

	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrAuthRequired), errors.Is(err, client.ErrRefreshFailed):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, services.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, client.ErrNetwork):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
