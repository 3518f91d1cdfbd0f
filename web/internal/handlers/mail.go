package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/urlutil"
	"github.com/devilmonastery/pixelplaylist/web/internal/mail"
)

// APIKeyHeader authenticates server-to-server callers of the mail endpoint
const APIKeyHeader = "X-API-Key"

// SendWelcomeEmail mails a welcome message to a newly registered user.
// Callers authenticate with the configured API key rather than a session.
func (h *Handler) SendWelcomeEmail(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, entities.Failed("Mail is not configured"))
		return
	}

	key := r.Header.Get(APIKeyHeader)
	if h.mailAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.mailAPIKey)) != 1 {
		h.writeJSON(w, http.StatusUnauthorized, entities.Failed("Unauthorized"))
		return
	}

	var req mail.Welcome
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err, "Failed to send email")
		return
	}
	req.To = strings.TrimSpace(req.To)
	req.Name = strings.TrimSpace(req.Name)
	if req.To == "" || req.Name == "" || req.URL == "" {
		h.writeJSON(w, http.StatusBadRequest, entities.Failed("Missing required fields: to, name, or url"))
		return
	}
	if !services.IsValidEmail(req.To) {
		h.writeError(w, &services.ValidationError{Field: "to", Message: "Please enter a valid email address"}, "")
		return
	}
	if err := urlutil.ValidateBaseURL(req.URL); err != nil {
		h.writeError(w, &services.ValidationError{Field: "url", Message: "URL must be an http or https link"}, "")
		return
	}

	if err := h.mailer.SendWelcome(req); err != nil {
		h.log.Error("failed to send welcome mail", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusInternalServerError, entities.Failed("Failed to send email"))
		return
	}

	h.log.Info("welcome mail sent")
	h.writeJSON(w, http.StatusOK, entities.Succeeded("Email sent successfully!"))
}
