package handlers

import (
	"net/http"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

// Settings returns the signed-in user's profile
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	user, err := h.getServices(w, r).users.Profile(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to load profile")
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// AdminPage returns the profile together with the session state. Only admins may see it.
func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	svc := h.getServices(w, r)
	user, err := svc.users.RequireAdmin(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to load profile")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"session": sessionResponse{Authenticated: svc.auth.IsAuthenticated(), Username: svc.auth.Username()},
	})
}

// UpdateProfile applies a partial profile update
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd entities.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		h.writeError(w, err, "Failed to update profile")
		return
	}

	user, res := h.getServices(w, r).users.UpdateProfile(r.Context(), upd)
	if !res.Success {
		h.writeResult(w, res, http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"result": res, "user": user})
}

// ChangePassword changes the signed-in user's password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var pc entities.PasswordChange
	if err := decodeJSON(w, r, &pc); err != nil {
		h.writeError(w, err, "Failed to change password")
		return
	}
	h.writeResult(w, h.getServices(w, r).users.ChangePassword(r.Context(), pc), http.StatusBadRequest)
}
