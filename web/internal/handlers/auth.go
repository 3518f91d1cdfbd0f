package handlers

import (
	"net/http"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// SignInPage reports the sign-in state. Signed-in visitors never reach it; the route guard redirects them.
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.Session(w, r)
}

// SignIn exchanges credentials for tokens, stored in the session and mirrored to cookies
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err, "Login failed")
		return
	}

	res := h.getServices(w, r).auth.SignIn(r.Context(), req.Username, req.Password)
	h.writeResult(w, res, http.StatusBadGateway)
}

// SignUp registers a new account; the caller signs in afterwards
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err, "An unexpected error occurred")
		return
	}

	res := h.getServices(w, r).auth.SignUp(r.Context(), entities.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if res.Success {
		h.writeJSON(w, http.StatusCreated, res)
		return
	}
	h.writeResult(w, res, http.StatusBadGateway)
}

// SignOut clears tokens, cookies and the session
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.getServices(w, r).auth.SignOut(), http.StatusInternalServerError)
}

// Session reports whether the caller holds tokens and who they signed in as
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	svc := h.getServices(w, r)
	h.writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: svc.auth.IsAuthenticated(),
		Username:      svc.auth.Username(),
	})
}
