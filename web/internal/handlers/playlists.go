package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
)

// ListPlaylists returns the signed-in user's playlists
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.getServices(w, r).playlists.GetPlaylists(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to load playlists")
		return
	}
	if playlists == nil {
		playlists = []entities.Playlist{}
	}
	h.writeJSON(w, http.StatusOK, playlists)
}

// SavePlaylist stores a new playlist for the signed-in user
func (h *Handler) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	var req entities.NewPlaylist
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err, "Failed to save playlist")
		return
	}

	playlist, err := h.getServices(w, r).playlists.SavePlaylist(r.Context(), req.Name, req.Games)
	if err != nil {
		h.writeError(w, err, "Failed to save playlist")
		return
	}
	h.writeJSON(w, http.StatusCreated, playlist)
}

// DeletePlaylist removes the playlist named by the {id} route variable
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, &services.ValidationError{Field: "id", Message: "Invalid playlist ID"}, "")
		return
	}

	if err := h.getServices(w, r).playlists.DeletePlaylist(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
