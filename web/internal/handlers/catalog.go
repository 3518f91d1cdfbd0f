package handlers

import (
	"net/http"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

type platformOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RecommendationsPage lists the platforms a query may select
func (h *Handler) RecommendationsPage(w http.ResponseWriter, r *http.Request) {
	ids := entities.PlatformIDs()
	platforms := make([]platformOption, 0, len(ids))
	for _, id := range ids {
		platforms = append(platforms, platformOption{ID: id, Name: entities.PlatformName(id)})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"platforms": platforms})
}

// Genres proxies the backend genre list
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.getServices(w, r).genres.FetchGenres(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to load genres")
		return
	}
	h.writeJSON(w, http.StatusOK, genres)
}

// Recommendations asks the backend for games matching the posted query
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var query entities.RecommendationQuery
	if err := decodeJSON(w, r, &query); err != nil {
		h.writeError(w, err, "Failed to fetch recommendations")
		return
	}

	games, err := h.getServices(w, r).recs.FetchGameRecommendations(r.Context(), query)
	if err != nil {
		h.writeError(w, err, "Failed to fetch recommendations")
		return
	}
	if games == nil {
		games = []entities.GameRecommendation{}
	}
	h.writeJSON(w, http.StatusOK, games)
}
