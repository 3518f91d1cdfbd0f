package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

const (
	// GenresEndpoint lists the genres the recommendation engine knows
	GenresEndpoint = "api/genres/"

	// RecommendationsEndpoint generates game recommendations
	RecommendationsEndpoint = "recommendations/"
)

// GenreService lists genres
type GenreService struct {
	api *client.Client
}

// NewGenreService creates a new genre service
func NewGenreService(api *client.Client) *GenreService {
	return &GenreService{api: api}
}

// FetchGenres returns every genre, sorted by name
func (s *GenreService) FetchGenres(ctx context.Context) ([]entities.Genre, error) {
	genres, err := client.Get[[]entities.Genre](ctx, s.api, GenresEndpoint, client.RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	sort.SliceStable(genres, func(i, j int) bool {
		return genres[i].Name < genres[j].Name
	})
	return genres, nil
}

// RecommendationService asks the backend for game recommendations
type RecommendationService struct {
	api *client.Client
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(api *client.Client) *RecommendationService {
	return &RecommendationService{api: api}
}

// FetchGameRecommendations returns games matching the query
func (s *RecommendationService) FetchGameRecommendations(ctx context.Context, q entities.RecommendationQuery) ([]entities.GameRecommendation, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	if q.Genres == nil {
		q.Genres = []int{}
	}

	games, err := client.Post[[]entities.GameRecommendation](ctx, s.api, RecommendationsEndpoint, q, client.RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return games, nil
}
