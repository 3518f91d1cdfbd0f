package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/urlutil"
)

// PlaylistsEndpoint lists and creates the signed-in user's playlists
const PlaylistsEndpoint = "api/playlists/"

// ErrPlaylistNotFound is returned when no playlist matches a lookup
var ErrPlaylistNotFound = errors.New("playlist not found")

// PlaylistService manages saved playlists
type PlaylistService struct {
	api *client.Client
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(api *client.Client) *PlaylistService {
	return &PlaylistService{api: api}
}

// GetPlaylists returns the signed-in user's playlists
func (s *PlaylistService) GetPlaylists(ctx context.Context) ([]entities.Playlist, error) {
	playlists, err := client.Get[[]entities.Playlist](ctx, s.api, PlaylistsEndpoint, client.RequestOptions{RequiresAuth: true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}
	return playlists, nil
}

// SavePlaylist stores a new playlist. Invalid playlists are rejected before any request is sent.
func (s *PlaylistService) SavePlaylist(ctx context.Context, name string, games []entities.GameRecommendation) (*entities.Playlist, error) {
	if err := ValidatePlaylist(name, games); err != nil {
		return nil, err
	}
	if games == nil {
		games = []entities.GameRecommendation{}
	}

	playlist, err := client.Post[entities.Playlist](ctx, s.api, PlaylistsEndpoint, entities.NewPlaylist{
		Name:  name,
		Games: games,
	}, client.RequestOptions{RequiresAuth: true})
	if err != nil {
		return nil, fmt.Errorf("failed to save playlist: %w", err)
	}
	return &playlist, nil
}

// DeletePlaylist removes a playlist by ID
func (s *PlaylistService) DeletePlaylist(ctx context.Context, id int) error {
	if id <= 0 {
		return invalid("id", "Invalid playlist ID")
	}
	if _, err := client.Delete[struct{}](ctx, s.api, urlutil.PlaylistEndpoint(id), client.RequestOptions{RequiresAuth: true}); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}

// FindPlaylist returns the playlist with the given ID or name
func (s *PlaylistService) FindPlaylist(ctx context.Context, idOrName string) (*entities.Playlist, error) {
	playlists, err := s.GetPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if strconv.Itoa(playlists[i].ID) == idOrName || playlists[i].Name == idOrName {
			return &playlists[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlaylistNotFound, idOrName)
}
