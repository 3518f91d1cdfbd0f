package entities

import "time"

// MaxPlaylistGames is the most games a playlist may hold
const MaxPlaylistGames = 7

// Playlist is a named, user-owned collection of recommended games
type Playlist struct {
	ID        int                  `json:"id"`
	Name      string               `json:"name"`
	Games     []GameRecommendation `json:"games"`
	CreatedAt *time.Time           `json:"created_at,omitempty"`
}

// NewPlaylist is the payload for creating a playlist
type NewPlaylist struct {
	Name  string               `json:"name"`
	Games []GameRecommendation `json:"games"`
}
