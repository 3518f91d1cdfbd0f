package entities

import (
	"fmt"
	"strings"
)

// Genre is an IGDB genre offered by the backend
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RecommendationQuery is what the user asks the recommendation engine for
type RecommendationQuery struct {
	Genres    []int   `json:"genres"`    // IGDB genre IDs
	Platforms []int   `json:"platforms"` // IGDB platform IDs
	Budget    float64 `json:"budget"`
}

// Price is the best store offer found for a game. Every field may be absent.
type Price struct {
	Price    *float64 `json:"price"`
	Store    *string  `json:"store"`
	Discount *string  `json:"discount"`
	Currency *string  `json:"currency"`
	URL      *string  `json:"url"`
}

// String formats the offer for display, e.g. "12.99 GBP at Steam (-40%)"
func (p *Price) String() string {
	if p == nil || p.Price == nil {
		return "price unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%.2f", *p.Price)
	if p.Currency != nil && *p.Currency != "" {
		b.WriteString(" " + *p.Currency)
	}
	if p.Store != nil && *p.Store != "" {
		b.WriteString(" at " + *p.Store)
	}
	if p.Discount != nil && *p.Discount != "" && *p.Discount != "0" {
		b.WriteString(" (-" + strings.TrimSuffix(*p.Discount, "%") + "%)")
	}
	return b.String()
}

// GameRecommendation is one game suggested by the recommendation engine
type GameRecommendation struct {
	Title     string   `json:"title"`
	Cover     *string  `json:"cover"`
	Platforms []string `json:"platforms"`
	Summary   string   `json:"summary"`
	Genres    []string `json:"genres"`
	Price     *Price   `json:"price,omitempty"`
}
