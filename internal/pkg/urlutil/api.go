package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// JoinEndpoint joins a backend base URL and an endpoint path.
// A leading slash on the endpoint is optional, so both "api/genres/" and
// "/api/genres/" resolve to {baseURL}/api/genres/.
func JoinEndpoint(baseURL, endpoint string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

// PlaylistEndpoint returns the backend path for a single playlist.
// Returns a path like: api/playlists/{id}/
func PlaylistEndpoint(id int) string {
	return fmt.Sprintf("api/playlists/%d/", id)
}

// ValidateBaseURL checks that a configured backend URL is absolute http(s).
func ValidateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", baseURL)
	}
	return nil
}
