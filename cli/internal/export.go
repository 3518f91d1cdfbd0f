package cli

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

// Export formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// markdownToHTML converts markdown to sanitized HTML
func markdownToHTML(markdown string) string {
	unsafe := blackfriday.Run([]byte(markdown))

	// Sanitize the HTML to prevent XSS from backend-supplied text
	policy := bluemonday.UGCPolicy()
	return string(policy.SanitizeBytes(unsafe))
}

// exportPlaylist renders a playlist in the given format
func exportPlaylist(p entities.Playlist, format, timezone string) ([]byte, error) {
	md := playlistMarkdown(p, timezone)

	switch format {
	case FormatMarkdown, "md":
		return []byte(md), nil
	case FormatHTML:
		doc := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
			html.EscapeString(p.Name), markdownToHTML(md))
		return []byte(doc), nil
	default:
		return nil, fmt.Errorf("unknown format %q (use %s or %s)", format, FormatMarkdown, FormatHTML)
	}
}

// exportFilename returns a filesystem-safe file name for a playlist export
func exportFilename(p entities.Playlist, format string) string {
	name := slug.Make(p.Name)
	if name == "" {
		name = fmt.Sprintf("playlist-%d", p.ID)
	}
	ext := ".md"
	if format == FormatHTML {
		ext = ".html"
	}
	return name + ext
}

// writeExport writes a playlist export into dir and returns the file path
func writeExport(p entities.Playlist, format, dir, timezone string) (string, error) {
	data, err := exportPlaylist(p, format, timezone)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, exportFilename(p, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
