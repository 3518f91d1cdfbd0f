package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/timeutil"
)

// renderMarkdown renders markdown content, using glamour for terminal output or plain text otherwise
func renderMarkdown(markdown string, theme string) (string, error) {
	// If stdout is a terminal, render styled markdown using glamour
	if term.IsTerminal(int(os.Stdout.Fd())) {
		rendered, err := glamour.Render(markdown, theme)
		if err != nil {
			// Fall back to plain markdown if rendering fails
			return markdown, nil
		}
		return rendered, nil
	}

	// For non-terminal output (pipes, redirects), return plain markdown
	return markdown, nil
}

// printMarkdown renders and prints markdown using the configured theme
func printMarkdown(config *Config, markdown string) error {
	rendered, err := renderMarkdown(markdown, getTheme(config))
	if err != nil {
		return err
	}

	fmt.Print(rendered)
	return nil
}

// getTheme returns the theme from the current context, or "auto" if config is unavailable
func getTheme(config *Config) string {
	if config == nil {
		return "auto"
	}

	ctx, err := config.GetCurrentContext()
	if err != nil || ctx.Rendering.Theme == "" {
		return "auto"
	}

	return ctx.Rendering.Theme
}

// getTimezone returns the timezone from the current context, or "" for local time
func getTimezone(config *Config) string {
	if config == nil {
		return ""
	}

	ctx, err := config.GetCurrentContext()
	if err != nil {
		return ""
	}

	return ctx.Rendering.Timezone
}

// gameMarkdown writes one game as a markdown section
func gameMarkdown(b *strings.Builder, index int, g entities.GameRecommendation) {
	fmt.Fprintf(b, "### %d. %s\n\n", index, g.Title)
	if len(g.Platforms) > 0 {
		fmt.Fprintf(b, "- **Platforms:** %s\n", strings.Join(g.Platforms, ", "))
	}
	if len(g.Genres) > 0 {
		fmt.Fprintf(b, "- **Genres:** %s\n", strings.Join(g.Genres, ", "))
	}
	if g.Price != nil {
		if g.Price.URL != nil && *g.Price.URL != "" {
			fmt.Fprintf(b, "- **Price:** [%s](%s)\n", g.Price.String(), *g.Price.URL)
		} else {
			fmt.Fprintf(b, "- **Price:** %s\n", g.Price.String())
		}
	}
	if g.Cover != nil && *g.Cover != "" {
		fmt.Fprintf(b, "- **Cover:** %s\n", *g.Cover)
	}
	if g.Summary != "" {
		fmt.Fprintf(b, "\n%s\n", g.Summary)
	}
	b.WriteString("\n")
}

// recommendationsMarkdown formats a list of recommended games
func recommendationsMarkdown(games []entities.GameRecommendation) string {
	var b strings.Builder
	b.WriteString("# Recommended games\n\n")
	if len(games) == 0 {
		b.WriteString("_No games matched your search._\n")
		return b.String()
	}
	for i, g := range games {
		gameMarkdown(&b, i+1, g)
	}
	return b.String()
}

// playlistMarkdown formats a saved playlist, dating it in timezone
func playlistMarkdown(p entities.Playlist, timezone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.CreatedAt != nil {
		fmt.Fprintf(&b, "_Saved %s_\n\n", timeutil.FormatDate(*p.CreatedAt, timezone))
	}
	if len(p.Games) == 0 {
		b.WriteString("_This playlist is empty._\n")
		return b.String()
	}
	for i, g := range p.Games {
		gameMarkdown(&b, i+1, g)
	}
	return b.String()
}
