package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
)

func newRecommendCommand() *cobra.Command {
	var (
		genres    []int
		platforms []int
		budget    float64
		saveAs    string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Get game recommendations",
		Long: `Ask the recommendation engine for games matching genres, platforms and a budget.

Examples:
  # Adventure games for the Switch under 30
  pixelplaylist recommend --genre 31 --platform 130 --budget 30

  # Save the first results as a playlist
  pixelplaylist recommend --genre 12 --platform 6 --budget 20 --save "Cheap RPGs"

  # Write the results as JSON for 'playlists save --from'
  pixelplaylist recommend --platform 167 --budget 60 --json > picks.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			query := entities.RecommendationQuery{
				Genres:    genres,
				Platforms: platforms,
				Budget:    budget,
			}

			games, err := cliCtx.Recommendations.FetchGameRecommendations(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to fetch recommendations"))
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(games); err != nil {
					return err
				}
			} else if err := printMarkdown(cliCtx.Config, recommendationsMarkdown(games)); err != nil {
				return err
			}

			if saveAs == "" {
				return nil
			}

			picks := games
			if len(picks) > entities.MaxPlaylistGames {
				picks = picks[:entities.MaxPlaylistGames]
			}
			playlist, err := cliCtx.Playlists.SavePlaylist(cmd.Context(), saveAs, picks)
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to save playlist"))
			}
			fmt.Fprintf(os.Stderr, "✓ Saved playlist %q (%d games)\n", playlist.Name, len(playlist.Games))
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&genres, "genre", "g", nil, "IGDB genre ID (repeatable; see 'pixelplaylist genres')")
	cmd.Flags().IntSliceVarP(&platforms, "platform", "P", nil, "IGDB platform ID (repeatable; at least one)")
	cmd.Flags().Float64VarP(&budget, "budget", "b", 0, "Maximum price")
	cmd.Flags().StringVar(&saveAs, "save", "", "Save the first results as a playlist with this name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.MarkFlagRequired("platform")

	return cmd
}
