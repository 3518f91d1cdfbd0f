package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/timeutil"
)

func newPlaylistsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playlists",
		Aliases: []string{"playlist"},
		Short:   "Manage saved playlists",
	}

	cmd.AddCommand(newPlaylistsListCommand())
	cmd.AddCommand(newPlaylistsShowCommand())
	cmd.AddCommand(newPlaylistsSaveCommand())
	cmd.AddCommand(newPlaylistsDeleteCommand())
	cmd.AddCommand(newPlaylistsExportCommand())

	return cmd
}

func newPlaylistsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			playlists, err := cliCtx.Playlists.GetPlaylists(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to fetch playlists"))
			}

			if len(playlists) == 0 {
				fmt.Println("No playlists saved yet")
				return nil
			}

			return writePlaylistTable(os.Stdout, playlists, getTimezone(cliCtx.Config))
		},
	}
}

// writePlaylistTable prints one row per playlist, with saved dates in timezone
func writePlaylistTable(out io.Writer, playlists []entities.Playlist, timezone string) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGAMES\tSAVED")
	for _, p := range playlists {
		saved := "-"
		if p.CreatedAt != nil {
			saved = timeutil.FormatShortDate(*p.CreatedAt, timezone)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.Name, len(p.Games), saved)
	}
	return w.Flush()
}

func newPlaylistsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID_OR_NAME",
		Short: "Show the games in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			playlist, err := cliCtx.Playlists.FindPlaylist(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to fetch playlist"))
			}
			return printMarkdown(cliCtx.Config, playlistMarkdown(*playlist, getTimezone(cliCtx.Config)))
		},
	}
}

func newPlaylistsSaveCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "save NAME --from FILE",
		Short: "Save games from a JSON file (as written by 'recommend --json') as a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			games, err := readGames(from)
			if err != nil {
				return err
			}

			playlist, err := cliCtx.Playlists.SavePlaylist(cmd.Context(), args[0], games)
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to save playlist"))
			}

			fmt.Printf("✓ Saved playlist %q (id %d, %d games)\n", playlist.Name, playlist.ID, len(playlist.Games))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "-", "JSON file of games ('-' for stdin)")

	return cmd
}

func newPlaylistsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a playlist",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid playlist ID %q", args[0])
			}

			if err := cliCtx.Playlists.DeletePlaylist(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to delete playlist"))
			}

			fmt.Printf("✓ Deleted playlist %d\n", id)
			return nil
		},
	}
}

func newPlaylistsExportCommand() *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export ID_OR_NAME",
		Short: "Export a playlist as markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			playlist, err := cliCtx.Playlists.FindPlaylist(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to fetch playlist"))
			}

			path, err := writeExport(*playlist, format, dir, getTimezone(cliCtx.Config))
			if err != nil {
				return err
			}

			fmt.Printf("✓ Exported %q to %s\n", playlist.Name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatMarkdown, "Export format (markdown, html)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the export to")

	return cmd
}

// readGames reads a JSON array of games from path, or stdin when path is "-"
func readGames(path string) ([]entities.GameRecommendation, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}

	var games []entities.GameRecommendation
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("failed to parse games: %w", err)
	}
	return games, nil
}
