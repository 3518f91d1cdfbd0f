package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
)

func newGenresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genres and platforms you can ask recommendations for",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			genres, err := cliCtx.Genres.FetchGenres(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", services.UserMessage(err, "Failed to fetch genres"))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "GENRE ID\tNAME")
			for _, g := range genres {
				fmt.Fprintf(w, "%d\t%s\n", g.ID, g.Name)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "PLATFORM ID\tNAME")
			for _, id := range entities.PlatformIDs() {
				fmt.Fprintf(w, "%d\t%s\n", id, entities.PlatformName(id))
			}
			return w.Flush()
		},
	}
}
