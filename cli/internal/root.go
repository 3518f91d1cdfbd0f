package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/services"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/logger"
)

type contextKey string

const cliContextKey contextKey = "cliContext"

// offlineAnnotation marks commands that run without a backend session
const offlineAnnotation = "pixelplaylist/offline"

// CliContext holds shared CLI context
type CliContext struct {
	Config *Config
	API    *client.Client
	Logger *slog.Logger

	Auth            *services.AuthService
	Users           *services.UserService
	Genres          *services.GenreService
	Recommendations *services.RecommendationService
	Playlists       *services.PlaylistService

	creds *FileStore
}

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	logOpts     logger.Options
	contextName string
}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "pixelplaylist",
		Short:         "CLI for PixelPlaylist game recommendations",
		Long:          `A command line interface for discovering games and managing playlists via the PixelPlaylist API.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Install(flags.logOpts); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			log := logger.WithCommand(slog.Default().With("component", "cli"), cmd.CommandPath())
			log.Debug("CLI started")

			if isOffline(cmd) {
				return nil
			}

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if flags.contextName != "" {
				if err := config.SetCurrentContext(flags.contextName); err != nil {
					return err
				}
			}

			cliCtx, err := openCliContext(config, log)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, cliCtx))
			return nil
		},
	}

	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newGenresCommand())
	rootCmd.AddCommand(newRecommendCommand())
	rootCmd.AddCommand(newPlaylistsCommand())
	rootCmd.AddCommand(newUserCommand())

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.contextName, "context", "", "Backend context to use for this command (default: current context)")
	pf.StringVar(&flags.logOpts.Level, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logOpts.Format, "log-format", "text", "Log format (text, json)")
	pf.StringVar(&flags.logOpts.File, "log-file", "", "Append logs to this file instead of stderr")

	return rootCmd
}

// openCliContext wires the API session and domain services for config's current context
func openCliContext(config *Config, log *slog.Logger) (*CliContext, error) {
	sess, err := newSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &CliContext{
		Config:          config,
		API:             sess.api,
		Logger:          log.With("context", config.CurrentContext),
		Auth:            services.NewAuthService(sess.api, sess.creds),
		Users:           services.NewUserService(sess.api),
		Genres:          services.NewGenreService(sess.api),
		Recommendations: services.NewRecommendationService(sess.api),
		Playlists:       services.NewPlaylistService(sess.api),
		creds:           sess.creds,
	}, nil
}

// isOffline reports whether cmd or one of its parents is marked offline
func isOffline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[offlineAnnotation]; ok {
			return true
		}
	}
	return false
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
