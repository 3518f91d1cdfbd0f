package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage backend contexts",
		Long:        `Manage the named backends the CLI talks to. Each context has its own backend URL, rendering theme, timezone and stored session.`,
		Annotations: map[string]string{offlineAnnotation: ""},
	}

	cmd.AddCommand(newConfigListCommand())
	cmd.AddCommand(newConfigUseCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigRemoveCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// editConfig loads the config, applies edit and saves the result.
// edit returns the message printed on success.
func editConfig(out io.Writer, edit func(*Config) (string, error)) error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	msg, err := edit(config)
	if err != nil {
		return err
	}

	if err := SaveConfig(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(out, msg)
	return nil
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return writeContextTable(cmd.OutOrStdout(), config)
		},
	}
}

// writeContextTable prints contexts sorted by name, marking the current one
func writeContextTable(out io.Writer, config *Config) error {
	if len(config.Contexts) == 0 {
		_, err := fmt.Fprintln(out, "No contexts configured")
		return err
	}

	names := make([]string, 0, len(config.Contexts))
	for name := range config.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CURRENT\tNAME\tBACKEND\tTHEME\tTIMEZONE")
	for _, name := range names {
		ctx := config.Contexts[name]
		current := ""
		if name == config.CurrentContext {
			current = "*"
		}
		tz := ctx.Rendering.Timezone
		if tz == "" {
			tz = "local"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, ctx.Server.URL, ctx.Rendering.Theme, tz)
	}
	return w.Flush()
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Make NAME the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfig(cmd.OutOrStdout(), func(config *Config) (string, error) {
				if err := config.SetCurrentContext(args[0]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Now using context %q", args[0]), nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	var (
		serverURL string
		theme     string
		timezone  string
	)

	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Create a context or update its settings",
		Long: `Create a context or update its settings.

A new context needs --url. For an existing context only the given flags change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return editConfig(cmd.OutOrStdout(), func(config *Config) (string, error) {
				ctx := &Context{}
				ctx.Rendering.Theme = "auto"
				verb := "Created"
				if existing, ok := config.Contexts[name]; ok {
					copied := *existing
					ctx = &copied
					verb = "Updated"
				}

				flags := cmd.Flags()
				if flags.Changed("url") {
					ctx.Server.URL = serverURL
				}
				if flags.Changed("theme") {
					ctx.Rendering.Theme = theme
				}
				if flags.Changed("timezone") {
					ctx.Rendering.Timezone = timezone
				}

				if err := config.AddContext(name, ctx); err != nil {
					return "", fmt.Errorf("invalid context %q: %w", name, err)
				}
				if len(config.Contexts) == 1 {
					config.CurrentContext = name
				}
				return fmt.Sprintf("%s context %q", verb, name), nil
			})
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "Backend base URL (e.g. https://api.example.com)")
	cmd.Flags().StringVar(&theme, "theme", "auto", "Markdown rendering theme (auto, dark, light, notty)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for displayed dates (empty for local time)")

	return cmd
}

func newConfigRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a context",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfig(cmd.OutOrStdout(), func(config *Config) (string, error) {
				if err := config.DeleteContext(args[0]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed context %q", args[0]), nil
			})
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show a context (default: the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if len(args) == 1 {
				if err := config.SetCurrentContext(args[0]); err != nil {
					return err
				}
			}

			ctx, err := config.GetCurrentContext()
			if err != nil {
				return err
			}
			baseURL, _ := config.BaseURL()
			configPath, _ := GetConfigPath()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Context:       %s\n", config.CurrentContext)
			fmt.Fprintf(out, "Backend URL:   %s\n", ctx.Server.URL)
			if baseURL != ctx.Server.URL {
				fmt.Fprintf(out, "Effective URL: %s\n", baseURL)
			}
			fmt.Fprintf(out, "Theme:         %s\n", ctx.Rendering.Theme)
			if ctx.Rendering.Timezone != "" {
				fmt.Fprintf(out, "Timezone:      %s\n", ctx.Rendering.Timezone)
			}
			fmt.Fprintf(out, "Config file:   %s\n", configPath)
			return nil
		},
	}
}
