package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/timeutil"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/urlutil"
)

// ConfigPathEnv overrides the location of the CLI config file
const ConfigPathEnv = "PIXELPLAYLIST_CONFIG"

// Context is a named backend with its own rendering settings and session files
type Context struct {
	Server struct {
		URL string `yaml:"url"`
	} `yaml:"server"`
	Rendering struct {
		Theme    string `yaml:"theme"`
		Timezone string `yaml:"timezone,omitempty"`
	} `yaml:"rendering"`
}

// Config represents the CLI configuration with multiple contexts
type Config struct {
	CurrentContext string              `yaml:"current-context"`
	Contexts       map[string]*Context `yaml:"contexts"`
}

// DefaultConfig returns the default configuration with a "local" context
func DefaultConfig() *Config {
	localContext := &Context{}
	localContext.Server.URL = client.DefaultBaseURL
	localContext.Rendering.Theme = "auto"

	return &Config{
		CurrentContext: "local",
		Contexts: map[string]*Context{
			"local": localContext,
		},
	}
}

// GetCurrentContext returns the current active context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}

	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return nil, fmt.Errorf("current context %q not found", c.CurrentContext)
	}

	return ctx, nil
}

// SetCurrentContext sets the current active context
func (c *Config) SetCurrentContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	c.CurrentContext = name
	return nil
}

// AddContext adds or updates a context
func (c *Config) AddContext(name string, ctx *Context) error {
	if err := urlutil.ValidateBaseURL(ctx.Server.URL); err != nil {
		return err
	}
	if !timeutil.IsValidTimezone(ctx.Rendering.Timezone) {
		return fmt.Errorf("unknown timezone %q", ctx.Rendering.Timezone)
	}
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	c.Contexts[name] = ctx
	return nil
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if name == c.CurrentContext {
		return fmt.Errorf("cannot delete current context %q", name)
	}
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	delete(c.Contexts, name)
	return nil
}

// BaseURL returns the backend URL for the current context.
// PIXELPLAYLIST_API_URL takes precedence over the config file.
func (c *Config) BaseURL() (string, error) {
	if u := os.Getenv(client.BaseURLEnv); u != "" {
		return u, nil
	}
	ctx, err := c.GetCurrentContext()
	if err != nil {
		return "", err
	}
	if ctx.Server.URL == "" {
		return client.DefaultBaseURL, nil
	}
	return ctx.Server.URL, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pixelplaylist"), nil
}

// LoadConfig loads configuration from ~/.pixelplaylist
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := DefaultConfig()
		if err := SaveConfig(defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure we have a valid current context
	if config.CurrentContext == "" && len(config.Contexts) > 0 {
		for name := range config.Contexts {
			config.CurrentContext = name
			break
		}
	}

	return &config, nil
}

// SaveConfig saves configuration to ~/.pixelplaylist
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
