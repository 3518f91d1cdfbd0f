package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/urlutil"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// WebServerConfig represents the web gateway configuration
type WebServerConfig struct {
	Server  HTTPServer    `yaml:"server"`
	Backend BackendTarget `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	Cookies CookiesConfig `yaml:"cookies"`
	Mail    MailConfig    `yaml:"mail"`
}

// HTTPServer holds HTTP server configuration
type HTTPServer struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"8080"`
}

// BackendTarget holds the REST backend connection info
type BackendTarget struct {
	URL            string `yaml:"url" default:"http://localhost:8000"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"30"`
}

// SessionConfig holds session configuration
type SessionConfig struct {
	Secret string `yaml:"secret"` // 32-byte base64-encoded
	MaxAge int    `yaml:"max_age" default:"604800"`
}

// CookiesConfig controls the attributes of cookies set by the gateway
type CookiesConfig struct {
	Secure bool `yaml:"secure" default:"true"`
}

// MailConfig holds the SMTP relay used for welcome mail. Mail is off when Host is empty.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"587"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	APIKey   string `yaml:"api_key"` // required in the X-API-Key header of mail requests
}

// Enabled reports whether a relay is configured
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`  // Log level: debug, info, warn, error
	Format string `yaml:"format" default:"json"` // Log format: json, text
}

// DefaultConfigPaths defines the default locations to search for web configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/web.yaml",
	"./configs/web.yml",
	"/etc/pixelplaylist/web.yaml",
	"/etc/pixelplaylist/web.yml",
}

// Default returns the configuration used when no file is found
func Default() *WebServerConfig {
	return &WebServerConfig{
		Server: HTTPServer{
			Host: "localhost",
			Port: 8080,
		},
		Backend: BackendTarget{
			URL:            client.DefaultBaseURL,
			TimeoutSeconds: 30,
		},
		Session: SessionConfig{
			MaxAge: 7 * 24 * 60 * 60,
		},
		Cookies: CookiesConfig{
			Secure: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Mail: MailConfig{
			Port: 587,
		},
	}
}

// Load loads the web gateway configuration from the specified file or default locations
func Load(configPath string) (*WebServerConfig, error) {
	config := Default()

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		fmt.Printf("[CONFIG] Loading web config from: %s\n", configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("config file %s not found", configPath)
	} else {
		fmt.Printf("[CONFIG] No web config file found, using defaults\n")
	}

	// Environment variables take precedence
	if backendURL := os.Getenv(client.BaseURLEnv); backendURL != "" {
		config.Backend.URL = backendURL
		fmt.Printf("[CONFIG] Using backend URL from environment: %s\n", backendURL)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// validate performs basic validation on the web configuration
func validate(config *WebServerConfig) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if err := urlutil.ValidateBaseURL(config.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}

	if config.Backend.TimeoutSeconds < 1 {
		return fmt.Errorf("backend.timeout_seconds must be positive")
	}

	if config.Mail.Enabled() {
		if config.Mail.Port < 1 || config.Mail.Port > 65535 {
			return fmt.Errorf("mail.port must be between 1 and 65535")
		}
		if config.Mail.From == "" {
			return fmt.Errorf("mail.from is required when mail.host is set")
		}
		if config.Mail.APIKey == "" {
			return fmt.Errorf("mail.api_key is required when mail.host is set")
		}
	}

	return nil
}
