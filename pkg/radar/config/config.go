// Package config loads the radarsheet configuration file and applies
// environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GoogleConfig holds the credentials used against the spreadsheet provider.
type GoogleConfig struct {
	// ClientID and ClientSecret identify the OAuth client used for
	// protected-sheet reads.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// APIKey, if set, is used for anonymous reads.
	APIKey string `yaml:"api_key"`
	// Scopes requested at login.
	Scopes []string `yaml:"scopes"`
	// TokenFile is where the cached login token is stored.
	TokenFile string `yaml:"token_file"`
	// CallbackAddr is the listen address for the OAuth callback server.
	CallbackAddr string `yaml:"callback_addr"`
}

// ColumnsConfig overrides the required column set.
type ColumnsConfig struct {
	Required []string `yaml:"required"`
}

// Config is the root configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google"`
	Columns ColumnsConfig `yaml:"columns"`
	// LogMode selects the logging config ("dev" or "prod").
	LogMode string `yaml:"log_mode"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Google: GoogleConfig{
			Scopes: []string{
				"https://www.googleapis.com/auth/spreadsheets.readonly",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			TokenFile:    defaultTokenFile(),
			CallbackAddr: "localhost:7391",
		},
		LogMode: "dev",
	}
}

// Load reads the config file at path, falling back to defaults when the path
// is empty or the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if cfg.Google.TokenFile == "" {
		cfg.Google.TokenFile = defaultTokenFile()
	}
	if cfg.Google.CallbackAddr == "" {
		cfg.Google.CallbackAddr = "localhost:7391"
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Google.ClientID = envString("RADARSHEET_CLIENT_ID", c.Google.ClientID)
	c.Google.ClientSecret = envString("RADARSHEET_CLIENT_SECRET", c.Google.ClientSecret)
	c.Google.APIKey = envString("RADARSHEET_API_KEY", c.Google.APIKey)
	c.LogMode = envString("RADARSHEET_LOG_MODE", c.LogMode)
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".radarsheet", "token.json")
}
