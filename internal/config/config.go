package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources   Sources   `yaml:"sources"`
	Model     Model     `yaml:"model"`
	Fetch     Fetch     `yaml:"fetch"`
	Personas  []Persona `yaml:"personas"`
	Retention Retention `yaml:"retention"`
	Pushover  Pushover  `yaml:"pushover"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

type Sources struct {
	Feeds        []Feed       `yaml:"feeds"`
	Search       SearchConfig `yaml:"search"`
	MaxPerSource int          `yaml:"max_per_source"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type SearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	APIKeyEnv string   `yaml:"api_key_env"`
	Topics    []string `yaml:"topics"`
}

type Model struct {
	URL         string  `yaml:"url"`
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	NumPredict  int     `yaml:"num_predict"`
}

type Fetch struct {
	ProxyHost       string `yaml:"proxy_host"`
	MinArticleChars int    `yaml:"min_article_chars"`
	MinUsableChars  int    `yaml:"min_usable_chars"`
}

// Persona describes one hypothetical reader articles are scored for.
// Personas keep their config order; evaluation follows it.
type Persona struct {
	Name    string `yaml:"name"`
	Profile string `yaml:"profile"`
}

type Retention struct {
	Days int `yaml:"days"`
}

type Pushover struct {
	Enabled      bool   `yaml:"enabled"`
	TokenEnv     string `yaml:"token_env"`
	UserEnv      string `yaml:"user_env"`
	DashboardURL string `yaml:"dashboard_url"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for newsbrief.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "newsbrief")
}

// DataDir returns the XDG data directory for newsbrief.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "newsbrief")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/newsbrief/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'newsbrief init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			Search: SearchConfig{
				APIKeyEnv: "NEWSAPI_KEY",
			},
			MaxPerSource: 3,
		},
		Model: Model{
			URL:         "http://localhost:11434",
			Name:        "llama3",
			Temperature: 0.1,
			NumPredict:  512,
		},
		Fetch: Fetch{
			ProxyHost:       "r.jina.ai",
			MinArticleChars: 500,
			MinUsableChars:  200,
		},
		Retention: Retention{Days: 30},
		Pushover: Pushover{
			TokenEnv: "PUSHOVER_API_TOKEN",
			UserEnv:  "PUSHOVER_USER_KEY",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// PersonaNames returns persona names in config order.
func (c *Config) PersonaNames() []string {
	names := make([]string, len(c.Personas))
	for i, p := range c.Personas {
		names[i] = p.Name
	}
	return names
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
