package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		URL            string `yaml:"url"`
		QueryTimeout   int    `yaml:"query_timeout"`   // seconds; query/upload/resume
		MetricsTimeout int    `yaml:"metrics_timeout"` // seconds; listings and telemetry
	} `yaml:"server"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	Poll struct {
		Interval  int     `yaml:"interval"` // seconds between dashboard refreshes
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"poll"`

	Upload struct {
		AllowedExtensions []string `yaml:"allowed_extensions"`
		WatchDir          string   `yaml:"watch_dir"`
		SettleSeconds     int      `yaml:"settle_seconds"`
	} `yaml:"upload"`

	Chat struct {
		MaxResults       int      `yaml:"max_results"`
		StatusMessages   []string `yaml:"status_messages"`
		StatusIntervalMs int      `yaml:"status_interval_ms"`
	} `yaml:"chat"`

	UI struct {
		Theme string `yaml:"theme"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/ragdesk/config.yaml"),
			"/etc/ragdesk/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.URL == "" {
		config.Server.URL = "http://localhost:8080"
	}
	if config.Server.QueryTimeout == 0 {
		config.Server.QueryTimeout = 120
	}
	if config.Server.MetricsTimeout == 0 {
		config.Server.MetricsTimeout = 10
	}

	if config.Store.Path == "" {
		home, _ := os.UserHomeDir()
		config.Store.Path = filepath.Join(home, ".ragdesk", "state.db")
	}

	if config.Poll.Interval == 0 {
		config.Poll.Interval = 5
	}
	if config.Poll.RateLimit == 0 {
		config.Poll.RateLimit = 5
	}

	if len(config.Upload.AllowedExtensions) == 0 {
		config.Upload.AllowedExtensions = []string{".pdf", ".docx", ".txt"}
	}
	if config.Upload.SettleSeconds == 0 {
		config.Upload.SettleSeconds = 2
	}

	if config.Chat.MaxResults == 0 {
		config.Chat.MaxResults = 10
	}
	if config.Chat.StatusIntervalMs == 0 {
		config.Chat.StatusIntervalMs = 2000
	}

	if config.UI.Theme == "" {
		config.UI.Theme = "default"
	}
}

func mergeWithEnv(config *Config) {
	if serverURL := os.Getenv("RAGDESK_SERVER_URL"); serverURL != "" {
		config.Server.URL = serverURL
	}
	if dbPath := os.Getenv("RAGDESK_DB_PATH"); dbPath != "" {
		config.Store.Path = dbPath
	}
	if watchDir := os.Getenv("RAGDESK_WATCH_DIR"); watchDir != "" {
		config.Upload.WatchDir = watchDir
	}
}
