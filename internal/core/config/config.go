package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultExportTemplate renders a session transcript as markdown.
const DefaultExportTemplate = `# {{title}}

Created: {{created_at}}
Updated: {{updated_at}}

{{#messages}}
## {{role}}

{{content}}
{{#sources}}
- {{filename}}, page {{page}}{{#is_table}} [table]{{/is_table}}
{{/sources}}

{{/messages}}`

const (
	// DefaultServerURL is the backend API base. The backend serves everything
	// under /api on port 5000.
	DefaultServerURL = "http://localhost:5000/api"

	// DefaultRequestTimeout tolerates large document uploads.
	DefaultRequestTimeout = 300 * time.Second

	// DefaultPollInterval is the health probe cadence.
	DefaultPollInterval = 5 * time.Second
)

type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	StorePath      string
	ExportTemplate string
}

type tomlConfig struct {
	ServerURL          string `toml:"server_url"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
	PollIntervalSecs   int    `toml:"poll_interval_secs"`
	StorePath          string `toml:"store_path"`
}

// Load reads config from ~/.config/docchat/. Missing files mean defaults;
// a malformed file is ignored rather than fatal.
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:      DefaultServerURL,
		RequestTimeout: DefaultRequestTimeout,
		PollInterval:   DefaultPollInterval,
		ExportTemplate: DefaultExportTemplate,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults
	}

	configDir := filepath.Join(home, ".config", "docchat")
	cfg.StorePath = filepath.Join(configDir, "sessions.db")

	tomlPath := filepath.Join(configDir, "config.toml")
	templatePath := filepath.Join(configDir, "export_template.txt")

	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err == nil {
			if tc.ServerURL != "" {
				cfg.ServerURL = tc.ServerURL
			}
			if tc.RequestTimeoutSecs > 0 {
				cfg.RequestTimeout = time.Duration(tc.RequestTimeoutSecs) * time.Second
			}
			if tc.PollIntervalSecs > 0 {
				cfg.PollInterval = time.Duration(tc.PollIntervalSecs) * time.Second
			}
			if tc.StorePath != "" {
				cfg.StorePath = tc.StorePath
			}
		}
	}

	// If a custom export template exists, use it
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.ExportTemplate = string(data)
	}

	return cfg, nil
}
