package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "http://localhost:7071/api"
	defaultFileName = "docsearch.yaml"
)

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// HTTPConfig tunes the HTTP client. A zero timeout means none.
type HTTPConfig struct {
	TimeoutSecs int `yaml:"timeout_secs"`
}

// ChatConfig holds the initial chat toggles.
type ChatConfig struct {
	UseSearch   bool `yaml:"use_search"`
	UseSemantic bool `yaml:"use_semantic"`
}

// SearchConfig configures the search panel.
type SearchConfig struct {
	Top       int  `yaml:"top"`
	UseVector bool `yaml:"use_vector"`
}

// SummarizeConfig configures summarize requests.
type SummarizeConfig struct {
	MaxLength int `yaml:"max_length"`
}

// UIConfig covers terminal presentation.
type UIConfig struct {
	NoticeSeconds int `yaml:"notice_seconds"`
}

// WatchConfig configures the drop folder. An empty Dir disables it.
type WatchConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

// LogConfig selects where the TUI writes its log.
type LogConfig struct {
	File string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	API       APIConfig       `yaml:"api"`
	HTTP      HTTPConfig      `yaml:"http"`
	Chat      ChatConfig      `yaml:"chat"`
	Search    SearchConfig    `yaml:"search"`
	Summarize SummarizeConfig `yaml:"summarize"`
	UI        UIConfig        `yaml:"ui"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`
}

// Timeout returns the HTTP timeout as a duration.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSecs) * time.Second
}

// NoticeDuration is how long success notices stay on screen.
func (c *AppConfig) NoticeDuration() time.Duration {
	return time.Duration(c.UI.NoticeSeconds) * time.Second
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./docsearch.yaml first, then ~/.config/docsearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/docsearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(defaultFileName); err == nil {
		cfg, err := Load(defaultFileName)
		return cfg, defaultFileName, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath is ~/.config/docsearch/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		API:       APIConfig{BaseURL: DefaultBaseURL},
		Chat:      ChatConfig{UseSearch: true},
		Search:    SearchConfig{Top: 5},
		Summarize: SummarizeConfig{MaxLength: 500},
		UI:        UIConfig{NoticeSeconds: 3},
		Log:       LogConfig{File: defaultLogFile()},
	}
}

func defaultLogFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "docsearch.log"
	}
	return filepath.Join(dir, "docsearch", "docsearch.log")
}

func applyConfigDefaults(cfg *AppConfig) {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.HTTP.TimeoutSecs < 0 {
		cfg.HTTP.TimeoutSecs = 0
	}
	if cfg.Search.Top <= 0 {
		cfg.Search.Top = 5
	}
	if cfg.Summarize.MaxLength <= 0 {
		cfg.Summarize.MaxLength = 500
	}
	if cfg.UI.NoticeSeconds <= 0 {
		cfg.UI.NoticeSeconds = 3
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaultLogFile()
	}
}

func applyEnv(cfg *AppConfig) {
	if v := getEnv("DOCSEARCH_API_BASE", ""); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getEnvAsInt("DOCSEARCH_TIMEOUT_SECS", -1); v >= 0 {
		cfg.HTTP.TimeoutSecs = v
	}
	if v := getEnv("DOCSEARCH_WATCH_DIR", ""); v != "" {
		cfg.Watch.Dir = v
	}
	if v := getEnv("DOCSEARCH_LOG_FILE", ""); v != "" {
		cfg.Log.File = v
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
