package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the verdict configuration.
type Config struct {
	Backend       string  `json:"backend"`
	BaseURL       string  `json:"baseUrl,omitempty"`
	APIKey        string  `json:"apiKey,omitempty"`
	AnalysisModel string  `json:"analysisModel"`
	ChatModel     string  `json:"chatModel"`
	MaxTokens     int     `json:"maxTokens"`
	AnalysisTemp  float64 `json:"analysisTemperature"`
	FixTemp       float64 `json:"fixTemperature"`

	TimeoutSeconds int     `json:"timeoutSeconds"`
	MaxRetries     int     `json:"maxRetries"`
	InitialDelayMS int     `json:"initialRetryDelayMs"`
	BackoffFactor  float64 `json:"backoffFactor"`

	MaxFileBytes int      `json:"maxFileBytes"`
	MaxLines     int      `json:"maxLines"`
	MinIssues    int      `json:"minIssues"`
	Exclude      []string `json:"exclude"`

	ContextPath  string `json:"contextPath,omitempty"`
	HistoryPath  string `json:"historyPath,omitempty"`
	HistoryLimit int    `json:"historyLimit"`

	Privacy PrivacyConfig `json:"privacy"`
	Logging LoggingConfig `json:"logging"`
}

// PrivacyConfig controls redaction of content sent to the backend.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// LoggingConfig controls the structured log output.
type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Backend:       "ollama",
		BaseURL:       "http://localhost:11434",
		AnalysisModel: "codellama:34b",
		ChatModel:     "deepseek-coder:33b",
		MaxTokens:     4096,
		AnalysisTemp:  0.7,
		FixTemp:       0.2,

		TimeoutSeconds: 120,
		MaxRetries:     3,
		InitialDelayMS: 1000,
		BackoffFactor:  2,

		MaxFileBytes: 1 << 20,
		MaxLines:     2000,
		MinIssues:    2,
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
			"**/venv/**",
			"**/__pycache__/**",
			"**/dist/**",
			"**/build/**",
			"**/*.min.js",
			"**/*.min.css",
		},

		HistoryLimit: 10,

		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*", "**/*.pem"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ConfigDir returns the platform-appropriate config directory for verdict.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "verdict"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "verdict"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "verdict"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "verdict"), nil
	default:
		return filepath.Join(home, ".config", "verdict"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DataPaths resolves the context and history store paths, applying the
// config-dir defaults when the config leaves them empty.
func (c Config) DataPaths() (contextPath, historyPath string, err error) {
	contextPath, historyPath = c.ContextPath, c.HistoryPath
	if contextPath != "" && historyPath != "" {
		return contextPath, historyPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", "", err
	}
	if contextPath == "" {
		contextPath = filepath.Join(dir, "data", "project_context.json")
	}
	if historyPath == "" {
		historyPath = filepath.Join(dir, "data", "analysis_store.json")
	}
	return contextPath, historyPath, nil
}

// LoadFile loads config from the config file. Returns a zero Config and nil
// error if the file does not exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Backend != "" {
		dst.Backend = src.Backend
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.AnalysisModel != "" {
		dst.AnalysisModel = src.AnalysisModel
	}
	if src.ChatModel != "" {
		dst.ChatModel = src.ChatModel
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.AnalysisTemp > 0 {
		dst.AnalysisTemp = src.AnalysisTemp
	}
	if src.FixTemp > 0 {
		dst.FixTemp = src.FixTemp
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.MaxRetries > 0 {
		dst.MaxRetries = src.MaxRetries
	}
	if src.InitialDelayMS > 0 {
		dst.InitialDelayMS = src.InitialDelayMS
	}
	if src.BackoffFactor > 0 {
		dst.BackoffFactor = src.BackoffFactor
	}
	if src.MaxFileBytes > 0 {
		dst.MaxFileBytes = src.MaxFileBytes
	}
	if src.MaxLines > 0 {
		dst.MaxLines = src.MaxLines
	}
	if src.MinIssues > 0 {
		dst.MinIssues = src.MinIssues
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.ContextPath != "" {
		dst.ContextPath = src.ContextPath
	}
	if src.HistoryPath != "" {
		dst.HistoryPath = src.HistoryPath
	}
	if src.HistoryLimit > 0 {
		dst.HistoryLimit = src.HistoryLimit
	}
	// JSON cannot distinguish false from unset, so a file can only turn
	// redaction on, never off.
	dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets || dst.Privacy.RedactSecrets
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("VERDICT_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("VERDICT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" && cfg.Backend == "ollama" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("VERDICT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("VERDICT_ANALYSIS_MODEL"); v != "" {
		cfg.AnalysisModel = v
	}
	if v := os.Getenv("VERDICT_CHAT_MODEL"); v != "" {
		cfg.ChatModel = v
	}
	if v := os.Getenv("VERDICT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("VERDICT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("VERDICT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["backend"]; ok && v != "" {
		cfg.Backend = v
	}
	if v, ok := overrides["baseUrl"]; ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.AnalysisModel = v
	}
	if v, ok := overrides["chatModel"]; ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := overrides["maxRetries"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v, ok := overrides["minIssues"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinIssues = n
		}
	}
	if v, ok := overrides["maxLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxLines = n
		}
	}
	if v, ok := overrides["maxFileBytes"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFileBytes = n
		}
	}
	if v, ok := overrides["timeoutSeconds"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v, ok := overrides["logLevel"]; ok && v != "" {
		cfg.Logging.Level = v
	}
}

// SetField sets a single config field by key name. Returns an error if the
// key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "backend":
		cfg.Backend = value
	case "baseUrl":
		cfg.BaseURL = value
	case "analysisModel":
		cfg.AnalysisModel = value
	case "chatModel":
		cfg.ChatModel = value
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "maxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxRetries must be an integer: %w", err)
		}
		cfg.MaxRetries = n
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "minIssues":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("minIssues must be an integer: %w", err)
		}
		cfg.MinIssues = n
	case "maxLines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxLines must be an integer: %w", err)
		}
		cfg.MaxLines = n
	case "maxFileBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFileBytes must be an integer: %w", err)
		}
		cfg.MaxFileBytes = n
	case "logLevel":
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
