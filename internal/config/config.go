package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Playback PlaybackConfig `json:"playback" mapstructure:"playback"`
	Download DownloadConfig `json:"download" mapstructure:"download"`
	Network  NetworkConfig  `json:"network" mapstructure:"network"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// PlaybackConfig contains queue engine and facade settings
type PlaybackConfig struct {
	ProgressIntervalMS   int      `json:"progress_interval_ms" mapstructure:"progress_interval_ms"`
	PreviousThresholdSec int      `json:"previous_threshold_sec" mapstructure:"previous_threshold_sec"`
	SkipIntervalSec      int      `json:"skip_interval_sec" mapstructure:"skip_interval_sec"`
	FormatPriority       []string `json:"format_priority" mapstructure:"format_priority"`
}

// DownloadConfig contains download orchestration settings
type DownloadConfig struct {
	DownloadDir       string `json:"download_dir" mapstructure:"download_dir"`
	TempDir           string `json:"temp_dir" mapstructure:"temp_dir"`
	ConcurrentPerShow int    `json:"concurrent_per_show" mapstructure:"concurrent_per_show"`
	EmbedMetadata     bool   `json:"embed_metadata" mapstructure:"embed_metadata"`
	ArtworkSize       int    `json:"artwork_size" mapstructure:"artwork_size"`
}

// NetworkConfig contains network-related settings
type NetworkConfig struct {
	CatalogURL        string `json:"catalog_url" mapstructure:"catalog_url"`
	TimeoutSec        int    `json:"timeout_sec" mapstructure:"timeout_sec"`
	ResolveTimeoutSec int    `json:"resolve_timeout_sec" mapstructure:"resolve_timeout_sec"`
	BandwidthLimit    int    `json:"bandwidth_limit" mapstructure:"bandwidth_limit"` // bytes/sec, 0 = unlimited
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	Format     string `json:"format" mapstructure:"format"`
	Output     string `json:"output" mapstructure:"output"`
	FilePath   string `json:"file_path" mapstructure:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// Load loads configuration from file or creates default
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := v.WriteConfigAs(configPath); err != nil {
				return nil, fmt.Errorf("failed to write default config: %w", err)
			}
		} else if os.IsNotExist(err) {
			if err := v.WriteConfigAs(configPath); err != nil {
				return nil, fmt.Errorf("failed to write default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("TAPEDECK")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Playback.ProgressIntervalMS < 100 {
		return fmt.Errorf("progress interval must be at least 100ms")
	}

	if c.Playback.PreviousThresholdSec < 0 {
		return fmt.Errorf("previous-track threshold cannot be negative")
	}

	if len(c.Playback.FormatPriority) == 0 {
		return fmt.Errorf("format priority list cannot be empty")
	}

	if c.Download.ConcurrentPerShow < 1 {
		return fmt.Errorf("concurrent downloads per show must be at least 1")
	}

	if c.Download.ConcurrentPerShow > 8 {
		return fmt.Errorf("concurrent downloads per show cannot exceed 8")
	}

	if c.Download.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}

	if c.Network.CatalogURL == "" {
		return fmt.Errorf("catalog URL cannot be empty")
	}

	if c.Network.TimeoutSec < 1 {
		return fmt.Errorf("network timeout must be at least 1 second")
	}

	if c.Network.ResolveTimeoutSec < 1 {
		return fmt.Errorf("resolve timeout must be at least 1 second")
	}

	if c.Network.BandwidthLimit < 0 {
		return fmt.Errorf("bandwidth limit cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logging.Format)
	}

	validOutputs := map[string]bool{"file": true, "console": true, "both": true}
	if !validOutputs[c.Logging.Output] {
		return fmt.Errorf("invalid log output: %s (must be file, console, or both)", c.Logging.Output)
	}

	return nil
}

// Save saves the configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.Set("playback", c.Playback)
	v.Set("download", c.Download)
	v.Set("network", c.Network)
	v.Set("logging", c.Logging)

	return v.WriteConfig()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Playback defaults
	v.SetDefault("playback.progress_interval_ms", 500)
	v.SetDefault("playback.previous_threshold_sec", 3)
	v.SetDefault("playback.skip_interval_sec", 15)
	v.SetDefault("playback.format_priority", []string{"VBR MP3", "MP3", "Ogg Vorbis"})

	// Download defaults
	v.SetDefault("download.download_dir", filepath.Join(GetDataDir(), "downloads"))
	v.SetDefault("download.temp_dir", filepath.Join(GetDataDir(), "tmp"))
	v.SetDefault("download.concurrent_per_show", 2)
	v.SetDefault("download.embed_metadata", true)
	v.SetDefault("download.artwork_size", 600)

	// Network defaults
	v.SetDefault("network.catalog_url", "https://catalog.tapedeck.app/api/v1")
	v.SetDefault("network.timeout_sec", 30)
	v.SetDefault("network.resolve_timeout_sec", 10)
	v.SetDefault("network.bandwidth_limit", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "file")
	v.SetDefault("logging.file_path", filepath.Join(GetDataDir(), "logs", "app.log"))
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)
}

// getDefaultConfigPath returns the default configuration file path
func getDefaultConfigPath() string {
	return filepath.Join(GetDataDir(), "settings.json")
}

// ensureConfigDir ensures the configuration directory exists
func ensureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

// GetDataDir returns the application data directory
func GetDataDir() string {
	if dir := os.Getenv("TAPEDECK_DATA_DIR"); dir != "" {
		return dir
	}

	base, err := os.UserConfigDir()
	if err != nil {
		base = os.Getenv("HOME")
	}
	return filepath.Join(base, "Tapedeck")
}
