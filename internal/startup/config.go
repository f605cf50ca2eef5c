package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"photoframe/internal/logging"
)

const (
	configName = "photoframe"
	configType = "yaml"
	envPrefix  = "PHOTOFRAME"
)

// Config holds all application configuration.
type Config struct {
	PhotoRoot      string `mapstructure:"photo_root"`
	DataDir        string `mapstructure:"data_dir"`
	Port           string `mapstructure:"port"`
	MetricsPort    string `mapstructure:"metrics_port"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`

	FavoritesDir   string   `mapstructure:"favorites_dir"`
	UnfavoritedDir string   `mapstructure:"unfavorited_dir"`
	OmittedDir     string   `mapstructure:"omitted_dir"`
	ExcludedDirs   []string `mapstructure:"excluded_dirs"`

	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	NightlyHour      int           `mapstructure:"nightly_hour"`

	RecentDays      int     `mapstructure:"recent_days"`
	AnniversaryDays int     `mapstructure:"anniversary_days"`
	SmartWeight     float64 `mapstructure:"smart_weight"`
	FavoriteWeight  float64 `mapstructure:"favorite_weight"`

	GeminiAPIKey          string        `mapstructure:"gemini_api_key"`
	GeminiModel           string        `mapstructure:"gemini_model"`
	GeneratorAttempts     int           `mapstructure:"generator_attempts"`
	GeneratorInitialDelay time.Duration `mapstructure:"generator_initial_delay"`

	MemoryLimit string  `mapstructure:"memory_limit"`
	MemoryRatio float64 `mapstructure:"memory_ratio"`

	LogHealthChecks bool `mapstructure:"log_health_checks"`
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("photo_root", "/photos")
	v.SetDefault("data_dir", "/data")
	v.SetDefault("port", "8080")
	v.SetDefault("metrics_port", "9090")
	v.SetDefault("metrics_enabled", true)

	v.SetDefault("favorites_dir", "Favorites")
	v.SetDefault("unfavorited_dir", "Unfavorited")
	v.SetDefault("omitted_dir", "Omitted")
	v.SetDefault("excluded_dirs", []string{"@eaDir", "#recycle"})

	v.SetDefault("snapshot_interval", time.Minute)
	v.SetDefault("nightly_hour", 3)

	v.SetDefault("recent_days", 30)
	v.SetDefault("anniversary_days", 3)
	v.SetDefault("smart_weight", 0.5)
	v.SetDefault("favorite_weight", 0.25)

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "")
	v.SetDefault("generator_attempts", 3)
	v.SetDefault("generator_initial_delay", 2*time.Second)

	v.SetDefault("memory_limit", "")
	v.SetDefault("memory_ratio", 0.85)

	v.SetDefault("log_health_checks", false)
}

// LoadConfig reads defaults, the optional config file and the environment.
// configPath, when set, names the config file explicitly.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	var err error
	if cfg.PhotoRoot, err = filepath.Abs(cfg.PhotoRoot); err != nil {
		return nil, fmt.Errorf("failed to resolve photo root path: %w", err)
	}
	if cfg.DataDir, err = filepath.Abs(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		logging.Debug("Loaded config file %s", used)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.PhotoRoot == "" {
		errs = append(errs, errors.New("photo_root must be set"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must be set"))
	}
	for name, dir := range map[string]string{
		"favorites_dir":   c.FavoritesDir,
		"unfavorited_dir": c.UnfavoritedDir,
		"omitted_dir":     c.OmittedDir,
	} {
		if dir == "" || strings.ContainsAny(dir, `/\`) || dir == "." || dir == ".." {
			errs = append(errs, fmt.Errorf("%s must be a single folder name, got %q", name, dir))
		}
	}
	if c.SnapshotInterval <= 0 {
		errs = append(errs, fmt.Errorf("snapshot_interval must be positive, got %v", c.SnapshotInterval))
	}
	if c.NightlyHour < 0 || c.NightlyHour > 23 {
		errs = append(errs, fmt.Errorf("nightly_hour must be 0-23, got %d", c.NightlyHour))
	}
	if c.RecentDays < 0 || c.AnniversaryDays < 0 {
		errs = append(errs, errors.New("recent_days and anniversary_days must not be negative"))
	}
	if c.SmartWeight < 0 || c.FavoriteWeight < 0 || c.SmartWeight+c.FavoriteWeight > 1 {
		errs = append(errs, fmt.Errorf("smart_weight (%v) and favorite_weight (%v) must be non-negative and sum to at most 1",
			c.SmartWeight, c.FavoriteWeight))
	}
	if c.GeneratorAttempts < 1 {
		errs = append(errs, fmt.Errorf("generator_attempts must be at least 1, got %d", c.GeneratorAttempts))
	}
	if !(c.MemoryRatio > 0 && c.MemoryRatio <= 1) {
		errs = append(errs, fmt.Errorf("memory_ratio must be in (0, 1], got %v", c.MemoryRatio))
	}
	if c.GeneratorInitialDelay < 0 {
		errs = append(errs, fmt.Errorf("generator_initial_delay must not be negative, got %v", c.GeneratorInitialDelay))
	}

	return errors.Join(errs...)
}

// ScanExcluded returns the folder names full scans skip. The omitted
// bucket is always among them.
func (c *Config) ScanExcluded() []string {
	out := slices.Clone(c.ExcludedDirs)
	if !slices.ContainsFunc(out, func(d string) bool { return strings.EqualFold(d, c.OmittedDir) }) {
		out = append(out, c.OmittedDir)
	}
	return out
}

// GeneratorEnabled reports whether a generator API key is configured.
func (c *Config) GeneratorEnabled() bool {
	return c.GeminiAPIKey != ""
}
