// Package core contains the business logic of the weather desk: access
// control, the change notifier, zone status aggregation, the role-gated desk
// operations and configuration.
package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the desk configuration file looked up in the base path.
const ConfigFileName = ".wdeskconfig.yaml"

// ConfigurationManager defines the interface for loading, validating and
// writing the desk configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
	WriteDefaultConfig(overwrite bool) (string, error)
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .wdeskconfig.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with the desk defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Storage: models.StorageConfig{
			Backend: models.BackendFile,
			Path:    "data",
		},
		Accounts: models.AccountsConfig{SeedDefaults: true},
		Alerts: models.AlertConfig{
			CriticalMM: 100,
			ElevatedMM: 40,
			StaleHours: 24,
		},
		Fallback: models.FallbackConfig{
			Temperature:   24.5,
			Precipitation: 12,
			AgeHours:      2,
		},
		Notifications: models.NotificationConfig{
			Schedule: "@every 30m",
		},
	}
}

// LoadGlobalConfig reads .wdeskconfig.yaml from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("WDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("accounts.seed_defaults", cfg.Accounts.SeedDefaults)
	v.SetDefault("alerts.critical_mm", cfg.Alerts.CriticalMM)
	v.SetDefault("alerts.elevated_mm", cfg.Alerts.ElevatedMM)
	v.SetDefault("alerts.stale_hours", cfg.Alerts.StaleHours)
	v.SetDefault("fallback.temperature", cfg.Fallback.Temperature)
	v.SetDefault("fallback.precipitation", cfg.Fallback.Precipitation)
	v.SetDefault("fallback.age_hours", cfg.Fallback.AgeHours)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.schedule", cfg.Notifications.Schedule)
	v.SetDefault("notifications.slack.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
		// No config file: defaults plus any WDESK_* environment overrides.
	}

	cfg.Storage.Backend = models.StorageBackend(strings.ToLower(v.GetString("storage.backend")))
	cfg.Storage.Path = v.GetString("storage.path")
	cfg.Accounts.SeedDefaults = v.GetBool("accounts.seed_defaults")
	cfg.Alerts.CriticalMM = v.GetFloat64("alerts.critical_mm")
	cfg.Alerts.ElevatedMM = v.GetFloat64("alerts.elevated_mm")
	cfg.Alerts.StaleHours = v.GetInt("alerts.stale_hours")
	cfg.Fallback.Temperature = v.GetFloat64("fallback.temperature")
	cfg.Fallback.Precipitation = v.GetFloat64("fallback.precipitation")
	cfg.Fallback.AgeHours = v.GetInt("fallback.age_hours")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Schedule = v.GetString("notifications.schedule")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")

	return cfg, nil
}

var validBackends = map[models.StorageBackend]bool{
	models.BackendFile:   true,
	models.BackendBolt:   true,
	models.BackendMemory: true,
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validBackends[cfg.Storage.Backend] {
		errs = append(errs, fmt.Sprintf("storage.backend %q is invalid, must be one of: file, bolt, memory", cfg.Storage.Backend))
	}
	if cfg.Storage.Backend != models.BackendMemory && strings.TrimSpace(cfg.Storage.Path) == "" {
		errs = append(errs, "storage.path must not be empty")
	}
	if cfg.Alerts.ElevatedMM <= 0 {
		errs = append(errs, fmt.Sprintf("alerts.elevated_mm must be positive, got %v", cfg.Alerts.ElevatedMM))
	}
	if cfg.Alerts.CriticalMM <= cfg.Alerts.ElevatedMM {
		errs = append(errs, fmt.Sprintf("alerts.critical_mm (%v) must be greater than alerts.elevated_mm (%v)", cfg.Alerts.CriticalMM, cfg.Alerts.ElevatedMM))
	}
	if cfg.Alerts.StaleHours < 0 {
		errs = append(errs, fmt.Sprintf("alerts.stale_hours must be non-negative, got %d", cfg.Alerts.StaleHours))
	}
	if cfg.Fallback.AgeHours < 0 {
		errs = append(errs, fmt.Sprintf("fallback.age_hours must be non-negative, got %d", cfg.Fallback.AgeHours))
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.slack.webhook_url is required when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// WriteDefaultConfig writes the default configuration to the base path and
// returns the file path. An existing file is left alone unless overwrite is set.
func (cm *viperConfigManager) WriteDefaultConfig(overwrite bool) (string, error) {
	path := filepath.Join(cm.basePath, ConfigFileName)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return path, fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(cm.basePath, 0o750); err != nil {
		return "", fmt.Errorf("creating base directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultGlobalConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
