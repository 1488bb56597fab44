package models

// StorageBackend names the persistence medium behind the record store.
type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendBolt   StorageBackend = "bolt"
	BackendMemory StorageBackend = "memory"
)

// StorageConfig selects and locates the persistence medium.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend" mapstructure:"backend"`
	// Path is the data directory (file backend) or database file (bolt
	// backend). Relative paths resolve against the base path.
	Path string `yaml:"path" mapstructure:"path"`
}

// AccountsConfig controls first-run account handling.
type AccountsConfig struct {
	SeedDefaults bool `yaml:"seed_defaults" mapstructure:"seed_defaults"`
}

// AlertConfig holds the precipitation thresholds (mm, strict greater-than)
// and the age after which a zone's latest reading is considered stale.
type AlertConfig struct {
	CriticalMM float64 `yaml:"critical_mm" mapstructure:"critical_mm"`
	ElevatedMM float64 `yaml:"elevated_mm" mapstructure:"elevated_mm"`
	StaleHours int     `yaml:"stale_hours" mapstructure:"stale_hours"`
}

// FallbackConfig is the reading shown for a zone with no observations.
type FallbackConfig struct {
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature"`
	Precipitation float64 `yaml:"precipitation" mapstructure:"precipitation"`
	AgeHours      int     `yaml:"age_hours" mapstructure:"age_hours"`
}

// SlackConfig holds Slack webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotificationConfig controls alert delivery.
type NotificationConfig struct {
	Enabled  bool        `yaml:"enabled" mapstructure:"enabled"`
	Schedule string      `yaml:"schedule" mapstructure:"schedule"`
	Slack    SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// GlobalConfig holds desk-wide settings read from .wdeskconfig.yaml via Viper.
type GlobalConfig struct {
	Storage       StorageConfig      `yaml:"storage" mapstructure:"storage"`
	Accounts      AccountsConfig     `yaml:"accounts" mapstructure:"accounts"`
	Alerts        AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	Fallback      FallbackConfig     `yaml:"fallback" mapstructure:"fallback"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
