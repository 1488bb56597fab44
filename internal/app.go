// Package internal provides the App struct that wires all components of the
// weather desk together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/wayanad-weather/internal/cli"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/internal/integration"
	"github.com/valter-silva-au/wayanad-weather/internal/observability"
	"github.com/valter-silva-au/wayanad-weather/internal/storage"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// EventLogFileName is the JSONL event log kept in the base path.
const EventLogFileName = ".wdesk_events.jsonl"

// boltFileName is the database file the bolt backend keeps in storage.path.
const boltFileName = "wdesk.db"

// App holds all service dependencies for the weather desk.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	// ConfigErr is set when the config file could not be used and the
	// defaults were loaded instead.
	ConfigErr error

	// Storage layer
	Medium storage.Medium
	Store  storage.RecordStore
	IDGen  *storage.IDGenerator

	// Core services
	Notifier core.ChangeNotifier
	Session  *core.AccessControl
	Desk     core.Desk
	Statuses core.StatusAggregator

	// Observability
	EventLog      observability.EventLog
	AlertEngine   observability.AlertEngine
	MetricsCalc   observability.MetricsCalculator
	AlertNotifier observability.Notifier

	// events is the event log as seen by core and storage; nil when the
	// event log could not be opened.
	events core.EventLogger
}

// NewApp creates and wires all components of the weather desk. basePath is
// the directory holding .wdeskconfig.yaml, the event log and (by default)
// the data directory.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Observability ---
	var err error
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.events = &eventLogAdapter{log: app.EventLog}
	}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err == nil {
		err = app.ConfigMgr.ValidateConfig(cfg)
	}
	if err != nil {
		// Non-fatal: a broken config file must not lock users out of
		// 'wdesk init --force'.
		app.ConfigErr = err
		app.logEvent("config.invalid", map[string]any{"error": err.Error()})
		cfg = core.DefaultGlobalConfig()
	}
	app.Config = cfg

	// --- Storage layer ---
	app.Notifier = core.NewChangeNotifier(app.events)
	app.Medium, err = openMedium(basePath, cfg.Storage)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = storage.NewRecordStore(app.Medium, storage.StoreOptions{
		Publisher:    app.Notifier,
		Events:       app.events,
		SeedDefaults: cfg.Accounts.SeedDefaults,
	})
	app.IDGen = storage.NewIDGenerator(nil)

	// --- Core services ---
	app.Session = core.NewAccessControl(app.Store, app.Store, app.events)
	app.Session.Restore()
	app.Desk = core.NewDesk(app.Store, app.Session, app.IDGen, app.events)
	app.Statuses = core.NewStatusAggregator(app.Store, cfg.Alerts, cfg.Fallback, nil)

	// --- Alerts and metrics ---
	thresholds := observability.DefaultAlertThresholds()
	if cfg.Alerts.StaleHours > 0 {
		thresholds.StaleHours = cfg.Alerts.StaleHours
	}
	app.AlertEngine = observability.NewAlertEngine(app.Statuses, app.EventLog, thresholds, nil)
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.AlertNotifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	cli.Desk = app.Desk
	cli.Statuses = app.Statuses
	cli.Notifications = app.Notifier
	cli.ConfigMgr = app.ConfigMgr
	cli.Config = app.Config
	cli.WatchStorage = app.watchStorage()

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.AlertNotifier

	return app, nil
}

// openMedium selects the persistence medium named by the storage config.
// Relative paths resolve against basePath.
func openMedium(basePath string, cfg models.StorageConfig) (storage.Medium, error) {
	path := cfg.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(basePath, path)
	}

	switch cfg.Backend {
	case models.BackendMemory:
		return storage.NewMemoryMedium(), nil
	case models.BackendBolt:
		m, err := storage.NewBoltMedium(filepath.Join(path, boltFileName))
		if err != nil {
			return nil, fmt.Errorf("opening bolt storage: %w", err)
		}
		return m, nil
	case models.BackendFile, "":
		m, err := storage.NewFileMedium(path)
		if err != nil {
			return nil, fmt.Errorf("opening file storage: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// watchStorage returns a function bridging changes made by other processes
// into the change notifier, or nil when the medium is not shared through
// the file system.
func (a *App) watchStorage() func(ctx context.Context) error {
	dir, ok := a.Medium.(integration.WatchedDir)
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		w, err := integration.NewStorageWatcher(dir, a.Notifier, a.events)
		if err != nil {
			return err
		}
		return w.Run(ctx)
	}
}

func (a *App) logEvent(eventType string, data map[string]any) {
	if a.events == nil {
		return
	}
	_ = a.events.LogEvent(eventType, data)
}

// Close releases resources held by the App: the storage medium and the
// event log file handle. It is safe to call on a partially built App.
func (a *App) Close() error {
	var firstErr error
	if a.Medium != nil {
		if err := a.Medium.Close(); err != nil {
			firstErr = fmt.Errorf("closing storage: %w", err)
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the base path for the desk's data. It checks
// the WDESK_HOME env var, then the nearest directory holding a
// .wdeskconfig.yaml, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("WDESK_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	// Walk up to find a directory containing .wdeskconfig.yaml.
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger. Level
// and message are derived from the event type by the log itself.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Type: eventType,
		Data: data,
	})
}
