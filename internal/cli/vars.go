package cli

import (
	"context"

	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/internal/observability"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// Desk service instances, set during app initialization in app.go.
var (
	Desk          core.Desk
	Statuses      core.StatusAggregator
	Notifications core.ChangeNotifier
	ConfigMgr     core.ConfigurationManager
	Config        *models.GlobalConfig

	// WatchStorage bridges changes made by other processes into
	// Notifications until ctx is cancelled. Nil when the backend cannot be
	// shared between processes.
	WatchStorage func(ctx context.Context) error
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
