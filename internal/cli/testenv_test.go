package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/internal/storage"
)

// testDesk wires the package-level services to an in-memory desk and
// restores them when the test ends.
type testDesk struct {
	store    storage.RecordStore
	ids      *storage.IDGenerator
	notifier core.ChangeNotifier
}

func useTestDesk(t *testing.T) *testDesk {
	t.Helper()

	origDesk, origStatuses, origNotifications := Desk, Statuses, Notifications
	origAlerts, origMetrics, origNotifier := AlertEngine, MetricsCalc, Notifier
	t.Cleanup(func() {
		Desk, Statuses, Notifications = origDesk, origStatuses, origNotifications
		AlertEngine, MetricsCalc, Notifier = origAlerts, origMetrics, origNotifier
	})

	notifier := core.NewChangeNotifier(nil)
	store := storage.NewRecordStore(storage.NewMemoryMedium(), storage.StoreOptions{
		Publisher:    notifier,
		SeedDefaults: true,
	})
	cfg := core.DefaultGlobalConfig()

	td := &testDesk{store: store, ids: storage.NewIDGenerator(nil), notifier: notifier}
	Desk = td.newDesk()
	Statuses = core.NewStatusAggregator(store, cfg.Alerts, cfg.Fallback, nil)
	Notifications = notifier
	AlertEngine = nil
	MetricsCalc = nil
	Notifier = nil
	return td
}

// newDesk returns another anonymous session on the same store.
func (td *testDesk) newDesk() core.Desk {
	return core.NewDesk(td.store, core.NewAccessControl(td.store, nil, nil), td.ids, nil)
}

// loginAs signs the package-level desk in.
func loginAs(t *testing.T, email, secret string) {
	t.Helper()
	if _, err := Desk.Session().Login(email, secret); err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
}

// runCLI executes the root command with args and returns its output. Flags
// are reset first because cobra keeps their values between executions.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
