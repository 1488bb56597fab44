package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/internal/observability"
)

var (
	alertsNotify  bool
	watchSchedule string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active alerts and warnings",
	Long: `Evaluate alert conditions against the latest zone readings and the event
log and display any triggered alerts.

Alerts fire for Critical or Elevated rainfall, zones whose latest reading is
stale, zones without data, and unreadable stored records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (observability may be disabled)")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		printAlerts(cmd.OutOrStdout(), alerts)

		if alertsNotify && len(alerts) > 0 {
			if Notifier == nil {
				return fmt.Errorf("notifications not configured: set notifications.enabled and notifications.slack.webhook_url")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := Notifier.Notify(ctx, alerts); err != nil {
				return fmt.Errorf("sending notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Notification sent.")
		}
		return nil
	},
}

var alertsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Evaluate alerts on a schedule and notify on changes",
	Long: `Evaluate alerts now and then on a cron schedule (notifications.schedule,
default "@every 30m"), sending newly triggered alerts to Slack when
notifications are enabled. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (observability may be disabled)")
		}

		schedule := watchSchedule
		if schedule == "" && Config != nil {
			schedule = Config.Notifications.Schedule
		}
		if schedule == "" {
			schedule = core.DefaultGlobalConfig().Notifications.Schedule
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		w := &alertWatch{engine: AlertEngine, notifier: Notifier, out: out, seen: map[string]bool{}}

		// Run once on startup, then on schedule.
		w.check(ctx)

		c := cron.New()
		if _, err := c.AddFunc(schedule, func() { w.check(ctx) }); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}
		c.Start()
		fmt.Fprintf(out, "Watching alerts (%s). Press Ctrl+C to stop.\n", schedule)

		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

// alertWatch evaluates alerts repeatedly and notifies only alerts that were
// not active on the previous run.
type alertWatch struct {
	engine   observability.AlertEngine
	notifier observability.Notifier
	out      io.Writer
	seen     map[string]bool
}

func (w *alertWatch) check(ctx context.Context) {
	alerts, err := w.engine.Evaluate()
	if err != nil {
		fmt.Fprintf(w.out, "evaluating alerts: %v\n", err)
		return
	}

	active := make(map[string]bool, len(alerts))
	var fresh []observability.Alert
	for _, a := range alerts {
		active[a.ID] = true
		if !w.seen[a.ID] {
			fresh = append(fresh, a)
		}
	}
	w.seen = active

	if len(fresh) == 0 {
		return
	}
	printAlerts(w.out, fresh)
	if w.notifier == nil {
		return
	}
	if err := w.notifier.Notify(ctx, fresh); err != nil {
		// Non-fatal: unsent alerts count as new on the next run.
		for _, a := range fresh {
			delete(w.seen, a.ID)
		}
		fmt.Fprintf(w.out, "sending notification: %v\n", err)
	}
}

func printAlerts(out io.Writer, alerts []observability.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No active alerts.")
		return
	}

	fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
	for _, alert := range alerts {
		severity := strings.ToUpper(string(alert.Severity))
		fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
		fmt.Fprintf(out, "         triggered at %s\n\n", core.FormatTimeIST(alert.TriggeredAt))
	}
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Send the alerts to the configured Slack webhook")
	alertsWatchCmd.Flags().StringVar(&watchSchedule, "schedule", "", `Cron schedule (e.g. "@every 15m", "0 * * * *")`)

	alertsCmd.AddCommand(alertsWatchCmd)
	rootCmd.AddCommand(alertsCmd)
}
