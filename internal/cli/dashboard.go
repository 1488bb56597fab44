package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// Dashboard panel indices.
const (
	panelZones = iota
	panelObservations
	panelAlerts
	panelCount
)

// maxDashboardRows caps the observation table.
const maxDashboardRows = 12

type dashboardModel struct {
	activePanel int
	width       int
	height      int
	zoneFilter  models.Zone

	// Data.
	statuses     []models.ZoneStatus
	observations []models.Observation
	obsScope     string
	alerts       []alertSnapshot

	// State.
	loading bool
	err     error
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	statuses     []models.ZoneStatus
	observations []models.Observation
	obsScope     string
	alerts       []alertSnapshot
	err          error
}

// collectionChangedMsg is sent when a collection changes, in this process
// or another.
type collectionChangedMsg struct {
	collection string
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("30")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("30")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("30")).
			MarginBottom(1)

	levelNormal   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	levelElevated = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	levelCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noDataStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelZones,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadDataCmd(m.zoneFilter)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "f":
			m.zoneFilter = nextZoneFilter(m.zoneFilter)
			m.loading = true
			return m, loadDataCmd(m.zoneFilter)
		case "r":
			m.loading = true
			return m, loadDataCmd(m.zoneFilter)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case collectionChangedMsg:
		return m, loadDataCmd(m.zoneFilter)

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statuses = msg.statuses
		m.observations = msg.observations
		m.obsScope = msg.obsScope
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

// nextZoneFilter cycles all zones -> each zone in display order -> all zones.
func nextZoneFilter(current models.Zone) models.Zone {
	zones := models.AllZones()
	if current == "" {
		return zones[0]
	}
	for i, z := range zones {
		if z == current && i+1 < len(zones) {
			return zones[i+1]
		}
	}
	return ""
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Wayanad Weather Desk ")
	help := helpStyle.Render("tab: switch panel | f: zone filter | r: refresh | q: quit")

	if m.loading && m.statuses == nil {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	zonesPanel := m.renderZonesPanel()
	obsPanel := m.renderObservationsPanel()
	alertsPanel := m.renderAlertsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Zones and alerts side by side above the observation table.
		colWidth := availableWidth / 2
		zonesPanel = m.applyPanelStyle(panelZones, zonesPanel, colWidth-4)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4)
		obsPanel = m.applyPanelStyle(panelObservations, obsPanel, availableWidth-4)
		top := lipgloss.JoinHorizontal(lipgloss.Top, zonesPanel, alertsPanel)
		body = lipgloss.JoinVertical(lipgloss.Left, top, obsPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		zonesPanel = m.applyPanelStyle(panelZones, zonesPanel, panelWidth)
		obsPanel = m.applyPanelStyle(panelObservations, obsPanel, panelWidth)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, zonesPanel, obsPanel, alertsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderZonesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Zones"))
	b.WriteString("\n")

	if len(m.statuses) == 0 {
		b.WriteString("  No zones.")
		return b.String()
	}

	for _, st := range m.statuses {
		level := styleForLevel(st.AlertLevel).Render(fmt.Sprintf("%-9s", st.AlertLevel))
		b.WriteString(fmt.Sprintf("  %-14s %s %6.1f °C %7.1f mm\n", st.Zone, level, st.Temperature, st.Precipitation))
		updated := "  " + strings.Repeat(" ", 15) + st.LastUpdate
		if !st.Observed {
			b.WriteString(noDataStyle.Render(updated+" (no data)") + "\n")
		} else {
			b.WriteString(updated + "\n")
		}
	}

	return b.String()
}

func (m dashboardModel) renderObservationsPanel() string {
	var b strings.Builder
	heading := "Observations"
	if m.obsScope != "" {
		heading += " (" + m.obsScope + ")"
	}
	if m.zoneFilter != "" {
		heading += " - " + string(m.zoneFilter)
	}
	b.WriteString(headerStyle.Render(heading))
	b.WriteString("\n")

	if m.obsScope == "" {
		b.WriteString("  Log in to see observations.")
		return b.String()
	}
	if len(m.observations) == 0 {
		b.WriteString("  No observations found.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-14s %-24s %7s %8s  %s\n", "ZONE", "SUBMITTED", "TEMP", "RAIN", "BY"))
	for i, o := range m.observations {
		if i == maxDashboardRows {
			b.WriteString(fmt.Sprintf("  ... %d more\n", len(m.observations)-maxDashboardRows))
			break
		}
		b.WriteString(fmt.Sprintf("  %-14s %-24s %7.1f %8.1f  %s\n", o.Zone, o.DateTime, o.Temperature, o.Precipitation, o.SubmittedBy))
	}

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func styleForLevel(level models.AlertLevel) lipgloss.Style {
	switch level {
	case models.AlertCritical:
		return levelCritical
	case models.AlertElevated:
		return levelElevated
	case models.AlertNormal:
		return levelNormal
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadDataCmd(filter models.Zone) tea.Cmd {
	return func() tea.Msg {
		return loadData(filter)
	}
}

func loadData(filter models.Zone) dataLoadedMsg {
	var result dataLoadedMsg

	if Statuses != nil {
		result.statuses = Statuses.AllStatuses()
	}

	// Administrators review every submission; volunteers see their own.
	if Desk != nil {
		observations, err := Desk.Observations(filter)
		switch {
		case err == nil:
			result.observations = observations
			result.obsScope = "all"
		case errors.Is(err, core.ErrForbidden):
			mine, err := Desk.MySubmissions()
			if err != nil {
				result.err = fmt.Errorf("loading observations: %w", err)
				return result
			}
			result.observations = filterZone(mine, filter)
			result.obsScope = "mine"
		case errors.Is(err, core.ErrNotAuthenticated):
		default:
			result.err = fmt.Errorf("loading observations: %w", err)
			return result
		}
	}

	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = make([]alertSnapshot, 0, len(alerts))

		// Sort alerts by severity: high first, then medium, then low.
		sort.SliceStable(alerts, func(i, j int) bool {
			return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
		})

		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
				time:     core.FormatTimeIST(a.TriggeredAt),
			})
		}
	}

	return result
}

func filterZone(observations []models.Observation, zone models.Zone) []models.Observation {
	if zone == "" {
		return observations
	}
	out := make([]models.Observation, 0, len(observations))
	for _, o := range observations {
		if o.Zone == zone {
			out = append(out, o)
		}
	}
	return out
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live terminal dashboard of zones, observations and alerts",
	Long: `Launch an interactive terminal dashboard showing each zone's alert level,
the observation table and active alerts.

The view refreshes whenever observations or accounts change, including
changes made by other wdesk processes sharing the same data directory.
Navigate between panels with Tab, cycle the zone filter with f, refresh
with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Statuses == nil {
			return fmt.Errorf("status aggregator not initialized")
		}

		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())

		if Notifications != nil {
			sub := Notifications.Subscribe(func(collection string) {
				p.Send(collectionChangedMsg{collection: collection})
			})
			defer sub.Unsubscribe()
		}

		if WatchStorage != nil {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				// Non-fatal: without the watcher only in-process changes refresh the view.
				_ = WatchStorage(ctx)
			}()
		}

		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
