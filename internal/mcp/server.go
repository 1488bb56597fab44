// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the weather desk's read-only views as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/internal/observability"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// Server wraps desk services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	statuses    core.StatusAggregator
	desk        core.Desk
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server. desk is the session the observation
// listing runs as; metricsCalc and alertEngine may be nil if observability
// is disabled.
func NewServer(statuses core.StatusAggregator, desk core.Desk, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		statuses:    statuses,
		desk:        desk,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "wdesk", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type zoneStatusInput struct {
	Zone string `json:"zone,omitempty" jsonschema:"zone name (Sugandhagiri, Chembra, Kurichyarmala); all zones when omitted"`
}

type zoneStatusOutput struct {
	Zone          string  `json:"zone"`
	Temperature   float64 `json:"temperature_c"`
	Precipitation float64 `json:"precipitation_mm"`
	LastUpdate    string  `json:"last_update"`
	AlertLevel    string  `json:"alert_level"`
	Observed      bool    `json:"observed"`
}

type zoneStatusListOutput struct {
	Zones []zoneStatusOutput `json:"zones"`
	Count int                `json:"count"`
}

type listObservationsInput struct {
	Zone  string `json:"zone,omitempty" jsonschema:"filter by zone name; all zones when omitted"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of observations to return, newest first (default 50)"`
}

type observationOutput struct {
	ID            int64   `json:"id"`
	Zone          string  `json:"zone"`
	District      string  `json:"district"`
	State         string  `json:"state"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Temperature   float64 `json:"temperature_c"`
	Precipitation float64 `json:"precipitation_mm"`
	DateTime      string  `json:"date_time"`
	SubmittedBy   string  `json:"submitted_by"`
}

type listObservationsOutput struct {
	Observations []observationOutput `json:"observations"`
	Count        int                 `json:"count"`
	Total        int                 `json:"total"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	ObservationsCreated  int            `json:"observations_created"`
	ObservationsUpdated  int            `json:"observations_updated"`
	ObservationsDeleted  int            `json:"observations_deleted"`
	ObservationsByZone   map[string]int `json:"observations_by_zone"`
	SubmissionsByAccount map[string]int `json:"submissions_by_account"`
	AccountsCreated      int            `json:"accounts_created"`
	Logins               int            `json:"logins"`
	FailedLogins         int            `json:"failed_logins"`
	RecordsDropped       int            `json:"records_dropped"`
	EventCount           int            `json:"event_count"`
	OldestEvent          string         `json:"oldest_event,omitempty"`
	NewestEvent          string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Zone        string `json:"zone,omitempty"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "zone_status",
		Description: "Get the latest temperature, precipitation and alert level (Normal, Elevated, Critical) for one zone or all zones.",
	}, s.handleZoneStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_observations",
		Description: "List submitted weather observations, newest first, with an optional zone filter. Requires an Admin session.",
	}, s.handleListObservations)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get desk activity metrics from the event log: submissions per zone, edits, deletions, logins and dropped records.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (critical or elevated precipitation, stale zones, zones without data, store warnings).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleZoneStatus(_ context.Context, _ *gomcp.CallToolRequest, input zoneStatusInput) (*gomcp.CallToolResult, zoneStatusListOutput, error) {
	var statuses []models.ZoneStatus
	if input.Zone != "" {
		zone, ok := models.ParseZone(input.Zone)
		if !ok {
			return errorResult(fmt.Sprintf("unknown zone %q: must be one of Sugandhagiri, Chembra, Kurichyarmala", input.Zone)), zoneStatusListOutput{}, nil
		}
		statuses = []models.ZoneStatus{s.statuses.LatestStatus(zone)}
	} else {
		statuses = s.statuses.AllStatuses()
	}

	out := zoneStatusListOutput{
		Zones: make([]zoneStatusOutput, len(statuses)),
		Count: len(statuses),
	}
	for i, st := range statuses {
		out.Zones[i] = zoneStatusOutput{
			Zone:          string(st.Zone),
			Temperature:   st.Temperature,
			Precipitation: st.Precipitation,
			LastUpdate:    st.LastUpdate,
			AlertLevel:    string(st.AlertLevel),
			Observed:      st.Observed,
		}
	}
	return nil, out, nil
}

func (s *Server) handleListObservations(_ context.Context, _ *gomcp.CallToolRequest, input listObservationsInput) (*gomcp.CallToolResult, listObservationsOutput, error) {
	if s.desk == nil {
		return errorResult("observation listing not available"), emptyObservations(), nil
	}

	var zone models.Zone
	if input.Zone != "" {
		z, ok := models.ParseZone(input.Zone)
		if !ok {
			return errorResult(fmt.Sprintf("unknown zone %q", input.Zone)), emptyObservations(), nil
		}
		zone = z
	}

	observations, err := s.desk.Observations(zone)
	if err != nil {
		if errors.Is(err, core.ErrNotAuthenticated) || errors.Is(err, core.ErrForbidden) {
			return errorResult("listing observations requires an Admin session: run `wdesk login` as an administrator"), emptyObservations(), nil
		}
		return errorResult(fmt.Sprintf("listing observations: %s", err)), emptyObservations(), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	total := len(observations)
	if len(observations) > limit {
		observations = observations[:limit]
	}

	out := listObservationsOutput{
		Observations: make([]observationOutput, len(observations)),
		Count:        len(observations),
		Total:        total,
	}
	for i, o := range observations {
		out.Observations[i] = observationToOutput(o)
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := ParseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		ObservationsCreated:  metrics.ObservationsCreated,
		ObservationsUpdated:  metrics.ObservationsUpdated,
		ObservationsDeleted:  metrics.ObservationsDeleted,
		ObservationsByZone:   metrics.ObservationsByZone,
		SubmissionsByAccount: metrics.SubmissionsByAccount,
		AccountsCreated:      metrics.AccountsCreated,
		Logins:               metrics.Logins,
		FailedLogins:         metrics.FailedLogins,
		RecordsDropped:       metrics.RecordsDropped,
		EventCount:           metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Zone:        string(a.Zone),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func observationToOutput(o models.Observation) observationOutput {
	return observationOutput{
		ID:            o.ID,
		Zone:          string(o.Zone),
		District:      o.District,
		State:         o.State,
		Latitude:      o.Latitude,
		Longitude:     o.Longitude,
		Temperature:   o.Temperature,
		Precipitation: o.Precipitation,
		DateTime:      o.DateTime,
		SubmittedBy:   o.SubmittedBy,
	}
}

func emptyObservations() listObservationsOutput {
	return listObservationsOutput{Observations: []observationOutput{}}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		ObservationsByZone:   make(map[string]int),
		SubmissionsByAccount: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func ParseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
