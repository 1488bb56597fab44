// Package observability provides the desk's event log, metrics and zone
// alerting. Events are persisted as JSON Lines and metrics are derived from
// the log on demand.
package observability
