package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Event represents a single observable event on the desk.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN, ERROR
	Type    string         `json:"type"`  // e.g. "observation.created", "store.record_dropped"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events. TypePrefix matches a
// whole event family such as "store." or "auth.".
type EventFilter struct {
	Since      *time.Time
	Until      *time.Time
	Type       string
	TypePrefix string
	Level      string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using an append-only JSONL file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog creates a new EventLog backed by a JSONL file at the given
// path, creating the parent directory if needed.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path: path,
		file: f,
	}, nil
}

// Write appends a JSON-encoded event followed by a newline to the log file.
// Missing time, level and message are filled in from the event type.
func (l *jsonlEventLog) Write(event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	if event.Level == "" {
		event.Level = LevelFor(event.Type)
	}
	if event.Message == "" {
		event.Message = MessageFor(event.Type, event.Data)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read opens the log file for reading, scans line by line, decodes each event,
// and returns those matching the given filter.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// LevelFor returns the default level of an event type: store degradations,
// watcher errors, bad config and failed logins are warnings; handler panics
// are errors.
func LevelFor(eventType string) string {
	switch eventType {
	case "notifier.handler_panic":
		return LevelError
	case "auth.login_failed", "notifier.watch_error", "config.invalid":
		return LevelWarn
	}
	switch {
	case strings.HasPrefix(eventType, "store."):
		return LevelWarn
	default:
		return LevelInfo
	}
}

// MessageFor renders a one-line human summary of an event.
func MessageFor(eventType string, data map[string]any) string {
	str := func(key string) string {
		if v, ok := data[key]; ok {
			return fmt.Sprint(v)
		}
		return ""
	}

	switch eventType {
	case "observation.created":
		return fmt.Sprintf("%s submitted %s mm for %s", str("submitted_by"), str("precipitation"), str("zone"))
	case "observation.updated":
		return fmt.Sprintf("observation %s updated (%s)", str("observation_id"), str("zone"))
	case "observation.deleted":
		return fmt.Sprintf("observation %s deleted by %s", str("observation_id"), str("deleted_by"))
	case "account.created":
		return fmt.Sprintf("account %s created with role %s", str("email"), str("role"))
	case "account.status_changed":
		return fmt.Sprintf("account %s is now %s", str("account_id"), str("status"))
	case "account.role_changed":
		return fmt.Sprintf("account %s is now %s", str("account_id"), str("role"))
	case "auth.login":
		return fmt.Sprintf("%s logged in", str("email"))
	case "auth.login_failed":
		return fmt.Sprintf("login failed for %s: %s", str("email"), str("reason"))
	case "store.record_dropped", "store.collection_malformed", "store.read_failed", "store.seed_failed":
		return fmt.Sprintf("%s: %s", str("collection"), str("error"))
	case "config.invalid":
		return fmt.Sprintf("using defaults: %s", str("error"))
	}
	return eventType
}

// matchesEventFilter checks whether an event satisfies all filter criteria.
func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.TypePrefix != "" && !strings.HasPrefix(event.Type, filter.TypePrefix) {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	return true
}
