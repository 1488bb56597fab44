package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valter-silva-au/wayanad-weather/internal/storage"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a logged-in
	// session.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrForbidden is returned when the session's role or ownership does not
	// permit the operation.
	ErrForbidden = errors.New("operation not permitted for this account")
	// ErrEmailTaken is returned when an account with the email already exists.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidRecord is returned when submitted fields fail validation.
	ErrInvalidRecord = storage.ErrInvalidRecord
)

// AccountInput holds the fields an administrator supplies for a new account.
type AccountInput struct {
	Name     string
	Email    string
	Mobile   string
	Role     models.Role
	Password string
}

// Desk exposes the role-gated operations of the data desk to the CLI,
// dashboard and tool server. Each Desk is bound to one session.
type Desk interface {
	Session() *AccessControl

	SubmitObservation(input models.ObservationInput) (*models.Observation, error)
	UpdateObservation(id int64, input models.ObservationInput) (*models.Observation, error)
	DeleteObservation(id int64) error
	MySubmissions() ([]models.Observation, error)
	Observations(zone models.Zone) ([]models.Observation, error)

	Register(name, email, mobile, password string) (*models.Account, error)
	CreateAccount(input AccountInput) (*models.Account, error)
	ToggleAccountStatus(id int64) (*models.Account, error)
	ChangeAccountRole(id int64, role models.Role) (*models.Account, error)
	Accounts() ([]models.Account, error)
}

type desk struct {
	store   storage.RecordStore
	session *AccessControl
	ids     *storage.IDGenerator
	events  EventLogger
}

// NewDesk creates a Desk acting for session. events may be nil.
func NewDesk(store storage.RecordStore, session *AccessControl, ids *storage.IDGenerator, events EventLogger) Desk {
	if ids == nil {
		ids = storage.NewIDGenerator(nil)
	}
	return &desk{store: store, session: session, ids: ids, events: events}
}

func (d *desk) Session() *AccessControl { return d.session }

// require returns the current account when it holds one of roles.
func (d *desk) require(roles ...models.Role) (*models.Account, error) {
	current, ok := d.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if !d.session.Authorize(roles...) {
		return nil, ErrForbidden
	}
	return current, nil
}

// --- Observations ---

func (d *desk) SubmitObservation(input models.ObservationInput) (*models.Observation, error) {
	current, err := d.require(models.RoleUser, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	id := d.ids.Next()
	obs := input.Apply(models.Observation{
		ID:          id,
		DateTime:    FormatIST(id),
		SubmittedBy: current.Email,
	})
	if err := d.store.PutObservation(obs); err != nil {
		return nil, fmt.Errorf("submitting observation: %w", err)
	}

	d.logEvent("observation.created", map[string]any{
		"observation_id": obs.ID,
		"zone":           string(obs.Zone),
		"precipitation":  obs.Precipitation,
		"submitted_by":   obs.SubmittedBy,
	})
	return &obs, nil
}

// UpdateObservation replaces the editable fields of one of the session's own
// observations. An unknown id is a silent no-op returning nil, nil.
func (d *desk) UpdateObservation(id int64, input models.ObservationInput) (*models.Observation, error) {
	current, err := d.require(models.RoleUser, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	existing, ok := d.store.GetObservation(id)
	if !ok {
		return nil, nil
	}
	if existing.SubmittedBy != current.Email {
		return nil, ErrForbidden
	}

	updated := input.Apply(existing)
	if err := d.store.PutObservation(updated); err != nil {
		return nil, fmt.Errorf("updating observation %d: %w", id, err)
	}

	d.logEvent("observation.updated", map[string]any{
		"observation_id": updated.ID,
		"zone":           string(updated.Zone),
		"precipitation":  updated.Precipitation,
		"submitted_by":   updated.SubmittedBy,
	})
	return &updated, nil
}

// DeleteObservation removes an observation owned by the session, or any
// observation for an administrator. An unknown id is a silent no-op.
func (d *desk) DeleteObservation(id int64) error {
	current, err := d.require(models.RoleUser, models.RoleAdmin)
	if err != nil {
		return err
	}

	existing, ok := d.store.GetObservation(id)
	if !ok {
		return nil
	}
	if existing.SubmittedBy != current.Email && !d.session.Authorize(models.RoleAdmin) {
		return ErrForbidden
	}

	if err := d.store.DeleteObservation(id); err != nil {
		return fmt.Errorf("deleting observation %d: %w", id, err)
	}

	d.logEvent("observation.deleted", map[string]any{
		"observation_id": id,
		"zone":           string(existing.Zone),
		"deleted_by":     current.Email,
	})
	return nil
}

func (d *desk) MySubmissions() ([]models.Observation, error) {
	current, err := d.require(models.RoleUser, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	var out []models.Observation
	for _, o := range d.store.ListObservations() {
		if o.SubmittedBy == current.Email {
			out = append(out, o)
		}
	}
	return out, nil
}

// Observations is the administrator's data review. An empty zone lists all.
func (d *desk) Observations(zone models.Zone) ([]models.Observation, error) {
	if _, err := d.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	all := d.store.ListObservations()
	if zone == "" {
		return all, nil
	}
	var out []models.Observation
	for _, o := range all {
		if o.Zone == zone {
			out = append(out, o)
		}
	}
	return out, nil
}

// --- Accounts ---

// Register creates an active regular account. It needs no session.
func (d *desk) Register(name, email, mobile, password string) (*models.Account, error) {
	return d.createAccount(AccountInput{
		Name:     name,
		Email:    email,
		Mobile:   mobile,
		Role:     models.RoleUser,
		Password: password,
	}, "self")
}

func (d *desk) CreateAccount(input AccountInput) (*models.Account, error) {
	current, err := d.require(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	return d.createAccount(input, current.Email)
}

func (d *desk) createAccount(input AccountInput, createdBy string) (*models.Account, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidRecord)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRecord, input.Role)
	}
	if _, taken := d.store.FindAccountByEmail(email); taken {
		return nil, ErrEmailTaken
	}

	account := models.Account{
		ID:       d.ids.Next(),
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Mobile:   strings.TrimSpace(input.Mobile),
		Role:     input.Role,
		Status:   models.AccountActive,
		Password: input.Password,
	}
	if err := d.store.PutAccount(account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	d.logEvent("account.created", map[string]any{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       string(account.Role),
		"created_by": createdBy,
	})
	return &account, nil
}

// ToggleAccountStatus flips an account between Active and Disabled.
func (d *desk) ToggleAccountStatus(id int64) (*models.Account, error) {
	current, err := d.require(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	account, ok := d.store.GetAccount(id)
	if !ok {
		return nil, ErrAccountNotFound
	}

	if account.Status == models.AccountActive {
		account.Status = models.AccountDisabled
	} else {
		account.Status = models.AccountActive
	}
	if err := d.store.PutAccount(account); err != nil {
		return nil, fmt.Errorf("toggling account %d: %w", id, err)
	}

	d.logEvent("account.status_changed", map[string]any{
		"account_id": account.ID,
		"status":     string(account.Status),
		"changed_by": current.Email,
	})
	return &account, nil
}

func (d *desk) ChangeAccountRole(id int64, role models.Role) (*models.Account, error) {
	current, err := d.require(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRecord, role)
	}
	account, ok := d.store.GetAccount(id)
	if !ok {
		return nil, ErrAccountNotFound
	}

	account.Role = role
	if err := d.store.PutAccount(account); err != nil {
		return nil, fmt.Errorf("changing role of account %d: %w", id, err)
	}

	d.logEvent("account.role_changed", map[string]any{
		"account_id": account.ID,
		"role":       string(role),
		"changed_by": current.Email,
	})
	return &account, nil
}

func (d *desk) Accounts() ([]models.Account, error) {
	if _, err := d.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	return d.store.ListAccounts(), nil
}

func (d *desk) logEvent(eventType string, data map[string]any) {
	if d.events == nil {
		return
	}
	// Non-fatal: the write already succeeded.
	_ = d.events.LogEvent(eventType, data)
}
