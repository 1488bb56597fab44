package core

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

var (
	// ErrInvalidCredentials is returned when the email is known but the
	// secret does not match.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrAccountNotFound is returned when no account has the given email.
	ErrAccountNotFound = errors.New("account not found, please contact an administrator")
	// ErrAccountDisabled is returned when the credentials match a disabled
	// account.
	ErrAccountDisabled = errors.New("account is disabled")
)

// Legacy role-implied secrets for accounts without an explicit password.
const (
	DefaultAdminSecret = "admin123"
	DefaultUserSecret  = "user123"
)

// SuperAdmin is the built-in administrator accepted when the accounts
// collection reads back empty. It shares identity 1 with the seeded
// administrator.
var SuperAdmin = models.Account{
	ID:       1,
	Name:     "Super Admin",
	Email:    "admin@weather.com",
	Role:     models.RoleAdmin,
	Status:   models.AccountActive,
	Password: DefaultAdminSecret,
}

// AccountDirectory is the account lookup used by access control. The record
// store satisfies it.
type AccountDirectory interface {
	ListAccounts() []models.Account
}

// SessionKeeper persists the authenticated account between runs. The record
// store satisfies it through the "user" key.
type SessionKeeper interface {
	CurrentUser() (models.Account, bool)
	SaveCurrentUser(account models.Account) error
	ClearCurrentUser() error
}

// AccessControl holds the authentication state of one session.
type AccessControl struct {
	mu      sync.RWMutex
	dir     AccountDirectory
	keeper  SessionKeeper
	events  EventLogger
	current *models.Account
}

// NewAccessControl creates an Anonymous session. keeper and events may be
// nil; without a keeper the session lives only in memory.
func NewAccessControl(dir AccountDirectory, keeper SessionKeeper, events EventLogger) *AccessControl {
	return &AccessControl{dir: dir, keeper: keeper, events: events}
}

// ExpectedSecret returns the secret an account logs in with: its explicit
// password, or the role-implied default when none is set.
func ExpectedSecret(account models.Account) string {
	if account.Password != "" {
		return account.Password
	}
	if account.Role == models.RoleAdmin {
		return DefaultAdminSecret
	}
	return DefaultUserSecret
}

// Login authenticates by exact email match. Reading the accounts seeds the
// defaults on first use; an empty collection falls back to SuperAdmin.
func (ac *AccessControl) Login(email, secret string) (*models.Account, error) {
	accounts := ac.dir.ListAccounts()
	if len(accounts) == 0 {
		accounts = []models.Account{SuperAdmin}
	}

	idx := slices.IndexFunc(accounts, func(a models.Account) bool { return a.Email == email })
	if idx < 0 {
		ac.logFailure(email, "not_found")
		return nil, ErrAccountNotFound
	}
	found := accounts[idx]

	if secret != ExpectedSecret(found) {
		ac.logFailure(email, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if !found.IsActive() {
		ac.logFailure(email, "disabled")
		return nil, ErrAccountDisabled
	}

	session := sessionRecord(found)
	if ac.keeper != nil {
		if err := ac.keeper.SaveCurrentUser(session); err != nil {
			return nil, fmt.Errorf("persisting session: %w", err)
		}
	}

	ac.mu.Lock()
	ac.current = &session
	ac.mu.Unlock()

	if ac.events != nil {
		_ = ac.events.LogEvent("auth.login", map[string]any{
			"account_id": session.ID,
			"email":      session.Email,
			"role":       string(session.Role),
		})
	}

	out := session
	return &out, nil
}

// Logout returns the session to Anonymous. The in-memory state is cleared
// even when removing the persisted record fails.
func (ac *AccessControl) Logout() error {
	ac.mu.Lock()
	ac.current = nil
	ac.mu.Unlock()

	if ac.keeper != nil {
		if err := ac.keeper.ClearCurrentUser(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}
	return nil
}

// Authorize reports whether the session may perform an operation requiring
// one of roles. Anonymous sessions are never authorized. With no roles any
// authenticated session is. Role matching is exact.
func (ac *AccessControl) Authorize(roles ...models.Role) bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if ac.current == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	return slices.Contains(roles, ac.current.Role)
}

// Current returns a copy of the authenticated account.
func (ac *AccessControl) Current() (*models.Account, bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if ac.current == nil {
		return nil, false
	}
	out := *ac.current
	return &out, true
}

// Restore reloads the persisted session, refreshing name, role and status
// from the accounts collection. A session whose account was removed or
// disabled is cleared.
func (ac *AccessControl) Restore() (*models.Account, bool) {
	if ac.keeper == nil {
		return ac.Current()
	}
	saved, ok := ac.keeper.CurrentUser()
	if !ok {
		ac.mu.Lock()
		ac.current = nil
		ac.mu.Unlock()
		return nil, false
	}

	accounts := ac.dir.ListAccounts()
	refreshed, found := saved, false
	for _, a := range accounts {
		if a.ID == saved.ID && a.Email == saved.Email {
			refreshed, found = sessionRecord(a), true
			break
		}
	}
	if !found && !(len(accounts) == 0 && saved.Email == SuperAdmin.Email) {
		_ = ac.Logout()
		return nil, false
	}
	if !refreshed.IsActive() {
		_ = ac.Logout()
		return nil, false
	}

	if refreshed != saved {
		// Non-fatal: the in-memory session is already up to date.
		_ = ac.keeper.SaveCurrentUser(refreshed)
	}

	ac.mu.Lock()
	ac.current = &refreshed
	ac.mu.Unlock()

	out := refreshed
	return &out, true
}

func (ac *AccessControl) logFailure(email, reason string) {
	if ac.events == nil {
		return
	}
	_ = ac.events.LogEvent("auth.login_failed", map[string]any{
		"email":  email,
		"reason": reason,
	})
}

// sessionRecord is the account as held by a session, without its secret.
func sessionRecord(a models.Account) models.Account {
	a.Password = ""
	if a.Status == "" {
		a.Status = models.AccountActive
	}
	return a
}
