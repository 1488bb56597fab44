package models

// Role represents the access level of an account.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// AccountStatus represents whether an account may sign in.
type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountDisabled AccountStatus = "Disabled"
)

// Valid reports whether s is one of the known account statuses.
func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountDisabled
}

// Account is a registered user of the desk. Email is the login key.
// Password is optional: legacy accounts without one fall back to the
// default secret of their role.
type Account struct {
	ID       int64         `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Email    string        `json:"email" yaml:"email"`
	Mobile   string        `json:"mobile" yaml:"mobile"`
	Role     Role          `json:"role" yaml:"role"`
	Status   AccountStatus `json:"status" yaml:"status"`
	Password string        `json:"password,omitempty" yaml:"password,omitempty"`
}

// IsAdmin reports whether the account holds the Admin role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsActive reports whether the account is enabled.
func (a Account) IsActive() bool {
	return a.Status != AccountDisabled
}
