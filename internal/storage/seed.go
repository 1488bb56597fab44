package storage

import "github.com/valter-silva-au/wayanad-weather/pkg/models"

// DefaultAccounts returns the accounts installed when the registeredUsers
// collection is empty on first read: one Admin and six field volunteers.
// None carries a password, so each signs in with its role's default secret.
func DefaultAccounts() []models.Account {
	return []models.Account{
		{ID: 1, Name: "Admin User", Email: "admin@weather.com", Mobile: "1234567890", Role: models.RoleAdmin, Status: models.AccountActive},
		{ID: 2, Name: "ASHIFA", Email: "ashifa@weather.com", Mobile: "97479 54589", Role: models.RoleUser, Status: models.AccountActive},
		{ID: 3, Name: "SHAMNA", Email: "shamna@weather.com", Mobile: "80866 89553", Role: models.RoleUser, Status: models.AccountActive},
		{ID: 4, Name: "GABRIEL", Email: "gabriel@weather.com", Mobile: "7025392450", Role: models.RoleUser, Status: models.AccountActive},
		{ID: 5, Name: "FASEELA FAISEL", Email: "faseela@weather.com", Mobile: "99473 07399", Role: models.RoleUser, Status: models.AccountActive},
		{ID: 6, Name: "SURESH", Email: "suresh@weather.com", Mobile: "9744697940", Role: models.RoleUser, Status: models.AccountActive},
		{ID: 7, Name: "RESHMA", Email: "reshma@weather.com", Mobile: "95449 50309", Role: models.RoleUser, Status: models.AccountActive},
	}
}
