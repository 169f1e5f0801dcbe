package entity

import (
	"strings"
	"time"
)

// User roles.
const (
	UserRoleFarmer = "farmer"
	UserRoleAdmin  = "admin"
)

// User is a registered person in the farmer directory.
type User struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Location  string
	Role      string
	CreatedAt time.Time
}

// ApplyDefaults normalizes the email and sets the default role.
func (u *User) ApplyDefaults() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = UserRoleFarmer
	}
}

// Validate checks required fields and the role.
func (u *User) Validate() error {
	if err := validateName("name", u.Name); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.Role != UserRoleFarmer && u.Role != UserRoleAdmin {
		return &ValidationError{Field: "role", Message: "role must be farmer or admin"}
	}
	return nil
}
