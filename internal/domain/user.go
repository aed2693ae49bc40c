package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

// User represents a registered account of the system.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const MaxEmailLength = 255

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks the fields required to create an account.
func ValidateRegistration(email, password string) error {
	var errs ValidationErrors
	switch {
	case email == "":
		errs = errs.Add("email", "email should not be empty")
	case utf8.RuneCountInString(email) > MaxEmailLength:
		errs = errs.Add("email", "email must be shorter than or equal to 255 characters")
	case !isEmail(email):
		errs = errs.Add("email", "email must be an email")
	}
	switch {
	case password == "":
		errs = errs.Add("password", "password should not be empty")
	case len(password) > MaxPasswordBytes:
		errs = errs.Add("password", "password must be at most 72 bytes")
	}
	return errs.OrNil()
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// reject "Name <a@b>" forms, only bare addresses are accepted
	return addr.Address == s && strings.Contains(s, "@")
}
