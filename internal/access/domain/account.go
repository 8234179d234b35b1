package domain

import (
	"net/mail"
	"strings"
	"time"
)

type Account struct {
	ID          string
	Email       string // canonical, unique
	DisplayName string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanonicalEmail is the single normalisation applied to every email before
// it is stored or compared.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare address (no display name).
func ValidEmail(email string) bool {
	email = CanonicalEmail(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// AccountInput is the validated boundary for creating or updating an account.
type AccountInput struct {
	Email       string
	DisplayName string
	// Role is optional. Empty keeps the stored role of an existing account
	// and becomes member for a new one.
	Role Role
}

// Validate checks the input and returns a normalised copy.
func (in AccountInput) Validate() (AccountInput, error) {
	var verr ValidationError

	out := AccountInput{
		Email:       CanonicalEmail(in.Email),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Role:        in.Role,
	}

	if !ValidEmail(out.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if out.Role != "" && !out.Role.Valid() {
		verr.Add("role", "must be one of admin, scrum_master, member")
	}
	if len(out.DisplayName) > 200 {
		verr.Add("display_name", "must be at most 200 characters")
	}

	if verr.HasErrors() {
		return AccountInput{}, &verr
	}
	return out, nil
}
