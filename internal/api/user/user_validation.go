package user

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"geostrat/internal/api"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
)

// validateNewUser checks the invariants both backings share. Uniqueness is left
// to the store.
func validateNewUser(username, email string) *api.ValidationError {
	v := api.NewValidationError()

	switch n := utf8.RuneCountInString(strings.TrimSpace(username)); {
	case n == 0:
		v.Add("username", "username is required")
	case n < usernameMinLen || n > usernameMaxLen:
		v.Add("username", fmt.Sprintf("username must be between %d and %d characters", usernameMinLen, usernameMaxLen))
	}

	if email == "" {
		v.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		v.Add("email", "email must be a valid address")
	}

	if v.HasViolations() {
		return v
	}
	return nil
}
