package validation

import (
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

const minPasswordLength = 6

// Registration validates an agent sign-up payload.
func Registration(p Payload) (domain.UserDraft, error) {
	var draft domain.UserDraft

	username, email, password := lookup(p, "username"), lookup(p, "email"), lookup(p, "password")
	if username.blank() || email.blank() || password.blank() {
		return draft, fieldError("", "Username, Email, and Password are required")
	}

	var err error
	if name := lookup(p, "name"); !name.blank() {
		if draft.Name, err = name.personName(); err != nil {
			return draft, err
		}
	}

	if draft.Username, err = username.str(); err != nil {
		return draft, err
	}

	if draft.Email, err = email.str(); err != nil {
		return draft, err
	}
	if err := checkEmail(email.name, draft.Email); err != nil {
		return draft, err
	}
	draft.Email = strings.ToLower(draft.Email)

	// Passwords are not trimmed.
	raw, ok := password.raw.(string)
	if !ok {
		return draft, fieldError(password.name, "password must be a string")
	}
	if len(raw) < minPasswordLength {
		return draft, fieldError(password.name, "Password must be at least 6 characters long.")
	}
	draft.Password = raw
	return draft, nil
}
