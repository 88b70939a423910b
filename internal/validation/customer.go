package validation

import (
	"net/mail"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CustomerCreate validates a new customer payload.
func CustomerCreate(p Payload) (domain.CustomerDraft, error) {
	var draft domain.CustomerDraft

	first := lookup(p, "firstname")
	if first.blank() {
		return draft, required("firstname")
	}
	firstName, err := first.personName()
	if err != nil {
		return draft, err
	}
	draft.FirstName = firstName

	if draft.LastName, err = optionalName(lookup(p, "lastname")); err != nil {
		return draft, err
	}

	emailField := lookup(p, "email")
	if emailField.blank() {
		return draft, required("email")
	}
	email, err := emailField.str()
	if err != nil {
		return draft, err
	}
	if err := checkEmail(emailField.name, email); err != nil {
		return draft, err
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return draft, fieldError(emailField.name, MsgInvalidEmail)
	}
	draft.Email = strings.ToLower(email)

	company := lookup(p, "company")
	if company.blank() {
		return draft, required("company")
	}
	if draft.Company, err = company.str(); err != nil {
		return draft, err
	}

	if draft.Phone, err = optionalPhone(lookup(p, "phone")); err != nil {
		return draft, err
	}
	return draft, nil
}

// CustomerUpdate validates a partial customer payload. Keys absent from the
// payload stay unset in the returned patch.
func CustomerUpdate(p Payload) (domain.CustomerPatch, error) {
	var patch domain.CustomerPatch

	if f := lookup(p, "firstname"); f.present {
		v, err := f.personName()
		if err != nil {
			return patch, err
		}
		patch.FirstName = domain.Some(v)
	}

	if f := lookup(p, "lastname"); f.present {
		v, err := optionalName(f)
		if err != nil {
			return patch, err
		}
		patch.LastName = domain.Some(v)
	}

	if f := lookup(p, "email"); f.present {
		v, err := f.str()
		if err != nil {
			return patch, err
		}
		if err := checkEmail(f.name, v); err != nil {
			return patch, err
		}
		patch.Email = domain.Some(strings.ToLower(v))
	}

	if f := lookup(p, "company"); f.present {
		v, err := f.str()
		if err != nil {
			return patch, err
		}
		if v == "" {
			return patch, fieldError(f.name, "company cannot be empty")
		}
		patch.Company = domain.Some(v)
	}

	if f := lookup(p, "phone"); f.present {
		v, err := optionalPhone(f)
		if err != nil {
			return patch, err
		}
		patch.Phone = domain.Some(v)
	}

	if patch.Empty() {
		return patch, fieldError("", MsgNoChanges)
	}
	return patch, nil
}

func optionalName(f field) (*string, error) {
	if f.blank() {
		return nil, nil
	}
	v, err := f.personName()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalPhone(f field) (*string, error) {
	if f.blank() {
		return nil, nil
	}
	v, err := f.str()
	if err != nil {
		return nil, err
	}
	if err := checkPhone(f.name, v); err != nil {
		return nil, err
	}
	return &v, nil
}
