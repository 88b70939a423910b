// Package validation turns untyped request payloads into typed drafts and
// patches. Rules run in field-declaration order and the first failure wins.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Messages shared with API clients.
const (
	MsgInvalidName    = "Name cannot contain numbers or special characters."
	MsgInvalidEmail   = "Please enter a valid email address (e.g. name@company.com)"
	MsgInvalidPhone   = "Invalid phone number format."
	MsgEmptyTitle     = "Title cannot be empty."
	MsgNoChanges      = "No changes detected"
	MsgTicketRequired = "Title and customer_id are required"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phonePattern = regexp.MustCompile(`^(\+?1[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)
)

// Payload is a decoded JSON object.
type Payload = map[string]any

func fieldError(field, message string) error {
	if field == "" {
		return apperrors.NewValidationError(message, nil)
	}
	return apperrors.NewValidationError(message, map[string]any{"field": field})
}

// field is one key looked up in a payload.
type field struct {
	name    string
	present bool
	raw     any
}

func lookup(p Payload, name string) field {
	raw, ok := p[name]
	return field{name: name, present: ok, raw: raw}
}

func (f field) null() bool {
	return f.present && f.raw == nil
}

// blank reports a missing, null or whitespace-only value.
func (f field) blank() bool {
	if !f.present || f.raw == nil {
		return true
	}
	s, ok := f.raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

func (f field) str() (string, error) {
	switch v := f.raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case nil:
		return "", fieldError(f.name, fmt.Sprintf("%s cannot be null", f.name))
	default:
		return "", fieldError(f.name, fmt.Sprintf("%s must be a string", f.name))
	}
}

// id accepts a JSON number or a numeric string holding a positive integer.
func (f field) id() (int64, error) {
	invalid := fieldError(f.name, fmt.Sprintf("%s must be a positive integer", f.name))
	var n int64
	switch v := f.raw.(type) {
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 {
			return 0, invalid
		}
		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, invalid
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, invalid
		}
		n = parsed
	case int:
		n = int64(v)
	case int64:
		n = v
	case nil:
		return 0, fieldError(f.name, fmt.Sprintf("%s cannot be null", f.name))
	default:
		return 0, invalid
	}
	if n <= 0 {
		return 0, invalid
	}
	return n, nil
}

// optionalID reads a nullable id; null and blank strings clear it.
func (f field) optionalID() (*int64, error) {
	if f.blank() {
		return nil, nil
	}
	n, err := f.id()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// personName reads a name field, folding whitespace runs to single spaces.
func (f field) personName() (string, error) {
	v, err := f.str()
	if err != nil {
		return "", err
	}
	v = domain.CollapseSpaces(v)
	if err := checkName(f.name, v); err != nil {
		return "", err
	}
	return v, nil
}

func checkName(name, value string) error {
	if !namePattern.MatchString(value) {
		return fieldError(name, MsgInvalidName)
	}
	return nil
}

func checkEmail(name, value string) error {
	if !emailPattern.MatchString(value) {
		return fieldError(name, MsgInvalidEmail)
	}
	return nil
}

func checkPhone(name, value string) error {
	if !phonePattern.MatchString(value) {
		return fieldError(name, MsgInvalidPhone)
	}
	return nil
}

func required(name string) error {
	return fieldError(name, fmt.Sprintf("%s is required", name))
}

func notNull(f field) error {
	return fieldError(f.name, fmt.Sprintf("%s cannot be null", f.name))
}
