package domain

import "errors"

// Storage-level errors returned by repositories.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrReferenced       = errors.New("record is referenced by other records")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Foreign key columns named by ReferenceError.
const (
	ColumnCustomerID   = "customer_id"
	ColumnAssignedToID = "assigned_to_id"
)

// ReferenceError reports which foreign key column a write violated. It
// unwraps to ErrReferenced or ErrInvalidReference.
type ReferenceError struct {
	Column string
	Err    error
}

func (e *ReferenceError) Error() string {
	if e.Column == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Column
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// ReferencedColumn returns the column carried by a ReferenceError in err's
// chain, or "" when there is none.
func ReferencedColumn(err error) string {
	var ref *ReferenceError
	if errors.As(err, &ref) {
		return ref.Column
	}
	return ""
}
