package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist, or a referenced entity does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrAlreadyUsed: a single-use resource (invitation token) was consumed
//   - ErrInvalidState: a store was asked to do something its state forbids
//
// Validation failures never use these; services return domain errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
)

// MissingReferenceError reports a write that pointed at a row that does not
// exist. It matches ErrNotFound.
type MissingReferenceError struct {
	Constraint string
}

func (e *MissingReferenceError) Error() string {
	return "missing reference " + e.Constraint
}

func (e *MissingReferenceError) Is(target error) bool {
	return target == ErrNotFound
}

// MissingReference returns the violated constraint when err carries a
// MissingReferenceError.
func MissingReference(err error) (string, bool) {
	var ref *MissingReferenceError
	if errors.As(err, &ref) {
		return ref.Constraint, true
	}
	return "", false
}

// DuplicateKeyError reports which unique constraint rejected a write. It
// matches ErrConflict.
type DuplicateKeyError struct {
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key " + e.Constraint
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrConflict
}

// DuplicateKey returns the violated unique constraint when err carries a
// DuplicateKeyError.
func DuplicateKey(err error) (string, bool) {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.Constraint, true
	}
	return "", false
}
