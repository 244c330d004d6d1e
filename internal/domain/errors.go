package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ConflictError represents a resource claimed or replaced by a
// concurrent operation.
type ConflictError struct {
	Resource string
}

func (e ConflictError) Error() string {
	if e.Resource == "" {
		return "conflict"
	}
	return fmt.Sprintf("%s conflict", e.Resource)
}

// Is enables errors.Is matching on ConflictError.
func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

// ErrConflict is the sentinel error for concurrent-update conflicts.
var ErrConflict = ConflictError{}
