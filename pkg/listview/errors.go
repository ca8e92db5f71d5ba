// Package listview implements the client-side view state of one catalog list page:
// filtering, sorting, pagination and the inline edit overlay.
package listview

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidField is returned when a filter, sort or edit names a field the
	// engine was not configured for.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("invalid list configuration")
	// ErrBusy is returned when a write for the same row is still outstanding.
	ErrBusy = errors.New("write already in progress")
	// ErrNoPendingEdit is returned by CommitEdit when the row has no overlay,
	// and by Create when the draft row is empty.
	ErrNoPendingEdit = errors.New("no pending edit")
	// ErrRecordNotFound is returned when an id does not match any loaded record.
	ErrRecordNotFound = errors.New("record not found")
)

// RecoverableError reports a failed persist call. Nothing was applied locally,
// so the caller only has to tell the user.
type RecoverableError struct {
	Op  string // "create", "update" or "delete"
	ID  string
	Err error
}

func (e *RecoverableError) Error() string {
	if e.ID == "" || e.ID == NewRow {
		return fmt.Sprintf("failed to %s record: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s record %s: %v", e.Op, e.ID, e.Err)
}

func (e *RecoverableError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err carries a *RecoverableError.
func IsRecoverable(err error) bool {
	var re *RecoverableError
	return errors.As(err, &re)
}

func invalidField(field string) error {
	return fmt.Errorf("%w: %q", ErrInvalidField, field)
}
