package schedule

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("schedule entry not found")

// PartialSaveMessage is shown to users when a batch was only partly applied.
const PartialSaveMessage = "some of your changes may not have been saved, please reload and retry"

// Store operations of a batch
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ConflictError aborts a whole reconciliation: nothing was written.
type ConflictError struct {
	Report ConflictReport
}

func (e *ConflictError) Error() string {
	return e.Report.Message()
}

// ApplyError reports a store failure in the middle of a batch.
// The first Applied operations were committed, the failed one and the rest were not.
type ApplyError struct {
	Op      string
	EntryID string
	Slot    string
	Applied int
	Total   int
	Err     error
}

func (e *ApplyError) target() string {
	if e.EntryID != "" {
		return "entry " + e.EntryID
	}
	return e.Slot
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s (%s of %s failed after %d of %d changes: %v)",
		PartialSaveMessage, e.Op, e.target(), e.Applied, e.Total, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
