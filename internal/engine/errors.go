// Package engine implements the request lifecycle manager, the transaction
// reconciliation engine and the donation bridge.  It owns the typed error
// taxonomy shared with the inventory registry and the repository layer so
// that every public operation surfaces failures the caller can dispatch on
// with errors.As.  None of these errors is retried internally: all of them
// are consequences of caller input or of concurrent state change that the
// caller must re-evaluate.
package engine

import "fmt"

// ValidationError reports malformed input: an empty rejection reason, an
// out-of-range approved quantity, missing rental dates.  It is always
// surfaced to the caller and never retried.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// validationf builds a ValidationError with a formatted reason.
func validationf(format string, args ...any) error {
    return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateTransitionError reports an operation attempted against a
// request or transaction that is not in an eligible state: a second respond
// on an already-processed request, a return of a permanent transaction.
// The caller should re-fetch current state before retrying.
type InvalidStateTransitionError struct {
    Kind string // "request" or "transaction"
    ID   string // record identifier
    Op   string // operation that was refused
}

func (e *InvalidStateTransitionError) Error() string {
    return fmt.Sprintf("invalid state transition: %s %s does not permit %s", e.Kind, e.ID, e.Op)
}

// InsufficientInventoryError reports that a reservation exceeded the
// available quantity at commit time.  It carries the shortfall so callers
// can retry with smaller quantities.
type InsufficientInventoryError struct {
    EquipmentID string
    Requested   int64
    Available   int64
}

func (e *InsufficientInventoryError) Error() string {
    return fmt.Sprintf("insufficient inventory: equipment %s has %d available, %d requested",
        e.EquipmentID, e.Available, e.Requested)
}

// Shortfall returns how many units were missing.
func (e *InsufficientInventoryError) Shortfall() int64 { return e.Requested - e.Available }

// NotFoundError reports that a referenced request, transaction, equipment
// or reservation identifier does not exist.
type NotFoundError struct {
    Kind string
    ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
