package model

import "time"

// TransactionType distinguishes a permanent transfer from a time-bounded
// rental.  RentalDetails is present iff the type is rental.
type TransactionType string

const (
    TransactionRental    TransactionType = "rental"
    TransactionPermanent TransactionType = "permanent"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
    return t == TransactionRental || t == TransactionPermanent
}

// TransactionStatus enumerates transaction states.  approved is initial –
// a provider's commitment is immediately binding and never re-enters a
// separate pending phase.  pending exists only for records imported from
// upstream systems that stage transactions before commitment.
type TransactionStatus string

const (
    TransactionPending   TransactionStatus = "pending"
    TransactionApproved  TransactionStatus = "approved"
    TransactionReturned  TransactionStatus = "returned"
    TransactionCancelled TransactionStatus = "cancelled"
)

// Cancellable reports whether a transaction in this status may be cancelled.
func (s TransactionStatus) Cancellable() bool {
    return s == TransactionApproved || s == TransactionPending
}

// TransactionItem is one equipment line of a transaction.  The reservation
// token ties the line back to the inventory decrement made at approval time
// so a later return or cancellation releases exactly what was reserved.
type TransactionItem struct {
    EquipmentID      string `json:"equipment_id"`          // referenced equipment
    Quantity         int64  `json:"quantity"`              // equals the approved quantity
    Condition        string `json:"condition,omitempty"`   // condition at handover
    Notes            string `json:"notes,omitempty"`       // free-form line notes
    ReservationToken string `json:"-"`                     // inventory reservation backing this line
}

// RentalDetails carries the rental sub-lifecycle of a transaction.
// ReturnDueDate is strictly after StartDate; ReturnedDate, when present,
// is never before StartDate.
type RentalDetails struct {
    StartDate     time.Time  `json:"start_date"`
    ReturnDueDate time.Time  `json:"return_due_date"`
    ReturnedDate  *time.Time `json:"returned_date,omitempty"`
    FeeCents      *int64     `json:"fee_cents,omitempty"` // optional rental fee
}

// Transaction is the binding record of equipment moving from a provider to
// a recipient school.  It is derived from an approved or partial request by
// the reconciliation engine; only that engine and the return-confirmation
// operation mutate its status and rental details.
//
// Fields:
//  ID                   – primary key identifier.
//  Provider             – tagged provider reference (school or governing body).
//  RecipientSchoolID    – school receiving the equipment.
//  Type                 – rental or permanent.
//  Items                – equipment lines, zero-quantity approvals excluded.
//  Rental               – present iff Type is rental.
//  Status               – see TransactionStatus.
//  OriginatingRequestID – request this transaction was reconciled from.
//  CreatedAt            – creation timestamp.
type Transaction struct {
    ID                   string            `json:"id"`
    Provider             ProviderRef       `json:"provider"`
    RecipientSchoolID    string            `json:"recipient_school_id"`
    Type                 TransactionType   `json:"transaction_type"`
    Items                []TransactionItem `json:"items"`
    Rental               *RentalDetails    `json:"rental_details,omitempty"`
    Status               TransactionStatus `json:"status"`
    OriginatingRequestID string            `json:"originating_request_id,omitempty"`
    CreatedAt            time.Time         `json:"created_at"`
}
