package engine

import (
    "context"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// Reconciler derives transactions from approved requests and manages the
// rental-return sub-lifecycle.  Only this component and ConfirmReturn may
// mutate a transaction's status and rental details.
type Reconciler struct {
    transactions TransactionStore
    inventory    Inventory
    now          func() time.Time
}

// NewReconciler wires a reconciliation engine.
func NewReconciler(transactions TransactionStore, inv Inventory) *Reconciler {
    if transactions == nil || inv == nil {
        panic("nil dependency passed to NewReconciler")
    }
    return &Reconciler{transactions: transactions, inventory: inv, now: time.Now}
}

// validatePlan checks the transaction shape before any inventory is
// touched: the type must be known, and a rental must carry a start date and
// a due date strictly after it.
func (r *Reconciler) validatePlan(transType model.TransactionType, rental *model.RentalDetails) error {
    if !transType.Valid() {
        return validationf("unknown transaction type %q", transType)
    }
    if transType == model.TransactionPermanent {
        if rental != nil {
            return validationf("rental details given for a permanent transaction")
        }
        return nil
    }
    if rental == nil {
        return validationf("rental details are required for a rental transaction")
    }
    if rental.StartDate.IsZero() || rental.ReturnDueDate.IsZero() {
        return validationf("rental start date and return due date are required")
    }
    if !rental.ReturnDueDate.After(rental.StartDate) {
        return validationf("return due date must be after the start date")
    }
    if rental.ReturnedDate != nil {
        return validationf("returned date cannot be preset")
    }
    return nil
}

// materialize builds and stores the transaction for a freshly approved or
// partial request.  Lines carry the reservation tokens issued at approval
// time; zero-quantity approvals were already excluded by the caller.  The
// initial status is approved – the provider's commitment is immediately
// binding and does not re-enter a pending phase.
func (r *Reconciler) materialize(ctx context.Context, req *model.EquipmentRequest, lines []model.TransactionItem, in RespondInput) (*model.Transaction, error) {
    var rental *model.RentalDetails
    if in.TransactionType == model.TransactionRental {
        cp := *in.Rental
        rental = &cp
    }
    t := &model.Transaction{
        ID:                   uuid.NewString(),
        Provider:             in.Provider,
        RecipientSchoolID:    req.RequesterSchoolID,
        Type:                 in.TransactionType,
        Items:                lines,
        Rental:               rental,
        Status:               model.TransactionApproved,
        OriginatingRequestID: req.ID,
        CreatedAt:            r.now().UTC(),
    }
    if err := r.transactions.CreateTransaction(ctx, t); err != nil {
        return nil, err
    }
    return t, nil
}

// Get returns a transaction by ID.
func (r *Reconciler) Get(ctx context.Context, id string) (*model.Transaction, error) {
    return r.transactions.GetTransaction(ctx, id)
}

// ListFor returns the transactions in which the actor participates.
func (r *Reconciler) ListFor(ctx context.Context, actor model.ActorRef) ([]model.Transaction, error) {
    return r.transactions.ListTransactionsFor(ctx, actor)
}

// ConfirmReturn closes a rental: it records the returned date, transitions
// approved -> returned, and releases every line's inventory reservation.
// Permanent transactions and transactions not in the approved state are
// refused with InvalidStateTransitionError.
func (r *Reconciler) ConfirmReturn(ctx context.Context, transactionID string, returnedDate time.Time) (*model.Transaction, error) {
    t, err := r.transactions.GetTransaction(ctx, transactionID)
    if err != nil {
        return nil, err
    }
    if t.Type != model.TransactionRental {
        return nil, &InvalidStateTransitionError{Kind: "transaction", ID: transactionID, Op: "confirmReturn"}
    }
    if t.Status != model.TransactionApproved {
        return nil, &InvalidStateTransitionError{Kind: "transaction", ID: transactionID, Op: "confirmReturn"}
    }
    if t.Rental != nil && returnedDate.Before(t.Rental.StartDate) {
        return nil, validationf("returned date precedes the rental start date")
    }
    rd := returnedDate.UTC()
    ok, err := r.transactions.SetTransactionStatus(ctx, transactionID,
        []model.TransactionStatus{model.TransactionApproved}, model.TransactionReturned, &rd)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, &InvalidStateTransitionError{Kind: "transaction", ID: transactionID, Op: "confirmReturn"}
    }
    r.releaseLines(ctx, t)
    return r.transactions.GetTransaction(ctx, transactionID)
}

// Cancel voids a transaction that has not run to completion.  Valid only
// from approved or pending; reserved inventory is released.
func (r *Reconciler) Cancel(ctx context.Context, transactionID string) (*model.Transaction, error) {
    t, err := r.transactions.GetTransaction(ctx, transactionID)
    if err != nil {
        return nil, err
    }
    if !t.Status.Cancellable() {
        return nil, &InvalidStateTransitionError{Kind: "transaction", ID: transactionID, Op: "cancel"}
    }
    ok, err := r.transactions.SetTransactionStatus(ctx, transactionID,
        []model.TransactionStatus{model.TransactionApproved, model.TransactionPending},
        model.TransactionCancelled, nil)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, &InvalidStateTransitionError{Kind: "transaction", ID: transactionID, Op: "cancel"}
    }
    r.releaseLines(ctx, t)
    return r.transactions.GetTransaction(ctx, transactionID)
}

// releaseLines releases every line's reservation.  The status transition
// has already committed, so release failures are logged rather than
// propagated; a stuck reservation is an operational concern, not a caller
// error.
func (r *Reconciler) releaseLines(ctx context.Context, t *model.Transaction) {
    for _, line := range t.Items {
        if line.ReservationToken == "" {
            continue
        }
        if err := r.inventory.Release(ctx, line.ReservationToken); err != nil {
            log.Printf("reconcile: release %s for transaction %s: %v", line.ReservationToken, t.ID, err)
        }
    }
}

// Overdue reports whether a rental transaction is overdue at the given
// instant.  It is a derived read-time property, never persisted: a rental
// is overdue iff it is still approved, the due date has passed, and no
// returned date is set.
func Overdue(t *model.Transaction, now time.Time) bool {
    if t.Type != model.TransactionRental || t.Rental == nil {
        return false
    }
    if t.Status != model.TransactionApproved {
        return false
    }
    if t.Rental.ReturnedDate != nil {
        return false
    }
    return now.After(t.Rental.ReturnDueDate)
}
