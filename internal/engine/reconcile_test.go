package engine_test

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// approveRental drives a request through a rental approval and returns the
// materialized transaction.
func approveRental(t *testing.T, f *fixture, start, due time.Time) *model.Transaction {
    t.Helper()
    req := f.createRequest(t, standardItems()...)
    _, trans, err := f.lifecycle.Respond(context.Background(), req.ID, engine.RespondInput{
        Decision: engine.DecisionApproved,
        ApprovedItems: []engine.ApprovedItem{
            {EquipmentID: "ball", QuantityApproved: 10},
            {EquipmentID: "net", QuantityApproved: 2},
        },
        Actor:           actorP,
        Provider:        providerP,
        TransactionType: model.TransactionRental,
        Rental:          &model.RentalDetails{StartDate: start, ReturnDueDate: due},
    })
    if err != nil {
        t.Fatalf("respond: %v", err)
    }
    return trans
}

func TestConfirmReturnRestoresInventory(t *testing.T) {
    f := newFixture(t)
    start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
    due := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
    trans := approveRental(t, f, start, due)

    if trans.Rental == nil {
        t.Fatal("rental transaction missing rental details")
    }
    if got := f.available(t, "ball"); got != 15 {
        t.Fatalf("ball available = %d, want 15 while rented", got)
    }

    returned := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) // late is fine
    closed, err := f.reconciler.ConfirmReturn(context.Background(), trans.ID, returned)
    if err != nil {
        t.Fatalf("confirm return: %v", err)
    }
    if closed.Status != model.TransactionReturned {
        t.Errorf("status = %s, want returned", closed.Status)
    }
    if closed.Rental.ReturnedDate == nil || !closed.Rental.ReturnedDate.Equal(returned) {
        t.Errorf("returned date = %v, want %v", closed.Rental.ReturnedDate, returned)
    }
    if got := f.available(t, "ball"); got != 25 {
        t.Errorf("ball available = %d, want 25 after return", got)
    }
    if got := f.available(t, "net"); got != 5 {
        t.Errorf("net available = %d, want 5 after return", got)
    }

    // A second confirmation must be refused and must not double-release.
    _, err = f.reconciler.ConfirmReturn(context.Background(), trans.ID, returned)
    var serr *engine.InvalidStateTransitionError
    if !errors.As(err, &serr) {
        t.Fatalf("second confirm: want InvalidStateTransitionError, got %v", err)
    }
    if got := f.available(t, "ball"); got != 25 {
        t.Errorf("ball available = %d after refused second return, want 25", got)
    }
}

func TestConfirmReturnRefusesPermanent(t *testing.T) {
    f := newFixture(t)
    req := f.createRequest(t, standardItems()...)
    _, trans, err := f.lifecycle.Respond(context.Background(), req.ID, engine.RespondInput{
        Decision:        engine.DecisionApproved,
        ApprovedItems:   []engine.ApprovedItem{{EquipmentID: "ball", QuantityApproved: 10}, {EquipmentID: "net", QuantityApproved: 2}},
        Actor:           actorP,
        Provider:        providerP,
        TransactionType: model.TransactionPermanent,
    })
    if err != nil {
        t.Fatalf("respond: %v", err)
    }
    _, err = f.reconciler.ConfirmReturn(context.Background(), trans.ID, time.Now())
    var serr *engine.InvalidStateTransitionError
    if !errors.As(err, &serr) {
        t.Fatalf("want InvalidStateTransitionError, got %v", err)
    }
}

func TestConfirmReturnBeforeStart(t *testing.T) {
    f := newFixture(t)
    start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
    due := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
    trans := approveRental(t, f, start, due)

    _, err := f.reconciler.ConfirmReturn(context.Background(), trans.ID, start.AddDate(0, 0, -1))
    var verr *engine.ValidationError
    if !errors.As(err, &verr) {
        t.Fatalf("want ValidationError, got %v", err)
    }
}

func TestConfirmReturnUnknownTransaction(t *testing.T) {
    f := newFixture(t)
    _, err := f.reconciler.ConfirmReturn(context.Background(), "missing", time.Now())
    var nerr *engine.NotFoundError
    if !errors.As(err, &nerr) {
        t.Fatalf("want NotFoundError, got %v", err)
    }
}

func TestCancelReleasesInventory(t *testing.T) {
    f := newFixture(t)
    start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
    due := time.Date(2025, 2, 8, 0, 0, 0, 0, time.UTC)
    trans := approveRental(t, f, start, due)

    cancelled, err := f.reconciler.Cancel(context.Background(), trans.ID)
    if err != nil {
        t.Fatalf("cancel: %v", err)
    }
    if cancelled.Status != model.TransactionCancelled {
        t.Errorf("status = %s, want cancelled", cancelled.Status)
    }
    if got := f.available(t, "ball"); got != 25 {
        t.Errorf("ball available = %d, want 25 after cancel", got)
    }

    _, err = f.reconciler.Cancel(context.Background(), trans.ID)
    var serr *engine.InvalidStateTransitionError
    if !errors.As(err, &serr) {
        t.Fatalf("second cancel: want InvalidStateTransitionError, got %v", err)
    }
}

func TestOverdueIsDerived(t *testing.T) {
    start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
    due := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
    rental := &model.Transaction{
        Type:   model.TransactionRental,
        Status: model.TransactionApproved,
        Rental: &model.RentalDetails{StartDate: start, ReturnDueDate: due},
    }

    if engine.Overdue(rental, due.AddDate(0, 0, -1)) {
        t.Error("overdue before the due date")
    }
    if !engine.Overdue(rental, due.AddDate(0, 0, 1)) {
        t.Error("not overdue after the due date")
    }

    rd := due.AddDate(0, 0, 2)
    returned := *rental
    returnedRental := *rental.Rental
    returnedRental.ReturnedDate = &rd
    returned.Rental = &returnedRental
    returned.Status = model.TransactionReturned
    if engine.Overdue(&returned, rd.AddDate(0, 0, 5)) {
        t.Error("returned rental reported overdue")
    }

    permanent := &model.Transaction{Type: model.TransactionPermanent, Status: model.TransactionApproved}
    if engine.Overdue(permanent, due.AddDate(0, 1, 0)) {
        t.Error("permanent transaction reported overdue")
    }
}

func TestRentalDetailsInvariant(t *testing.T) {
    f := newFixture(t)
    start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
    due := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

    rental := approveRental(t, f, start, due)
    if rental.Type != model.TransactionRental || rental.Rental == nil {
        t.Error("rental transaction must carry rental details")
    }

    req := f.createRequest(t, standardItems()...)
    _, permanent, err := f.lifecycle.Respond(context.Background(), req.ID, engine.RespondInput{
        Decision:        engine.DecisionApproved,
        ApprovedItems:   []engine.ApprovedItem{{EquipmentID: "ball", QuantityApproved: 1}},
        Actor:           actorP,
        Provider:        providerP,
        TransactionType: model.TransactionPermanent,
    })
    if err != nil {
        t.Fatalf("respond: %v", err)
    }
    if permanent.Rental != nil {
        t.Error("permanent transaction must not carry rental details")
    }
}
