package engine

import (
    "context"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// Response is the record of a provider's decision applied to a pending
// request.  MarkResponded writes it atomically together with the status
// transition so at most one respond ever succeeds per request.
type Response struct {
    Status          model.RequestStatus
    RejectionReason string
    ProcessedBy     model.ActorRef
    ProcessedAt     time.Time
    // Approved maps every request line's equipment ID to its approved
    // quantity.  It is empty for rejections.
    Approved map[string]int64
    // NoteAppend, when non-empty, is appended to the request's notes in the
    // same write (used by the donation bridge to record the donation ID).
    NoteAppend string
}

// RequestStore is the persistence boundary for equipment requests.  The
// compare-and-swap methods return false, without error, when the record
// exists but is not in an eligible state; unknown IDs yield NotFoundError.
type RequestStore interface {
    CreateRequest(ctx context.Context, req *model.EquipmentRequest) error
    GetRequest(ctx context.Context, id string) (*model.EquipmentRequest, error)
    // ListOpenRequests returns every request still in the pending state.
    ListOpenRequests(ctx context.Context) ([]model.EquipmentRequest, error)
    // MarkResponded transitions pending -> resp.Status and records the
    // response in one atomic unit.
    MarkResponded(ctx context.Context, id string, resp Response) (bool, error)
    // MarkDelivered transitions approved|partial -> delivered.
    MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)
    // ResetPending reverts a responded request to pending, clearing the
    // response fields.  Used to roll back when downstream reconciliation
    // fails after the status transition already committed.
    ResetPending(ctx context.Context, id string) error
}

// TransactionStore is the persistence boundary for transactions.
type TransactionStore interface {
    CreateTransaction(ctx context.Context, t *model.Transaction) error
    GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
    // ListTransactionsFor returns transactions where the actor is either
    // the provider or the recipient school, newest first.
    ListTransactionsFor(ctx context.Context, actor model.ActorRef) ([]model.Transaction, error)
    // SetTransactionStatus transitions the transaction from any of the
    // listed states to the target state, optionally recording the returned
    // date, in one atomic unit.
    SetTransactionStatus(ctx context.Context, id string, from []model.TransactionStatus, to model.TransactionStatus, returnedDate *time.Time) (bool, error)
}

// DonationStore is the persistence boundary for donation records.  Delete
// exists solely to compensate a donation whose request approval lost the
// respond race.
type DonationStore interface {
    CreateDonation(ctx context.Context, d *model.Donation) error
    DeleteDonation(ctx context.Context, id string) error
}

// EquipmentCatalog resolves equipment metadata needed for specialization
// scoping.  Quantity counters are out of bounds here; those belong to the
// inventory registry alone.
type EquipmentCatalog interface {
    GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
    // SportsFor maps each known equipment ID to its sport ID.  Unknown IDs
    // are simply absent from the result.
    SportsFor(ctx context.Context, equipmentIDs []string) (map[string]string, error)
}

// Inventory is the engine's view of the inventory registry.  Reserve
// atomically decrements the free quantity and returns an opaque token;
// Release reverses exactly one reservation.
type Inventory interface {
    GetAvailable(ctx context.Context, owner model.ProviderRef, equipmentID string) (int64, error)
    Reserve(ctx context.Context, owner model.ProviderRef, equipmentID string, quantity int64) (string, error)
    Release(ctx context.Context, token string) error
}

// Notifier is the fire-and-forget notification collaborator.  Implementations
// must never block a committed transition: the engine logs and discards any
// error they return.
type Notifier interface {
    RequestResponded(ctx context.Context, req *model.EquipmentRequest, t *model.Transaction) error
}
