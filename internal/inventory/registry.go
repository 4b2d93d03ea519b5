// Package inventory implements the inventory registry: the single component
// allowed to read and write equipment quantity counters.  Every other part
// of the system reaches availability exclusively through GetAvailable,
// Reserve and Release.
package inventory

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// Reservation is a committed decrement of a provider's free quantity tied
// to an approval.  Reservations persist until released (rental return,
// cancellation, or rollback of an in-flight approval); a permanent transfer
// keeps its reservation open forever, which is exactly the committed state.
type Reservation struct {
    Token       string            // opaque uuid handed back to the caller
    Owner       model.ProviderRef // provider pool the quantity came from
    EquipmentID string            // equipment the quantity belongs to
    Quantity    int64             // reserved amount, always > 0
    CreatedAt   time.Time         // when the reservation was taken
}

// Store is the persistence boundary of the registry.  TryAdjust must apply
// the delta atomically and refuse (false, nil) any adjustment that would
// drive the counter negative; unknown equipment yields engine.NotFoundError.
// GetReservation and DeleteReservation yield engine.NotFoundError for
// unknown tokens, so a token can be released at most once.
type Store interface {
    Available(ctx context.Context, owner model.ProviderRef, equipmentID string) (int64, error)
    TryAdjust(ctx context.Context, owner model.ProviderRef, equipmentID string, delta int64) (bool, error)
    SaveReservation(ctx context.Context, res Reservation) error
    GetReservation(ctx context.Context, token string) (*Reservation, error)
    DeleteReservation(ctx context.Context, token string) error
}

// Registry serializes quantity mutations per (provider, equipment) key on
// top of the store's conditional update, so concurrent reservations against
// the same pool can never jointly overdraw it.
type Registry struct {
    store Store
    now   func() time.Time

    mu    sync.Mutex
    locks map[string]*sync.Mutex
}

// NewRegistry returns a registry backed by the given store.
func NewRegistry(store Store) *Registry {
    if store == nil {
        panic("nil store passed to NewRegistry")
    }
    return &Registry{store: store, now: time.Now, locks: make(map[string]*sync.Mutex)}
}

// keyLock returns the mutex serializing one (provider, equipment) counter.
func (r *Registry) keyLock(owner model.ProviderRef, equipmentID string) *sync.Mutex {
    key := owner.Key() + "/" + equipmentID
    r.mu.Lock()
    defer r.mu.Unlock()
    l, ok := r.locks[key]
    if !ok {
        l = &sync.Mutex{}
        r.locks[key] = l
    }
    return l
}

// GetAvailable returns the current free quantity for the provider's pool,
// reflecting all committed reservations.
func (r *Registry) GetAvailable(ctx context.Context, owner model.ProviderRef, equipmentID string) (int64, error) {
    return r.store.Available(ctx, owner, equipmentID)
}

// Reserve atomically decrements the free quantity and records a
// reservation.  When the pool cannot cover the quantity it fails with
// InsufficientInventoryError carrying the shortfall, leaving the counter
// untouched.
func (r *Registry) Reserve(ctx context.Context, owner model.ProviderRef, equipmentID string, quantity int64) (string, error) {
    if quantity <= 0 {
        return "", &engine.ValidationError{Reason: "reservation quantity must be positive"}
    }
    l := r.keyLock(owner, equipmentID)
    l.Lock()
    defer l.Unlock()

    ok, err := r.store.TryAdjust(ctx, owner, equipmentID, -quantity)
    if err != nil {
        return "", err
    }
    if !ok {
        avail, aerr := r.store.Available(ctx, owner, equipmentID)
        if aerr != nil {
            return "", aerr
        }
        return "", &engine.InsufficientInventoryError{
            EquipmentID: equipmentID,
            Requested:   quantity,
            Available:   avail,
        }
    }
    res := Reservation{
        Token:       uuid.NewString(),
        Owner:       owner,
        EquipmentID: equipmentID,
        Quantity:    quantity,
        CreatedAt:   r.now().UTC(),
    }
    if err := r.store.SaveReservation(ctx, res); err != nil {
        // Undo the decrement; a positive adjustment cannot be refused.
        if _, uerr := r.store.TryAdjust(ctx, owner, equipmentID, quantity); uerr != nil {
            return "", uerr
        }
        return "", err
    }
    return res.Token, nil
}

// Release reverses one reservation, restoring the quantity to the pool.
// Releasing an unknown or already-released token fails with NotFoundError,
// which makes double release impossible.
func (r *Registry) Release(ctx context.Context, token string) error {
    res, err := r.store.GetReservation(ctx, token)
    if err != nil {
        return err
    }
    l := r.keyLock(res.Owner, res.EquipmentID)
    l.Lock()
    defer l.Unlock()

    // Delete first so a concurrent Release of the same token cannot restore
    // the quantity twice.
    if err := r.store.DeleteReservation(ctx, token); err != nil {
        return err
    }
    if _, err := r.store.TryAdjust(ctx, res.Owner, res.EquipmentID, res.Quantity); err != nil {
        return err
    }
    return nil
}
