package engine_test

// In-memory store fakes backing the engine tests.  They mirror the
// contracts the SQL repositories implement, including the compare-and-swap
// semantics the lifecycle manager relies on, so the concurrency properties
// exercised here hold for any conforming store.

import (
    "context"
    "sync"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/inventory"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

func copyRequest(r *model.EquipmentRequest) *model.EquipmentRequest {
    cp := *r
    cp.Items = make([]model.RequestItem, len(r.Items))
    for i, it := range r.Items {
        cp.Items[i] = it
        if it.QuantityApproved != nil {
            q := *it.QuantityApproved
            cp.Items[i].QuantityApproved = &q
        }
    }
    if r.ProcessedBy != nil {
        pb := *r.ProcessedBy
        cp.ProcessedBy = &pb
    }
    if r.ProcessedAt != nil {
        pa := *r.ProcessedAt
        cp.ProcessedAt = &pa
    }
    return &cp
}

type memRequests struct {
    mu   sync.Mutex
    byID map[string]*model.EquipmentRequest
}

func newMemRequests() *memRequests {
    return &memRequests{byID: map[string]*model.EquipmentRequest{}}
}

func (s *memRequests) CreateRequest(_ context.Context, req *model.EquipmentRequest) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.byID[req.ID] = copyRequest(req)
    return nil
}

func (s *memRequests) GetRequest(_ context.Context, id string) (*model.EquipmentRequest, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.byID[id]
    if !ok {
        return nil, &engine.NotFoundError{Kind: "request", ID: id}
    }
    return copyRequest(r), nil
}

func (s *memRequests) ListOpenRequests(_ context.Context) ([]model.EquipmentRequest, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.EquipmentRequest
    for _, r := range s.byID {
        if r.Status == model.RequestPending {
            out = append(out, *copyRequest(r))
        }
    }
    return out, nil
}

func (s *memRequests) MarkResponded(_ context.Context, id string, resp engine.Response) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.byID[id]
    if !ok {
        return false, &engine.NotFoundError{Kind: "request", ID: id}
    }
    if r.Status != model.RequestPending {
        return false, nil
    }
    r.Status = resp.Status
    r.RejectionReason = resp.RejectionReason
    pb := resp.ProcessedBy
    r.ProcessedBy = &pb
    pa := resp.ProcessedAt
    r.ProcessedAt = &pa
    for i := range r.Items {
        if q, ok := resp.Approved[r.Items[i].EquipmentID]; ok {
            qq := q
            r.Items[i].QuantityApproved = &qq
        }
    }
    if resp.NoteAppend != "" {
        if r.Notes != "" {
            r.Notes += "\n"
        }
        r.Notes += resp.NoteAppend
    }
    return true, nil
}

func (s *memRequests) MarkDelivered(_ context.Context, id string, _ time.Time) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.byID[id]
    if !ok {
        return false, &engine.NotFoundError{Kind: "request", ID: id}
    }
    if !r.Status.Deliverable() {
        return false, nil
    }
    r.Status = model.RequestDelivered
    return true, nil
}

func (s *memRequests) ResetPending(_ context.Context, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.byID[id]
    if !ok {
        return &engine.NotFoundError{Kind: "request", ID: id}
    }
    r.Status = model.RequestPending
    r.RejectionReason = ""
    r.ProcessedBy = nil
    r.ProcessedAt = nil
    for i := range r.Items {
        r.Items[i].QuantityApproved = nil
    }
    return nil
}

type memTransactions struct {
    mu   sync.Mutex
    byID map[string]*model.Transaction
    // failCreate makes CreateTransaction fail once, to exercise rollback.
    failCreate error
}

func newMemTransactions() *memTransactions {
    return &memTransactions{byID: map[string]*model.Transaction{}}
}

func copyTransaction(t *model.Transaction) *model.Transaction {
    cp := *t
    cp.Items = append([]model.TransactionItem(nil), t.Items...)
    if t.Rental != nil {
        r := *t.Rental
        if t.Rental.ReturnedDate != nil {
            rd := *t.Rental.ReturnedDate
            r.ReturnedDate = &rd
        }
        cp.Rental = &r
    }
    return &cp
}

func (s *memTransactions) CreateTransaction(_ context.Context, t *model.Transaction) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.failCreate != nil {
        err := s.failCreate
        s.failCreate = nil
        return err
    }
    s.byID[t.ID] = copyTransaction(t)
    return nil
}

func (s *memTransactions) GetTransaction(_ context.Context, id string) (*model.Transaction, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.byID[id]
    if !ok {
        return nil, &engine.NotFoundError{Kind: "transaction", ID: id}
    }
    return copyTransaction(t), nil
}

func (s *memTransactions) ListTransactionsFor(_ context.Context, actor model.ActorRef) ([]model.Transaction, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Transaction
    for _, t := range s.byID {
        if t.RecipientSchoolID == actor.ID || (t.Provider.ID == actor.ID && string(t.Provider.Type) == string(actor.Type)) {
            out = append(out, *copyTransaction(t))
        }
    }
    return out, nil
}

func (s *memTransactions) SetTransactionStatus(_ context.Context, id string, from []model.TransactionStatus, to model.TransactionStatus, returnedDate *time.Time) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.byID[id]
    if !ok {
        return false, &engine.NotFoundError{Kind: "transaction", ID: id}
    }
    eligible := false
    for _, f := range from {
        if t.Status == f {
            eligible = true
            break
        }
    }
    if !eligible {
        return false, nil
    }
    t.Status = to
    if returnedDate != nil && t.Rental != nil {
        rd := *returnedDate
        t.Rental.ReturnedDate = &rd
    }
    return true, nil
}

type memDonations struct {
    mu   sync.Mutex
    byID map[string]*model.Donation
}

func newMemDonations() *memDonations { return &memDonations{byID: map[string]*model.Donation{}} }

func (s *memDonations) CreateDonation(_ context.Context, d *model.Donation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cp := *d
    s.byID[d.ID] = &cp
    return nil
}

func (s *memDonations) DeleteDonation(_ context.Context, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.byID[id]; !ok {
        return &engine.NotFoundError{Kind: "donation", ID: id}
    }
    delete(s.byID, id)
    return nil
}

type memCatalog struct {
    mu        sync.Mutex
    equipment map[string]*model.Equipment
}

func newMemCatalog() *memCatalog { return &memCatalog{equipment: map[string]*model.Equipment{}} }

func (s *memCatalog) add(e model.Equipment) { s.equipment[e.ID] = &e }

func (s *memCatalog) GetEquipment(_ context.Context, id string) (*model.Equipment, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.equipment[id]
    if !ok {
        return nil, &engine.NotFoundError{Kind: "equipment", ID: id}
    }
    cp := *e
    return &cp, nil
}

func (s *memCatalog) SportsFor(_ context.Context, equipmentIDs []string) (map[string]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make(map[string]string, len(equipmentIDs))
    for _, id := range equipmentIDs {
        if e, ok := s.equipment[id]; ok {
            out[id] = e.SportID
        }
    }
    return out, nil
}

// memInventoryStore implements inventory.Store over maps.
type memInventoryStore struct {
    mu           sync.Mutex
    quantities   map[string]int64
    reservations map[string]inventory.Reservation
}

func newMemInventoryStore() *memInventoryStore {
    return &memInventoryStore{
        quantities:   map[string]int64{},
        reservations: map[string]inventory.Reservation{},
    }
}

func invKey(owner model.ProviderRef, equipmentID string) string {
    return owner.Key() + "/" + equipmentID
}

func (s *memInventoryStore) set(owner model.ProviderRef, equipmentID string, qty int64) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.quantities[invKey(owner, equipmentID)] = qty
}

func (s *memInventoryStore) Available(_ context.Context, owner model.ProviderRef, equipmentID string) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    q, ok := s.quantities[invKey(owner, equipmentID)]
    if !ok {
        return 0, &engine.NotFoundError{Kind: "equipment", ID: equipmentID}
    }
    return q, nil
}

func (s *memInventoryStore) TryAdjust(_ context.Context, owner model.ProviderRef, equipmentID string, delta int64) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    key := invKey(owner, equipmentID)
    q, ok := s.quantities[key]
    if !ok {
        return false, &engine.NotFoundError{Kind: "equipment", ID: equipmentID}
    }
    if q+delta < 0 {
        return false, nil
    }
    s.quantities[key] = q + delta
    return true, nil
}

func (s *memInventoryStore) SaveReservation(_ context.Context, res inventory.Reservation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.reservations[res.Token] = res
    return nil
}

func (s *memInventoryStore) GetReservation(_ context.Context, token string) (*inventory.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    res, ok := s.reservations[token]
    if !ok {
        return nil, &engine.NotFoundError{Kind: "reservation", ID: token}
    }
    cp := res
    return &cp, nil
}

func (s *memInventoryStore) DeleteReservation(_ context.Context, token string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.reservations[token]; !ok {
        return &engine.NotFoundError{Kind: "reservation", ID: token}
    }
    delete(s.reservations, token)
    return nil
}

// captureNotifier records emitted events; fail makes it return an error to
// verify notification failures never surface.
type captureNotifier struct {
    mu     sync.Mutex
    events []string
    fail   error
}

func (n *captureNotifier) RequestResponded(_ context.Context, req *model.EquipmentRequest, _ *model.Transaction) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.events = append(n.events, req.ID+":"+string(req.Status))
    return n.fail
}
