package engine

import (
    "context"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// Decision is a provider's verdict on a pending request.  DecisionApproved
// and DecisionPartial share one path: the final request status is computed
// from the approved quantities, not from the label the caller picked.
type Decision string

const (
    DecisionApproved Decision = "approved"
    DecisionPartial  Decision = "partial"
    DecisionRejected Decision = "rejected"
)

// ApprovedItem is one line of a provider's approval.  Condition and Notes
// carry through to the transaction item built from this line.
type ApprovedItem struct {
    EquipmentID      string
    QuantityApproved int64
    Condition        string
    Notes            string
}

// RespondInput bundles everything a provider submits when responding to a
// pending request.  For rejections only RejectionReason and Actor are
// consulted.  For approvals the provider reference selects the inventory
// pool and the transaction type selects the reconciliation shape.
type RespondInput struct {
    Decision        Decision
    ApprovedItems   []ApprovedItem
    RejectionReason string
    Actor           model.ActorRef
    Provider        model.ProviderRef
    TransactionType model.TransactionType
    Rental          *model.RentalDetails
}

// CreateInput is the payload for opening a new equipment request.
type CreateInput struct {
    RequesterSchoolID string
    EventName         string
    EventWindow       model.EventWindow
    Description       string
    Items             []model.RequestItem
}

// Lifecycle owns the equipment request state machine:
//
//	pending -> {approved, rejected, partial} -> delivered
//
// All status writes go through the store's compare-and-swap methods, so the
// first Respond to reach a pending request wins and every concurrent loser
// observes InvalidStateTransitionError instead of double-committing
// inventory.
type Lifecycle struct {
    requests  RequestStore
    catalog   EquipmentCatalog
    inventory Inventory
    reconciler *Reconciler
    notifier  Notifier
    now       func() time.Time
}

// NewLifecycle wires a lifecycle manager.  notifier may be nil, in which
// case no events are emitted.
func NewLifecycle(requests RequestStore, catalog EquipmentCatalog, inv Inventory, rec *Reconciler, notifier Notifier) *Lifecycle {
    if requests == nil || catalog == nil || inv == nil || rec == nil {
        panic("nil dependency passed to NewLifecycle")
    }
    return &Lifecycle{
        requests:   requests,
        catalog:    catalog,
        inventory:  inv,
        reconciler: rec,
        notifier:   notifier,
        now:        time.Now,
    }
}

// Create validates and stores a new request in the pending state.
func (l *Lifecycle) Create(ctx context.Context, in CreateInput) (*model.EquipmentRequest, error) {
    if in.RequesterSchoolID == "" {
        return nil, validationf("requester school id is required")
    }
    if in.EventName == "" {
        return nil, validationf("event name is required")
    }
    if len(in.Items) == 0 {
        return nil, validationf("at least one item is required")
    }
    if !in.EventWindow.Start.IsZero() && !in.EventWindow.End.IsZero() && in.EventWindow.End.Before(in.EventWindow.Start) {
        return nil, validationf("event window end precedes start")
    }
    seen := make(map[string]bool, len(in.Items))
    for _, it := range in.Items {
        if it.EquipmentID == "" {
            return nil, validationf("item equipment id is required")
        }
        if it.QuantityRequested < 1 {
            return nil, validationf("quantity requested for %s must be at least 1", it.EquipmentID)
        }
        if seen[it.EquipmentID] {
            return nil, validationf("duplicate item for equipment %s", it.EquipmentID)
        }
        seen[it.EquipmentID] = true
    }
    items := make([]model.RequestItem, len(in.Items))
    for i, it := range in.Items {
        items[i] = model.RequestItem{EquipmentID: it.EquipmentID, QuantityRequested: it.QuantityRequested}
    }
    req := &model.EquipmentRequest{
        ID:                uuid.NewString(),
        RequesterSchoolID: in.RequesterSchoolID,
        EventName:         in.EventName,
        EventWindow:       in.EventWindow,
        Description:       in.Description,
        Items:             items,
        Status:            model.RequestPending,
        CreatedAt:         l.now().UTC(),
    }
    if err := l.requests.CreateRequest(ctx, req); err != nil {
        return nil, err
    }
    return req, nil
}

// Get returns a request by ID.
func (l *Lifecycle) Get(ctx context.Context, id string) (*model.EquipmentRequest, error) {
    return l.requests.GetRequest(ctx, id)
}

// ListForProvider returns the open requests visible to a provider.
// Governing bodies are specialization-scoped: only requests containing at
// least one item within their declared sports are returned, and the items
// of each returned request are filtered to that relevant subset.  Schools
// see unfiltered item sets from all other schools' requests, excluding
// their own.  The scoping never blocks a provider from responding; it only
// shapes what is listed.
func (l *Lifecycle) ListForProvider(ctx context.Context, provider model.ProviderRef, specializedSportIDs []string) ([]model.EquipmentRequest, error) {
    open, err := l.requests.ListOpenRequests(ctx)
    if err != nil {
        return nil, err
    }
    if provider.Type == model.ProviderSchool {
        visible := make([]model.EquipmentRequest, 0, len(open))
        for _, req := range open {
            if req.RequesterSchoolID == provider.ID {
                continue
            }
            visible = append(visible, req)
        }
        return visible, nil
    }

    // Governing body: resolve each item's sport and keep only relevant lines.
    specialized := make(map[string]bool, len(specializedSportIDs))
    for _, id := range specializedSportIDs {
        specialized[id] = true
    }
    var ids []string
    for _, req := range open {
        for _, it := range req.Items {
            ids = append(ids, it.EquipmentID)
        }
    }
    sports, err := l.catalog.SportsFor(ctx, ids)
    if err != nil {
        return nil, err
    }
    visible := make([]model.EquipmentRequest, 0, len(open))
    for _, req := range open {
        var relevant []model.RequestItem
        for _, it := range req.Items {
            if specialized[sports[it.EquipmentID]] {
                relevant = append(relevant, it)
            }
        }
        if len(relevant) == 0 {
            continue
        }
        req.Items = relevant
        visible = append(visible, req)
    }
    return visible, nil
}

// Respond applies a provider's decision to a pending request.  For
// approvals it reserves inventory per item (rolling every reservation of
// the call back on the first shortfall), commits the status transition via
// compare-and-swap, and has the reconciliation engine materialize the
// transaction.  A reconciliation failure releases the reservations and
// resets the request to pending, surfacing the underlying error.
func (l *Lifecycle) Respond(ctx context.Context, requestID string, in RespondInput) (*model.EquipmentRequest, *model.Transaction, error) {
    req, err := l.requests.GetRequest(ctx, requestID)
    if err != nil {
        return nil, nil, err
    }
    if req.Status != model.RequestPending {
        return nil, nil, &InvalidStateTransitionError{Kind: "request", ID: requestID, Op: "respond"}
    }

    switch in.Decision {
    case DecisionRejected:
        return l.reject(ctx, req, in)
    case DecisionApproved, DecisionPartial:
        if !in.Provider.Type.Valid() || in.Provider.ID == "" {
            return nil, nil, validationf("a valid provider reference is required")
        }
        if err := l.reconciler.validatePlan(in.TransactionType, in.Rental); err != nil {
            return nil, nil, err
        }
        return l.approve(ctx, req, in, "", true)
    default:
        return nil, nil, validationf("unknown decision %q", in.Decision)
    }
}

// reject records a rejection.  The reason is mandatory.
func (l *Lifecycle) reject(ctx context.Context, req *model.EquipmentRequest, in RespondInput) (*model.EquipmentRequest, *model.Transaction, error) {
    if in.RejectionReason == "" {
        return nil, nil, validationf("rejection reason is required")
    }
    resp := Response{
        Status:          model.RequestRejected,
        RejectionReason: in.RejectionReason,
        ProcessedBy:     in.Actor,
        ProcessedAt:     l.now().UTC(),
    }
    ok, err := l.requests.MarkResponded(ctx, req.ID, resp)
    if err != nil {
        return nil, nil, err
    }
    if !ok {
        return nil, nil, &InvalidStateTransitionError{Kind: "request", ID: req.ID, Op: "respond"}
    }
    updated, err := l.requests.GetRequest(ctx, req.ID)
    if err != nil {
        return nil, nil, err
    }
    l.notify(ctx, updated, nil)
    return updated, nil, nil
}

// approve is the shared approval path for direct responses and donation
// fulfillment.  When reserve is false (monetary donations) no inventory is
// touched and no transaction is materialized; donationNote ties the request
// back to the donation record.
func (l *Lifecycle) approve(ctx context.Context, req *model.EquipmentRequest, in RespondInput, donationNote string, materialize bool) (*model.EquipmentRequest, *model.Transaction, error) {
    approvals, err := resolveApprovals(req, in.ApprovedItems)
    if err != nil {
        return nil, nil, err
    }

    // Monetary donations arrive with a zero provider reference: the donated
    // equipment is sourced outside the tracked pool, so nothing is reserved.
    reserve := !in.Provider.IsZero()

    // Reserve per item before committing the transition.  Either every
    // reservation of this call succeeds or none is retained.
    var tokens []string
    release := func() {
        for _, tok := range tokens {
            if rerr := l.inventory.Release(ctx, tok); rerr != nil {
                log.Printf("lifecycle: release reservation %s: %v", tok, rerr)
            }
        }
    }
    lines := make([]model.TransactionItem, 0, len(in.ApprovedItems))
    if reserve {
        for _, it := range in.ApprovedItems {
            qty := approvals[it.EquipmentID]
            if qty == 0 {
                continue
            }
            tok, rerr := l.inventory.Reserve(ctx, in.Provider, it.EquipmentID, qty)
            if rerr != nil {
                release()
                return nil, nil, rerr
            }
            tokens = append(tokens, tok)
            lines = append(lines, model.TransactionItem{
                EquipmentID:      it.EquipmentID,
                Quantity:         qty,
                Condition:        it.Condition,
                Notes:            it.Notes,
                ReservationToken: tok,
            })
        }
    }

    status := model.RequestApproved
    for _, it := range req.Items {
        if approvals[it.EquipmentID] != it.QuantityRequested {
            status = model.RequestPartial
            break
        }
    }

    resp := Response{
        Status:      status,
        ProcessedBy: in.Actor,
        ProcessedAt: l.now().UTC(),
        Approved:    approvals,
        NoteAppend:  donationNote,
    }
    ok, err := l.requests.MarkResponded(ctx, req.ID, resp)
    if err != nil {
        release()
        return nil, nil, err
    }
    if !ok {
        // Lost the race: another respond already committed.
        release()
        return nil, nil, &InvalidStateTransitionError{Kind: "request", ID: req.ID, Op: "respond"}
    }

    var trans *model.Transaction
    if materialize {
        trans, err = l.reconciler.materialize(ctx, req, lines, in)
        if err != nil {
            release()
            if rerr := l.requests.ResetPending(ctx, req.ID); rerr != nil {
                log.Printf("lifecycle: reset request %s to pending: %v", req.ID, rerr)
            }
            return nil, nil, err
        }
    }

    updated, err := l.requests.GetRequest(ctx, req.ID)
    if err != nil {
        return nil, nil, err
    }
    l.notify(ctx, updated, trans)
    return updated, trans, nil
}

// MarkDelivered transitions an approved or partial request to delivered.
// A second call observes InvalidStateTransitionError; there is no inventory
// effect, that was applied at approval time.
func (l *Lifecycle) MarkDelivered(ctx context.Context, requestID string) (*model.EquipmentRequest, error) {
    ok, err := l.requests.MarkDelivered(ctx, requestID, l.now().UTC())
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, &InvalidStateTransitionError{Kind: "request", ID: requestID, Op: "markDelivered"}
    }
    return l.requests.GetRequest(ctx, requestID)
}

// notify emits a fire-and-forget event.  Failures are logged and never
// propagated: a committed transition must not be rolled back because the
// notification collaborator is down.
func (l *Lifecycle) notify(ctx context.Context, req *model.EquipmentRequest, t *model.Transaction) {
    if l.notifier == nil {
        return
    }
    if err := l.notifier.RequestResponded(ctx, req, t); err != nil {
        log.Printf("lifecycle: notify request %s: %v", req.ID, err)
    }
}

// resolveApprovals validates the submitted approvals against the request
// lines and expands them into a per-equipment quantity map covering every
// line (unmentioned lines approve zero).
func resolveApprovals(req *model.EquipmentRequest, items []ApprovedItem) (map[string]int64, error) {
    approvals := make(map[string]int64, len(req.Items))
    for _, it := range req.Items {
        approvals[it.EquipmentID] = 0
    }
    seen := make(map[string]bool, len(items))
    var total int64
    for _, it := range items {
        line := req.Item(it.EquipmentID)
        if line == nil {
            return nil, validationf("equipment %s is not part of the request", it.EquipmentID)
        }
        if seen[it.EquipmentID] {
            return nil, validationf("duplicate approval for equipment %s", it.EquipmentID)
        }
        seen[it.EquipmentID] = true
        if it.QuantityApproved < 0 || it.QuantityApproved > line.QuantityRequested {
            return nil, validationf("approved quantity %d for %s outside 0..%d",
                it.QuantityApproved, it.EquipmentID, line.QuantityRequested)
        }
        approvals[it.EquipmentID] = it.QuantityApproved
        total += it.QuantityApproved
    }
    if total == 0 {
        return nil, validationf("no quantities approved")
    }
    return approvals, nil
}
