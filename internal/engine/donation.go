package engine

import (
    "context"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// DonateInput bundles a donation-based fulfillment of a request.  Equipment
// donations name the provider pool the items come from and reserve
// inventory exactly like a direct transaction; monetary donations fund
// equipment outside the tracked pool and leave a zero Provider.
type DonateInput struct {
    Type        model.DonationType
    AmountCents *int64
    Items       []model.DonationItem
    Message     string
    Donor       model.ActorRef
    Provider    model.ProviderRef
}

// Bridge is the alternative fulfillment path: a provider commits to a
// request by donating instead of entering a transaction.  The donation
// record itself is the commitment; the request converges back into the
// lifecycle manager as approved (or partial) with the donation ID recorded
// in its notes.
type Bridge struct {
    donations DonationStore
    lifecycle *Lifecycle
    now       func() time.Time
}

// NewBridge wires a donation bridge.
func NewBridge(donations DonationStore, lifecycle *Lifecycle) *Bridge {
    if donations == nil || lifecycle == nil {
        panic("nil dependency passed to NewBridge")
    }
    return &Bridge{donations: donations, lifecycle: lifecycle, now: time.Now}
}

// Fulfill creates the donation record and drives the request through the
// approval path with approved items mirroring the donated items.  The
// at-most-once guarantee is the lifecycle manager's: if another responder
// won the race, the donation record is compensated away and the caller
// observes InvalidStateTransitionError.
func (b *Bridge) Fulfill(ctx context.Context, requestID string, in DonateInput) (*model.Donation, *model.EquipmentRequest, error) {
    if !in.Type.Valid() {
        return nil, nil, validationf("unknown donation type %q", in.Type)
    }
    if len(in.Items) == 0 {
        return nil, nil, validationf("a donation fulfilling a request must name at least one item")
    }
    switch in.Type {
    case model.DonationEquipment:
        if !in.Provider.Type.Valid() || in.Provider.ID == "" {
            return nil, nil, validationf("equipment donations require the donating provider's pool")
        }
    case model.DonationMonetary:
        if in.AmountCents == nil || *in.AmountCents <= 0 {
            return nil, nil, validationf("monetary donations require a positive amount")
        }
        // The donated equipment is bought outside the tracked pool.
        in.Provider = model.ProviderRef{}
    }

    req, err := b.lifecycle.requests.GetRequest(ctx, requestID)
    if err != nil {
        return nil, nil, err
    }
    if req.Status != model.RequestPending {
        return nil, nil, &InvalidStateTransitionError{Kind: "request", ID: requestID, Op: "respond"}
    }

    approved := make([]ApprovedItem, len(in.Items))
    for i, it := range in.Items {
        approved[i] = ApprovedItem{EquipmentID: it.EquipmentID, QuantityApproved: it.Quantity}
    }
    // Validate the donated quantities against the request lines before the
    // donation record exists, so a malformed donation never has to be
    // compensated.
    if _, err := resolveApprovals(req, approved); err != nil {
        return nil, nil, err
    }

    d := &model.Donation{
        ID:          uuid.NewString(),
        RequestID:   requestID,
        Donor:       in.Donor,
        Type:        in.Type,
        AmountCents: in.AmountCents,
        Items:       in.Items,
        Message:     in.Message,
        CreatedAt:   b.now().UTC(),
    }
    if err := b.donations.CreateDonation(ctx, d); err != nil {
        return nil, nil, err
    }

    respond := RespondInput{
        Decision:      DecisionApproved,
        ApprovedItems: approved,
        Actor:         in.Donor,
        Provider:      in.Provider,
    }
    updated, _, err := b.lifecycle.approve(ctx, req, respond, "fulfilled by donation "+d.ID, false)
    if err != nil {
        if derr := b.donations.DeleteDonation(ctx, d.ID); derr != nil {
            log.Printf("donation: compensate donation %s: %v", d.ID, derr)
        }
        return nil, nil, err
    }
    return d, updated, nil
}
