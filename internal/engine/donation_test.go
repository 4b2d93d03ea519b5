package engine_test

import (
    "context"
    "errors"
    "strings"
    "testing"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

func TestEquipmentDonationReservesInventory(t *testing.T) {
    f := newFixture(t)
    req := f.createRequest(t, standardItems()...)

    donation, updated, err := f.bridge.Fulfill(context.Background(), req.ID, engine.DonateInput{
        Type: model.DonationEquipment,
        Items: []model.DonationItem{
            {EquipmentID: "ball", Quantity: 10},
            {EquipmentID: "net", Quantity: 2},
        },
        Donor:    actorP,
        Provider: providerP,
    })
    if err != nil {
        t.Fatalf("fulfill: %v", err)
    }
    if updated.Status != model.RequestApproved {
        t.Errorf("request status = %s, want approved", updated.Status)
    }
    if !strings.Contains(updated.Notes, donation.ID) {
        t.Errorf("request notes %q do not reference donation %s", updated.Notes, donation.ID)
    }
    // The donation path reserves through the registry like any transaction.
    if got := f.available(t, "ball"); got != 15 {
        t.Errorf("ball available = %d, want 15", got)
    }
    if got := f.available(t, "net"); got != 3 {
        t.Errorf("net available = %d, want 3", got)
    }
    // The donation record is the commitment; no transaction exists.
    if list, _ := f.reconciler.ListFor(context.Background(), model.ActorRef{Type: model.ActorSchool, ID: requesterS}); len(list) != 0 {
        t.Errorf("donation fulfillment materialized %d transactions, want 0", len(list))
    }
}

func TestMonetaryDonationSkipsInventory(t *testing.T) {
    f := newFixture(t)
    req := f.createRequest(t, standardItems()...)

    amount := int64(50000)
    _, updated, err := f.bridge.Fulfill(context.Background(), req.ID, engine.DonateInput{
        Type:        model.DonationMonetary,
        AmountCents: &amount,
        Items: []model.DonationItem{
            {EquipmentID: "ball", Quantity: 10},
            {EquipmentID: "net", Quantity: 2},
        },
        Donor: model.ActorRef{Type: model.ActorGovernBody, ID: "gb-1"},
    })
    if err != nil {
        t.Fatalf("fulfill: %v", err)
    }
    if updated.Status != model.RequestApproved {
        t.Errorf("request status = %s, want approved", updated.Status)
    }
    // Money funds equipment outside the tracked pool: counters untouched.
    if got := f.available(t, "ball"); got != 25 {
        t.Errorf("ball available = %d, want 25", got)
    }
}

func TestPartialDonation(t *testing.T) {
    f := newFixture(t)
    req := f.createRequest(t, standardItems()...)

    _, updated, err := f.bridge.Fulfill(context.Background(), req.ID, engine.DonateInput{
        Type:     model.DonationEquipment,
        Items:    []model.DonationItem{{EquipmentID: "ball", Quantity: 4}},
        Donor:    actorP,
        Provider: providerP,
    })
    if err != nil {
        t.Fatalf("fulfill: %v", err)
    }
    if updated.Status != model.RequestPartial {
        t.Errorf("request status = %s, want partial", updated.Status)
    }
    if got := f.available(t, "ball"); got != 21 {
        t.Errorf("ball available = %d, want 21", got)
    }
}

func TestDonationValidation(t *testing.T) {
    f := newFixture(t)
    req := f.createRequest(t, standardItems()...)
    amount := int64(1000)
    cases := []struct {
        name string
        in   engine.DonateInput
    }{
        {"unknown type", engine.DonateInput{Type: "pledge", Items: []model.DonationItem{{EquipmentID: "ball", Quantity: 1}}}},
        {"no items", engine.DonateInput{Type: model.DonationMonetary, AmountCents: &amount}},
        {"equipment without provider", engine.DonateInput{
            Type:  model.DonationEquipment,
            Items: []model.DonationItem{{EquipmentID: "ball", Quantity: 1}},
        }},
        {"monetary without amount", engine.DonateInput{
            Type:  model.DonationMonetary,
            Items: []model.DonationItem{{EquipmentID: "ball", Quantity: 1}},
        }},
        {"over requested", engine.DonateInput{
            Type:     model.DonationEquipment,
            Items:    []model.DonationItem{{EquipmentID: "ball", Quantity: 11}},
            Provider: providerP,
        }},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            tc.in.Donor = actorP
            _, _, err := f.bridge.Fulfill(context.Background(), req.ID, tc.in)
            var verr *engine.ValidationError
            if !errors.As(err, &verr) {
                t.Fatalf("want ValidationError, got %v", err)
            }
        })
    }
    got, _ := f.lifecycle.Get(context.Background(), req.ID)
    if got.Status != model.RequestPending {
        t.Errorf("request status = %s, want pending after rejected donations", got.Status)
    }
    if len(f.donations.byID) != 0 {
        t.Errorf("%d donation records persisted for invalid donations, want 0", len(f.donations.byID))
    }
}

func TestDonationAfterResponseIsCompensated(t *testing.T) {
    f := newFixture(t)
    req := f.createRequest(t, standardItems()...)
    _, _, err := f.lifecycle.Respond(context.Background(), req.ID, engine.RespondInput{
        Decision:        engine.DecisionRejected,
        RejectionReason: "already sourced elsewhere",
        Actor:           actorP,
    })
    if err != nil {
        t.Fatalf("respond: %v", err)
    }

    _, _, err = f.bridge.Fulfill(context.Background(), req.ID, engine.DonateInput{
        Type:     model.DonationEquipment,
        Items:    []model.DonationItem{{EquipmentID: "ball", Quantity: 1}},
        Donor:    actorP,
        Provider: providerP,
    })
    var serr *engine.InvalidStateTransitionError
    if !errors.As(err, &serr) {
        t.Fatalf("want InvalidStateTransitionError, got %v", err)
    }
    if len(f.donations.byID) != 0 {
        t.Errorf("%d donation records survive a lost race, want 0", len(f.donations.byID))
    }
    if got := f.available(t, "ball"); got != 25 {
        t.Errorf("ball available = %d, want 25", got)
    }
}
