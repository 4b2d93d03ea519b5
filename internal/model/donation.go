package model

import "time"

// DonationType distinguishes how a donation is funded.  Equipment donations
// come out of the donor's tracked pool and reserve inventory like any
// transaction; monetary donations fund equipment sourced outside the pool
// and carry no reservation.
type DonationType string

const (
    DonationMonetary  DonationType = "monetary"
    DonationEquipment DonationType = "equipment"
)

// Valid reports whether t is a known donation type.
func (t DonationType) Valid() bool {
    return t == DonationMonetary || t == DonationEquipment
}

// DonationItem mirrors a request line being satisfied by the donation.
type DonationItem struct {
    EquipmentID string `json:"equipment_id"`
    Quantity    int64  `json:"quantity"`
}

// Donation is the alternative fulfillment record: instead of a transaction,
// a provider commits to a request by donating.  The donation itself is the
// commitment – no transaction record is created on this path.
//
// Fields:
//  ID          – primary key identifier.
//  RequestID   – request being fulfilled.
//  Donor       – actor making the donation.
//  Type        – monetary or equipment.
//  AmountCents – monetary amount, for monetary donations.
//  Items       – request lines satisfied by the donation.
//  Message     – free-form message from the donor.
//  CreatedAt   – creation timestamp.
type Donation struct {
    ID          string         `json:"id"`
    RequestID   string         `json:"request_id"`
    Donor       ActorRef       `json:"donor"`
    Type        DonationType   `json:"donation_type"`
    AmountCents *int64         `json:"amount_cents,omitempty"`
    Items       []DonationItem `json:"items,omitempty"`
    Message     string         `json:"message,omitempty"`
    CreatedAt   time.Time      `json:"created_at"`
}
