package model

import "time"

// Equipment is a pooled item owned by a provider (school or governing
// body).  AvailableQuantity is the only shared mutable counter in the
// system; it is adjusted exclusively through the inventory registry's
// reserve/release operations and never written by any other component.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – display name of the item.
//  SportID           – sport classification used for specialization scoping.
//  Owner             – provider that holds this pool.
//  AvailableQuantity – free quantity after all committed reservations.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last modification timestamp.
type Equipment struct {
    ID                string      `json:"id"`                 // equipment.id
    Name              string      `json:"name"`               // equipment.name
    SportID           string      `json:"sport_id"`           // equipment.sport_id
    Owner             ProviderRef `json:"owner"`              // equipment.owner_type / owner_id
    AvailableQuantity int64       `json:"available_quantity"` // equipment.available_quantity
    CreatedAt         time.Time   `json:"created_at"`         // equipment.created_at
    UpdatedAt         time.Time   `json:"updated_at"`         // equipment.updated_at
}
