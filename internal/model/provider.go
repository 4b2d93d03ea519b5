package model

import "time"

// Provider is the read-side profile of an entity able to fulfill requests.
// Schools are general-purpose providers; governing bodies only see request
// items within their declared sports (specialization scoping).
//
// Fields:
//  Ref                 – tagged identity of the provider.
//  Name                – display name.
//  Location            – used for proximity ranking, may lack coordinates.
//  SpecializedSportIDs – declared sports; empty for schools.
//  CreatedAt           – creation timestamp.
type Provider struct {
    Ref                 ProviderRef `json:"ref"`
    Name                string      `json:"name"`
    Location            Location    `json:"location"`
    SpecializedSportIDs []string    `json:"specialized_sport_ids,omitempty"`
    CreatedAt           time.Time   `json:"created_at"`
}
