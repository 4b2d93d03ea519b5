package model

import "fmt"

// ActorType discriminates every kind of actor that can touch a request or
// transaction.  It is a closed set: handlers resolve the type once from the
// verified identity claims and the engine only ever records it.
type ActorType string

const (
    ActorSchool     ActorType = "SCHOOL"      // a school account
    ActorGovernBody ActorType = "GOVERN_BODY" // a sports governing body account
    ActorAdmin      ActorType = "ADMIN"       // a platform administrator
)

// Valid reports whether t is one of the known actor types.
func (t ActorType) Valid() bool {
    switch t {
    case ActorSchool, ActorGovernBody, ActorAdmin:
        return true
    }
    return false
}

// ActorRef identifies who performed a write.  It is resolved at write time
// and stored as-is; readers never reconstruct it from unrelated ID fields.
type ActorRef struct {
    Type ActorType `json:"type"` // kind of actor
    ID   string    `json:"id"`   // opaque identifier within that kind
}

// IsZero reports whether the reference is unset.
func (a ActorRef) IsZero() bool { return a.Type == "" && a.ID == "" }

// ProviderType discriminates the two kinds of entity that can fulfill a
// request.  Admins may process requests but never act as providers.
type ProviderType string

const (
    ProviderSchool     ProviderType = "SCHOOL"      // another school's pool
    ProviderGovernBody ProviderType = "GOVERN_BODY" // a governing body's pool
)

// Valid reports whether t is a known provider type.
func (t ProviderType) Valid() bool {
    return t == ProviderSchool || t == ProviderGovernBody
}

// ProviderRef is the tagged reference used everywhere a provider is named:
// inventory ownership, transactions and scoped request listings.  Lookups
// dispatch on Type rather than on ad hoc string checks.
type ProviderRef struct {
    Type ProviderType `json:"type"` // SCHOOL or GOVERN_BODY
    ID   string       `json:"id"`   // identifier within that kind
}

// IsZero reports whether the reference is unset.
func (p ProviderRef) IsZero() bool { return p.Type == "" && p.ID == "" }

// Key returns a stable string form used for map keys and lock keys.
func (p ProviderRef) Key() string { return fmt.Sprintf("%s/%s", p.Type, p.ID) }

// Actor returns the ActorRef equivalent of the provider reference.
func (p ProviderRef) Actor() ActorRef {
    return ActorRef{Type: ActorType(p.Type), ID: p.ID}
}
