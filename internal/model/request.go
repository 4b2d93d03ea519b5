package model

import "time"

// RequestStatus enumerates the lifecycle states of an equipment request.
// pending is initial; approved, rejected and partial terminate the approval
// phase; delivered is terminal overall and reachable only from approved or
// partial.
type RequestStatus string

const (
    RequestPending   RequestStatus = "pending"
    RequestApproved  RequestStatus = "approved"
    RequestRejected  RequestStatus = "rejected"
    RequestPartial   RequestStatus = "partial"
    RequestDelivered RequestStatus = "delivered"
)

// Responded reports whether the approval phase has concluded.
func (s RequestStatus) Responded() bool { return s != RequestPending }

// Deliverable reports whether the request may still transition to delivered.
func (s RequestStatus) Deliverable() bool {
    return s == RequestApproved || s == RequestPartial
}

// RequestItem is one line of an equipment request.  QuantityApproved is nil
// until a provider has responded; once set it always satisfies
// 0 <= QuantityApproved <= QuantityRequested.
type RequestItem struct {
    EquipmentID       string `json:"equipment_id"`                // referenced equipment
    QuantityRequested int64  `json:"quantity_requested"`          // asked for, >= 1
    QuantityApproved  *int64 `json:"quantity_approved,omitempty"` // granted, set on response
}

// EventWindow bounds the event the equipment is requested for.
type EventWindow struct {
    Start time.Time `json:"start"` // first day of the event
    End   time.Time `json:"end"`   // last day of the event
}

// EquipmentRequest is a school's ask for specific equipment quantities for
// an event.  It is owned by the requesting school and mutated exclusively
// through the lifecycle manager's Respond and MarkDelivered operations; it
// is never deleted, only terminally transitioned.
//
// Fields:
//  ID                – primary key identifier.
//  RequesterSchoolID – school that created the request.
//  EventName         – name of the event the equipment is for.
//  EventWindow       – start/end dates of the event.
//  Description       – free-form context supplied by the school.
//  Items             – requested equipment lines, never empty.
//  Status            – lifecycle state, see RequestStatus.
//  RejectionReason   – reason supplied when Status is rejected.
//  ProcessedBy       – actor that responded, resolved at write time.
//  ProcessedAt       – when the response was recorded.
//  Notes             – annotations (e.g. donation references).
//  CreatedAt         – creation timestamp, also the proximity tie-breaker.
type EquipmentRequest struct {
    ID                string        `json:"id"`
    RequesterSchoolID string        `json:"requester_school_id"`
    EventName         string        `json:"event_name"`
    EventWindow       EventWindow   `json:"event_window"`
    Description       string        `json:"description,omitempty"`
    Items             []RequestItem `json:"items"`
    Status            RequestStatus `json:"status"`
    RejectionReason   string        `json:"rejection_reason,omitempty"`
    ProcessedBy       *ActorRef     `json:"processed_by,omitempty"`
    ProcessedAt       *time.Time    `json:"processed_at,omitempty"`
    Notes             string        `json:"notes,omitempty"`
    CreatedAt         time.Time     `json:"created_at"`
}

// Item returns the request line for the given equipment ID, or nil when the
// request does not contain it.
func (r *EquipmentRequest) Item(equipmentID string) *RequestItem {
    for i := range r.Items {
        if r.Items[i].EquipmentID == equipmentID {
            return &r.Items[i]
        }
    }
    return nil
}
