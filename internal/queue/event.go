// Package queue defines message payloads exchanged over the message broker.
package queue

// RequestRespondedEvent is published after a request transition to a
// responded status has committed. It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type RequestRespondedEvent struct {
    RequestID         string             `json:"request_id"`
    RequesterSchoolID string             `json:"requester_school_id"`
    EventName         string             `json:"event_name"`
    Status            string             `json:"status"`
    RejectionReason   string             `json:"rejection_reason,omitempty"`
    ProcessedByType   string             `json:"processed_by_type"`
    ProcessedByID     string             `json:"processed_by_id"`
    TransactionID     string             `json:"transaction_id,omitempty"`
    TransactionType   string             `json:"transaction_type,omitempty"`
    Items             []RespondedItem    `json:"items,omitempty"`
    RespondedAt       string             `json:"responded_at"`
}

// RespondedItem is one request line as it was decided.
type RespondedItem struct {
    EquipmentID       string `json:"equipment_id"`
    QuantityRequested int64  `json:"quantity_requested"`
    QuantityApproved  int64  `json:"quantity_approved"`
}
