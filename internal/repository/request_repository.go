package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// RequestRepo provides data access to equipment requests and their item
// lines.  Requests live in the equipment_requests table and their lines in
// request_items.  All timestamp columns are stored in UTC.  The status
// transitions are implemented as conditional updates so that concurrent
// responders race on the database row, not on application state.
type RequestRepo struct {
    db *sql.DB
}

// NewRequestRepo returns a new RequestRepo bound to the given database.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

// CreateRequest inserts a request together with its item lines in one
// transaction.  The caller supplies the generated ID and CreatedAt.
func (r *RequestRepo) CreateRequest(ctx context.Context, req *model.EquipmentRequest) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            tx.Rollback()
        }
    }()

    const q = `INSERT INTO equipment_requests
               (id, requester_school_id, event_name, event_start, event_end, description, status, notes, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err = tx.ExecContext(ctx, q,
        req.ID, req.RequesterSchoolID, req.EventName,
        req.EventWindow.Start.UTC(), req.EventWindow.End.UTC(),
        req.Description, string(req.Status), req.Notes, req.CreatedAt.UTC(),
    )
    if err != nil {
        return err
    }
    if err := insertRequestItemsTx(ctx, tx, req.ID, req.Items); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// insertRequestItemsTx bulk-inserts request line rows.  Passing an empty
// slice has no effect and returns nil.
func insertRequestItemsTx(ctx context.Context, tx *sql.Tx, requestID string, items []model.RequestItem) error {
    if len(items) == 0 {
        return nil
    }
    query := `INSERT INTO request_items (request_id, equipment_id, quantity_requested, quantity_approved) VALUES `
    args := make([]interface{}, 0, len(items)*4)
    for i, it := range items {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, requestID, it.EquipmentID, it.QuantityRequested, it.QuantityApproved)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// GetRequest loads a single request with its item lines.  Unknown IDs
// yield an engine NotFoundError.
func (r *RequestRepo) GetRequest(ctx context.Context, id string) (*model.EquipmentRequest, error) {
    const q = `SELECT id, requester_school_id, event_name, event_start, event_end, description,
                      status, rejection_reason, processed_by_type, processed_by_id, processed_at,
                      notes, created_at
               FROM equipment_requests WHERE id = ?`
    req, err := scanRequest(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        return nil, notFound("request", id, err)
    }
    items, err := r.loadItems(ctx, []string{req.ID})
    if err != nil {
        return nil, err
    }
    req.Items = items[req.ID]
    return req, nil
}

// ListOpenRequests returns every request still in the pending state,
// oldest first, with item lines populated.
func (r *RequestRepo) ListOpenRequests(ctx context.Context) ([]model.EquipmentRequest, error) {
    const q = `SELECT id, requester_school_id, event_name, event_start, event_end, description,
                      status, rejection_reason, processed_by_type, processed_by_id, processed_at,
                      notes, created_at
               FROM equipment_requests WHERE status = ? ORDER BY created_at`
    rows, err := r.db.QueryContext(ctx, q, string(model.RequestPending))
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    reqs := make([]model.EquipmentRequest, 0)
    ids := make([]string, 0)
    for rows.Next() {
        req, err := scanRequest(rows)
        if err != nil {
            return nil, err
        }
        reqs = append(reqs, *req)
        ids = append(ids, req.ID)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(reqs) == 0 {
        return reqs, nil
    }
    items, err := r.loadItems(ctx, ids)
    if err != nil {
        return nil, err
    }
    for i := range reqs {
        reqs[i].Items = items[reqs[i].ID]
    }
    return reqs, nil
}

// MarkResponded transitions a pending request to the responded status and
// records the response fields and per-line approvals in one transaction.
// The status change is a conditional update on status = 'pending'; when it
// matches no row the method distinguishes a missing request (NotFoundError)
// from an already-responded one (false, nil).
func (r *RequestRepo) MarkResponded(ctx context.Context, id string, resp engine.Response) (bool, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            tx.Rollback()
        }
    }()

    const q = `UPDATE equipment_requests
               SET status = ?, rejection_reason = ?, processed_by_type = ?, processed_by_id = ?, processed_at = ?,
                   notes = CASE WHEN ? = '' THEN notes
                                WHEN notes = '' THEN ?
                                ELSE CONCAT(notes, '\n', ?) END
               WHERE id = ? AND status = ?`
    res, err := tx.ExecContext(ctx, q,
        string(resp.Status), resp.RejectionReason,
        string(resp.ProcessedBy.Type), resp.ProcessedBy.ID, resp.ProcessedAt.UTC(),
        resp.NoteAppend, resp.NoteAppend, resp.NoteAppend,
        id, string(model.RequestPending),
    )
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n == 0 {
        var exists int
        err := tx.QueryRowContext(ctx, `SELECT 1 FROM equipment_requests WHERE id = ?`, id).Scan(&exists)
        if err != nil {
            return false, notFound("request", id, err)
        }
        return false, nil
    }
    for equipmentID, approved := range resp.Approved {
        _, err := tx.ExecContext(ctx,
            `UPDATE request_items SET quantity_approved = ? WHERE request_id = ? AND equipment_id = ?`,
            approved, id, equipmentID,
        )
        if err != nil {
            return false, err
        }
    }
    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return true, nil
}

// MarkDelivered transitions an approved or partial request to delivered.
// Terminal or pending states leave the row untouched and return false.
func (r *RequestRepo) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
    const q = `UPDATE equipment_requests SET status = ?, updated_at = ?
               WHERE id = ? AND status IN (?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        string(model.RequestDelivered), at.UTC(), id,
        string(model.RequestApproved), string(model.RequestPartial),
    )
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n == 0 {
        var exists int
        err := r.db.QueryRowContext(ctx, `SELECT 1 FROM equipment_requests WHERE id = ?`, id).Scan(&exists)
        if err != nil {
            return false, notFound("request", id, err)
        }
        return false, nil
    }
    return true, nil
}

// ResetPending reverts a responded request to pending, clearing the
// response fields and all per-line approvals.  Used when reconciliation
// fails after the status transition already committed.
func (r *RequestRepo) ResetPending(ctx context.Context, id string) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            tx.Rollback()
        }
    }()

    const q = `UPDATE equipment_requests
               SET status = ?, rejection_reason = '', processed_by_type = NULL, processed_by_id = NULL, processed_at = NULL
               WHERE id = ?`
    res, err := tx.ExecContext(ctx, q, string(model.RequestPending), id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return &engine.NotFoundError{Kind: "request", ID: id}
    }
    if _, err := tx.ExecContext(ctx, `UPDATE request_items SET quantity_approved = NULL WHERE request_id = ?`, id); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
    Scan(dest ...interface{}) error
}

func scanRequest(row scanner) (*model.EquipmentRequest, error) {
    var req model.EquipmentRequest
    var status, processedByType, processedByID, rejectionReason sql.NullString
    var processedAt sql.NullTime
    err := row.Scan(
        &req.ID, &req.RequesterSchoolID, &req.EventName,
        &req.EventWindow.Start, &req.EventWindow.End, &req.Description,
        &status, &rejectionReason, &processedByType, &processedByID, &processedAt,
        &req.Notes, &req.CreatedAt,
    )
    if err != nil {
        return nil, err
    }
    req.Status = model.RequestStatus(status.String)
    req.RejectionReason = rejectionReason.String
    if processedByType.Valid && processedByID.Valid {
        req.ProcessedBy = &model.ActorRef{Type: model.ActorType(processedByType.String), ID: processedByID.String}
    }
    if processedAt.Valid {
        at := processedAt.Time.UTC()
        req.ProcessedAt = &at
    }
    return &req, nil
}

// loadItems fetches the item lines for all given request IDs in a single
// query and groups them by request.
func (r *RequestRepo) loadItems(ctx context.Context, requestIDs []string) (map[string][]model.RequestItem, error) {
    placeholders := make([]string, len(requestIDs))
    args := make([]interface{}, len(requestIDs))
    for i, id := range requestIDs {
        placeholders[i] = "?"
        args[i] = id
    }
    query := `SELECT request_id, equipment_id, quantity_requested, quantity_approved
              FROM request_items
              WHERE request_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY request_id, equipment_id`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    items := make(map[string][]model.RequestItem, len(requestIDs))
    for rows.Next() {
        var requestID string
        var it model.RequestItem
        var approved sql.NullInt64
        if err := rows.Scan(&requestID, &it.EquipmentID, &it.QuantityRequested, &approved); err != nil {
            return nil, err
        }
        if approved.Valid {
            a := approved.Int64
            it.QuantityApproved = &a
        }
        items[requestID] = append(items[requestID], it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}
