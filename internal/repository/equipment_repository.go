package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/inventory"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// EquipmentRepo provides data access to the equipment table and its
// reservation rows.  It serves two callers: the engine reads metadata for
// specialization scoping, and the inventory registry drives the
// available_quantity counter and the inventory_reservations table through
// the conditional-update primitives below.  No other code writes the
// quantity column.
type EquipmentRepo struct {
    db *sql.DB
}

// NewEquipmentRepo returns a new EquipmentRepo bound to the given database.
func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

// GetEquipment loads a single equipment record.  Unknown IDs yield an
// engine NotFoundError.
func (r *EquipmentRepo) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
    const q = `SELECT id, name, sport_id, owner_type, owner_id, available_quantity, created_at, updated_at
               FROM equipment WHERE id = ?`
    var e model.Equipment
    var ownerType string
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &e.ID, &e.Name, &e.SportID, &ownerType, &e.Owner.ID,
        &e.AvailableQuantity, &e.CreatedAt, &e.UpdatedAt,
    )
    if err != nil {
        return nil, notFound("equipment", id, err)
    }
    e.Owner.Type = model.ProviderType(ownerType)
    return &e, nil
}

// SportsFor maps each known equipment ID to its sport ID in a single
// query.  Unknown IDs are simply absent from the result.
func (r *EquipmentRepo) SportsFor(ctx context.Context, equipmentIDs []string) (map[string]string, error) {
    if len(equipmentIDs) == 0 {
        return map[string]string{}, nil
    }
    placeholders := make([]string, len(equipmentIDs))
    args := make([]interface{}, len(equipmentIDs))
    for i, id := range equipmentIDs {
        placeholders[i] = "?"
        args[i] = id
    }
    query := `SELECT id, sport_id FROM equipment WHERE id IN (` + strings.Join(placeholders, ",") + `)`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    sports := make(map[string]string, len(equipmentIDs))
    for rows.Next() {
        var id, sportID string
        if err := rows.Scan(&id, &sportID); err != nil {
            return nil, err
        }
        sports[id] = sportID
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return sports, nil
}

// Available returns the free quantity of an equipment pool.
func (r *EquipmentRepo) Available(ctx context.Context, owner model.ProviderRef, equipmentID string) (int64, error) {
    const q = `SELECT available_quantity FROM equipment WHERE id = ? AND owner_type = ? AND owner_id = ?`
    var qty int64
    err := r.db.QueryRowContext(ctx, q, equipmentID, string(owner.Type), owner.ID).Scan(&qty)
    if err != nil {
        return 0, notFound("equipment", equipmentID, err)
    }
    return qty, nil
}

// TryAdjust applies delta to the free quantity only when the result stays
// non-negative.  The condition is evaluated inside the UPDATE so that
// concurrent adjusters race on the row, not on a read-then-write cycle.
// It returns false without error when the condition rejects the change.
func (r *EquipmentRepo) TryAdjust(ctx context.Context, owner model.ProviderRef, equipmentID string, delta int64) (bool, error) {
    const q = `UPDATE equipment
               SET available_quantity = available_quantity + ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND owner_type = ? AND owner_id = ? AND available_quantity + ? >= 0`
    res, err := r.db.ExecContext(ctx, q, delta, equipmentID, string(owner.Type), owner.ID, delta)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n == 0 {
        var exists int
        err := r.db.QueryRowContext(ctx,
            `SELECT 1 FROM equipment WHERE id = ? AND owner_type = ? AND owner_id = ?`,
            equipmentID, string(owner.Type), owner.ID,
        ).Scan(&exists)
        if err != nil {
            return false, notFound("equipment", equipmentID, err)
        }
        return false, nil
    }
    return true, nil
}

// SaveReservation persists a reservation row keyed by its token.
func (r *EquipmentRepo) SaveReservation(ctx context.Context, res inventory.Reservation) error {
    const q = `INSERT INTO inventory_reservations (token, owner_type, owner_id, equipment_id, quantity, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        res.Token, string(res.Owner.Type), res.Owner.ID,
        res.EquipmentID, res.Quantity, res.CreatedAt.UTC(),
    )
    return err
}

// GetReservation loads a reservation by token.  Unknown tokens yield an
// engine NotFoundError.
func (r *EquipmentRepo) GetReservation(ctx context.Context, token string) (*inventory.Reservation, error) {
    const q = `SELECT token, owner_type, owner_id, equipment_id, quantity, created_at
               FROM inventory_reservations WHERE token = ?`
    var res inventory.Reservation
    var ownerType string
    err := r.db.QueryRowContext(ctx, q, token).Scan(
        &res.Token, &ownerType, &res.Owner.ID, &res.EquipmentID, &res.Quantity, &res.CreatedAt,
    )
    if err != nil {
        return nil, notFound("reservation", token, err)
    }
    res.Owner.Type = model.ProviderType(ownerType)
    return &res, nil
}

// DeleteReservation removes a reservation row.  Deleting a token that does
// not exist yields an engine NotFoundError, which the registry relies on
// to make releases exactly-once.
func (r *EquipmentRepo) DeleteReservation(ctx context.Context, token string) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_reservations WHERE token = ?`, token)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return &engine.NotFoundError{Kind: "reservation", ID: token}
    }
    return nil
}
