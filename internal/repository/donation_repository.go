package repository

import (
    "context"
    "database/sql"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// DonationRepo provides data access to donations and their item lines.
type DonationRepo struct {
    db *sql.DB
}

// NewDonationRepo returns a new DonationRepo bound to the given database.
func NewDonationRepo(db *sql.DB) *DonationRepo { return &DonationRepo{db: db} }

// CreateDonation inserts a donation together with its item lines in one
// transaction.
func (r *DonationRepo) CreateDonation(ctx context.Context, d *model.Donation) error {
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

    const q = `INSERT INTO donations
               (id, request_id, donor_type, donor_id, donation_type, amount_cents, message, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err = tx.ExecContext(ctx, q,
        d.ID, d.RequestID, string(d.Donor.Type), d.Donor.ID,
        string(d.Type), d.AmountCents, d.Message, d.CreatedAt.UTC(),
    )
    if err != nil {
        return err
    }
    if len(d.Items) > 0 {
        query := `INSERT INTO donation_items (donation_id, equipment_id, quantity) VALUES `
        args := make([]interface{}, 0, len(d.Items)*3)
        for i, it := range d.Items {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?)"
            args = append(args, d.ID, it.EquipmentID, it.Quantity)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// DeleteDonation removes a donation and its item lines.  It exists to
// compensate a donation whose request approval could not complete.
func (r *DonationRepo) DeleteDonation(ctx context.Context, id string) error {
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

    if _, err := tx.ExecContext(ctx, `DELETE FROM donation_items WHERE donation_id = ?`, id); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return &engine.NotFoundError{Kind: "donation", ID: id}
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
