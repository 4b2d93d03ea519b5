package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// TransactionRepo provides data access to transactions and their equipment
// lines.  Transactions live in the transactions table, lines in
// transaction_items.  Rental details are inlined as nullable columns on
// the transactions row since a transaction has at most one rental record.
type TransactionRepo struct {
    db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// CreateTransaction inserts a transaction together with its item lines in
// one transaction.  The caller supplies the generated ID and CreatedAt.
func (r *TransactionRepo) CreateTransaction(ctx context.Context, t *model.Transaction) error {
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

    const q = `INSERT INTO transactions
               (id, provider_type, provider_id, recipient_school_id, transaction_type, status,
                originating_request_id, rental_start_date, rental_due_date, rental_returned_date, rental_fee_cents,
                created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var start, due, returned interface{}
    var fee interface{}
    if t.Rental != nil {
        start = t.Rental.StartDate.UTC()
        due = t.Rental.ReturnDueDate.UTC()
        if t.Rental.ReturnedDate != nil {
            returned = t.Rental.ReturnedDate.UTC()
        }
        if t.Rental.FeeCents != nil {
            fee = *t.Rental.FeeCents
        }
    }
    _, err = tx.ExecContext(ctx, q,
        t.ID, string(t.Provider.Type), t.Provider.ID, t.RecipientSchoolID,
        string(t.Type), string(t.Status), t.OriginatingRequestID,
        start, due, returned, fee, t.CreatedAt.UTC(),
    )
    if err != nil {
        return err
    }
    if len(t.Items) > 0 {
        query := `INSERT INTO transaction_items (transaction_id, equipment_id, quantity, item_condition, notes, reservation_token) VALUES `
        args := make([]interface{}, 0, len(t.Items)*6)
        for i, it := range t.Items {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?, ?)"
            args = append(args, t.ID, it.EquipmentID, it.Quantity, it.Condition, it.Notes, it.ReservationToken)
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

// GetTransaction loads a single transaction with its item lines.  Unknown
// IDs yield an engine NotFoundError.
func (r *TransactionRepo) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
    const q = `SELECT id, provider_type, provider_id, recipient_school_id, transaction_type, status,
                      originating_request_id, rental_start_date, rental_due_date, rental_returned_date,
                      rental_fee_cents, created_at
               FROM transactions WHERE id = ?`
    t, err := scanTransaction(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        return nil, notFound("transaction", id, err)
    }
    items, err := r.loadItems(ctx, []string{t.ID})
    if err != nil {
        return nil, err
    }
    t.Items = items[t.ID]
    return t, nil
}

// ListTransactionsFor returns every transaction in which the actor appears
// as the provider or as the recipient school, newest first.
func (r *TransactionRepo) ListTransactionsFor(ctx context.Context, actor model.ActorRef) ([]model.Transaction, error) {
    const q = `SELECT id, provider_type, provider_id, recipient_school_id, transaction_type, status,
                      originating_request_id, rental_start_date, rental_due_date, rental_returned_date,
                      rental_fee_cents, created_at
               FROM transactions
               WHERE (provider_type = ? AND provider_id = ?)
                  OR (? = ? AND recipient_school_id = ?)
               ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q,
        string(actor.Type), actor.ID,
        string(actor.Type), string(model.ActorSchool), actor.ID,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    txs := make([]model.Transaction, 0)
    ids := make([]string, 0)
    for rows.Next() {
        t, err := scanTransaction(rows)
        if err != nil {
            return nil, err
        }
        txs = append(txs, *t)
        ids = append(ids, t.ID)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(txs) == 0 {
        return txs, nil
    }
    items, err := r.loadItems(ctx, ids)
    if err != nil {
        return nil, err
    }
    for i := range txs {
        txs[i].Items = items[txs[i].ID]
    }
    return txs, nil
}

// SetTransactionStatus transitions the transaction from any of the listed
// states to the target state, optionally recording the returned date, as a
// single conditional update.  It returns false when the row exists but is
// in none of the from states, and NotFoundError for unknown IDs.
func (r *TransactionRepo) SetTransactionStatus(ctx context.Context, id string, from []model.TransactionStatus, to model.TransactionStatus, returnedDate *time.Time) (bool, error) {
    placeholders := make([]string, len(from))
    args := make([]interface{}, 0, len(from)+3)
    args = append(args, string(to))
    if returnedDate != nil {
        args = append(args, returnedDate.UTC())
    } else {
        args = append(args, nil)
    }
    args = append(args, id)
    for i, s := range from {
        placeholders[i] = "?"
        args = append(args, string(s))
    }
    query := `UPDATE transactions
              SET status = ?, rental_returned_date = COALESCE(?, rental_returned_date)
              WHERE id = ? AND status IN (` + strings.Join(placeholders, ",") + `)`
    res, err := r.db.ExecContext(ctx, query, args...)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n == 0 {
        var exists int
        err := r.db.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE id = ?`, id).Scan(&exists)
        if err != nil {
            return false, notFound("transaction", id, err)
        }
        return false, nil
    }
    return true, nil
}

func scanTransaction(row scanner) (*model.Transaction, error) {
    var t model.Transaction
    var providerType, txType, status string
    var start, due, returned sql.NullTime
    var fee sql.NullInt64
    err := row.Scan(
        &t.ID, &providerType, &t.Provider.ID, &t.RecipientSchoolID, &txType, &status,
        &t.OriginatingRequestID, &start, &due, &returned, &fee, &t.CreatedAt,
    )
    if err != nil {
        return nil, err
    }
    t.Provider.Type = model.ProviderType(providerType)
    t.Type = model.TransactionType(txType)
    t.Status = model.TransactionStatus(status)
    if start.Valid && due.Valid {
        rd := &model.RentalDetails{StartDate: start.Time.UTC(), ReturnDueDate: due.Time.UTC()}
        if returned.Valid {
            at := returned.Time.UTC()
            rd.ReturnedDate = &at
        }
        if fee.Valid {
            f := fee.Int64
            rd.FeeCents = &f
        }
        t.Rental = rd
    }
    return &t, nil
}

func (r *TransactionRepo) loadItems(ctx context.Context, transactionIDs []string) (map[string][]model.TransactionItem, error) {
    placeholders := make([]string, len(transactionIDs))
    args := make([]interface{}, len(transactionIDs))
    for i, id := range transactionIDs {
        placeholders[i] = "?"
        args[i] = id
    }
    query := `SELECT transaction_id, equipment_id, quantity, item_condition, notes, reservation_token
              FROM transaction_items
              WHERE transaction_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY transaction_id, equipment_id`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    items := make(map[string][]model.TransactionItem, len(transactionIDs))
    for rows.Next() {
        var transactionID string
        var it model.TransactionItem
        if err := rows.Scan(&transactionID, &it.EquipmentID, &it.Quantity, &it.Condition, &it.Notes, &it.ReservationToken); err != nil {
            return nil, err
        }
        items[transactionID] = append(items[transactionID], it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}
