package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// TransactionHandler exposes transaction reads, return confirmation and
// cancellation.  The overdue flag is computed per read from the rental
// fields and the current clock; it is never stored.
type TransactionHandler struct {
    Reconciler *engine.Reconciler
}

// NewTransactionHandler constructs a TransactionHandler and panics if the
// reconciler is nil.
func NewTransactionHandler(rec *engine.Reconciler) *TransactionHandler {
    if rec == nil {
        panic("nil reconciler passed to NewTransactionHandler")
    }
    return &TransactionHandler{Reconciler: rec}
}

// transactionEnvelope is the read shape of a transaction: the record plus
// the derived overdue flag.
type transactionEnvelope struct {
    model.Transaction
    Overdue bool `json:"overdue"`
}

func transactionView(t *model.Transaction, now time.Time) transactionEnvelope {
    return transactionEnvelope{Transaction: *t, Overdue: engine.Overdue(t, now)}
}

// Get handles GET /v1/transactions/:id.
func (h *TransactionHandler) Get(c echo.Context) error {
    t, err := h.Reconciler.Get(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, transactionView(t, time.Now().UTC()))
}

// List handles GET /v1/transactions: every transaction in which the acting
// identity participates as provider or recipient, newest first.
func (h *TransactionHandler) List(c echo.Context) error {
    actor, err := actorFromContext(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    txs, err := h.Reconciler.ListFor(c.Request().Context(), actor)
    if err != nil {
        return writeEngineError(c, err)
    }
    now := time.Now().UTC()
    views := make([]transactionEnvelope, len(txs))
    for i := range txs {
        views[i] = transactionView(&txs[i], now)
    }
    return c.JSON(http.StatusOK, views)
}

type returnBody struct {
    ReturnedDate *time.Time `json:"returned_date"`
}

// ConfirmReturn handles POST /v1/transactions/:id/return.  The returned
// date defaults to now; late returns are accepted and simply stop the
// transaction reading as overdue.
func (h *TransactionHandler) ConfirmReturn(c echo.Context) error {
    var body returnBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
    }
    returnedDate := time.Now().UTC()
    if body.ReturnedDate != nil {
        returnedDate = body.ReturnedDate.UTC()
    }
    t, err := h.Reconciler.ConfirmReturn(c.Request().Context(), c.Param("id"), returnedDate)
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, transactionView(t, time.Now().UTC()))
}

// Cancel handles POST /v1/transactions/:id/cancel.
func (h *TransactionHandler) Cancel(c echo.Context) error {
    t, err := h.Reconciler.Cancel(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, transactionView(t, time.Now().UTC()))
}
