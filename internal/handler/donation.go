package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// DonationHandler exposes the donation fulfillment path for open requests.
type DonationHandler struct {
    Bridge *engine.Bridge
}

// NewDonationHandler constructs a DonationHandler and panics if the bridge is nil.
func NewDonationHandler(b *engine.Bridge) *DonationHandler {
    if b == nil {
        panic("nil bridge passed to NewDonationHandler")
    }
    return &DonationHandler{Bridge: b}
}

type donateBody struct {
    DonationType string               `json:"donation_type"`
    AmountCents  *int64               `json:"amount_cents"`
    Items        []model.DonationItem `json:"items"`
    Message      string               `json:"message"`
    Provider     *model.ProviderRef   `json:"provider"`
}

// Donate handles POST /v1/requests/:id/donations.  Equipment donations
// draw from the donor's pool, which defaults to the acting provider;
// monetary donations fund the items outside any tracked pool.
func (h *DonationHandler) Donate(c echo.Context) error {
    actor, err := actorFromContext(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    var body donateBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
    }
    var provider model.ProviderRef
    if body.Provider != nil {
        provider = *body.Provider
    } else if p, ok := providerFromActor(actor); ok {
        provider = p
    }
    donation, req, err := h.Bridge.Fulfill(c.Request().Context(), c.Param("id"), engine.DonateInput{
        Type:        model.DonationType(body.DonationType),
        AmountCents: body.AmountCents,
        Items:       body.Items,
        Message:     body.Message,
        Donor:       actor,
        Provider:    provider,
    })
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"donation": donation, "request": req})
}
