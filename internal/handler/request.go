package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
    "github.com/AdeepaK2/goalx-engine/internal/proximity"
    "github.com/AdeepaK2/goalx-engine/internal/repository"
)

// RequestHandler exposes the equipment request lifecycle over HTTP: schools
// open requests, providers browse and respond, and delivery is confirmed.
// Browsing is proximity-ordered using provider profile locations.
type RequestHandler struct {
    Lifecycle *engine.Lifecycle
    Providers *repository.ProviderRepo
    Ranker    *proximity.Ranker
}

// NewRequestHandler constructs a RequestHandler and panics if a dependency is nil.
func NewRequestHandler(lc *engine.Lifecycle, providers *repository.ProviderRepo, ranker *proximity.Ranker) *RequestHandler {
    if lc == nil || providers == nil || ranker == nil {
        panic("nil dependency passed to NewRequestHandler")
    }
    return &RequestHandler{Lifecycle: lc, Providers: providers, Ranker: ranker}
}

type createRequestBody struct {
    RequesterSchoolID string              `json:"requester_school_id"`
    EventName         string              `json:"event_name"`
    EventWindow       model.EventWindow   `json:"event_window"`
    Description       string              `json:"description"`
    Items             []model.RequestItem `json:"items"`
}

// Create handles POST /v1/requests.  Schools create requests for
// themselves; admins may create on behalf of a school by naming it.
func (h *RequestHandler) Create(c echo.Context) error {
    actor, err := actorFromContext(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    var body createRequestBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
    }
    requester := body.RequesterSchoolID
    if actor.Type == model.ActorSchool {
        requester = actor.ID
    }
    req, err := h.Lifecycle.Create(c.Request().Context(), engine.CreateInput{
        RequesterSchoolID: requester,
        EventName:         body.EventName,
        EventWindow:       body.EventWindow,
        Description:       body.Description,
        Items:             body.Items,
    })
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusCreated, req)
}

// Get handles GET /v1/requests/:id.
func (h *RequestHandler) Get(c echo.Context) error {
    req, err := h.Lifecycle.Get(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, req)
}

// ListOpen handles GET /v1/requests/open.  The listing is scoped to the
// acting provider (schools see everything but their own requests,
// governing bodies only items within their declared sports) and ordered
// nearest-requester-first using the provider's profile location.
func (h *RequestHandler) ListOpen(c echo.Context) error {
    actor, err := actorFromContext(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    provider, ok := providerFromActor(actor)
    if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "only providers browse open requests"})
    }
    ctx := c.Request().Context()

    profile, err := h.Providers.GetProvider(ctx, provider)
    if err != nil {
        return writeEngineError(c, err)
    }
    open, err := h.Lifecycle.ListForProvider(ctx, provider, profile.SpecializedSportIDs)
    if err != nil {
        return writeEngineError(c, err)
    }
    if len(open) == 0 {
        return c.JSON(http.StatusOK, open)
    }

    // Rank by distance from the browsing provider to each requester school.
    schoolIDs := make([]string, 0, len(open))
    for _, req := range open {
        schoolIDs = append(schoolIDs, req.RequesterSchoolID)
    }
    locations, err := h.Providers.LocationsFor(ctx, schoolIDs)
    if err != nil {
        return writeEngineError(c, err)
    }
    byID := make(map[string]model.EquipmentRequest, len(open))
    candidates := make([]proximity.Candidate, 0, len(open))
    for _, req := range open {
        byID[req.ID] = req
        candidates = append(candidates, proximity.Candidate{
            Ref:       req.ID,
            Location:  locations[req.RequesterSchoolID],
            CreatedAt: req.CreatedAt,
        })
    }
    ranked := h.Ranker.Rank(ctx, provider.Key(), profile.Location, candidates)
    ordered := make([]model.EquipmentRequest, 0, len(ranked))
    for _, cand := range ranked {
        ordered = append(ordered, byID[cand.Ref])
    }
    return c.JSON(http.StatusOK, ordered)
}

type respondBody struct {
    Decision        string                `json:"decision"`
    ApprovedItems   []approvedItemBody    `json:"approved_items"`
    RejectionReason string                `json:"rejection_reason"`
    Provider        *model.ProviderRef    `json:"provider"`
    TransactionType string                `json:"transaction_type"`
    Rental          *model.RentalDetails  `json:"rental_details"`
}

type approvedItemBody struct {
    EquipmentID      string `json:"equipment_id"`
    QuantityApproved int64  `json:"quantity_approved"`
    Condition        string `json:"condition"`
    Notes            string `json:"notes"`
}

// Respond handles POST /v1/requests/:id/respond.  The provider pool
// defaults to the acting school or governing body; admins responding on
// behalf of a provider must name it explicitly.
func (h *RequestHandler) Respond(c echo.Context) error {
    actor, err := actorFromContext(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    var body respondBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
    }

    var provider model.ProviderRef
    if body.Provider != nil {
        provider = *body.Provider
    } else if p, ok := providerFromActor(actor); ok {
        provider = p
    }
    items := make([]engine.ApprovedItem, len(body.ApprovedItems))
    for i, it := range body.ApprovedItems {
        items[i] = engine.ApprovedItem{
            EquipmentID:      it.EquipmentID,
            QuantityApproved: it.QuantityApproved,
            Condition:        it.Condition,
            Notes:            it.Notes,
        }
    }
    req, trans, err := h.Lifecycle.Respond(c.Request().Context(), c.Param("id"), engine.RespondInput{
        Decision:        engine.Decision(body.Decision),
        ApprovedItems:   items,
        RejectionReason: body.RejectionReason,
        Actor:           actor,
        Provider:        provider,
        TransactionType: model.TransactionType(body.TransactionType),
        Rental:          body.Rental,
    })
    if err != nil {
        return writeEngineError(c, err)
    }
    resp := echo.Map{"request": req}
    if trans != nil {
        resp["transaction"] = transactionView(trans, time.Now().UTC())
    }
    return c.JSON(http.StatusOK, resp)
}

// MarkDelivered handles POST /v1/requests/:id/delivered.
func (h *RequestHandler) MarkDelivered(c echo.Context) error {
    req, err := h.Lifecycle.MarkDelivered(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, req)
}
