// Package handler contains the HTTP handlers for the equipment request
// lifecycle API.  Handlers decode request payloads, resolve the acting
// identity from the verified JWT claims, delegate to the engine and map
// its typed errors onto HTTP status codes.  No business rule lives here.
package handler

import (
    "errors"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// actorFromContext resolves the acting identity stored by the JWTAuth
// middleware under the actor_id and actor_type context keys.  The type is
// validated against the closed actor set; anything else is rejected.
func actorFromContext(c echo.Context) (model.ActorRef, error) {
    id, _ := c.Get("actor_id").(string)
    typ, _ := c.Get("actor_type").(string)
    actor := model.ActorRef{Type: model.ActorType(typ), ID: id}
    if actor.ID == "" || !actor.Type.Valid() {
        return model.ActorRef{}, errors.New("invalid actor identity in context")
    }
    return actor, nil
}

// providerFromActor derives the provider pool reference for an acting
// school or governing body.  Admins have no pool of their own.
func providerFromActor(actor model.ActorRef) (model.ProviderRef, bool) {
    switch actor.Type {
    case model.ActorSchool:
        return model.ProviderRef{Type: model.ProviderSchool, ID: actor.ID}, true
    case model.ActorGovernBody:
        return model.ProviderRef{Type: model.ProviderGovernBody, ID: actor.ID}, true
    }
    return model.ProviderRef{}, false
}

// writeEngineError maps the engine's typed errors onto HTTP responses:
// validation 400, missing records 404, state conflicts and inventory
// shortfalls 409.  Anything unrecognized is logged and reported as 500
// without leaking internals.
func writeEngineError(c echo.Context, err error) error {
    var verr *engine.ValidationError
    if errors.As(err, &verr) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Reason})
    }
    var nerr *engine.NotFoundError
    if errors.As(err, &nerr) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": nerr.Error()})
    }
    var serr *engine.InvalidStateTransitionError
    if errors.As(err, &serr) {
        return c.JSON(http.StatusConflict, echo.Map{"error": serr.Error()})
    }
    var ierr *engine.InsufficientInventoryError
    if errors.As(err, &ierr) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":        ierr.Error(),
            "equipment_id": ierr.EquipmentID,
            "requested":    ierr.Requested,
            "available":    ierr.Available,
            "shortfall":    ierr.Shortfall(),
        })
    }
    log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
