package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/inventory"
)

// EquipmentHandler exposes read access to equipment pools.  The
// availability figure comes from the inventory registry so it reflects
// every committed reservation.
type EquipmentHandler struct {
    Catalog  engine.EquipmentCatalog
    Registry *inventory.Registry
}

// NewEquipmentHandler constructs an EquipmentHandler and panics if a
// dependency is nil.
func NewEquipmentHandler(catalog engine.EquipmentCatalog, registry *inventory.Registry) *EquipmentHandler {
    if catalog == nil || registry == nil {
        panic("nil dependency passed to NewEquipmentHandler")
    }
    return &EquipmentHandler{Catalog: catalog, Registry: registry}
}

// Availability handles GET /v1/equipment/:id/availability.
func (h *EquipmentHandler) Availability(c echo.Context) error {
    ctx := c.Request().Context()
    equip, err := h.Catalog.GetEquipment(ctx, c.Param("id"))
    if err != nil {
        return writeEngineError(c, err)
    }
    available, err := h.Registry.GetAvailable(ctx, equip.Owner, equip.ID)
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "equipment_id": equip.ID,
        "name":         equip.Name,
        "sport_id":     equip.SportID,
        "owner":        equip.Owner,
        "available":    available,
    })
}
