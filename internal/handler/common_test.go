package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/model"
)

func testContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestWriteEngineErrorMapping(t *testing.T) {
    cases := []struct {
        name       string
        err        error
        wantStatus int
    }{
        {"validation", &engine.ValidationError{Reason: "bad"}, http.StatusBadRequest},
        {"not found", &engine.NotFoundError{Kind: "request", ID: "r1"}, http.StatusNotFound},
        {"state conflict", &engine.InvalidStateTransitionError{Kind: "request", ID: "r1", Op: "respond"}, http.StatusConflict},
        {"shortfall", &engine.InsufficientInventoryError{EquipmentID: "e1", Requested: 5, Available: 3}, http.StatusConflict},
        {"unknown", errors.New("boom"), http.StatusInternalServerError},
    }
    for _, tc := range cases {
        c, rec := testContext(t)
        if err := writeEngineError(c, tc.err); err != nil {
            t.Fatalf("%s: writeEngineError returned %v", tc.name, err)
        }
        if rec.Code != tc.wantStatus {
            t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.wantStatus)
        }
    }
}

func TestWriteEngineErrorShortfallPayload(t *testing.T) {
    c, rec := testContext(t)
    err := &engine.InsufficientInventoryError{EquipmentID: "ball", Requested: 10, Available: 4}
    if werr := writeEngineError(c, err); werr != nil {
        t.Fatalf("writeEngineError: %v", werr)
    }
    var body map[string]interface{}
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("unmarshal body: %v", err)
    }
    if body["equipment_id"] != "ball" {
        t.Errorf("equipment_id = %v", body["equipment_id"])
    }
    if body["shortfall"] != float64(6) {
        t.Errorf("shortfall = %v, want 6", body["shortfall"])
    }
}

func TestActorFromContext(t *testing.T) {
    c, _ := testContext(t)
    c.Set("actor_id", "school-1")
    c.Set("actor_type", "SCHOOL")
    actor, err := actorFromContext(c)
    if err != nil {
        t.Fatalf("actorFromContext: %v", err)
    }
    if actor.Type != model.ActorSchool || actor.ID != "school-1" {
        t.Errorf("actor = %+v", actor)
    }

    c2, _ := testContext(t)
    c2.Set("actor_id", "x")
    c2.Set("actor_type", "OWNER") // not part of the closed actor set
    if _, err := actorFromContext(c2); err == nil {
        t.Error("unknown actor type accepted")
    }

    c3, _ := testContext(t)
    if _, err := actorFromContext(c3); err == nil {
        t.Error("missing identity accepted")
    }
}

func TestProviderFromActor(t *testing.T) {
    p, ok := providerFromActor(model.ActorRef{Type: model.ActorSchool, ID: "s1"})
    if !ok || p.Type != model.ProviderSchool || p.ID != "s1" {
        t.Errorf("school provider = %+v ok=%v", p, ok)
    }
    p, ok = providerFromActor(model.ActorRef{Type: model.ActorGovernBody, ID: "g1"})
    if !ok || p.Type != model.ProviderGovernBody {
        t.Errorf("governing body provider = %+v ok=%v", p, ok)
    }
    if _, ok := providerFromActor(model.ActorRef{Type: model.ActorAdmin, ID: "a1"}); ok {
        t.Error("admin must not map to a provider pool")
    }
}
