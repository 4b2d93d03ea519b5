package proximity

import (
    "context"
    "math"
    "testing"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

func coords(lat, lon float64) model.Location {
    return model.Location{Latitude: &lat, Longitude: &lon}
}

func region(district, province string) model.Location {
    return model.Location{District: district, Province: province}
}

func TestHaversineKnownDistance(t *testing.T) {
    // Colombo to Kandy, roughly 94 km great-circle.
    got := Haversine(6.9271, 79.8612, 7.2906, 80.6337)
    if math.Abs(got-94) > 3 {
        t.Errorf("Colombo-Kandy = %.1f km, want ~94", got)
    }
    if d := Haversine(6.9271, 79.8612, 6.9271, 79.8612); d != 0 {
        t.Errorf("zero distance = %v", d)
    }
}

func TestDistanceCategoricalFallback(t *testing.T) {
    cases := []struct {
        name string
        a, b model.Location
        want float64
    }{
        {"same district", region("Colombo", "Western"), region("Colombo", "Western"), sameDistrictKm},
        {"same province", region("Colombo", "Western"), region("Gampaha", "Western"), sameProvinceKm},
        {"elsewhere", region("Colombo", "Western"), region("Kandy", "Central"), elsewhereKm},
        {"empty districts never match", region("", "Western"), region("", "Western"), sameProvinceKm},
        {"no location at all", model.Location{}, model.Location{}, elsewhereKm},
        // One side with coordinates only still falls back to categorical.
        {"mixed coordinates", coords(6.9, 79.8), region("Colombo", "Western"), elsewhereKm},
    }
    for _, tc := range cases {
        if got := Distance(tc.a, tc.b); got != tc.want {
            t.Errorf("%s: Distance = %v, want %v", tc.name, got, tc.want)
        }
    }
}

func TestRankOrdersByDistance(t *testing.T) {
    base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
    requester := coords(6.9271, 79.8612) // Colombo
    candidates := []Candidate{
        {Ref: "jaffna", Location: coords(9.6615, 80.0255), CreatedAt: base},
        {Ref: "kandy", Location: coords(7.2906, 80.6337), CreatedAt: base},
        {Ref: "gampaha", Location: coords(7.0917, 79.9999), CreatedAt: base},
    }
    ranked := Rank(requester, candidates)
    want := []string{"gampaha", "kandy", "jaffna"}
    for i, ref := range want {
        if ranked[i].Ref != ref {
            t.Fatalf("rank[%d] = %s, want %s", i, ranked[i].Ref, ref)
        }
    }
    // Input order untouched.
    if candidates[0].Ref != "jaffna" {
        t.Errorf("input slice was reordered")
    }
}

func TestRankTieBreaksByCreatedAt(t *testing.T) {
    base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
    requester := region("Colombo", "Western")
    candidates := []Candidate{
        {Ref: "late", Location: region("Colombo", "Western"), CreatedAt: base.Add(time.Hour)},
        {Ref: "early", Location: region("Colombo", "Western"), CreatedAt: base},
    }
    ranked := Rank(requester, candidates)
    if ranked[0].Ref != "early" || ranked[1].Ref != "late" {
        t.Errorf("tie-break order = %s, %s; want early, late", ranked[0].Ref, ranked[1].Ref)
    }
}

func TestRankMixedCoordinateAvailability(t *testing.T) {
    base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
    requester := coords(6.9271, 79.8612)
    requester.District = "Colombo"
    requester.Province = "Western"
    candidates := []Candidate{
        {Ref: "far-but-precise", Location: coords(9.6615, 80.0255), CreatedAt: base}, // ~300 km
        {Ref: "neighbour-no-gps", Location: region("Colombo", "Western"), CreatedAt: base},
    }
    ranked := Rank(requester, candidates)
    // Categorical same-district (1) beats a precise 300 km.
    if ranked[0].Ref != "neighbour-no-gps" {
        t.Errorf("rank[0] = %s, want neighbour-no-gps", ranked[0].Ref)
    }
}

func TestRankerNilCache(t *testing.T) {
    r := NewRanker(nil)
    base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
    candidates := []Candidate{
        {Ref: "b", Location: region("Kandy", "Central"), CreatedAt: base},
        {Ref: "a", Location: region("Colombo", "Western"), CreatedAt: base},
    }
    ranked := r.Rank(context.Background(), "req-1", region("Colombo", "Western"), candidates)
    if ranked[0].Ref != "a" {
        t.Errorf("rank[0] = %s, want a", ranked[0].Ref)
    }
}
