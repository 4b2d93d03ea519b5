// Package proximity orders candidate requests or providers by geographic
// or organizational closeness.  The ranking is advisory: it determines the
// order providers browse open requests in and never blocks a distant
// provider from responding.
package proximity

import (
    "context"
    "math"
    "sort"
    "time"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// Categorical proxy distances used when either side of a pair lacks
// coordinates.  The units are nominal km-equivalents, only meaningful for
// relative ordering, never for display.
const (
    sameDistrictKm = 1
    sameProvinceKm = 50
    elsewhereKm    = 1000
)

// Candidate is one entry to be ranked: a request (when a provider browses)
// or a provider (when distances are precomputed for a requester).
type Candidate struct {
    Ref       string         // identifier of the underlying record
    Location  model.Location // where the candidate sits
    CreatedAt time.Time      // tie-breaker: earlier first
}

// Haversine returns the great-circle distance in kilometres between two
// coordinate pairs given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
    toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
    dLat := toRad(lat2 - lat1)
    dLon := toRad(lon2 - lon1)
    a := math.Sin(dLat/2)*math.Sin(dLat/2) +
        math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
    return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Distance returns the ranking distance between two locations: Haversine
// when both expose coordinates, otherwise the categorical proxy (same
// district 1, same province 50, anywhere else 1000).
func Distance(a, b model.Location) float64 {
    if a.HasCoordinates() && b.HasCoordinates() {
        return Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
    }
    if a.District != "" && a.District == b.District {
        return sameDistrictKm
    }
    if a.Province != "" && a.Province == b.Province {
        return sameProvinceKm
    }
    return elsewhereKm
}

// Rank is the pure ranking function: candidates sorted ascending by
// distance from the requester, ties broken by earlier creation timestamp.
// The input slice is not modified.
func Rank(requester model.Location, candidates []Candidate) []Candidate {
    ranked := make([]Candidate, len(candidates))
    copy(ranked, candidates)
    dist := make(map[string]float64, len(ranked))
    for _, c := range ranked {
        dist[c.Ref] = Distance(requester, c.Location)
    }
    sort.SliceStable(ranked, func(i, j int) bool {
        di, dj := dist[ranked[i].Ref], dist[ranked[j].Ref]
        if di != dj {
            return di < dj
        }
        return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
    })
    return ranked
}

// Ranker ranks with an optional pairwise distance cache in front of the
// computation, so a listing of n candidates does not recompute n distances
// on every read.  A nil cache degrades to the pure function.
type Ranker struct {
    cache *Cache
}

// NewRanker returns a Ranker.  cache may be nil.
func NewRanker(cache *Cache) *Ranker { return &Ranker{cache: cache} }

// Rank orders candidates for the given requester, consulting the cache per
// (requester, candidate) pair and filling it on misses.
func (r *Ranker) Rank(ctx context.Context, requesterID string, requester model.Location, candidates []Candidate) []Candidate {
    ranked := make([]Candidate, len(candidates))
    copy(ranked, candidates)
    dist := make(map[string]float64, len(ranked))
    for _, c := range ranked {
        if r.cache != nil {
            if km, ok := r.cache.Get(ctx, requesterID, c.Ref); ok {
                dist[c.Ref] = km
                continue
            }
        }
        km := Distance(requester, c.Location)
        dist[c.Ref] = km
        if r.cache != nil {
            r.cache.Put(ctx, requesterID, c.Ref, km)
        }
    }
    sort.SliceStable(ranked, func(i, j int) bool {
        di, dj := dist[ranked[i].Ref], dist[ranked[j].Ref]
        if di != dj {
            return di < dj
        }
        return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
    })
    return ranked
}
