package repository

import (
    "context"
    "database/sql"

    "github.com/AdeepaK2/goalx-engine/internal/model"
)

// ProviderRepo provides read access to provider profiles.  Profiles back
// two concerns: locations feed the proximity ranker and declared sports
// feed specialization scoping for governing bodies.  Providers are keyed
// by (type, id) since schools and governing bodies live in separate ID
// spaces upstream.
type ProviderRepo struct {
    db *sql.DB
}

// NewProviderRepo returns a new ProviderRepo bound to the given database.
func NewProviderRepo(db *sql.DB) *ProviderRepo { return &ProviderRepo{db: db} }

// GetProvider loads a provider profile with its declared sports.  Unknown
// references yield an engine NotFoundError.
func (r *ProviderRepo) GetProvider(ctx context.Context, ref model.ProviderRef) (*model.Provider, error) {
    const q = `SELECT name, latitude, longitude, district, province, created_at
               FROM providers WHERE provider_type = ? AND provider_id = ?`
    var p model.Provider
    var lat, lon sql.NullFloat64
    var district, province sql.NullString
    err := r.db.QueryRowContext(ctx, q, string(ref.Type), ref.ID).Scan(
        &p.Name, &lat, &lon, &district, &province, &p.CreatedAt,
    )
    if err != nil {
        return nil, notFound("provider", ref.Key(), err)
    }
    p.Ref = ref
    if lat.Valid && lon.Valid {
        la, lo := lat.Float64, lon.Float64
        p.Location.Latitude = &la
        p.Location.Longitude = &lo
    }
    p.Location.District = district.String
    p.Location.Province = province.String

    const sq = `SELECT sport_id FROM provider_sports WHERE provider_type = ? AND provider_id = ? ORDER BY sport_id`
    rows, err := r.db.QueryContext(ctx, sq, string(ref.Type), ref.ID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var sportID string
        if err := rows.Scan(&sportID); err != nil {
            return nil, err
        }
        p.SpecializedSportIDs = append(p.SpecializedSportIDs, sportID)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return &p, nil
}

// LocationsFor loads the locations of many schools in one query, keyed by
// school ID.  Schools without a profile row are absent from the result;
// the ranker treats them as having no location.
func (r *ProviderRepo) LocationsFor(ctx context.Context, schoolIDs []string) (map[string]model.Location, error) {
    if len(schoolIDs) == 0 {
        return map[string]model.Location{}, nil
    }
    query := `SELECT provider_id, latitude, longitude, district, province
              FROM providers WHERE provider_type = ? AND provider_id IN (`
    args := make([]interface{}, 0, len(schoolIDs)+1)
    args = append(args, string(model.ProviderSchool))
    for i, id := range schoolIDs {
        if i > 0 {
            query += ","
        }
        query += "?"
        args = append(args, id)
    }
    query += ")"
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    locations := make(map[string]model.Location, len(schoolIDs))
    for rows.Next() {
        var id string
        var lat, lon sql.NullFloat64
        var district, province sql.NullString
        if err := rows.Scan(&id, &lat, &lon, &district, &province); err != nil {
            return nil, err
        }
        var loc model.Location
        if lat.Valid && lon.Valid {
            la, lo := lat.Float64, lon.Float64
            loc.Latitude = &la
            loc.Longitude = &lo
        }
        loc.District = district.String
        loc.Province = province.String
        locations[id] = loc
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return locations, nil
}
