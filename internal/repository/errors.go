// Package repository implements the persistence boundary over MySQL.  Each
// repository owns the SQL for one aggregate and translates driver errors
// into the typed errors the engine layer dispatches on, so handlers never
// see sql.ErrNoRows directly.
package repository

import (
    "database/sql"
    "errors"

    "github.com/AdeepaK2/goalx-engine/internal/engine"
)

// notFound maps sql.ErrNoRows onto the engine's NotFoundError, leaving any
// other error untouched.
func notFound(kind, id string, err error) error {
    if errors.Is(err, sql.ErrNoRows) {
        return &engine.NotFoundError{Kind: kind, ID: id}
    }
    return err
}
