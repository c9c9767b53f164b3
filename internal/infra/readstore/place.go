package readstore

import (
	"context"

	"staybook/internal/domain/place"
	"staybook/internal/infra"
	"staybook/internal/infra/db"
	"staybook/internal/pkg/pgconv"
	"staybook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PlaceReadStore struct {
	db db.DBTX
}

func NewPlaceReadStore(db db.DBTX) *PlaceReadStore {
	return &PlaceReadStore{db: db}
}

const placeSnapshotSQL = `
SELECT id, owner_id, title, photos, max_guests, minimum_stay, price_per_night_cents
FROM places
WHERE id = $1`

const placeWindowsSQL = `
SELECT available_from, available_to
FROM place_windows
WHERE place_id = $1
ORDER BY available_from`

func (r *PlaceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.PlaceSnapshot, error) {
	snap := &shared.PlaceSnapshot{}
	err := r.db.QueryRow(ctx, placeSnapshotSQL, id).Scan(
		&snap.ID, &snap.OwnerID, &snap.Title, &snap.Photos,
		&snap.MaxGuests, &snap.MinimumStay, &snap.NightlyCents,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("place not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find place by ID", err)
	}

	snap.Windows, err = r.findWindows(ctx, id)
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *PlaceReadStore) findWindows(ctx context.Context, placeID uuid.UUID) ([]place.Window, error) {
	rows, err := r.db.Query(ctx, placeWindowsSQL, placeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load place windows", err)
	}
	defer rows.Close()

	var windows []place.Window
	for rows.Next() {
		var from, to pgtype.Date
		if err := rows.Scan(&from, &to); err != nil {
			return nil, infra.WrapRepoErr("failed to scan place window", err)
		}
		w, err := place.NewWindow(pgconv.DateFromPgtype(from), pgconv.DateFromPgtype(to))
		if err != nil {
			return nil, infra.WrapRepoErr("invalid place window", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate place windows", err)
	}

	return windows, nil
}
