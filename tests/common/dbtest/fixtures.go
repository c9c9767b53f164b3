//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123".
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		err = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
		require.NoError(t, err)
	}

	return userID
}

type TestPlace struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Title        string
	MaxGuests    int
	MinimumStay  int
	NightlyCents int64
}

func CreateTestPlace(t *testing.T, db DBLike, ownerID uuid.UUID, title string) TestPlace {
	t.Helper()

	place := TestPlace{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        title,
		MaxGuests:    4,
		MinimumStay:  1,
		NightlyCents: 12000,
	}

	ctx := context.Background()
	_, err := db.Exec(ctx,
		"INSERT INTO places (id, owner_id, title, photos, max_guests, minimum_stay, price_per_night_cents) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		place.ID, place.OwnerID, place.Title, []string{"https://example.com/photo.jpg"},
		place.MaxGuests, place.MinimumStay, place.NightlyCents)
	require.NoError(t, err)

	return place
}

func CreateTestWindow(t *testing.T, db DBLike, placeID uuid.UUID, from, to time.Time) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx,
		"INSERT INTO place_windows (place_id, available_from, available_to) VALUES ($1, $2, $3)",
		placeID, from, to)
	require.NoError(t, err)
}

// SeedReferenceData is a hook for data every test needs. The schema
// has no shared reference tables yet, so it currently seeds nothing.
func SeedReferenceData(_ *pgxpool.Pool) error {
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
