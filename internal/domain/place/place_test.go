//go:build unit

package place_test

import (
	"strings"
	"testing"
	"time"

	"staybook/internal/domain/place"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPlace(t *testing.T) {
	newValid := func(mutate func(*string, *int, *int, *int64)) (*place.Place, error) {
		title := "Seaside Cabin"
		maxGuests := 4
		minimumStay := 1
		nightly := int64(12000)
		if mutate != nil {
			mutate(&title, &maxGuests, &minimumStay, &nightly)
		}
		return place.NewPlace(uuid.New(), uuid.New(), title, nil, maxGuests, minimumStay, nightly, nil)
	}

	t.Run("valid place", func(t *testing.T) {
		p, err := newValid(nil)
		require.NoError(t, err)
		assert.Equal(t, "Seaside Cabin", p.Title())
	})

	t.Run("trims the title", func(t *testing.T) {
		p, err := newValid(func(title *string, _, _ *int, _ *int64) { *title = "  Cabin  " })
		require.NoError(t, err)
		assert.Equal(t, "Cabin", p.Title())
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := newValid(func(title *string, _, _ *int, _ *int64) { *title = "   " })
		require.ErrorIs(t, err, place.ErrEmptyTitle)
	})

	t.Run("rejects overlong title", func(t *testing.T) {
		_, err := newValid(func(title *string, _, _ *int, _ *int64) {
			*title = strings.Repeat("x", place.MaxTitleLength+1)
		})
		require.ErrorIs(t, err, place.ErrTitleTooLong)
	})

	t.Run("rejects zero capacity", func(t *testing.T) {
		_, err := newValid(func(_ *string, maxGuests, _ *int, _ *int64) { *maxGuests = 0 })
		require.ErrorIs(t, err, place.ErrInvalidCapacity)
	})

	t.Run("rejects zero minimum stay", func(t *testing.T) {
		_, err := newValid(func(_ *string, _, minimumStay *int, _ *int64) { *minimumStay = 0 })
		require.ErrorIs(t, err, place.ErrInvalidStay)
	})

	t.Run("rejects negative nightly price", func(t *testing.T) {
		_, err := newValid(func(_ *string, _, _ *int, nightly *int64) { *nightly = -1 })
		require.ErrorIs(t, err, place.ErrNegativeNightly)
	})
}

func TestWindow(t *testing.T) {
	t.Run("rejects reversed endpoints", func(t *testing.T) {
		_, err := place.NewWindow(day(2026, 7, 10), day(2026, 7, 1))
		require.ErrorIs(t, err, place.ErrInvalidWindow)
	})

	t.Run("single day window is valid", func(t *testing.T) {
		w, err := place.NewWindow(day(2026, 7, 1), day(2026, 7, 1))
		require.NoError(t, err)
		assert.True(t, w.Contains(day(2026, 7, 1), day(2026, 7, 1)))
	})

	t.Run("contains is inclusive on both ends", func(t *testing.T) {
		w, err := place.NewWindow(day(2026, 7, 1), day(2026, 7, 31))
		require.NoError(t, err)

		assert.True(t, w.Contains(day(2026, 7, 1), day(2026, 7, 31)))
		assert.True(t, w.Contains(day(2026, 7, 10), day(2026, 7, 15)))
		assert.False(t, w.Contains(day(2026, 6, 30), day(2026, 7, 5)))
		assert.False(t, w.Contains(day(2026, 7, 28), day(2026, 8, 1)))
	})
}

func TestAcceptsStay(t *testing.T) {
	mustWindow := func(from, to time.Time) place.Window {
		w, err := place.NewWindow(from, to)
		require.NoError(t, err)
		return w
	}

	t.Run("no windows means always open", func(t *testing.T) {
		p, err := place.NewPlace(uuid.New(), uuid.New(), "Cabin", nil, 4, 1, 12000, nil)
		require.NoError(t, err)
		assert.True(t, p.AcceptsStay(day(2026, 1, 1), day(2026, 12, 31)))
	})

	t.Run("stay must fit inside one window", func(t *testing.T) {
		windows := []place.Window{
			mustWindow(day(2026, 6, 1), day(2026, 6, 30)),
			mustWindow(day(2026, 8, 1), day(2026, 8, 31)),
		}
		p, err := place.NewPlace(uuid.New(), uuid.New(), "Cabin", nil, 4, 1, 12000, windows)
		require.NoError(t, err)

		assert.True(t, p.AcceptsStay(day(2026, 6, 10), day(2026, 6, 14)))
		assert.True(t, p.AcceptsStay(day(2026, 8, 1), day(2026, 8, 31)))
		assert.False(t, p.AcceptsStay(day(2026, 7, 10), day(2026, 7, 14)))
		// Straddling two windows does not count.
		assert.False(t, p.AcceptsStay(day(2026, 6, 28), day(2026, 8, 3)))
	})
}
