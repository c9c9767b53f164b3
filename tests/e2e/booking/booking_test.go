//go:build e2e

package booking_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	reqdto "staybook/internal/handler/dto/request"
	resdto "staybook/internal/handler/dto/response"
	"staybook/tests/common/authtest"
	"staybook/tests/common/dbtest"
	"staybook/tests/common/httptest"
	"staybook/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	bookingsURL        = "/api/bookings"
	paymentOutcomeURL  = "/api/payments/outcome"
	availabilityURLFmt = "/api/places/%s/availability?check_in=%s&check_out=%s"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) availability(placeID uuid.UUID, checkIn, checkOut string) bool {
	t := s.T()
	url := fmt.Sprintf(availabilityURLFmt, placeID, checkIn, checkOut)
	w := httptest.PerformRequest(t, s.Env.Router, http.MethodGet, url, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body resdto.AvailabilityResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	return body.IsAvailable
}

func (s *BookingSuite) createBooking(token string, placeID uuid.UUID, checkIn, checkOut time.Time) *resdto.BookingResponse {
	t := s.T()
	req := reqdto.CreateBookingRequest{
		PlaceID:  placeID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Adults:   2,
	}
	w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, bookingsURL, req, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body resdto.BookingResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	return &body
}

func (s *BookingSuite) reportOutcome(sessionID, outcome string) {
	t := s.T()
	w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, paymentOutcomeURL,
		reqdto.PaymentOutcomeRequest{SessionID: sessionID, Outcome: outcome}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (s *BookingSuite) getBooking(token string, id uuid.UUID) *resdto.BookingResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Env.Router, http.MethodGet, bookingsURL+"/"+id.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body resdto.BookingResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	return &body
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// TestBookingLifecycle - create, pay, confirm
// =============================================================================

func (s *BookingSuite) TestBookingLifecycle() {
	s.Run("create opens a checkout session and holds the dates", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		require.True(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))

		created := s.createBooking(token, place.ID, day(2026, 7, 1), day(2026, 7, 4))
		require.NotNil(t, created.PaymentSessionID)
		require.NotNil(t, created.PaymentLink)

		expected := &resdto.BookingResponse{
			PlaceID:    place.ID,
			PlaceTitle: place.Title,
			CheckIn:    day(2026, 7, 1),
			CheckOut:   day(2026, 7, 4),
			Adults:     2,
			// Three nights at the fixture nightly rate.
			TotalPriceCents: 36000,
			Status:          "pending",
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(resdto.BookingResponse{},
				"ID", "UserID", "PaymentSessionID", "PaymentLink", "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(expected, created, opts...); diff != "" {
			t.Errorf("Booking response mismatch (-want +got):\n%s", diff)
		}

		require.False(t, s.availability(place.ID, "2026-07-01", "2026-07-04"),
			"pending hold should block the dates")
		require.False(t, s.availability(place.ID, "2026-06-30", "2026-07-02"),
			"partial overlap should be blocked too")
		require.True(t, s.availability(place.ID, "2026-07-04", "2026-07-07"),
			"back-to-back stay should stay open")
	})

	s.Run("successful payment confirms the booking, replay is a no-op", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		created := s.createBooking(token, place.ID, day(2026, 7, 1), day(2026, 7, 4))
		sessionID := s.Env.Provider.LastSession()
		require.Equal(t, sessionID, *created.PaymentSessionID)

		s.reportOutcome(sessionID, "success")
		require.Equal(t, "confirmed", s.getBooking(token, created.ID).Status)

		s.reportOutcome(sessionID, "success")
		require.Equal(t, "confirmed", s.getBooking(token, created.ID).Status)
	})

	s.Run("canceled payment releases the dates", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		created := s.createBooking(token, place.ID, day(2026, 7, 1), day(2026, 7, 4))
		s.reportOutcome(s.Env.Provider.LastSession(), "cancel")

		require.Equal(t, "canceled", s.getBooking(token, created.ID).Status)
		require.True(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))
	})

	s.Run("outcome for an unknown session is acknowledged", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, paymentOutcomeURL,
			reqdto.PaymentOutcomeRequest{SessionID: "cs_unknown", Outcome: "success"}, "")
		require.Equal(t, http.StatusOK, w.Code)
	})
}

// =============================================================================
// TestBookingConflicts - double booking protection
// =============================================================================

func (s *BookingSuite) TestBookingConflicts() {
	s.Run("overlapping booking is rejected with 409", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "first@example.com", "guest")
		dbtest.CreateTestUser(t, s.Env.DB, "second@example.com", "guest")

		firstToken := authtest.LoginUser(t, s.Env.Router, "first@example.com", "password123")
		s.createBooking(firstToken, place.ID, day(2026, 7, 1), day(2026, 7, 4))

		secondToken := authtest.LoginUser(t, s.Env.Router, "second@example.com", "password123")
		req := reqdto.CreateBookingRequest{
			PlaceID:  place.ID,
			CheckIn:  day(2026, 7, 3),
			CheckOut: day(2026, 7, 6),
			Adults:   1,
		}
		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, bookingsURL, req, secondToken)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	s.Run("back-to-back booking is allowed", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "first@example.com", "guest")
		dbtest.CreateTestUser(t, s.Env.DB, "second@example.com", "guest")

		firstToken := authtest.LoginUser(t, s.Env.Router, "first@example.com", "password123")
		s.createBooking(firstToken, place.ID, day(2026, 7, 1), day(2026, 7, 4))

		secondToken := authtest.LoginUser(t, s.Env.Router, "second@example.com", "password123")
		s.createBooking(secondToken, place.ID, day(2026, 7, 4), day(2026, 7, 7))
	})

	s.Run("owner cannot book their own place", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		token := authtest.LoginUser(t, s.Env.Router, "host@example.com", "password123")

		req := reqdto.CreateBookingRequest{
			PlaceID:  place.ID,
			CheckIn:  day(2026, 7, 1),
			CheckOut: day(2026, 7, 4),
			Adults:   2,
		}
		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, bookingsURL, req, token)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})

	s.Run("stay outside the availability window is rejected", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestWindow(t, s.Env.DB, place.ID, day(2026, 6, 1), day(2026, 6, 30))
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		require.False(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))

		req := reqdto.CreateBookingRequest{
			PlaceID:  place.ID,
			CheckIn:  day(2026, 7, 1),
			CheckOut: day(2026, 7, 4),
			Adults:   2,
		}
		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, bookingsURL, req, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		s.createBooking(token, place.ID, day(2026, 6, 10), day(2026, 6, 13))
	})
}

// =============================================================================
// TestConcurrentReserve - exactly one hold under contention
// =============================================================================

func (s *BookingSuite) TestConcurrentReserve() {
	s.Run("racing holds on the same range yield one booking and conflicts", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")

		const attempts = 6
		tokens := make([]string, attempts)
		for i := range tokens {
			email := fmt.Sprintf("guest%d@example.com", i)
			dbtest.CreateTestUser(t, s.Env.DB, email, "guest")
			tokens[i] = authtest.LoginUser(t, s.Env.Router, email, "password123")
		}

		req := reqdto.CreateBookingRequest{
			PlaceID:  place.ID,
			CheckIn:  day(2026, 7, 1),
			CheckOut: day(2026, 7, 4),
			Adults:   2,
		}

		codes := make(chan int, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(token string) {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, bookingsURL, req, token)
				codes <- w.Code
			}(tokens[i])
		}
		wg.Wait()
		close(codes)

		created, conflicted := 0, 0
		for code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicted++
			default:
				t.Errorf("unexpected status %d from concurrent reserve", code)
			}
		}
		require.Equal(t, 1, created)
		require.Equal(t, attempts-1, conflicted)

		require.False(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))
	})
}

// =============================================================================
// TestCancelBooking
// =============================================================================

func (s *BookingSuite) TestCancelBooking() {
	s.Run("guest can cancel, repeating the cancel is a no-op", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		created := s.createBooking(token, place.ID, day(2026, 7, 1), day(2026, 7, 4))

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodDelete, bookingsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)
		require.True(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))

		w = httptest.PerformRequest(t, s.Env.Router, http.MethodDelete, bookingsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	s.Run("cannot cancel someone else's booking", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		dbtest.CreateTestUser(t, s.Env.DB, "other@example.com", "guest")

		guestToken := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")
		created := s.createBooking(guestToken, place.ID, day(2026, 7, 1), day(2026, 7, 4))

		otherToken := authtest.LoginUser(t, s.Env.Router, "other@example.com", "password123")
		w := httptest.PerformRequest(t, s.Env.Router, http.MethodDelete, bookingsURL+"/"+created.ID.String(), nil, otherToken)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})
}

// =============================================================================
// TestProviderFailure - checkout provider outage
// =============================================================================

func (s *BookingSuite) TestProviderFailure() {
	s.Run("provider outage returns 502 but keeps the pending hold", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		s.Env.Provider.SetFailing(true)
		defer s.Env.Provider.SetFailing(false)

		req := reqdto.CreateBookingRequest{
			PlaceID:  place.ID,
			CheckIn:  day(2026, 7, 1),
			CheckOut: day(2026, 7, 4),
			Adults:   2,
		}
		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, bookingsURL, req, token)
		require.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())

		// The hold survives until the expiry sweep reclaims it.
		require.False(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))
	})
}

// =============================================================================
// TestExpireStale - reclaiming abandoned holds
// =============================================================================

func (s *BookingSuite) TestExpireStale() {
	s.Run("stale pending booking is failed and its dates released", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		created := s.createBooking(token, place.ID, day(2026, 7, 1), day(2026, 7, 4))

		// Age the hold past the payment timeout.
		_, err := s.Env.DB.Exec(context.Background(),
			"UPDATE bookings SET created_at = now() - interval '2 hours' WHERE id = $1", created.ID)
		require.NoError(t, err)

		expired, err := s.Env.Bookings.ExpireStale(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, expired)

		require.Equal(t, "failed", s.getBooking(token, created.ID).Status)
		require.True(t, s.availability(place.ID, "2026-07-01", "2026-07-04"))
	})

	s.Run("fresh pending booking is left alone", func() {
		t := s.T()

		hostID := dbtest.CreateTestUser(t, s.Env.DB, "host@example.com", "host")
		place := dbtest.CreateTestPlace(t, s.Env.DB, hostID, "Seaside Cabin")
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		created := s.createBooking(token, place.ID, day(2026, 7, 1), day(2026, 7, 4))

		expired, err := s.Env.Bookings.ExpireStale(context.Background())
		require.NoError(t, err)
		require.Equal(t, 0, expired)
		require.Equal(t, "pending", s.getBooking(token, created.ID).Status)
	})
}
