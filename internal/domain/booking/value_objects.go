package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidStayRange = errors.New("check-in must be before check-out")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrNoAdults         = errors.New("at least one adult is required")
	ErrNegativeGuests   = errors.New("guest counts cannot be negative")
)

// StayRange is a half-open [checkIn, checkOut) pair of dates.
// Both endpoints are normalized to midnight UTC so ranges built from
// inputs in different offsets never get compared against each other raw.
type StayRange struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	in := toDateUTC(checkIn)
	out := toDateUTC(checkOut)
	if !in.Before(out) {
		return StayRange{}, ErrInvalidStayRange
	}
	return StayRange{checkIn: in, checkOut: out}, nil
}

func toDateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (s StayRange) CheckIn() time.Time {
	return s.checkIn
}

func (s StayRange) CheckOut() time.Time {
	return s.checkOut
}

func (s StayRange) Nights() int {
	return int(s.checkOut.Sub(s.checkIn).Hours() / 24)
}

// Overlaps reports half-open interval overlap: a checkout day equal to
// the next guest's check-in day is not a conflict.
func (s StayRange) Overlaps(o StayRange) bool {
	return s.checkIn.Before(o.checkOut) && o.checkIn.Before(s.checkOut)
}

func (s StayRange) MeetsMinimumStay(nights int) bool {
	if nights < 1 {
		nights = 1
	}
	return s.Nights() >= nights
}

func (s StayRange) String() string {
	return fmt.Sprintf("[%s,%s)", s.checkIn.Format(time.DateOnly), s.checkOut.Format(time.DateOnly))
}

// Party is who is staying. Infants and pets are persisted but do not
// consume guest capacity.
type Party struct {
	adults   int
	children int
	infants  int
	pets     int
}

func NewParty(adults, children, infants, pets int) (Party, error) {
	if adults < 1 {
		return Party{}, ErrNoAdults
	}
	if children < 0 || infants < 0 || pets < 0 {
		return Party{}, ErrNegativeGuests
	}
	return Party{adults: adults, children: children, infants: infants, pets: pets}, nil
}

func (p Party) Adults() int   { return p.adults }
func (p Party) Children() int { return p.children }
func (p Party) Infants() int  { return p.infants }
func (p Party) Pets() int     { return p.pets }

// GuestCount is the capacity-relevant headcount.
func (p Party) GuestCount() int {
	return p.adults + p.children
}

func (p Party) FitsCapacity(maxGuests int) bool {
	return p.GuestCount() <= maxGuests
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) MultiplyNights(nights int) Money {
	return Money{cents: m.cents * int64(nights)}
}
