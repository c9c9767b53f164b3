package place

import (
	"errors"
	"time"
)

var ErrInvalidWindow = errors.New("window start must not be after its end")

// Window is an owner-defined interval during which the place may be
// reserved at all. Both endpoints are inclusive and normalized to UTC.
type Window struct {
	from time.Time
	to   time.Time
}

func NewWindow(from, to time.Time) (Window, error) {
	f := from.UTC()
	t := to.UTC()
	if f.After(t) {
		return Window{}, ErrInvalidWindow
	}
	return Window{from: f, to: t}, nil
}

func (w Window) From() time.Time { return w.from }
func (w Window) To() time.Time   { return w.to }

// Contains reports whether [checkIn, checkOut] falls entirely inside
// the window.
func (w Window) Contains(checkIn, checkOut time.Time) bool {
	in := checkIn.UTC()
	out := checkOut.UTC()
	return !in.Before(w.from) && !out.After(w.to)
}
