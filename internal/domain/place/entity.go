package place

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("place title cannot be empty")
	ErrTitleTooLong    = errors.New("place title is too long (max 255 characters)")
	ErrInvalidCapacity = errors.New("max guests must be at least 1")
	ErrInvalidStay     = errors.New("minimum stay must be at least 1 night")
	ErrNegativeNightly = errors.New("nightly price cannot be negative")
)

const MaxTitleLength = 255

type Place struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	title        string
	photos       []string
	maxGuests    int
	minimumStay  int
	nightlyCents int64
	windows      []Window
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPlace(id, ownerID uuid.UUID, title string, photos []string, maxGuests, minimumStay int, nightlyCents int64, windows []Window) (*Place, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if maxGuests < 1 {
		return nil, ErrInvalidCapacity
	}
	if minimumStay < 1 {
		return nil, ErrInvalidStay
	}
	if nightlyCents < 0 {
		return nil, ErrNegativeNightly
	}

	return &Place{
		id:           id,
		ownerID:      ownerID,
		title:        title,
		photos:       photos,
		maxGuests:    maxGuests,
		minimumStay:  minimumStay,
		nightlyCents: nightlyCents,
		windows:      windows,
	}, nil
}

// Reconstruct rebuilds a place from storage without re-running the
// creation validations.
func Reconstruct(id, ownerID uuid.UUID, title string, photos []string, maxGuests, minimumStay int, nightlyCents int64, windows []Window) *Place {
	return &Place{
		id:           id,
		ownerID:      ownerID,
		title:        title,
		photos:       photos,
		maxGuests:    maxGuests,
		minimumStay:  minimumStay,
		nightlyCents: nightlyCents,
		windows:      windows,
	}
}

// AcceptsStay reports whether the stay falls entirely inside one of the
// owner's availability windows. A place with no windows is always open.
func (p *Place) AcceptsStay(checkIn, checkOut time.Time) bool {
	if len(p.windows) == 0 {
		return true
	}
	for _, w := range p.windows {
		if w.Contains(checkIn, checkOut) {
			return true
		}
	}
	return false
}

func (p *Place) ID() uuid.UUID       { return p.id }
func (p *Place) OwnerID() uuid.UUID  { return p.ownerID }
func (p *Place) Title() string       { return p.title }
func (p *Place) Photos() []string    { return p.photos }
func (p *Place) MaxGuests() int      { return p.maxGuests }
func (p *Place) MinimumStay() int    { return p.minimumStay }
func (p *Place) NightlyCents() int64 { return p.nightlyCents }
func (p *Place) Windows() []Window   { return p.windows }
