package booking

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusFailed:
		return true
	default:
		return false
	}
}

// Canceled and failed bookings release their date range.
func (s Status) HoldsDates() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCanceled || s == StatusFailed
}

// transitionSources is the booking state machine, keyed by target
// state. Persistence drives its compare-and-swap from lists from here
// so the entity methods and the SQL path can never disagree.
var transitionSources = map[Status][]Status{
	StatusConfirmed: {StatusPending},
	StatusCanceled:  {StatusPending, StatusConfirmed},
	StatusFailed:    {StatusPending},
}

// TransitionSources returns the states a booking may be in when moving
// to the given state.
func TransitionSources(to Status) []Status {
	return transitionSources[to]
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, from := range transitionSources[to] {
		if s == from {
			return true
		}
	}
	return false
}
