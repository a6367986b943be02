package checkout

import "strings"

// Status is the processor-owned state of a checkout session.
type Status string

const (
	StatusOpen    Status = "open"
	StatusPaid    Status = "paid"
	StatusExpired Status = "expired"
)

// ParseStatus accepts the stored/wire form of a status. Unknown values are
// reported as not ok so callers never invent a terminal state.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusPaid:
		return StatusPaid, true
	case StatusExpired:
		return StatusExpired, true
	default:
		return "", false
	}
}

func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusExpired
}

// CanTransition reports whether an observed move from s to next is legal.
// open -> paid | expired; terminal states only "move" to themselves.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	return s == StatusOpen && next.Terminal()
}
