package status

import "errors"

// Status is a delivery lifecycle state.
type Status string

// Delivery statuses exposed to the tracking UI and API.
const (
	Pending        Status = "pending"
	Collected      Status = "collected"
	InTransit      Status = "in_transit"
	OutForDelivery Status = "out_for_delivery"
	Delivered      Status = "delivered"
	Failed         Status = "failed"
	Returned       Status = "returned"
)

// ErrTerminalStatus is returned when an automatic transition is requested
// for a delivery that already reached a terminal state.
var ErrTerminalStatus = errors.New("status: delivery already in terminal state")

var transitions = map[Status]map[Status]struct{}{
	Pending:   {Collected: {}},
	Collected: {InTransit: {}},
	InTransit: {
		OutForDelivery: {},
		Failed:         {},
		Returned:       {},
	},
	OutForDelivery: {
		Delivered: {},
		Failed:    {},
		Returned:  {},
	},
	Delivered: {},
	Failed:    {},
	Returned:  {},
}

// chain is the canonical forward progression used by automatic advancement.
var chain = []Status{Pending, Collected, InTransit, OutForDelivery, Delivered}

// All returns every valid delivery status.
func All() []Status {
	return []Status{Pending, Collected, InTransit, OutForDelivery, Delivered, Failed, Returned}
}

// Valid reports whether s is a known delivery status.
func Valid(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further automatic transitions are generated from s.
func IsTerminal(s Status) bool {
	return s == Delivered || s == Failed || s == Returned
}

// CanTransition returns true when the lifecycle allows moving from current to next status.
func CanTransition(current, next Status) bool {
	if current == next {
		return true
	}
	allowed, ok := transitions[current]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// Advance returns the next status in the canonical forward chain.
// Advancing a terminal status returns the same status together with
// ErrTerminalStatus so callers can report an explicit no-op.
func Advance(current Status) (Status, error) {
	if IsTerminal(current) {
		return current, ErrTerminalStatus
	}
	for i, s := range chain {
		if s == current && i+1 < len(chain) {
			return chain[i+1], nil
		}
	}
	// Unknown statuses restart the chain rather than failing.
	return Collected, nil
}
