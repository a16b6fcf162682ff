package status

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		next    Status
		want    bool
	}{
		{"pending to collected", Pending, Collected, true},
		{"collected to in_transit", Collected, InTransit, true},
		{"in_transit to out_for_delivery", InTransit, OutForDelivery, true},
		{"in_transit to failed", InTransit, Failed, true},
		{"in_transit to returned", InTransit, Returned, true},
		{"out_for_delivery to delivered", OutForDelivery, Delivered, true},
		{"out_for_delivery to failed", OutForDelivery, Failed, true},
		{"same status is a no-op", InTransit, InTransit, true},
		{"pending cannot fail", Pending, Failed, false},
		{"collected cannot fail", Collected, Failed, false},
		{"skipping in_transit", Collected, OutForDelivery, false},
		{"delivered is final", Delivered, InTransit, false},
		{"failed is final", Failed, Collected, false},
		{"returned is final", Returned, Delivered, false},
		{"backwards is forbidden", OutForDelivery, InTransit, false},
		{"unknown status", Status("lost"), Collected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.current, tt.next); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.current, tt.next, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{Delivered, Failed, Returned} {
		if !IsTerminal(s) {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []Status{Pending, Collected, InTransit, OutForDelivery} {
		if IsTerminal(s) {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}

func TestAdvanceFollowsChain(t *testing.T) {
	current := Pending
	want := []Status{Collected, InTransit, OutForDelivery, Delivered}
	for _, expected := range want {
		next, err := Advance(current)
		if err != nil {
			t.Fatalf("advance from %s: %v", current, err)
		}
		if next != expected {
			t.Fatalf("advance from %s: expected %s, got %s", current, expected, next)
		}
		current = next
	}
}

func TestAdvanceTerminal(t *testing.T) {
	for _, s := range []Status{Delivered, Failed, Returned} {
		next, err := Advance(s)
		if !errors.Is(err, ErrTerminalStatus) {
			t.Fatalf("expected ErrTerminalStatus for %s, got %v", s, err)
		}
		if next != s {
			t.Fatalf("terminal advance must return the same status, got %s", next)
		}
	}
}

func TestAdvanceUnknownRestartsChain(t *testing.T) {
	next, err := Advance(Status("misplaced"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != Collected {
		t.Fatalf("expected unknown status to restart at collected, got %s", next)
	}
}

func TestValid(t *testing.T) {
	for _, s := range All() {
		if !Valid(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if Valid(Status("teleported")) {
		t.Fatalf("expected unknown status to be invalid")
	}
}
