package schedule

import (
	"reflect"
	"testing"
	"time"

	"rastreioBack/internal/tracking/cities"
	"rastreioBack/internal/tracking/route"
	"rastreioBack/internal/tracking/status"
	"rastreioBack/internal/tracking/timeutil"
)

func lookup(t *testing.T, city, state string) cities.Location {
	t.Helper()
	loc, ok := cities.Lookup(city, state)
	if !ok {
		t.Fatalf("city %s/%s missing from the hub table", city, state)
	}
	return loc
}

func mondayAnchor() time.Time {
	return time.Date(2025, time.June, 2, 12, 0, 0, 0, timeutil.Location())
}

func longRoute(t *testing.T) route.Route {
	return route.Build(lookup(t, "São Paulo", "SP"), lookup(t, "Manaus", "AM"), 15, 19)
}

func shortRoute(t *testing.T) route.Route {
	return route.Build(lookup(t, "São Paulo", "SP"), lookup(t, "Campinas", "SP"), 1, 7)
}

func TestSeedStable(t *testing.T) {
	if Seed("SE000000001BR") != Seed("SE000000001BR") {
		t.Fatalf("seed must be stable for the same code")
	}
	if Seed("SE000000001BR") == Seed("SE000000002BR") {
		t.Fatalf("different codes should not share a seed")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	r := longRoute(t)
	anchor := mondayAnchor()

	a := Generate(r, "SE123456789BR", anchor, 9, 18)
	b := Generate(r, "SE123456789BR", anchor, 9, 18)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same inputs must regenerate an identical schedule")
	}
}

func TestGenerateEventCount(t *testing.T) {
	r := longRoute(t)
	updates := Generate(r, "SE123456789BR", mondayAnchor(), 9, 18)
	if len(updates) != r.TotalDays*updatesPerDay {
		t.Fatalf("expected %d events, got %d", r.TotalDays*updatesPerDay, len(updates))
	}
}

func TestGenerateBusinessCalendar(t *testing.T) {
	updates := Generate(longRoute(t), "SE123456789BR", mondayAnchor(), 9, 18)

	var prev time.Time
	for i, u := range updates {
		local := timeutil.In(u.ScheduledFor)
		if timeutil.IsWeekend(local) {
			t.Fatalf("event %d scheduled on a weekend: %v", i, local)
		}
		minutes := local.Hour()*60 + local.Minute()
		if minutes < 9*60 || minutes >= 18*60 {
			t.Fatalf("event %d outside the hour window: %v", i, local)
		}
		if !u.ScheduledFor.After(prev) {
			t.Fatalf("event %d not strictly after its predecessor", i)
		}
		prev = u.ScheduledFor
	}

	// Two events per active day, never on the same minute.
	byDay := map[string][]time.Time{}
	for _, u := range updates {
		local := timeutil.In(u.ScheduledFor)
		key := local.Format("2006-01-02")
		byDay[key] = append(byDay[key], local)
	}
	for day, times := range byDay {
		if len(times) != updatesPerDay {
			t.Fatalf("day %s has %d events, want %d", day, len(times), updatesPerDay)
		}
		if times[0].Hour() == times[1].Hour() && times[0].Minute() == times[1].Minute() {
			t.Fatalf("day %s has two events on the same minute", day)
		}
	}
}

func TestGenerateStatusPlacement(t *testing.T) {
	r := longRoute(t)
	updates := Generate(r, "SE123456789BR", mondayAnchor(), 9, 18)

	first := updates[0]
	if first.NewStatus == nil || *first.NewStatus != status.Collected {
		t.Fatalf("first event must collect the package, got %+v", first)
	}
	if first.Waypoint.Location != r.Origin().Location {
		t.Fatalf("collection must happen at the origin")
	}

	last := updates[len(updates)-1]
	if last.NewStatus == nil || *last.NewStatus != status.Delivered {
		t.Fatalf("last event must deliver the package, got %+v", last)
	}
	if last.ProgressPercent != 100 {
		t.Fatalf("delivery progress must be exactly 100, got %f", last.ProgressPercent)
	}
	if last.Waypoint.Location != r.Destination().Location {
		t.Fatalf("delivery must happen at the destination")
	}

	beforeLast := updates[len(updates)-2]
	if beforeLast.NewStatus == nil || *beforeLast.NewStatus != status.OutForDelivery {
		t.Fatalf("out_for_delivery must immediately precede delivery, got %+v", beforeLast)
	}
	if beforeLast.Waypoint.Location != r.Destination().Location {
		t.Fatalf("out_for_delivery must happen in the destination city")
	}

	inTransit := 0
	for _, u := range updates {
		if u.NewStatus != nil && *u.NewStatus == status.InTransit {
			inTransit++
		}
	}
	if inTransit != 1 {
		t.Fatalf("expected exactly one in_transit event on a hub route, got %d", inTransit)
	}
}

func TestGenerateProgressMonotonic(t *testing.T) {
	updates := Generate(longRoute(t), "SE123456789BR", mondayAnchor(), 9, 18)
	prev := 0.0
	for i, u := range updates {
		if u.ProgressPercent < prev {
			t.Fatalf("progress decreased at event %d: %f < %f", i, u.ProgressPercent, prev)
		}
		prev = u.ProgressPercent
	}
}

func TestGenerateShortRoute(t *testing.T) {
	updates := Generate(shortRoute(t), "SE987654321BR", mondayAnchor(), 9, 18)
	if len(updates) != 2 {
		t.Fatalf("one-day route should emit two events, got %d", len(updates))
	}
	if updates[0].NewStatus == nil || *updates[0].NewStatus != status.Collected {
		t.Fatalf("first event must be collection")
	}
	if updates[1].NewStatus == nil || *updates[1].NewStatus != status.Delivered {
		t.Fatalf("second event must be delivery")
	}
}

func TestGenerateStartsNextBusinessDay(t *testing.T) {
	// Friday anchor: the first event must land on Monday.
	friday := time.Date(2025, time.June, 6, 16, 0, 0, 0, timeutil.Location())
	updates := Generate(shortRoute(t), "SE987654321BR", friday, 9, 18)
	first := timeutil.In(updates[0].ScheduledFor)
	if first.Weekday() != time.Monday {
		t.Fatalf("expected the schedule to start on Monday, got %v", first.Weekday())
	}
}

func TestGenerateInvalidWindowFallsBack(t *testing.T) {
	updates := Generate(shortRoute(t), "SE987654321BR", mondayAnchor(), 18, 9)
	for i, u := range updates {
		local := timeutil.In(u.ScheduledFor)
		minutes := local.Hour()*60 + local.Minute()
		if minutes < defaultStartHour*60 || minutes >= defaultEndHour*60 {
			t.Fatalf("event %d outside the fallback window: %v", i, local)
		}
	}
}

func TestGenerateMinimalFallback(t *testing.T) {
	r := route.Route{
		Waypoints: []route.Waypoint{{Location: cities.Location{City: "Campinas", State: "SP"}}},
	}
	updates := Generate(r, "SE000000000BR", mondayAnchor(), 9, 18)
	if len(updates) != 1 {
		t.Fatalf("defensive fallback must emit a single event, got %d", len(updates))
	}
	u := updates[0]
	if u.NewStatus == nil || *u.NewStatus != status.Delivered {
		t.Fatalf("fallback event must deliver the package")
	}
	if u.ProgressPercent != 100 {
		t.Fatalf("fallback progress must be 100, got %f", u.ProgressPercent)
	}
}
