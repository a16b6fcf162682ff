package route

import (
	"testing"

	"rastreioBack/internal/tracking/cities"
)

func mustLookup(t *testing.T, city, state string) cities.Location {
	t.Helper()
	loc, ok := cities.Lookup(city, state)
	if !ok {
		t.Fatalf("city %s/%s missing from the hub table", city, state)
	}
	return loc
}

func TestBuildShortRoute(t *testing.T) {
	sp := mustLookup(t, "São Paulo", "SP")
	campinas := mustLookup(t, "Campinas", "SP")

	r := Build(sp, campinas, 1, 7)

	if len(r.Waypoints) != 2 {
		t.Fatalf("short route must go direct, got %d waypoints", len(r.Waypoints))
	}
	if r.TotalDays != 1 {
		t.Fatalf("expected 1 day for ~83 km, got %d", r.TotalDays)
	}
	if r.Origin().Location != sp || r.Destination().Location != campinas {
		t.Fatalf("route endpoints do not match the inputs")
	}
}

func TestBuildLongRouteUsesHubs(t *testing.T) {
	sp := mustLookup(t, "São Paulo", "SP")
	manaus := mustLookup(t, "Manaus", "AM")

	r := Build(sp, manaus, 15, 19)

	if len(r.Waypoints) < 4 {
		t.Fatalf("cross-country route should pass through hubs, got %d waypoints", len(r.Waypoints))
	}
	if r.TotalDays != 15 {
		t.Fatalf("expected days clamped to min 15, got %d", r.TotalDays)
	}
	if r.WalkDistanceKM < r.TotalDistanceKM {
		t.Fatalf("walk distance %f cannot be shorter than direct %f", r.WalkDistanceKM, r.TotalDistanceKM)
	}
}

func TestBuildProgressMonotonic(t *testing.T) {
	sp := mustLookup(t, "São Paulo", "SP")
	manaus := mustLookup(t, "Manaus", "AM")

	r := Build(sp, manaus, 3, 30)

	prev := -1.0
	for i, wp := range r.Waypoints {
		if wp.Order != i {
			t.Fatalf("waypoint %d carries order %d", i, wp.Order)
		}
		if wp.CumulativeProgress < prev {
			t.Fatalf("progress decreased at waypoint %d: %f < %f", i, wp.CumulativeProgress, prev)
		}
		prev = wp.CumulativeProgress
	}
	if r.Origin().CumulativeProgress != 0 {
		t.Fatalf("origin progress must be 0, got %f", r.Origin().CumulativeProgress)
	}
	if r.Destination().CumulativeProgress != 100 {
		t.Fatalf("destination progress must be exactly 100, got %f", r.Destination().CumulativeProgress)
	}
}

func TestBuildClampsDays(t *testing.T) {
	sp := mustLookup(t, "São Paulo", "SP")
	manaus := mustLookup(t, "Manaus", "AM")

	r := Build(sp, manaus, 3, 7)
	if r.TotalDays != 7 {
		t.Fatalf("expected days clamped to max 7, got %d", r.TotalDays)
	}

	campinas := mustLookup(t, "Campinas", "SP")
	r = Build(sp, campinas, 3, 7)
	if r.TotalDays != 3 {
		t.Fatalf("expected days raised to min 3, got %d", r.TotalDays)
	}
}

func TestBuildInvertedRangeCollapsesToMin(t *testing.T) {
	sp := mustLookup(t, "São Paulo", "SP")
	manaus := mustLookup(t, "Manaus", "AM")

	r := Build(sp, manaus, 5, 2)
	if r.TotalDays != 5 {
		t.Fatalf("inverted range must collapse to min, got %d days", r.TotalDays)
	}
}

func TestBuildZeroDistance(t *testing.T) {
	sp := mustLookup(t, "São Paulo", "SP")

	r := Build(sp, sp, 2, 7)
	if len(r.Waypoints) != 2 {
		t.Fatalf("degenerate geometry must yield a trivial route, got %d waypoints", len(r.Waypoints))
	}
	if r.TotalDays != 2 {
		t.Fatalf("expected minDays for degenerate geometry, got %d", r.TotalDays)
	}
	if r.Destination().CumulativeProgress != 100 {
		t.Fatalf("trivial route destination progress must be 100")
	}
}
