package schedule

import (
	"fmt"
	"hash/fnv"
	"time"

	"golang.org/x/exp/rand"

	"rastreioBack/internal/tracking/route"
	"rastreioBack/internal/tracking/status"
	"rastreioBack/internal/tracking/timeutil"
)

// EventType distinguishes status transitions from plain location pings.
type EventType string

const (
	EventStatusChange   EventType = "status_change"
	EventLocationUpdate EventType = "location_update"
)

// Fallback hour window used when the configured one is inverted or empty.
const (
	defaultStartHour = 9
	defaultEndHour   = 18
)

// updatesPerDay is how many events are emitted per active business day.
const updatesPerDay = 2

// Update is a timestamped, to-be-applied change to a delivery's history.
type Update struct {
	ScheduledFor    time.Time
	EventType       EventType
	NewStatus       *status.Status
	Waypoint        route.Waypoint
	Description     string
	ProgressPercent float64
}

var transitPhrases = []string{
	"Shipment in transit",
	"Moving between distribution centers",
	"Package on linehaul transport",
	"Shipment forwarded to next facility",
}

// Seed derives the deterministic random seed for a delivery from its
// tracking code, so regeneration always reproduces the same schedule.
func Seed(trackingCode string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(trackingCode))
	return h.Sum64()
}

// Generate converts a route into an ordered list of scheduled updates.
//
// All pseudo-randomness (event minutes inside the hour window, transit
// phrasing) is drawn from a source seeded by the tracking code, so calling
// Generate twice with the same route, code and anchor produces identical
// output. Events land only on weekdays, strictly inside
// [startHour, endHour), two per active day, never at the same minute.
// The anchor is the delivery creation time; scheduling starts the next
// business day after it.
func Generate(r route.Route, trackingCode string, anchor time.Time, startHour, endHour int) []Update {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		startHour, endHour = defaultStartHour, defaultEndHour
	}

	rng := rand.New(rand.NewSource(Seed(trackingCode)))

	day := firstActiveDay(anchor)
	if r.TotalDays <= 0 || len(r.Waypoints) < 2 {
		return minimalSchedule(r, rng, day, startHour, endHour)
	}

	total := r.TotalDays * updatesPerDay
	updates := make([]Update, 0, total)

	sawTransit := false
	for k := 0; k < total; k++ {
		minute := drawMinute(rng, startHour, endHour, k%updatesPerDay)
		at := day.Add(time.Duration(minute) * time.Minute)

		progress := float64(k+1) / float64(total) * 100
		// The last two events always happen in the destination city: the
		// final-hop handover and the delivery itself.
		wp := waypointFor(r, progress, k >= total-2)

		u := Update{
			ScheduledFor:    at,
			EventType:       EventLocationUpdate,
			Waypoint:        wp,
			ProgressPercent: progress,
		}

		switch {
		case k == 0:
			u.setStatus(status.Collected)
			u.Description = fmt.Sprintf("Package collected at %s, %s", wp.Location.City, wp.Location.State)
		case k == total-1:
			u.setStatus(status.Delivered)
			u.ProgressPercent = 100
			u.Description = fmt.Sprintf("Package delivered in %s, %s", wp.Location.City, wp.Location.State)
		case k == total-2:
			u.setStatus(status.OutForDelivery)
			u.Description = fmt.Sprintf("Out for delivery in %s, %s", wp.Location.City, wp.Location.State)
		case wp.Order > 0 && !sawTransit:
			sawTransit = true
			u.setStatus(status.InTransit)
			u.Description = fmt.Sprintf("Shipment departed to %s, %s", wp.Location.City, wp.Location.State)
		default:
			phrase := transitPhrases[rng.Intn(len(transitPhrases))]
			u.Description = fmt.Sprintf("%s - %s, %s", phrase, wp.Location.City, wp.Location.State)
		}

		updates = append(updates, u)

		if k%updatesPerDay == updatesPerDay-1 {
			day = nextActiveDay(day)
		}
	}
	return updates
}

func (u *Update) setStatus(s status.Status) {
	u.EventType = EventStatusChange
	u.NewStatus = &s
}

// waypointFor maps an event progress value onto the route chain: the last
// waypoint whose cumulative progress has been reached. The destination is
// reserved for the final event so intermediate pings never claim arrival.
func waypointFor(r route.Route, progress float64, final bool) route.Waypoint {
	if final {
		return r.Destination()
	}
	last := len(r.Waypoints) - 2 // destination reserved for the final events
	idx := 0
	for i := 0; i <= last; i++ {
		if r.Waypoints[i].CumulativeProgress <= progress {
			idx = i
		}
	}
	return r.Waypoints[idx]
}

// drawMinute picks a minute offset from the window start. The window is cut
// in half so the two daily events can never collide on the same minute.
func drawMinute(rng *rand.Rand, startHour, endHour, slot int) int {
	window := (endHour - startHour) * 60
	half := window / 2
	if half < 1 {
		half = 1
	}
	if slot == 0 {
		return startHour*60 + rng.Intn(half)
	}
	span := window - half
	if span < 1 {
		span = 1
	}
	return startHour*60 + half + rng.Intn(span)
}

// minimalSchedule is the defensive fallback: a single delivered event on the
// next business day. A non-failed delivery never gets an empty schedule.
func minimalSchedule(r route.Route, rng *rand.Rand, day time.Time, startHour, endHour int) []Update {
	var wp route.Waypoint
	if len(r.Waypoints) > 0 {
		wp = r.Waypoints[len(r.Waypoints)-1]
	}
	desc := "Package delivered"
	if wp.Location.City != "" {
		desc = fmt.Sprintf("Package delivered in %s, %s", wp.Location.City, wp.Location.State)
	}
	minute := drawMinute(rng, startHour, endHour, 0)
	u := Update{
		ScheduledFor:    day.Add(time.Duration(minute) * time.Minute),
		Waypoint:        wp,
		ProgressPercent: 100,
		Description:     desc,
	}
	u.setStatus(status.Delivered)
	return []Update{u}
}

func firstActiveDay(anchor time.Time) time.Time {
	local := timeutil.In(anchor)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, timeutil.Location())
	return timeutil.SkipWeekends(day.AddDate(0, 0, 1))
}

func nextActiveDay(day time.Time) time.Time {
	return timeutil.SkipWeekends(day.AddDate(0, 0, 1))
}
