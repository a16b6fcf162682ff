package route

import (
	"fmt"
	"math"

	"rastreioBack/internal/tracking/cities"
	"rastreioBack/internal/tracking/geoutil"
)

// kmPerDay is the coarse ground-transport heuristic used to derive the
// baseline day count from route distance.
const kmPerDay = 200.0

// Waypoint is a stop along a delivery route with cumulative distance and progress.
type Waypoint struct {
	Location             cities.Location
	Order                int
	DistanceFromOriginKM float64
	CumulativeProgress   float64
	Description          string
}

// Route is an ordered waypoint chain between origin and destination.
// The first waypoint is always the origin, the last always the destination.
type Route struct {
	Waypoints       []Waypoint
	TotalDistanceKM float64
	WalkDistanceKM  float64
	TotalDays       int
}

// Origin returns the first waypoint of the route.
func (r Route) Origin() Waypoint {
	return r.Waypoints[0]
}

// Destination returns the last waypoint of the route.
func (r Route) Destination() Waypoint {
	return r.Waypoints[len(r.Waypoints)-1]
}

// Build assembles the waypoint chain between origin and destination and
// derives the total day count, clamped into [minDays, maxDays].
//
// An inverted day range (minDays > maxDays) is treated as a configuration
// slip and collapses to minDays; geometry degenerating to a single point
// yields a trivial two-waypoint route.
func Build(origin, destination cities.Location, minDays, maxDays int) Route {
	if minDays < 1 {
		minDays = 1
	}
	if maxDays < minDays {
		maxDays = minDays
	}

	direct := geoutil.DistanceKM(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	if direct < 0.001 {
		return trivialRoute(origin, destination, minDays)
	}

	days := int(math.Ceil(direct / kmPerDay))
	if days < minDays {
		days = minDays
	}
	if days > maxDays {
		days = maxDays
	}

	hubs := cities.HubsBetween(origin, destination, cities.MaxHopsFor(direct))

	chain := make([]cities.Location, 0, len(hubs)+2)
	chain = append(chain, origin)
	chain = append(chain, hubs...)
	chain = append(chain, destination)

	waypoints := make([]Waypoint, len(chain))
	walk := 0.0
	for i, loc := range chain {
		if i > 0 {
			prev := chain[i-1]
			walk += geoutil.DistanceKM(prev.Lat, prev.Lng, loc.Lat, loc.Lng)
		}
		waypoints[i] = Waypoint{
			Location:             loc,
			Order:                i,
			DistanceFromOriginKM: walk,
			Description:          describe(i, len(chain), loc),
		}
	}

	for i := range waypoints {
		waypoints[i].CumulativeProgress = waypoints[i].DistanceFromOriginKM / walk * 100
	}
	// Guard against float drift on the final stop.
	waypoints[len(waypoints)-1].CumulativeProgress = 100

	return Route{
		Waypoints:       waypoints,
		TotalDistanceKM: direct,
		WalkDistanceKM:  walk,
		TotalDays:       days,
	}
}

func trivialRoute(origin, destination cities.Location, days int) Route {
	return Route{
		Waypoints: []Waypoint{
			{
				Location:           origin,
				Order:              0,
				CumulativeProgress: 0,
				Description:        describe(0, 2, origin),
			},
			{
				Location:           destination,
				Order:              1,
				CumulativeProgress: 100,
				Description:        describe(1, 2, destination),
			},
		},
		TotalDays: days,
	}
}

func describe(index, total int, loc cities.Location) string {
	switch {
	case index == 0:
		return fmt.Sprintf("Origin sorting facility - %s, %s", loc.City, loc.State)
	case index == total-1:
		return fmt.Sprintf("Destination delivery unit - %s, %s", loc.City, loc.State)
	default:
		return fmt.Sprintf("Distribution center - %s, %s", loc.City, loc.State)
	}
}
