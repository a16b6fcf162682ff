package timeutil

import "time"

var saoPauloLocation = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("America/Sao_Paulo", -3*60*60)
	}
	return loc
}

// Now returns the current time in America/Sao_Paulo timezone.
func Now() time.Time {
	return time.Now().In(saoPauloLocation)
}

// In converts provided time to America/Sao_Paulo timezone.
func In(t time.Time) time.Time {
	return t.In(saoPauloLocation)
}

// Location returns America/Sao_Paulo location instance.
func Location() *time.Location {
	return saoPauloLocation
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SkipWeekends advances the date one day at a time until it lands on a weekday.
// At most two steps are ever needed.
func SkipWeekends(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
