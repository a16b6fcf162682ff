package simulate

import (
	"fmt"

	"rastreioBack/internal/tracking/repo"
)

// Params are the simulation inputs threaded explicitly into route building
// and schedule generation. There is no ambient configuration: the service
// loads the settings row and passes a sanitized copy on every computation.
type Params struct {
	OriginCity      string
	OriginState     string
	MinDeliveryDays int
	MaxDeliveryDays int
	UpdateStartHour int
	UpdateEndHour   int
}

// ParamsFromSettings converts a stored settings row into simulation params.
func ParamsFromSettings(s repo.Settings) Params {
	return Params{
		OriginCity:      s.OriginCity,
		OriginState:     s.OriginState,
		MinDeliveryDays: s.MinDeliveryDays,
		MaxDeliveryDays: s.MaxDeliveryDays,
		UpdateStartHour: s.UpdateStartHour,
		UpdateEndHour:   s.UpdateEndHour,
	}
}

// Sanitize clamps invalid values to safe defaults and returns a warning per
// adjustment. Simulation must never block delivery creation on a bad config,
// so these are recoveries rather than errors.
func (p Params) Sanitize() (Params, []string) {
	var warnings []string

	if p.OriginCity == "" {
		p.OriginCity, p.OriginState = "São Paulo", "SP"
		warnings = append(warnings, "origin city empty, using São Paulo, SP")
	}
	if p.MinDeliveryDays < 1 {
		warnings = append(warnings, fmt.Sprintf("min delivery days %d invalid, using 1", p.MinDeliveryDays))
		p.MinDeliveryDays = 1
	}
	if p.MaxDeliveryDays < p.MinDeliveryDays {
		warnings = append(warnings, fmt.Sprintf("max delivery days %d below min %d, clamping to min", p.MaxDeliveryDays, p.MinDeliveryDays))
		p.MaxDeliveryDays = p.MinDeliveryDays
	}
	if p.UpdateStartHour < 0 || p.UpdateEndHour > 24 || p.UpdateStartHour >= p.UpdateEndHour {
		warnings = append(warnings, fmt.Sprintf("update hour window [%d,%d) invalid, using [9,18)", p.UpdateStartHour, p.UpdateEndHour))
		p.UpdateStartHour, p.UpdateEndHour = 9, 18
	}
	return p, warnings
}
