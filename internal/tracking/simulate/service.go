package simulate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rastreioBack/internal/tracking/cities"
	"rastreioBack/internal/tracking/repo"
	"rastreioBack/internal/tracking/route"
	"rastreioBack/internal/tracking/schedule"
	"rastreioBack/internal/tracking/status"
	"rastreioBack/internal/tracking/timeutil"
)

// Logger is the minimal logging interface required by the service.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// DeliveriesRepository covers the delivery operations required by the service.
type DeliveriesRepository interface {
	Get(ctx context.Context, id int64) (repo.Delivery, error)
	ListActive(ctx context.Context) ([]repo.Delivery, error)
}

// HistoryRepository covers scheduled-update persistence.
type HistoryRepository interface {
	InsertPending(ctx context.Context, entries []repo.HistoryEntry) error
	DeletePending(ctx context.Context, deliveryID int64) (int64, error)
	NextPending(ctx context.Context, deliveryID int64) (repo.HistoryEntry, error)
	LastApplied(ctx context.Context, deliveryID int64) (repo.HistoryEntry, error)
	CountPending(ctx context.Context, deliveryID int64) (int, error)
	Apply(ctx context.Context, e repo.HistoryEntry, now time.Time) error
	InsertApplied(ctx context.Context, e repo.HistoryEntry, now time.Time) error
}

// SettingsRepository reads the active simulation settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (repo.Settings, error)
}

// Resolver turns a city+state (and optional coordinates) into a location.
// The cache-backed implementation lives in the geo package; the plain one
// delegates straight to the cities table.
type Resolver interface {
	Resolve(ctx context.Context, city, state string, lat, lng *float64) cities.Location
}

// TableResolver resolves against the fixed hub table and state fallbacks only.
type TableResolver struct{}

// Resolve implements Resolver.
func (TableResolver) Resolve(_ context.Context, city, state string, lat, lng *float64) cities.Location {
	return cities.Resolve(city, state, lat, lng)
}

// Service implements the simulation operations: scheduling a new delivery,
// regenerating history and advancing a delivery on demand.
type Service struct {
	deliveries DeliveriesRepository
	history    HistoryRepository
	settings   SettingsRepository
	resolver   Resolver
	logger     Logger
	now        func() time.Time
}

// NewService constructs a Service instance.
func NewService(deliveries DeliveriesRepository, history HistoryRepository, settings SettingsRepository, resolver Resolver, logger Logger) *Service {
	if resolver == nil {
		resolver = TableResolver{}
	}
	return &Service{
		deliveries: deliveries,
		history:    history,
		settings:   settings,
		resolver:   resolver,
		logger:     logger,
		now:        timeutil.Now,
	}
}

// AdvanceResult reports the outcome of an on-demand advance.
type AdvanceResult struct {
	AlreadyTerminal bool
	NothingPending  bool
	Applied         *repo.HistoryEntry
	Remaining       int
}

// RegenerateFailure captures a single delivery that failed during a batch.
type RegenerateFailure struct {
	DeliveryID int64
	Err        error
}

// RegenerateReport aggregates the outcome of a batch regeneration.
type RegenerateReport struct {
	Regenerated   int
	Skipped       int
	EventsCreated int
	Discarded     int64
	Failures      []RegenerateFailure
}

// ScheduleNewDelivery builds a route from the active settings to the
// delivery's destination, generates the deterministic update schedule and
// persists it as pending history. Deliveries that opted out of simulation,
// or that already reached a terminal status, get no events.
func (s *Service) ScheduleNewDelivery(ctx context.Context, d repo.Delivery) ([]schedule.Update, error) {
	if !d.AutoSimulate {
		return nil, nil
	}
	if status.IsTerminal(status.Status(d.Status)) {
		return nil, nil
	}

	params, err := s.loadParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("load simulation settings: %w", err)
	}

	origin := s.resolver.Resolve(ctx, params.OriginCity, params.OriginState, nil, nil)
	destination := s.resolver.Resolve(ctx, d.DestinationCity, d.DestinationState,
		nullToPtr(d.DestinationLat), nullToPtr(d.DestinationLng))

	r := route.Build(origin, destination, params.MinDeliveryDays, params.MaxDeliveryDays)
	updates := schedule.Generate(r, d.TrackingCode, d.CreatedAt, params.UpdateStartHour, params.UpdateEndHour)

	// Applied history is immutable: when part of the schedule already ran,
	// only the events after the last applied one may be recreated.
	last, err := s.history.LastApplied(ctx, d.ID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("read applied history: %w", err)
	default:
		updates = dropElapsed(updates, last.ScheduledFor)
	}

	entries := make([]repo.HistoryEntry, len(updates))
	for i, u := range updates {
		entries[i] = historyEntry(d.ID, u)
	}
	if err := s.history.InsertPending(ctx, entries); err != nil {
		return nil, fmt.Errorf("persist schedule: %w", err)
	}

	s.logger.Infof("scheduled %d updates for delivery %d (%s), %d days over %.0f km",
		len(updates), d.ID, d.TrackingCode, r.TotalDays, r.WalkDistanceKM)
	return updates, nil
}

// RegenerateHistory discards pending future updates for the targeted
// deliveries and rebuilds them. Applied history stays untouched, so the
// operation is safe to repeat: the same inputs regenerate the same events.
// One delivery failing does not abort the batch; cancellation is honored
// between deliveries.
func (s *Service) RegenerateHistory(ctx context.Context, ids []int64, allActive bool) (RegenerateReport, error) {
	var report RegenerateReport

	var targets []repo.Delivery
	if allActive {
		active, err := s.deliveries.ListActive(ctx)
		if err != nil {
			return report, fmt.Errorf("list active deliveries: %w", err)
		}
		targets = active
	} else {
		for _, id := range ids {
			d, err := s.deliveries.Get(ctx, id)
			if err != nil {
				report.Failures = append(report.Failures, RegenerateFailure{DeliveryID: id, Err: err})
				continue
			}
			targets = append(targets, d)
		}
	}

	for _, d := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if status.IsTerminal(status.Status(d.Status)) || !d.AutoSimulate {
			report.Skipped++
			continue
		}
		discarded, err := s.history.DeletePending(ctx, d.ID)
		if err != nil {
			report.Failures = append(report.Failures, RegenerateFailure{DeliveryID: d.ID, Err: err})
			continue
		}
		report.Discarded += discarded

		updates, err := s.ScheduleNewDelivery(ctx, d)
		if err != nil {
			report.Failures = append(report.Failures, RegenerateFailure{DeliveryID: d.ID, Err: err})
			continue
		}
		report.Regenerated++
		report.EventsCreated += len(updates)
	}
	return report, nil
}

// AdvanceNow applies the next pending update for the delivery immediately,
// regardless of its scheduled time, and reports how many remain. Terminal
// deliveries yield an explicit already-terminal result instead of an error.
func (s *Service) AdvanceNow(ctx context.Context, deliveryID int64) (AdvanceResult, error) {
	d, err := s.deliveries.Get(ctx, deliveryID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if status.IsTerminal(status.Status(d.Status)) {
		return AdvanceResult{AlreadyTerminal: true}, nil
	}

	entry, err := s.history.NextPending(ctx, deliveryID)
	if errors.Is(err, repo.ErrNotFound) {
		return AdvanceResult{NothingPending: true}, nil
	}
	if err != nil {
		return AdvanceResult{}, err
	}

	if err := s.history.Apply(ctx, entry, s.now()); err != nil {
		return AdvanceResult{}, fmt.Errorf("apply update %d: %w", entry.ID, err)
	}

	remaining, err := s.history.CountPending(ctx, deliveryID)
	if err != nil {
		return AdvanceResult{}, err
	}
	return AdvanceResult{Applied: &entry, Remaining: remaining}, nil
}

// SetStatus is the manual override: it accepts any valid status without
// lifecycle checks and records the change as applied history.
func (s *Service) SetStatus(ctx context.Context, deliveryID int64, target status.Status, description string) error {
	if !status.Valid(target) {
		return fmt.Errorf("unknown status %q", target)
	}
	d, err := s.deliveries.Get(ctx, deliveryID)
	if err != nil {
		return err
	}

	now := s.now()
	if description == "" {
		description = fmt.Sprintf("Status manually set to %s", target)
	}
	entry := repo.HistoryEntry{
		DeliveryID:   d.ID,
		ScheduledFor: now,
		EventType:    string(schedule.EventStatusChange),
		NewStatus:    sql.NullString{String: string(target), Valid: true},
		City:         d.DestinationCity,
		State:        d.DestinationState,
		Description:  description,
		Progress:     d.Progress,
	}
	if d.CurrentLocation.Valid {
		entry.LocationLabel = d.CurrentLocation.String
	}
	return s.history.InsertApplied(ctx, entry, now)
}

func (s *Service) loadParams(ctx context.Context) (Params, error) {
	stored, err := s.settings.Get(ctx)
	if err != nil {
		return Params{}, err
	}
	params, warnings := ParamsFromSettings(stored).Sanitize()
	for _, w := range warnings {
		s.logger.Errorf("simulation settings: %s", w)
	}
	return params, nil
}

// dropElapsed removes updates scheduled at or before the cutoff, keeping the
// strictly-later tail of the deterministic schedule.
func dropElapsed(updates []schedule.Update, cutoff time.Time) []schedule.Update {
	out := updates[:0]
	for _, u := range updates {
		if u.ScheduledFor.After(cutoff) {
			out = append(out, u)
		}
	}
	return out
}

func historyEntry(deliveryID int64, u schedule.Update) repo.HistoryEntry {
	var newStatus sql.NullString
	if u.NewStatus != nil {
		newStatus = sql.NullString{String: string(*u.NewStatus), Valid: true}
	}
	loc := u.Waypoint.Location
	return repo.HistoryEntry{
		DeliveryID:    deliveryID,
		ScheduledFor:  u.ScheduledFor,
		EventType:     string(u.EventType),
		NewStatus:     newStatus,
		City:          loc.City,
		State:         loc.State,
		Lat:           loc.Lat,
		Lng:           loc.Lng,
		LocationLabel: fmt.Sprintf("%s, %s", loc.City, loc.State),
		Description:   u.Description,
		Progress:      u.ProgressPercent,
	}
}

func nullToPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		val := nf.Float64
		return &val
	}
	return nil
}
