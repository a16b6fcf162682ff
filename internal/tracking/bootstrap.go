package tracking

import (
	"context"
	"errors"
	"fmt"

	"rastreioBack/internal/tracking/dispatch"
	"rastreioBack/internal/tracking/geo"
	trackinghttp "rastreioBack/internal/tracking/http"
	"rastreioBack/internal/tracking/repo"
	"rastreioBack/internal/tracking/simulate"
	"rastreioBack/internal/tracking/ws"
)

// Services bundles the constructed tracking components for the HTTP layer.
type Services struct {
	Deliveries *repo.DeliveriesRepo
	History    *repo.HistoryRepo
	Settings   *repo.SettingsRepo
	Simulator  *simulate.Service
	Processor  *dispatch.Processor
	Hub        *ws.TrackingHub
	HTTP       *trackinghttp.Server
}

// Bootstrap wires the tracking module together. When a Redis client is
// present the city resolver is backed by the coordinate cache; without one
// it falls back to the fixed table.
func Bootstrap(deps Deps) (*Services, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	deliveries := repo.NewDeliveriesRepo(deps.DB)
	history := repo.NewHistoryRepo(deps.DB)
	settings := repo.NewSettingsRepo(deps.DB)

	var resolver simulate.Resolver = simulate.TableResolver{}
	if deps.Redis != nil {
		cache := geo.NewCityCache(deps.Redis, deps.Config.CityCacheKey)
		resolver = geo.NewCachedResolver(cache, deps.Logger)
	}

	sim := simulate.NewService(deliveries, history, settings, resolver, deps.Logger)
	hub := ws.NewTrackingHub(deps.Logger)
	processor := dispatch.NewProcessor(history, hub, deps.Logger, deps.Config.ProcessorTick, deps.Config.ProcessorBatch)
	server := trackinghttp.NewServer(deps.Logger, deliveries, history, settings, sim)

	return &Services{
		Deliveries: deliveries,
		History:    history,
		Settings:   settings,
		Simulator:  sim,
		Processor:  processor,
		Hub:        hub,
		HTTP:       server,
	}, nil
}

// EnsureSettings seeds the simulation settings row from the configured
// defaults when no row exists yet. An existing row is left as is.
func (s *Services) EnsureSettings(ctx context.Context, cfg Config) error {
	_, err := s.Settings.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("read simulation settings: %w", err)
	}
	seed := repo.Settings{
		OriginCity:      cfg.OriginCity,
		OriginState:     cfg.OriginState,
		MinDeliveryDays: cfg.MinDeliveryDays,
		MaxDeliveryDays: cfg.MaxDeliveryDays,
		UpdateStartHour: cfg.UpdateStartHour,
		UpdateEndHour:   cfg.UpdateEndHour,
	}
	if err := s.Settings.Save(ctx, seed); err != nil {
		return fmt.Errorf("seed simulation settings: %w", err)
	}
	return nil
}
