package http

import (
	"rastreioBack/internal/tracking/repo"
	"rastreioBack/internal/tracking/simulate"
)

// Logger captures the logging contract required by the server.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Server provides HTTP handlers for the tracking domain.
type Server struct {
	logger     Logger
	deliveries *repo.DeliveriesRepo
	history    *repo.HistoryRepo
	settings   *repo.SettingsRepo
	sim        *simulate.Service
}

// NewServer constructs a Server instance.
func NewServer(logger Logger, deliveries *repo.DeliveriesRepo, history *repo.HistoryRepo, settings *repo.SettingsRepo, sim *simulate.Service) *Server {
	return &Server{
		logger:     logger,
		deliveries: deliveries,
		history:    history,
		settings:   settings,
		sim:        sim,
	}
}
