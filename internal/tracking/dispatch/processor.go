package dispatch

import (
	"context"
	"errors"
	"time"

	"rastreioBack/internal/tracking/repo"
	"rastreioBack/internal/tracking/timeutil"
)

// Logger provides minimal logging for the processor.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// HistoryRepository covers the history operations required by the processor.
type HistoryRepository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]repo.HistoryEntry, error)
	Apply(ctx context.Context, e repo.HistoryEntry, now time.Time) error
}

// Notifier pushes applied updates out to connected tracking clients.
type Notifier interface {
	BroadcastUpdate(deliveryID int64, payload interface{})
}

// AppliedUpdate is the payload broadcast for every applied history entry.
type AppliedUpdate struct {
	DeliveryID  int64     `json:"delivery_id"`
	Status      *string   `json:"status,omitempty"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Progress    float64   `json:"progress"`
	AppliedAt   time.Time `json:"applied_at"`
}

// Processor periodically applies scheduled updates that have come due.
// Each entry is applied independently; a failing entry is logged and skipped
// so one bad row never stalls the queue.
type Processor struct {
	history  HistoryRepository
	notifier Notifier
	logger   Logger
	tick     time.Duration
	batch    int
}

// NewProcessor constructs a processor instance.
func NewProcessor(history HistoryRepository, notifier Notifier, logger Logger, tick time.Duration, batch int) *Processor {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Processor{history: history, notifier: notifier, logger: logger, tick: tick, batch: batch}
}

// Run launches the processing loop until the context is cancelled.
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick applies all currently due updates. Exposed so admin actions and tests
// can trigger a pass without waiting for the ticker.
func (p *Processor) Tick(ctx context.Context) {
	now := timeutil.Now()
	entries, err := p.history.ListDue(ctx, now, p.batch)
	if err != nil {
		p.logger.Errorf("tracking processor: list due failed: %v", err)
		return
	}
	applied := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if err := p.history.Apply(ctx, e, now); err != nil {
			if errors.Is(err, repo.ErrAlreadyApplied) {
				continue
			}
			p.logger.Errorf("tracking processor: apply update %d failed: %v", e.ID, err)
			continue
		}
		applied++
		if p.notifier != nil {
			p.notifier.BroadcastUpdate(e.DeliveryID, appliedPayload(e, now))
		}
	}
	if applied > 0 {
		p.logger.Infof("tracking processor: applied %d of %d due updates", applied, len(entries))
	}
}

func appliedPayload(e repo.HistoryEntry, now time.Time) AppliedUpdate {
	var st *string
	if e.NewStatus.Valid {
		val := e.NewStatus.String
		st = &val
	}
	return AppliedUpdate{
		DeliveryID:  e.DeliveryID,
		Status:      st,
		Location:    e.LocationLabel,
		Description: e.Description,
		Progress:    e.Progress,
		AppliedAt:   now,
	}
}
