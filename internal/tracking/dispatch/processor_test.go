package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"rastreioBack/internal/tracking/repo"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type stubHistory struct {
	due      []repo.HistoryEntry
	listErr  error
	applyErr map[int64]error
	applied  []int64
}

func (s *stubHistory) ListDue(context.Context, time.Time, int) ([]repo.HistoryEntry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.due, nil
}

func (s *stubHistory) Apply(_ context.Context, e repo.HistoryEntry, _ time.Time) error {
	if err, ok := s.applyErr[e.ID]; ok {
		return err
	}
	s.applied = append(s.applied, e.ID)
	return nil
}

type stubNotifier struct {
	broadcasts []int64
}

func (s *stubNotifier) BroadcastUpdate(deliveryID int64, _ interface{}) {
	s.broadcasts = append(s.broadcasts, deliveryID)
}

func dueEntry(id, deliveryID int64, st string) repo.HistoryEntry {
	e := repo.HistoryEntry{ID: id, DeliveryID: deliveryID, Description: "in transit"}
	if st != "" {
		e.NewStatus = sql.NullString{String: st, Valid: true}
	}
	return e
}

func TestTickAppliesDueEntries(t *testing.T) {
	history := &stubHistory{due: []repo.HistoryEntry{
		dueEntry(1, 10, "collected"),
		dueEntry(2, 10, ""),
		dueEntry(3, 11, "in_transit"),
	}}
	notifier := &stubNotifier{}
	p := NewProcessor(history, notifier, nopLogger{}, time.Second, 100)

	p.Tick(context.Background())

	if len(history.applied) != 3 {
		t.Fatalf("expected 3 applied entries, got %d", len(history.applied))
	}
	if len(notifier.broadcasts) != 3 {
		t.Fatalf("every applied entry must be broadcast, got %d", len(notifier.broadcasts))
	}
	if notifier.broadcasts[2] != 11 {
		t.Fatalf("broadcast carried wrong delivery id: %v", notifier.broadcasts)
	}
}

func TestTickSkipsAlreadyApplied(t *testing.T) {
	history := &stubHistory{
		due: []repo.HistoryEntry{
			dueEntry(1, 10, "collected"),
			dueEntry(2, 10, ""),
		},
		applyErr: map[int64]error{1: repo.ErrAlreadyApplied},
	}
	notifier := &stubNotifier{}
	p := NewProcessor(history, notifier, nopLogger{}, time.Second, 100)

	p.Tick(context.Background())

	if len(history.applied) != 1 || history.applied[0] != 2 {
		t.Fatalf("expected only entry 2 applied, got %v", history.applied)
	}
	if len(notifier.broadcasts) != 1 {
		t.Fatalf("a skipped entry must not be broadcast, got %d broadcasts", len(notifier.broadcasts))
	}
}

func TestTickContinuesPastFailures(t *testing.T) {
	history := &stubHistory{
		due: []repo.HistoryEntry{
			dueEntry(1, 10, "collected"),
			dueEntry(2, 10, ""),
		},
		applyErr: map[int64]error{1: errors.New("deadlock")},
	}
	p := NewProcessor(history, &stubNotifier{}, nopLogger{}, time.Second, 100)

	p.Tick(context.Background())

	if len(history.applied) != 1 || history.applied[0] != 2 {
		t.Fatalf("a failing entry must not stall the queue, got %v", history.applied)
	}
}

func TestTickStopsOnCancelledContext(t *testing.T) {
	history := &stubHistory{due: []repo.HistoryEntry{dueEntry(1, 10, "collected")}}
	p := NewProcessor(history, &stubNotifier{}, nopLogger{}, time.Second, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Tick(ctx)

	if len(history.applied) != 0 {
		t.Fatalf("cancelled tick must not apply entries, got %v", history.applied)
	}
}

func TestRunStopsWhenContextDone(t *testing.T) {
	history := &stubHistory{}
	p := NewProcessor(history, nil, nopLogger{}, 5*time.Millisecond, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancellation")
	}
}
