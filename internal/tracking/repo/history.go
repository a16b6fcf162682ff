package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// HistoryEntry is a scheduled tracking update, pending until applied_at is set.
// It carries denormalized location data so the tracking UI can render history
// without recomputing geography.
type HistoryEntry struct {
	ID            int64
	DeliveryID    int64
	ScheduledFor  time.Time
	EventType     string
	NewStatus     sql.NullString
	City          string
	State         string
	Lat           float64
	Lng           float64
	LocationLabel string
	Description   string
	Progress      float64
	AppliedAt     sql.NullTime
	CreatedAt     time.Time
}

// Applied reports whether the entry has already been written to the delivery.
func (e HistoryEntry) Applied() bool {
	return e.AppliedAt.Valid
}

// HistoryRepo provides persistence for scheduled tracking updates.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo constructs a new HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

const historyColumns = `id, delivery_id, scheduled_for, event_type, new_status, city, state, lat, lng, location_label, description, progress, applied_at, created_at`

func scanHistory(row interface{ Scan(...interface{}) error }) (HistoryEntry, error) {
	var e HistoryEntry
	err := row.Scan(&e.ID, &e.DeliveryID, &e.ScheduledFor, &e.EventType, &e.NewStatus,
		&e.City, &e.State, &e.Lat, &e.Lng, &e.LocationLabel, &e.Description,
		&e.Progress, &e.AppliedAt, &e.CreatedAt)
	return e, err
}

// InsertPending stores a batch of not-yet-applied entries in one transaction.
func (r *HistoryRepo) InsertPending(ctx context.Context, entries []HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, e := range entries {
		if _, err = tx.ExecContext(ctx, `INSERT INTO tracking_history (delivery_id, scheduled_for, event_type, new_status, city, state, lat, lng, location_label, description, progress) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			e.DeliveryID, e.ScheduledFor, e.EventType, e.NewStatus, e.City, e.State,
			e.Lat, e.Lng, e.LocationLabel, e.Description, e.Progress); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeletePending removes all not-yet-applied entries for a delivery and
// returns how many were discarded. Applied history is never touched.
func (r *HistoryRepo) DeletePending(ctx context.Context, deliveryID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracking_history WHERE delivery_id = ? AND applied_at IS NULL`, deliveryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NextPending returns the earliest unapplied entry for a delivery.
func (r *HistoryRepo) NextPending(ctx context.Context, deliveryID int64) (HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM tracking_history WHERE delivery_id = ? AND applied_at IS NULL ORDER BY scheduled_for, id LIMIT 1`, deliveryID)
	e, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, ErrNotFound
	}
	if err != nil {
		return HistoryEntry{}, err
	}
	return e, nil
}

// LastApplied returns the most recent applied entry for a delivery, or
// ErrNotFound when nothing has been applied yet.
func (r *HistoryRepo) LastApplied(ctx context.Context, deliveryID int64) (HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM tracking_history WHERE delivery_id = ? AND applied_at IS NOT NULL ORDER BY scheduled_for DESC, id DESC LIMIT 1`, deliveryID)
	e, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, ErrNotFound
	}
	if err != nil {
		return HistoryEntry{}, err
	}
	return e, nil
}

// CountPending returns how many unapplied entries remain for a delivery.
func (r *HistoryRepo) CountPending(ctx context.Context, deliveryID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracking_history WHERE delivery_id = ? AND applied_at IS NULL`, deliveryID).Scan(&n)
	return n, err
}

// ListByDelivery returns the full history for a delivery ordered by schedule.
// When appliedOnly is set, pending future entries are excluded.
func (r *HistoryRepo) ListByDelivery(ctx context.Context, deliveryID int64, appliedOnly bool) ([]HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM tracking_history WHERE delivery_id = ?`
	if appliedOnly {
		query += ` AND applied_at IS NOT NULL`
	}
	query += ` ORDER BY scheduled_for, id`

	rows, err := r.db.QueryContext(ctx, query, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListDue returns unapplied entries whose scheduled time has passed, oldest first.
func (r *HistoryRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM tracking_history WHERE applied_at IS NULL AND scheduled_for <= ? ORDER BY scheduled_for, id LIMIT ?`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Apply marks the entry applied and writes its effects onto the delivery row
// in a single transaction. The applied_at guard makes application safe under
// concurrent processors: the second writer gets ErrAlreadyApplied.
func (r *HistoryRepo) Apply(ctx context.Context, e HistoryEntry, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, execErr := tx.ExecContext(ctx, `UPDATE tracking_history SET applied_at = ? WHERE id = ? AND applied_at IS NULL`, now, e.ID)
	if execErr != nil {
		err = execErr
		return err
	}
	affected, raErr := res.RowsAffected()
	if raErr != nil {
		err = raErr
		return err
	}
	if affected == 0 {
		err = ErrAlreadyApplied
		return err
	}

	if e.NewStatus.Valid {
		_, err = tx.ExecContext(ctx, `UPDATE deliveries SET status = ?, progress = ?, current_location = ?, updated_at = NOW() WHERE id = ?`,
			e.NewStatus.String, e.Progress, e.LocationLabel, e.DeliveryID)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE deliveries SET progress = ?, current_location = ?, updated_at = NOW() WHERE id = ?`,
			e.Progress, e.LocationLabel, e.DeliveryID)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// InsertApplied records an already-effective manual history entry, writing the
// status change and the history row together.
func (r *HistoryRepo) InsertApplied(ctx context.Context, e HistoryEntry, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT INTO tracking_history (delivery_id, scheduled_for, event_type, new_status, city, state, lat, lng, location_label, description, progress, applied_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.DeliveryID, e.ScheduledFor, e.EventType, e.NewStatus, e.City, e.State,
		e.Lat, e.Lng, e.LocationLabel, e.Description, e.Progress, now); err != nil {
		return err
	}

	if e.NewStatus.Valid {
		if _, err = tx.ExecContext(ctx, `UPDATE deliveries SET status = ?, current_location = ?, updated_at = NOW() WHERE id = ?`,
			e.NewStatus.String, e.LocationLabel, e.DeliveryID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
