package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Delivery represents a parcel being tracked.
type Delivery struct {
	ID               int64
	TrackingCode     string
	RecipientName    string
	DestinationCity  string
	DestinationState string
	DestinationLat   sql.NullFloat64
	DestinationLng   sql.NullFloat64
	Status           string
	Progress         float64
	CurrentLocation  sql.NullString
	AutoSimulate     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DeliveriesRepo provides persistence for deliveries.
type DeliveriesRepo struct {
	db *sql.DB
}

// NewDeliveriesRepo constructs a new DeliveriesRepo.
func NewDeliveriesRepo(db *sql.DB) *DeliveriesRepo {
	return &DeliveriesRepo{db: db}
}

const deliveryColumns = `id, tracking_code, recipient_name, destination_city, destination_state, destination_lat, destination_lng, status, progress, current_location, auto_simulate, created_at, updated_at`

func scanDelivery(row interface{ Scan(...interface{}) error }) (Delivery, error) {
	var d Delivery
	err := row.Scan(&d.ID, &d.TrackingCode, &d.RecipientName, &d.DestinationCity, &d.DestinationState,
		&d.DestinationLat, &d.DestinationLng, &d.Status, &d.Progress, &d.CurrentLocation,
		&d.AutoSimulate, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Create inserts a new delivery and returns its identifier.
func (r *DeliveriesRepo) Create(ctx context.Context, d Delivery) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO deliveries (tracking_code, recipient_name, destination_city, destination_state, destination_lat, destination_lng, status, progress, current_location, auto_simulate) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		d.TrackingCode, d.RecipientName, d.DestinationCity, d.DestinationState,
		d.DestinationLat, d.DestinationLng, d.Status, d.Progress, d.CurrentLocation, d.AutoSimulate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Get returns a delivery by identifier.
func (r *DeliveriesRepo) Get(ctx context.Context, id int64) (Delivery, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id)
	d, err := scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Delivery{}, ErrNotFound
	}
	if err != nil {
		return Delivery{}, err
	}
	return d, nil
}

// GetByTrackingCode returns a delivery by its public tracking code.
func (r *DeliveriesRepo) GetByTrackingCode(ctx context.Context, code string) (Delivery, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE tracking_code = ?`, code)
	d, err := scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Delivery{}, ErrNotFound
	}
	if err != nil {
		return Delivery{}, err
	}
	return d, nil
}

// ListActive returns deliveries that have not reached a terminal status.
func (r *DeliveriesRepo) ListActive(ctx context.Context) ([]Delivery, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE status NOT IN ('delivered','failed','returned') ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
