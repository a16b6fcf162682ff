package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Settings is the single active simulation configuration row. It is mutated
// only through Save; route and schedule computations read it fresh each time.
type Settings struct {
	OriginCity      string
	OriginState     string
	MinDeliveryDays int
	MaxDeliveryDays int
	UpdateStartHour int
	UpdateEndHour   int
	UpdatedAt       time.Time
}

// SettingsRepo persists the simulation settings row.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo constructs a new SettingsRepo.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the active settings row.
func (r *SettingsRepo) Get(ctx context.Context) (Settings, error) {
	var s Settings
	row := r.db.QueryRowContext(ctx, `SELECT origin_city, origin_state, min_delivery_days, max_delivery_days, update_start_hour, update_end_hour, updated_at FROM simulation_settings WHERE id = 1`)
	err := row.Scan(&s.OriginCity, &s.OriginState, &s.MinDeliveryDays, &s.MaxDeliveryDays,
		&s.UpdateStartHour, &s.UpdateEndHour, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save upserts the settings row. There is always at most one.
func (r *SettingsRepo) Save(ctx context.Context, s Settings) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO simulation_settings (id, origin_city, origin_state, min_delivery_days, max_delivery_days, update_start_hour, update_end_hour) VALUES (1,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE origin_city = VALUES(origin_city), origin_state = VALUES(origin_state), min_delivery_days = VALUES(min_delivery_days), max_delivery_days = VALUES(max_delivery_days), update_start_hour = VALUES(update_start_hour), update_end_hour = VALUES(update_end_hour)`,
		s.OriginCity, s.OriginState, s.MinDeliveryDays, s.MaxDeliveryDays, s.UpdateStartHour, s.UpdateEndHour)
	return err
}
