package clinic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SQLProvider reads the clinic_settings row. Only the columns the table
// carries are loaded; the service menu and media come from defaults.
type SQLProvider struct {
	db *sql.DB
}

// NewSQLProvider wraps a database/sql handle opened with the postgres driver.
func NewSQLProvider(db *sql.DB) *SQLProvider {
	if db == nil {
		panic("clinic: sql db required")
	}
	return &SQLProvider{db: db}
}

func (p *SQLProvider) Name() string { return "clinic_settings" }

func (p *SQLProvider) Load(ctx context.Context, clinicID string) (*Config, error) {
	const query = `
		SELECT clinic_name, booking_times, location_ar, location_en, closed_weekdays
		FROM clinic_settings
		WHERE clinic_id = $1
	`
	var (
		cfg        = Config{ClinicID: clinicID}
		times      []string
		closed     []int64
		locationAR sql.NullString
		locationEN sql.NullString
	)
	err := p.db.QueryRowContext(ctx, query, clinicID).Scan(
		&cfg.Name,
		pq.Array(&times),
		&locationAR,
		&locationEN,
		pq.Array(&closed),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("clinic: query settings: %w", err)
	}
	cfg.TimeSlots = times
	cfg.LocationAR = locationAR.String
	cfg.LocationEN = locationEN.String
	for _, d := range closed {
		cfg.ClosedWeekdays = append(cfg.ClosedWeekdays, time.Weekday(d))
	}
	return &cfg, nil
}
