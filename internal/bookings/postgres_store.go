package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps bookings and their history in Postgres.
type PostgresStore struct {
	db pgxConn
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithConn(db pgxConn) *PostgresStore {
	if db == nil {
		panic("bookings: conn required")
	}
	return &PostgresStore{db: db}
}

const bookingColumns = `id, name, phone, service, appointment, status, created_at, canceled_at`

// Insert writes the booking and its "created" history row in one transaction.
func (s *PostgresStore) Insert(ctx context.Context, req NewBooking) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookings: begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var createdAt time.Time
	if err := tx.QueryRow(ctx, `
		INSERT INTO bookings (id, name, phone, service, appointment, status)
		VALUES ($1, $2, $3, $4, $5, 'new')
		RETURNING created_at
	`, id, req.Name, req.Phone, req.Service, req.Appointment).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("bookings: insert failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO booking_history (booking_id, action) VALUES ($1, 'created')`, id); err != nil {
		return nil, fmt.Errorf("bookings: insert history failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("bookings: commit insert: %w", err)
	}

	return &Booking{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		Service:     req.Service,
		Appointment: req.Appointment,
		Status:      StatusNew,
		CreatedAt:   createdAt,
	}, nil
}

// FindActiveByPhone returns the newest booking with status new for phone.
func (s *PostgresStore) FindActiveByPhone(ctx context.Context, phone string) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE phone = $1 AND status = 'new'
		ORDER BY created_at DESC
		LIMIT 1
	`, phone)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: find by phone failed: %w", err)
	}
	return b, nil
}

// Cancel flips an active booking to canceled and records a "canceled" history row.
func (s *PostgresStore) Cancel(ctx context.Context, id string) (*Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookings: begin cancel: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'canceled', canceled_at = now()
		WHERE id = $1 AND status = 'new'
		RETURNING `+bookingColumns, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: cancel failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO booking_history (booking_id, action) VALUES ($1, 'canceled')`, id); err != nil {
		return nil, fmt.Errorf("bookings: insert history failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("bookings: commit cancel: %w", err)
	}
	return b, nil
}

// List returns the newest bookings first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list rows: %w", err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b      Booking
		status string
	)
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Phone,
		&b.Service,
		&b.Appointment,
		&status,
		&b.CreatedAt,
		&b.CanceledAt,
	); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return &b, nil
}
