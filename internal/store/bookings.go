package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Booking struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ServiceID    int64     `json:"service_id"`
	OpeningHours string    `json:"opening_hours"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Service is joined on reads.
	Service *Service `json:"service,omitempty"`
}

// BookingsStore scopes every read and write to the owning user id.
type BookingsStore struct {
	db *pgxpool.Pool
}

var bookingUpdateFields = map[string]bool{
	"service_id":    true,
	"opening_hours": true,
}

func (s *BookingsStore) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (user_id, service_id, opening_hours)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, booking.UserID, booking.ServiceID, booking.OpeningHours,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (s *BookingsStore) GetByID(ctx context.Context, bookingID, userID int64) (*Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.service_id, b.opening_hours, b.created_at, b.updated_at,
		       s.id, s.name, s.description, s.price, s.business_id
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.id = $1 AND b.user_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var booking Booking
	var service Service
	err := s.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ServiceID,
		&booking.OpeningHours,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.BusinessID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	booking.Service = &service
	return &booking, nil
}

func (s *BookingsStore) ListByUser(ctx context.Context, userID int64) ([]Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.service_id, b.opening_hours, b.created_at, b.updated_at,
		       s.id, s.name, s.description, s.price, s.business_id
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.user_id = $1
		ORDER BY b.id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		var booking Booking
		var service Service
		if err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ServiceID,
			&booking.OpeningHours,
			&booking.CreatedAt,
			&booking.UpdatedAt,
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.BusinessID,
		); err != nil {
			return nil, err
		}
		booking.Service = &service
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (s *BookingsStore) Update(ctx context.Context, bookingID, userID int64, updates map[string]any) (*Booking, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	setClauses := []string{}
	args := []any{}
	argCounter := 1

	for field, value := range updates {
		if !bookingUpdateFields[field] {
			return nil, fmt.Errorf("invalid field name: %s", field)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argCounter))
		args = append(args, value)
		argCounter++
	}
	args = append(args, bookingID, userID)

	query := fmt.Sprintf(`
		UPDATE bookings SET %s, updated_at = now()
		WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, service_id, opening_hours, created_at, updated_at
	`, strings.Join(setClauses, ", "), argCounter, argCounter+1)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var booking Booking
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ServiceID,
		&booking.OpeningHours,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *BookingsStore) Delete(ctx context.Context, bookingID, userID int64) (*Booking, error) {
	query := `
		DELETE FROM bookings
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, service_id, opening_hours, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var booking Booking
	err := s.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ServiceID,
		&booking.OpeningHours,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}
