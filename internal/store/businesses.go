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

type Business struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	UserID       int64     `json:"user_id"`
	OpeningHours string    `json:"opening_hours"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Owner is populated on admin reads.
	Owner *User `json:"user,omitempty"`
}

const (
	BusinessOpen   = "open"
	BusinessClosed = "closed"
)

type BusinessesStore struct {
	db *pgxpool.Pool
}

var businessUpdateFields = map[string]bool{
	"name":          true,
	"user_id":       true,
	"opening_hours": true,
	"status":        true,
}

func (s *BusinessesStore) Create(ctx context.Context, business *Business) error {
	query := `
		INSERT INTO businesses (name, user_id, opening_hours, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, business.Name, business.UserID, business.OpeningHours, business.Status,
	).Scan(&business.ID, &business.CreatedAt, &business.UpdatedAt)
}

func (s *BusinessesStore) GetByID(ctx context.Context, businessID int64) (*Business, error) {
	query := `
		SELECT b.id, b.name, b.user_id, b.opening_hours, b.status, b.created_at, b.updated_at,
		       u.id, u.name, u.email, u.role
		FROM businesses b
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var business Business
	var owner User
	err := s.db.QueryRow(ctx, query, businessID).Scan(
		&business.ID,
		&business.Name,
		&business.UserID,
		&business.OpeningHours,
		&business.Status,
		&business.CreatedAt,
		&business.UpdatedAt,
		&owner.ID,
		&owner.Name,
		&owner.Email,
		&owner.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	business.Owner = &owner
	return &business, nil
}

// GetByOwner returns the caller's business. One business per owner is the
// intended cardinality but is not enforced, so the lowest id wins.
func (s *BusinessesStore) GetByOwner(ctx context.Context, userID int64) (*Business, error) {
	query := `
		SELECT id, name, user_id, opening_hours, status, created_at, updated_at
		FROM businesses
		WHERE user_id = $1
		ORDER BY id
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var business Business
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&business.ID,
		&business.Name,
		&business.UserID,
		&business.OpeningHours,
		&business.Status,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (s *BusinessesStore) List(ctx context.Context, includeOwner bool) ([]Business, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if !includeOwner {
		query := `
			SELECT id, name, user_id, opening_hours, status, created_at, updated_at
			FROM businesses
			ORDER BY id
		`
		rows, err := s.db.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		businesses := []Business{}
		for rows.Next() {
			var business Business
			if err := rows.Scan(
				&business.ID,
				&business.Name,
				&business.UserID,
				&business.OpeningHours,
				&business.Status,
				&business.CreatedAt,
				&business.UpdatedAt,
			); err != nil {
				return nil, err
			}
			businesses = append(businesses, business)
		}
		return businesses, rows.Err()
	}

	query := `
		SELECT b.id, b.name, b.user_id, b.opening_hours, b.status, b.created_at, b.updated_at,
		       u.id, u.name, u.email, u.role
		FROM businesses b
		JOIN users u ON u.id = b.user_id
		ORDER BY b.id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	businesses := []Business{}
	for rows.Next() {
		var business Business
		var owner User
		if err := rows.Scan(
			&business.ID,
			&business.Name,
			&business.UserID,
			&business.OpeningHours,
			&business.Status,
			&business.CreatedAt,
			&business.UpdatedAt,
			&owner.ID,
			&owner.Name,
			&owner.Email,
			&owner.Role,
		); err != nil {
			return nil, err
		}
		business.Owner = &owner
		businesses = append(businesses, business)
	}
	return businesses, rows.Err()
}

func (s *BusinessesStore) Update(ctx context.Context, businessID int64, updates map[string]any) (*Business, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	setClauses := []string{}
	args := []any{}
	argCounter := 1

	for field, value := range updates {
		if !businessUpdateFields[field] {
			return nil, fmt.Errorf("invalid field name: %s", field)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argCounter))
		args = append(args, value)
		argCounter++
	}
	args = append(args, businessID)

	query := fmt.Sprintf(`
		UPDATE businesses SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING id, name, user_id, opening_hours, status, created_at, updated_at
	`, strings.Join(setClauses, ", "), argCounter)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var business Business
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&business.ID,
		&business.Name,
		&business.UserID,
		&business.OpeningHours,
		&business.Status,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (s *BusinessesStore) Delete(ctx context.Context, businessID int64) (*Business, error) {
	query := `
		DELETE FROM businesses
		WHERE id = $1
		RETURNING id, name, user_id, opening_hours, status, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var business Business
	err := s.db.QueryRow(ctx, query, businessID).Scan(
		&business.ID,
		&business.Name,
		&business.UserID,
		&business.OpeningHours,
		&business.Status,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}
