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

type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	BusinessID  int64     `json:"business_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServicesStore scopes every read and write to a business id. The handler
// resolves the caller's business first, so a guessed service id belonging
// to another business scans as no rows.
type ServicesStore struct {
	db *pgxpool.Pool
}

var serviceUpdateFields = map[string]bool{
	"name":        true,
	"description": true,
	"price":       true,
}

func (s *ServicesStore) Create(ctx context.Context, service *Service) error {
	query := `
		INSERT INTO services (name, description, price, business_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, service.Name, service.Description, service.Price, service.BusinessID,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)
}

func (s *ServicesStore) GetByID(ctx context.Context, serviceID, businessID int64) (*Service, error) {
	query := `
		SELECT id, name, description, price, business_id, created_at, updated_at
		FROM services
		WHERE id = $1 AND business_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var service Service
	err := s.db.QueryRow(ctx, query, serviceID, businessID).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.BusinessID,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (s *ServicesStore) Exists(ctx context.Context, serviceID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx, query, serviceID).Scan(&exists)
	return exists, err
}

func (s *ServicesStore) ListByBusiness(ctx context.Context, businessID int64) ([]Service, error) {
	query := `
		SELECT id, name, description, price, business_id, created_at, updated_at
		FROM services
		WHERE business_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []Service{}
	for rows.Next() {
		var service Service
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.BusinessID,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func (s *ServicesStore) Update(ctx context.Context, serviceID, businessID int64, updates map[string]any) (*Service, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	setClauses := []string{}
	args := []any{}
	argCounter := 1

	for field, value := range updates {
		if !serviceUpdateFields[field] {
			return nil, fmt.Errorf("invalid field name: %s", field)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argCounter))
		args = append(args, value)
		argCounter++
	}
	args = append(args, serviceID, businessID)

	query := fmt.Sprintf(`
		UPDATE services SET %s, updated_at = now()
		WHERE id = $%d AND business_id = $%d
		RETURNING id, name, description, price, business_id, created_at, updated_at
	`, strings.Join(setClauses, ", "), argCounter, argCounter+1)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var service Service
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.BusinessID,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (s *ServicesStore) Delete(ctx context.Context, serviceID, businessID int64) (*Service, error) {
	query := `
		DELETE FROM services
		WHERE id = $1 AND business_id = $2
		RETURNING id, name, description, price, business_id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var service Service
	err := s.db.QueryRow(ctx, query, serviceID, businessID).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.BusinessID,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}
