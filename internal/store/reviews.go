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

type Review struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	BusinessID int64     `json:"business_id"`
	Review     string    `json:"review"`
	Stars      int       `json:"stars"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewsStore scopes mutations to the authoring user id. Reads by business
// are unscoped because reviews are public to authenticated users.
type ReviewsStore struct {
	db *pgxpool.Pool
}

var reviewUpdateFields = map[string]bool{
	"business_id": true,
	"review":      true,
	"stars":       true,
}

func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (user_id, business_id, review, stars)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(
		ctx, query, review.UserID, review.BusinessID, review.Review, review.Stars,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (s *ReviewsStore) GetByID(ctx context.Context, reviewID, userID int64) (*Review, error) {
	query := `
		SELECT id, user_id, business_id, review, stars, created_at, updated_at
		FROM reviews
		WHERE id = $1 AND user_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var review Review
	err := s.db.QueryRow(ctx, query, reviewID, userID).Scan(
		&review.ID,
		&review.UserID,
		&review.BusinessID,
		&review.Review,
		&review.Stars,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewsStore) ListByUser(ctx context.Context, userID int64) ([]Review, error) {
	return s.list(ctx, `WHERE user_id = $1`, userID)
}

func (s *ReviewsStore) ListByBusiness(ctx context.Context, businessID int64) ([]Review, error) {
	return s.list(ctx, `WHERE business_id = $1`, businessID)
}

func (s *ReviewsStore) list(ctx context.Context, where string, arg any) ([]Review, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, business_id, review, stars, created_at, updated_at
		FROM reviews
		%s
		ORDER BY id
	`, where)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var review Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.BusinessID,
			&review.Review,
			&review.Stars,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (s *ReviewsStore) Update(ctx context.Context, reviewID, userID int64, updates map[string]any) (*Review, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	setClauses := []string{}
	args := []any{}
	argCounter := 1

	for field, value := range updates {
		if !reviewUpdateFields[field] {
			return nil, fmt.Errorf("invalid field name: %s", field)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argCounter))
		args = append(args, value)
		argCounter++
	}
	args = append(args, reviewID, userID)

	query := fmt.Sprintf(`
		UPDATE reviews SET %s, updated_at = now()
		WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, business_id, review, stars, created_at, updated_at
	`, strings.Join(setClauses, ", "), argCounter, argCounter+1)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var review Review
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&review.ID,
		&review.UserID,
		&review.BusinessID,
		&review.Review,
		&review.Stars,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewsStore) Delete(ctx context.Context, reviewID, userID int64) (*Review, error) {
	query := `
		DELETE FROM reviews
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, business_id, review, stars, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var review Review
	err := s.db.QueryRow(ctx, query, reviewID, userID).Scan(
		&review.ID,
		&review.UserID,
		&review.BusinessID,
		&review.Review,
		&review.Stars,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}
