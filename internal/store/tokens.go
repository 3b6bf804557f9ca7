package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokensStore persists the sha256 hashes of issued access tokens. A token
// is live while its row exists; logout deletes exactly one row, so several
// concurrent tokens per user stay valid independently.
type TokensStore struct {
	db *pgxpool.Pool
}

func (s *TokensStore) Create(ctx context.Context, userID int64, tokenHash string) error {
	query := `
		INSERT INTO auth_tokens (user_id, token_hash)
		VALUES ($1, $2)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, tokenHash)
	return err
}

func (s *TokensStore) UserID(ctx context.Context, tokenHash string) (int64, error) {
	query := `
		SELECT user_id FROM auth_tokens
		WHERE token_hash = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var userID int64
	err := s.db.QueryRow(ctx, query, tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}

func (s *TokensStore) Delete(ctx context.Context, tokenHash string) error {
	query := `
		DELETE FROM auth_tokens
		WHERE token_hash = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
