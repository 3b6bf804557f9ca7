package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		List(context.Context) ([]User, error)
		Update(ctx context.Context, userID int64, updates map[string]any) (*User, error)
		Delete(ctx context.Context, userID int64) (*User, error)
		SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error
		GetByResetToken(ctx context.Context, tokenHash string) (*User, error)
		ResetPassword(ctx context.Context, user *User) error
	}
	Tokens interface {
		Create(ctx context.Context, userID int64, tokenHash string) error
		UserID(ctx context.Context, tokenHash string) (int64, error)
		Delete(ctx context.Context, tokenHash string) error
	}
	Businesses interface {
		Create(context.Context, *Business) error
		GetByID(ctx context.Context, businessID int64) (*Business, error)
		GetByOwner(ctx context.Context, userID int64) (*Business, error)
		List(ctx context.Context, includeOwner bool) ([]Business, error)
		Update(ctx context.Context, businessID int64, updates map[string]any) (*Business, error)
		Delete(ctx context.Context, businessID int64) (*Business, error)
	}
	Services interface {
		Create(context.Context, *Service) error
		GetByID(ctx context.Context, serviceID, businessID int64) (*Service, error)
		Exists(ctx context.Context, serviceID int64) (bool, error)
		ListByBusiness(ctx context.Context, businessID int64) ([]Service, error)
		Update(ctx context.Context, serviceID, businessID int64, updates map[string]any) (*Service, error)
		Delete(ctx context.Context, serviceID, businessID int64) (*Service, error)
	}
	Bookings interface {
		Create(context.Context, *Booking) error
		GetByID(ctx context.Context, bookingID, userID int64) (*Booking, error)
		ListByUser(ctx context.Context, userID int64) ([]Booking, error)
		Update(ctx context.Context, bookingID, userID int64, updates map[string]any) (*Booking, error)
		Delete(ctx context.Context, bookingID, userID int64) (*Booking, error)
	}
	Reviews interface {
		Create(context.Context, *Review) error
		GetByID(ctx context.Context, reviewID, userID int64) (*Review, error)
		ListByUser(ctx context.Context, userID int64) ([]Review, error)
		ListByBusiness(ctx context.Context, businessID int64) ([]Review, error)
		Update(ctx context.Context, reviewID, userID int64, updates map[string]any) (*Review, error)
		Delete(ctx context.Context, reviewID, userID int64) (*Review, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db},
		Tokens:     &TokensStore{db},
		Businesses: &BusinessesStore{db},
		Services:   &ServicesStore{db},
		Bookings:   &BookingsStore{db},
		Reviews:    &ReviewsStore{db},
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
