package repository

import (
	"context"

	"github.com/fstr-project/pereval-api/internal/model"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// UserRepository persists submitter identities. Users are created on
// first submission and never updated or deleted afterwards.
type UserRepository struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{
		pool: s.DB.Pool,
		log:  s.Logger,
	}
}

// Create inserts a user and fills in the assigned id. Uniqueness of
// the email is enforced only by the users_email_key constraint; a
// duplicate surfaces as a pgconn.PgError with a unique-violation
// SQLSTATE.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	const q = `
		INSERT INTO users (email, phone, fam, name, otc)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.pool.QueryRow(ctx, q,
		user.Email,
		user.Phone,
		user.Fam,
		user.Name,
		user.Otc,
	).Scan(&user.ID)
}

// GetByEmail returns the user with the given email, or pgx.ErrNoRows
// when no such user exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT id, email, phone, fam, name, otc
		FROM users
		WHERE email = $1`

	var user model.User
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.Fam,
		&user.Name,
		&user.Otc,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
