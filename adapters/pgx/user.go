package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, password_hash, provider, provider_id, created_at, updated_at`

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO public.users (id, email, password_hash, provider, provider_id) VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	id := uuid.NewString()
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query, id, user.Email, user.PasswordHash, string(user.Provider), user.ProviderID).Scan(&createdAt, &updatedAt)
	if err != nil {
		return mapWriteError(err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE id = $1`
	return scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE lower(email) = lower($1)`
	return scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) GetUserByProvider(ctx context.Context, provider core.Provider, providerID string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE provider = $1 AND provider_id = $2`
	return scanUser(a.pool.QueryRow(ctx, q, string(provider), providerID))
}

func (a *Adapter) DeleteUser(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	var provider string
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	user.Provider = core.Provider(provider)
	return user, nil
}

// mapWriteError turns unique violations into the matching conflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "users_provider_key" {
			return core.ErrUserExists
		}
		return core.ErrEmailExists
	}
	return err
}
