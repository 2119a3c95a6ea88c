// Package sqlite stores credential records in a SQLite database through
// database/sql and go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const schema = `
create table if not exists users (
	id            text primary key,
	email         text not null,
	password_hash text,
	provider      text not null default 'email',
	provider_id   text,
	created_at    datetime not null,
	updated_at    datetime not null,
	check (
		(provider = 'email' and password_hash is not null and provider_id is null) or
		(provider in ('google', 'kakao', 'apple') and provider_id is not null and password_hash is null)
	)
);
create unique index if not exists users_email_key on users (lower(email));
create unique index if not exists users_provider_key on users (provider, provider_id) where provider_id is not null;
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ core.UserStorage = (*Store)(nil)

// Open connects to the database at path (":memory:" for a private
// in-memory database) and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	connstr := fmt.Sprintf("file:%v?_busy_timeout=5000&_journal=wal&mode=rwc", path)
	if path == ":memory:" {
		connstr = ":memory:"
	}
	db, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", path, err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping %v, cause %w", path, err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("unable to create users table, cause %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	id := uuid.NewString()
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`insert into users (id, email, password_hash, provider, provider_id, created_at, updated_at) values (?, ?, ?, ?, ?, ?, ?)`,
		id, u.Email, u.PasswordHash, string(u.Provider), u.ProviderID, now, now)
	if err != nil {
		return mapWriteError(err)
	}

	u.ID = id
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

const userColumns = `id, email, password_hash, provider, provider_id, created_at, updated_at`

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.queryUser(ctx, `select `+userColumns+` from users where id = ?`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.queryUser(ctx, `select `+userColumns+` from users where lower(email) = lower(?)`, email)
}

func (s *Store) GetUserByProvider(ctx context.Context, provider core.Provider, providerID string) (*core.User, error) {
	return s.queryUser(ctx, `select `+userColumns+` from users where provider = ? and provider_id = ?`, string(provider), providerID)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete user %v, cause %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (s *Store) queryUser(ctx context.Context, query string, args ...any) (*core.User, error) {
	var (
		u            core.User
		provider     string
		hash, extern sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &hash, &provider, &extern, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read user, cause %w", err)
	}

	u.Provider = core.Provider(provider)
	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	if extern.Valid {
		u.ProviderID = &extern.String
	}
	return &u, nil
}

// mapWriteError turns unique violations into the matching conflict. SQLite
// names the violated columns or index in the message.
func mapWriteError(err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		if strings.Contains(sqlErr.Error(), "provider") {
			return core.ErrUserExists
		}
		return core.ErrEmailExists
	}
	return fmt.Errorf("unable to insert user, cause %w", err)
}
