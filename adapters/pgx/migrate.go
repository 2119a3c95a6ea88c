package pgx

import (
	"context"
	"fmt"
)

// schema is idempotent. The check constraint mirrors core.User.Validate.
const schema = `
CREATE TABLE IF NOT EXISTS public.users (
	id            TEXT PRIMARY KEY,
	email         VARCHAR(255) NOT NULL,
	password_hash TEXT,
	provider      VARCHAR(50) NOT NULL DEFAULT 'email',
	provider_id   VARCHAR(255),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_credential_check CHECK (
		(provider = 'email' AND password_hash IS NOT NULL AND provider_id IS NULL) OR
		(provider IN ('google', 'kakao', 'apple') AND provider_id IS NOT NULL AND password_hash IS NULL)
	)
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON public.users (lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS users_provider_key ON public.users (provider, provider_id) WHERE provider_id IS NOT NULL;
`

// Migrate creates the users table and its indexes.
func (a *Adapter) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}
