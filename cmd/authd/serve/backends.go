package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/aistudy/authkit/adapters/memory"
	"github.com/aistudy/authkit/adapters/mongo"
	pgxadapter "github.com/aistudy/authkit/adapters/pgx"
	"github.com/aistudy/authkit/adapters/sqlite"
	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/pkg/cache"
	"github.com/aistudy/authkit/pkg/crypto"
	"github.com/aistudy/authkit/pkg/social"
	"golang.org/x/crypto/bcrypt"
)

type cleanup func()

func nop() {}

func openStore(ctx context.Context, o *options) (core.UserStorage, cleanup, error) {
	switch o.store {
	case "memory":
		return memory.New(), nop, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, o.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		pool, err := pgxadapter.Connect(ctx, o.databaseURL)
		if err != nil {
			return nil, nil, err
		}
		a := pgxadapter.New(pool)
		if err := a.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return a, pool.Close, nil
	case "mongo":
		client, err := mongo.Connect(ctx, o.mongoURI)
		if err != nil {
			return nil, nil, err
		}
		s := mongo.New(client, mongo.Config{DBName: o.mongoDB})
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return s, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", o.store)
	}
}

// openCache returns nil for "none".
func openCache(ctx context.Context, o *options) (core.ExistenceCache, cleanup, error) {
	switch o.cache {
	case "none":
		return nil, nop, nil
	case "memory":
		return cache.NewMemory(cache.Config{TTL: o.existenceTTL, MaxSize: 10000}), nop, nil
	case "bigcache":
		b, err := cache.NewBig(ctx, cache.Config{TTL: o.existenceTTL})
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	case "redis":
		r, err := cache.NewRedis(ctx, o.redisAddr, o.redisPassword, o.existenceTTL)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache %q", o.cache)
	}
}

func passwordHandler(o *options) (core.PasswordHandler, error) {
	switch o.hasher {
	case "bcrypt":
		if o.bcryptCost < bcrypt.MinCost || o.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", o.bcryptCost)
		}
		return crypto.NewBcrypt(o.bcryptCost), nil
	case "argon2":
		return crypto.NewArgon2(uint32(o.argon2Memory)), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", o.hasher)
	}
}

func socialVerifiers(ctx context.Context, o *options) ([]core.SocialVerifier, error) {
	var list []core.SocialVerifier
	if o.google {
		list = append(list, social.NewGoogle())
	}
	if o.kakao {
		list = append(list, social.NewKakao())
	}
	if o.appleClientID != "" {
		apple, err := social.NewApple(ctx, o.appleClientID)
		if err != nil {
			return nil, err
		}
		list = append(list, apple)
	}
	return list, nil
}
