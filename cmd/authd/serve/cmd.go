package serve

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aistudy/authkit"
	fiberadapter "github.com/aistudy/authkit/adapters/fiber"
	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/internal/logutil"
	"github.com/aistudy/authkit/pkg/crypto"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type options struct {
	bind     string
	basePath string
	secret   string
	tokenTTL time.Duration

	store       string
	databaseURL string
	sqlitePath  string
	mongoURI    string
	mongoDB     string

	cache         string
	existenceTTL  time.Duration
	redisAddr     string
	redisPassword string

	hasher       string
	bcryptCost   int
	argon2Memory uint

	google        bool
	kakao         bool
	appleClientID string

	logLevel string
	pretty   bool
}

func Cmd() *cli.Command {
	o := options{
		bind:         "localhost:8080",
		basePath:     "/api/auth",
		tokenTTL:     core.DefaultTokenTTL,
		store:        "memory",
		sqlitePath:   "authkit.db",
		mongoDB:      "authkit",
		cache:        "memory",
		existenceTTL: core.DefaultExistenceTTL,
		redisAddr:    "localhost:6379",
		hasher:       "bcrypt",
		bcryptCost:   core.DefaultBcryptCost,
		argon2Memory: 64 * 1024,
		logLevel:     "info",
	}
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the authentication HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Address to listen on", Value: o.bind, Destination: &o.bind, EnvVars: []string{"AUTHD_BIND"}},
			&cli.StringFlag{Name: "base-path", Usage: "Prefix for the auth routes", Value: o.basePath, Destination: &o.basePath, EnvVars: []string{"AUTHD_BASE_PATH"}},
			&cli.StringFlag{Name: "secret", Usage: "Token signing secret (at least 32 characters)", Destination: &o.secret, EnvVars: []string{"AUTHD_JWT_SECRET"}, Required: true},
			&cli.DurationFlag{Name: "token-ttl", Usage: "Session token lifetime", Value: o.tokenTTL, Destination: &o.tokenTTL, EnvVars: []string{"AUTHD_TOKEN_TTL"}},

			&cli.StringFlag{Name: "store", Usage: "User store: memory, sqlite, postgres or mongo", Value: o.store, Destination: &o.store, EnvVars: []string{"AUTHD_STORE"}},
			&cli.StringFlag{Name: "database-url", Usage: "PostgreSQL connection string", Destination: &o.databaseURL, EnvVars: []string{"AUTHD_DATABASE_URL"}},
			&cli.StringFlag{Name: "sqlite-path", Usage: "SQLite database file", Value: o.sqlitePath, Destination: &o.sqlitePath, EnvVars: []string{"AUTHD_SQLITE_PATH"}},
			&cli.StringFlag{Name: "mongo-uri", Usage: "MongoDB connection string", Destination: &o.mongoURI, EnvVars: []string{"AUTHD_MONGO_URI"}},
			&cli.StringFlag{Name: "mongo-db", Usage: "MongoDB database name", Value: o.mongoDB, Destination: &o.mongoDB, EnvVars: []string{"AUTHD_MONGO_DB"}},

			&cli.StringFlag{Name: "cache", Usage: "Existence cache: memory, bigcache, redis or none", Value: o.cache, Destination: &o.cache, EnvVars: []string{"AUTHD_CACHE"}},
			&cli.DurationFlag{Name: "existence-ttl", Usage: "How long account existence is remembered", Value: o.existenceTTL, Destination: &o.existenceTTL, EnvVars: []string{"AUTHD_EXISTENCE_TTL"}},
			&cli.StringFlag{Name: "redis-addr", Value: o.redisAddr, Destination: &o.redisAddr, EnvVars: []string{"AUTHD_REDIS_ADDR"}},
			&cli.StringFlag{Name: "redis-password", Destination: &o.redisPassword, EnvVars: []string{"AUTHD_REDIS_PASSWORD"}},

			&cli.StringFlag{Name: "hasher", Usage: "Password hasher: bcrypt or argon2", Value: o.hasher, Destination: &o.hasher, EnvVars: []string{"AUTHD_HASHER"}},
			&cli.IntFlag{Name: "bcrypt-cost", Value: o.bcryptCost, Destination: &o.bcryptCost, EnvVars: []string{"AUTHD_BCRYPT_COST"}},
			&cli.UintFlag{Name: "argon2-memory", Usage: "argon2id memory cost in KiB", Value: o.argon2Memory, Destination: &o.argon2Memory, EnvVars: []string{"AUTHD_ARGON2_MEMORY"}},

			&cli.BoolFlag{Name: "google", Usage: "Accept Google access tokens", Destination: &o.google, EnvVars: []string{"AUTHD_GOOGLE"}},
			&cli.BoolFlag{Name: "kakao", Usage: "Accept Kakao access tokens", Destination: &o.kakao, EnvVars: []string{"AUTHD_KAKAO"}},
			&cli.StringFlag{Name: "apple-client-id", Usage: "Accept Apple identity tokens issued for this client", Destination: &o.appleClientID, EnvVars: []string{"AUTHD_APPLE_CLIENT_ID"}},

			&cli.StringFlag{Name: "log-level", Value: o.logLevel, Destination: &o.logLevel, EnvVars: []string{"AUTHD_LOG_LEVEL"}},
			&cli.BoolFlag{Name: "pretty", Usage: "Human readable logs", Destination: &o.pretty, EnvVars: []string{"AUTHD_PRETTY"}},
		},
		Action: func(ctx *cli.Context) error {
			return run(ctx.Context, &o)
		},
	}
}

func run(ctx context.Context, o *options) error {
	lg, err := logutil.New(o.logLevel, o.pretty)
	if err != nil {
		return err
	}
	log.Logger = lg

	store, closeStore, err := openStore(ctx, o)
	if err != nil {
		return err
	}
	defer closeStore()

	existence, closeCache, err := openCache(ctx, o)
	if err != nil {
		return err
	}
	defer closeCache()

	passwords, err := passwordHandler(o)
	if err != nil {
		return err
	}

	verifiers, err := socialVerifiers(ctx, o)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{AppName: "authd"})
	app.Use(logger.New(logger.Config{
		Format:     logFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(func(c fiber.Ctx) error {
		c.SetContext(logutil.WithLogger(c.Context(), lg))
		return c.Next()
	})

	kit, err := authkit.New(authkit.Config{
		Secret:         o.secret,
		TokenTTL:       o.tokenTTL,
		Storage:        store,
		Cache:          existence,
		DisableCache:   existence == nil,
		ExistenceTTL:   o.existenceTTL,
		PasswordHasher: passwords,
		Social:         verifiers,
		HTTP:           fiberadapter.New(app),
		BasePath:       o.basePath,
	})
	if err != nil {
		return err
	}

	app.Get("/health", health(kit))
	app.Get("/whoami", fiberadapter.RequireAuth(kit), whoami)

	lg.Info().
		Str("bind", o.bind).
		Str("store", o.store).
		Str("cache", o.cache).
		Str("hasher", o.hasher).
		Str("secret_fingerprint", crypto.Fingerprint(o.secret)).
		Int("social_providers", len(verifiers)).
		Msg("starting authd")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(o.bind, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func logFormat() string {
	format := []string{
		"${time}",
		"${status}|${latency}",
		"${ip}:${port}",
		"${bytesReceived}|${bytesSent}",
		"${method}|${path}",
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func health(kit *authkit.Authkit) fiber.Handler {
	return func(c fiber.Ctx) error {
		body := fiber.Map{"status": "ok"}
		if s, ok := kit.Cache.(core.CacheWithStats); ok {
			body["cache"] = s.Stats()
		}
		return c.JSON(body)
	}
}

func whoami(c fiber.Ctx) error {
	claims, ok := fiberadapter.ClaimsFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"userId":    claims.Subject,
			"email":     claims.Email,
			"provider":  claims.Provider,
			"expiresAt": claims.ExpiresAt,
		},
	})
}
