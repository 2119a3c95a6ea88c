// Package mongo stores credential records in a MongoDB collection using the
// official mongo-go driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultDBName is the default for Config.DBName.
	DefaultDBName = "authkit"

	// DefaultUsersCollectionName is the default for Config.UsersCollectionName.
	DefaultUsersCollectionName = "users"

	providerIndexName = "provider_pid_unique"
)

type Config struct {
	DBName              string
	UsersCollectionName string
}

type Store struct {
	cu  *mongo.Collection
	now func() time.Time
}

var _ core.UserStorage = (*Store)(nil)

// user is the stored document. Field names are kept short.
type user struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	LoweredEmail string    `bson:"lemail"`
	PasswordHash *string   `bson:"phash,omitempty"`
	Provider     string    `bson:"provider"`
	ProviderID   *string   `bson:"pid,omitempty"`
	Created      time.Time `bson:"c"`
	Updated      time.Time `bson:"u"`
}

// New creates a Store. This function panics if client is nil.
func New(client *mongo.Client, cfg Config) *Store {
	if client == nil {
		panic("mongo client must be provided")
	}
	if cfg.DBName == "" {
		cfg.DBName = DefaultDBName
	}
	if cfg.UsersCollectionName == "" {
		cfg.UsersCollectionName = DefaultUsersCollectionName
	}
	return &Store{
		cu:  client.Database(cfg.DBName).Collection(cfg.UsersCollectionName),
		now: time.Now,
	}
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.cu.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lemail", Value: 1}},
			Options: options.Index().SetName("lemail_unique").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "provider", Value: 1}, {Key: "pid", Value: 1}},
			Options: options.Index().SetName(providerIndexName).SetUnique(true).
				SetPartialFilterExpression(bson.M{"pid": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	doc := user{
		ID:           uuid.NewString(),
		Email:        u.Email,
		LoweredEmail: strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Provider:     string(u.Provider),
		ProviderID:   u.ProviderID,
		Created:      now,
		Updated:      now,
	}

	if _, err := s.cu.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), providerIndexName) {
				return core.ErrUserExists
			}
			return core.ErrEmailExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	u.ID = doc.ID
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.findOne(ctx, bson.M{"lemail": strings.ToLower(email)})
}

func (s *Store) GetUserByProvider(ctx context.Context, provider core.Provider, providerID string) (*core.User, error) {
	return s.findOne(ctx, bson.M{"provider": string(provider), "pid": providerID})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.cu.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*core.User, error) {
	var doc user
	err := s.cu.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &core.User{
		ID:           doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Provider:     core.Provider(doc.Provider),
		ProviderID:   doc.ProviderID,
		CreatedAt:    doc.Created,
		UpdatedAt:    doc.Updated,
	}, nil
}
