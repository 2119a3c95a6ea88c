// Package core holds the domain model, ports and error taxonomy shared by
// the authenticator, its adapters and its backends. It has no dependencies
// on storage, transport or crypto implementations.
package core

import "time"

const (
	DefaultIssuer   = "ai-study-backend"
	DefaultAudience = "ai-study-frontend"

	DefaultTokenTTL     = 7 * 24 * time.Hour
	DefaultExistenceTTL = 5 * time.Minute
	DefaultLoginFloor   = 100 * time.Millisecond
	DefaultBcryptCost   = 12

	MinSecretLength = 32
)

// ExistenceKey is the cache key under which an account's existence is kept.
func ExistenceKey(userID string) string {
	return "user:exists:" + userID
}
