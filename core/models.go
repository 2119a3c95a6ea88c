package core

import "time"

// Provider names how an account proves who it is.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
	ProviderApple  Provider = "apple"
)

// Social reports whether p is an external identity provider.
func (p Provider) Social() bool {
	return p == ProviderGoogle || p == ProviderKakao || p == ProviderApple
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	return p == ProviderEmail || p.Social()
}

// User is the credential record owned by the user store.
//
// Local accounts carry a password hash, social accounts carry the
// provider's subject id. Never both.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // Never expose in JSON
	Provider     Provider  `json:"provider"`
	ProviderID   *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the hash/provider-id invariant. Stores call it before
// inserting a record.
func (u *User) Validate() error {
	if u == nil || u.Email == "" || !u.Provider.Valid() {
		return ErrInvalidUser
	}
	hasHash := u.PasswordHash != nil && *u.PasswordHash != ""
	hasExternal := u.ProviderID != nil && *u.ProviderID != ""

	local := hasHash && !hasExternal && u.Provider == ProviderEmail
	social := hasExternal && !hasHash && u.Provider.Social()
	if !local && !social {
		return ErrInvalidUser
	}
	return nil
}

// Public strips everything but the fields a client may see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Email:    u.Email,
		Provider: u.Provider,
	}
}

// PublicUser is the model returned to clients
type PublicUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Provider Provider `json:"provider"`
}

// AuthResult is returned by every successful authentication.
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// Claims is the verified content of a session token.
type Claims struct {
	TokenID   string    `json:"jti"`
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Provider  Provider  `json:"provider"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// Identity is what a social provider asserts about its user. Facts only,
// no account decisions.
type Identity struct {
	Provider      Provider
	Subject       string // provider-scoped unique user id
	Email         string // may be empty when the provider withholds it
	EmailVerified bool
}
