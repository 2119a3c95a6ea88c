package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer. The set is closed.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Account errors
var (
	ErrEmailExists        = errors.New("email already exists")           // 409 Conflict
	ErrUserExists         = errors.New("account already exists")         // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")                 // 404 Not Found
	ErrInvalidCredentials = errors.New("email or password incorrect")    // 401 Unauthorized
	ErrInvalidUser        = errors.New("credential record is malformed") // 500
)

// Token errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")                            // 401
	ErrInvalidAuthHeader = errors.New("invalid authorization format, expected 'Bearer <token>'") // 401
	ErrTokenInvalid      = errors.New("invalid token")                                           // 401
	ErrTokenExpired      = errors.New("token expired")                                           // 401
)

// Social provider errors
var (
	ErrUnsupportedProvider = errors.New("unsupported social provider")        // 400
	ErrMissingProof        = errors.New("missing social provider proof")      // 400
	ErrProviderRejected    = errors.New("social provider rejected the proof") // 401
	ErrProviderUnavailable = errors.New("social provider request failed")     // 401
	ErrEmailNotVerified    = errors.New("social provider email not verified") // 401
)

// ErrValidation is wrapped by every *ValidationError.
var ErrValidation = errors.New("invalid input") // 400

// Config errors (server-side configuration)
var (
	ErrStorageRequired  = errors.New("user storage is required") // 500
	ErrSecretRequired   = errors.New("secret is required")       // 500
	ErrSecretTooShort   = errors.New("secret too short")         // 500
	ErrVerifierRequired = errors.New("social verifier is required")
)

// ValidationError reports which field broke which rule.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Rule)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, rule string) error {
	return &ValidationError{Field: field, Rule: rule}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrUnsupportedProvider, KindValidation},
	{ErrMissingProof, KindValidation},
	{ErrEmailExists, KindConflict},
	{ErrUserExists, KindConflict},
	{ErrUserNotFound, KindNotFound},
	{ErrInvalidCredentials, KindAuthentication},
	{ErrMissingAuthHeader, KindAuthentication},
	{ErrInvalidAuthHeader, KindAuthentication},
	{ErrTokenInvalid, KindAuthentication},
	{ErrTokenExpired, KindAuthentication},
	{ErrProviderRejected, KindAuthentication},
	{ErrProviderUnavailable, KindAuthentication},
	{ErrEmailNotVerified, KindAuthentication},
}

// KindOf returns the kind of the first known sentinel found in err's chain.
// Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
