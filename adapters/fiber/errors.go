package fiber

import (
	"errors"
	"net/http"

	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/internal/logutil"
	"github.com/gofiber/fiber/v3"
)

// public lists the errors whose text may reach a client, with a stable code.
// Order matters: the first match wins.
var public = []struct {
	err  error
	code string
}{
	{core.ErrEmailExists, "email_exists"},
	{core.ErrUserExists, "account_exists"},
	{core.ErrInvalidCredentials, "invalid_credentials"},
	{core.ErrMissingAuthHeader, "missing_token"},
	{core.ErrInvalidAuthHeader, "invalid_auth_header"},
	{core.ErrTokenExpired, "token_expired"},
	{core.ErrTokenInvalid, "invalid_token"},
	{core.ErrUserNotFound, "user_not_found"},
	{core.ErrUnsupportedProvider, "unsupported_provider"},
	{core.ErrMissingProof, "missing_proof"},
	{core.ErrEmailNotVerified, "email_not_verified"},
	{core.ErrProviderRejected, "provider_rejected"},
	{core.ErrProviderUnavailable, "provider_unavailable"},
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindConflict:
		return http.StatusConflict
	case core.KindAuthentication:
		return http.StatusUnauthorized
	case core.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// describe returns the client-facing message and detail for err. Internal
// errors are never described.
func describe(err error) (string, core.ErrorDetail) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr.Error(), core.ErrorDetail{Code: "validation", Field: verr.Field}
	}
	for _, p := range public {
		if errors.Is(err, p.err) {
			return p.err.Error(), core.ErrorDetail{Code: p.code}
		}
	}
	return "internal server error", core.ErrorDetail{Code: "internal"}
}

func writeError(c fiber.Ctx, err error) error {
	kind := core.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		log := logutil.GetOrDefault(c.Context())
		log.Error().Err(err).
			Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}

	message, detail := describe(err)
	return c.Status(status).JSON(core.ErrorBody{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func writeBadBody(c fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(core.ErrorBody{
		Success: false,
		Message: "invalid request body",
		Error:   core.ErrorDetail{Code: "invalid_body"},
	})
}

func writeData(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(core.SuccessBody{Success: true, Data: data})
}
