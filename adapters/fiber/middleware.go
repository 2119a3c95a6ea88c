package fiber

import (
	"strings"

	"github.com/aistudy/authkit/core"
	"github.com/gofiber/fiber/v3"
)

const claimsKey = "authkit.claims"

// RequireAuth validates the bearer token and stores the verified claims for
// downstream handlers. A token whose account is gone is answered like any
// other bad token.
func RequireAuth(handler core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			return writeError(c, err)
		}

		claims, err := handler.Authorize(c.Context(), token)
		if err != nil {
			if core.KindOf(err) == core.KindNotFound {
				err = core.ErrTokenInvalid
			}
			return writeError(c, err)
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(c fiber.Ctx) (*core.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*core.Claims)
	return claims, ok
}

// extractToken reads "Authorization: Bearer <token>". The scheme is case
// insensitive.
func extractToken(c fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", core.ErrMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", core.ErrInvalidAuthHeader
	}
	return token, nil
}
