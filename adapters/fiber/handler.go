package fiber

import (
	"net/http"

	"github.com/aistudy/authkit/core"
	"github.com/gofiber/fiber/v3"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialRequest struct {
	Provider    string `json:"provider"`
	AccessToken string `json:"accessToken"`
	IDToken     string `json:"idToken"`
}

type profileResponse struct {
	User *core.PublicUser `json:"user"`
}

func (a *Adapter) register(handler core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input credentialsRequest
		if err := c.Bind().Body(&input); err != nil {
			return writeBadBody(c)
		}

		result, err := handler.Register(c.Context(), input.Email, input.Password)
		if err != nil {
			return writeError(c, err)
		}
		return writeData(c, http.StatusCreated, result)
	}
}

func (a *Adapter) login(handler core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input credentialsRequest
		if err := c.Bind().Body(&input); err != nil {
			return writeBadBody(c)
		}

		result, err := handler.Login(c.Context(), input.Email, input.Password)
		if err != nil {
			return writeError(c, err)
		}
		return writeData(c, http.StatusOK, result)
	}
}

func (a *Adapter) social(handler core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input socialRequest
		if err := c.Bind().Body(&input); err != nil {
			return writeBadBody(c)
		}

		proof, err := core.ParseSocialProof(input.Provider, input.AccessToken, input.IDToken)
		if err != nil {
			return writeError(c, err)
		}

		result, err := handler.SocialAuthenticate(c.Context(), proof)
		if err != nil {
			return writeError(c, err)
		}
		return writeData(c, http.StatusOK, result)
	}
}

func (a *Adapter) profile(handler core.AuthHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return writeError(c, core.ErrMissingAuthHeader)
		}

		user, err := handler.Profile(c.Context(), claims)
		if err != nil {
			return writeError(c, err)
		}
		return writeData(c, http.StatusOK, profileResponse{User: user})
	}
}
