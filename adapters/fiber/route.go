package fiber

import (
	"fmt"

	"github.com/aistudy/authkit/core"
	"github.com/aistudy/authkit/services"
	"github.com/gofiber/fiber/v3"
)

// DefaultBasePath is where the auth routes are mounted when none is given.
const DefaultBasePath = "/api/auth"

type Adapter struct {
	app *fiber.App
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// RegisterRoutes mounts every endpoint of the registry under basePath.
func (a *Adapter) RegisterRoutes(handler core.AuthHandler, basePath string) error {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	api := a.app.Group(basePath)

	handlers := map[string]fiber.Handler{
		"registerWithEmailAndPassword": a.register(handler),
		"loginWithEmailAndPassword":    a.login(handler),
		"socialAuthenticate":           a.social(handler),
		"getProfile":                   a.profile(handler),
	}
	requireAuth := RequireAuth(handler)

	for _, ep := range services.NewEndpointRegistry().Endpoints() {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no fiber handler for %s %s", ep.Method, ep.Path)
		}
		if ep.Protected {
			api.Add([]string{ep.Method}, ep.Path, requireAuth, h)
		} else {
			api.Add([]string{ep.Method}, ep.Path, h)
		}
	}

	return nil
}
