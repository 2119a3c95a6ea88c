package core

// HTTPAdapter binds the auth endpoints to a web framework.
type HTTPAdapter interface {
	RegisterRoutes(handler AuthHandler, basePath string) error
}
