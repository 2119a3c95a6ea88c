package services

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/aistudy/authkit/core"
)

// BaseEndpoints returns framework-agnostic descriptions of the auth
// routes. Adapters supply the handlers.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/register",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: "registerWithEmailAndPassword",
				Description: "Register a user using email and password",
				Status:      http.StatusCreated,
			},
		},
		{
			Path:   "/login",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: "loginWithEmailAndPassword",
				Description: "Log in a user using email and password",
				Status:      http.StatusOK,
			},
		},
		{
			Path:   "/social",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: "socialAuthenticate",
				Description: "Sign in or sign up with a google, kakao or apple proof",
				Status:      http.StatusOK,
			},
		},
		{
			Path:      "/profile",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: "getProfile",
				Description: "Get the authenticated user's public profile",
				Status:      http.StatusOK,
			},
		},
	}
}

// EndpointRegistry holds endpoints keyed by METHOD:PATH and refuses
// duplicates.
type EndpointRegistry struct {
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a registry with the base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}
	for _, ep := range BaseEndpoints() {
		ep := ep
		_ = reg.register(&ep)
	}
	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

func (r *EndpointRegistry) register(ep *core.Endpoint) error {
	key := endpointKey(ep)
	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}
	r.endpoints[key] = ep
	return nil
}

// RegisterPlugin adds extra endpoints. Nothing is registered if any of them
// conflicts with an existing endpoint or with another in the batch.
func (r *EndpointRegistry) RegisterPlugin(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := endpointKey(&endpoints[i])
		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("plugin endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("plugin contains duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		r.endpoints[endpointKey(&endpoints[i])] = &endpoints[i]
	}
	return nil
}

// Endpoints returns every registered endpoint ordered by path, then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}

// Lookup finds the endpoint for method and path.
func (r *EndpointRegistry) Lookup(method, path string) (*core.Endpoint, bool) {
	ep, ok := r.endpoints[method+":"+path]
	return ep, ok
}
