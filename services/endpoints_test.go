package services

import (
	"net/http"
	"testing"

	"github.com/aistudy/authkit/core"
)

// Requirement: BaseEndpoints describes register, login, social and profile with their success statuses.
func TestBaseEndpoints(t *testing.T) {
	tests := []struct {
		name          string
		wantPath      string
		wantMethod    string
		wantOpID      string
		wantStatus    int
		wantProtected bool
	}{
		{name: "register", wantPath: "/register", wantMethod: http.MethodPost, wantOpID: "registerWithEmailAndPassword", wantStatus: http.StatusCreated},
		{name: "login", wantPath: "/login", wantMethod: http.MethodPost, wantOpID: "loginWithEmailAndPassword", wantStatus: http.StatusOK},
		{name: "social", wantPath: "/social", wantMethod: http.MethodPost, wantOpID: "socialAuthenticate", wantStatus: http.StatusOK},
		{name: "profile", wantPath: "/profile", wantMethod: http.MethodGet, wantOpID: "getProfile", wantStatus: http.StatusOK, wantProtected: true},
	}

	// Arrange
	endpoints := BaseEndpoints()
	if len(endpoints) != len(tests) {
		t.Fatalf("BaseEndpoints should return %d endpoints, got %d", len(tests), len(endpoints))
	}
	byPath := make(map[string]core.Endpoint)
	for _, ep := range endpoints {
		byPath[ep.Path] = ep
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			ep, ok := byPath[test.wantPath]

			// Assert
			if !ok {
				t.Fatalf("endpoint %s missing", test.wantPath)
			}
			if ep.Method != test.wantMethod {
				t.Errorf("Method = %s, want %s", ep.Method, test.wantMethod)
			}
			if ep.Metadata.OperationID != test.wantOpID {
				t.Errorf("OperationID = %s, want %s", ep.Metadata.OperationID, test.wantOpID)
			}
			if ep.Metadata.Description == "" {
				t.Error("Description should not be empty")
			}
			if ep.Metadata.Status != test.wantStatus {
				t.Errorf("Status = %d, want %d", ep.Metadata.Status, test.wantStatus)
			}
			if ep.Protected != test.wantProtected {
				t.Errorf("Protected = %v, want %v", ep.Protected, test.wantProtected)
			}
		})
	}
}

func TestEndpointRegistry_RegisterPlugin(t *testing.T) {
	tests := []struct {
		name      string
		plugin    []core.Endpoint
		wantErr   bool
		wantTotal int
	}{
		{
			name:      "adds non-conflicting endpoints",
			plugin:    []core.Endpoint{{Path: "/account", Method: http.MethodDelete}, {Path: "/profile", Method: http.MethodPatch}},
			wantTotal: 6,
		},
		{
			name:      "rejects conflict with base endpoint",
			plugin:    []core.Endpoint{{Path: "/account", Method: http.MethodDelete}, {Path: "/login", Method: http.MethodPost}},
			wantErr:   true,
			wantTotal: 4,
		},
		{
			name:      "rejects duplicates within the batch",
			plugin:    []core.Endpoint{{Path: "/x", Method: http.MethodGet}, {Path: "/x", Method: http.MethodGet}},
			wantErr:   true,
			wantTotal: 4,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			reg := NewEndpointRegistry()

			// Act
			err := reg.RegisterPlugin(test.plugin)

			// Assert
			if (err != nil) != test.wantErr {
				t.Fatalf("RegisterPlugin() error = %v, wantErr %v", err, test.wantErr)
			}
			if got := len(reg.Endpoints()); got != test.wantTotal {
				t.Errorf("len(Endpoints()) = %d, want %d", got, test.wantTotal)
			}
		})
	}
}

func TestEndpointRegistry_EndpointsOrderedAndLookup(t *testing.T) {
	reg := NewEndpointRegistry()

	eps := reg.Endpoints()
	for i := 1; i < len(eps); i++ {
		if eps[i-1].Path > eps[i].Path {
			t.Fatalf("Endpoints() not ordered: %s before %s", eps[i-1].Path, eps[i].Path)
		}
	}

	if _, ok := reg.Lookup(http.MethodGet, "/profile"); !ok {
		t.Error("Lookup(GET /profile) should succeed")
	}
	if _, ok := reg.Lookup(http.MethodGet, "/login"); ok {
		t.Error("Lookup(GET /login) should fail")
	}
}
