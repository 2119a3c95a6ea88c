package core

// Endpoint describes one auth route independent of any web framework.
// Adapters supply the handler.
type Endpoint struct {
	Path      string
	Method    string
	Protected bool
	Metadata  EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
	Status      int // status of a successful response
}

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// SuccessBody wraps the payload of every successful response.
type SuccessBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
