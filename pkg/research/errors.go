package research

import "errors"

var (
	// ErrMalformedModelResponse means a JSON-mode answer did not decode into
	// the expected shape.
	ErrMalformedModelResponse = errors.New("malformed model response")

	// ErrGatewayUnavailable wraps every failed call to the language model or
	// the retriever, timeouts and cancellations included.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrInvalidRequest rejects a run before any gateway is called.
	ErrInvalidRequest = errors.New("invalid research request")
)
