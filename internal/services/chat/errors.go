package chat

import "errors"

var (
	// ErrTransport covers DNS, connection, TLS and timeout failures as well
	// as a response body that cannot be read to the end.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedBody means the response body is not valid JSON.
	ErrMalformedBody = errors.New("malformed response body")
	// ErrShapeMismatch means choices[0].message.content is absent or not a string.
	ErrShapeMismatch = errors.New("unexpected response shape")
)
