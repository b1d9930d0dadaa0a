package http

import (
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Body       []byte
	// Canonical is the canonical JSON form of Body, or Body itself when it
	// is not JSON.
	Canonical string
	RequestID string
	Duration  time.Duration
}

// IsOK reports whether the server answered with HTTP 200, the only status
// gqltester treats as success.
func (r *Response) IsOK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}
