package auth

import (
	"crypto/subtle"
	"net/http"
)

const HEADER = "x-api-key"

// Result is the outcome of an API key check. Status and Body are only meaningful
// when OK is false.
type Result struct {
	OK     bool
	Status int
	Body   map[string]string
}

// Check accepts a request only if the x-api-key header exactly matches the configured
// secret. An empty secret or a missing header always fails.
func Check(header http.Header, secret string) Result {
	key := header.Get(HEADER)

	if key == "" || secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
		return Result{
			OK:     false,
			Status: http.StatusUnauthorized,
			Body:   map[string]string{"error": "Unauthorized"},
		}
	}

	return Result{OK: true}
}
