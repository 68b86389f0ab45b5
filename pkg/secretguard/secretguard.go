// Package secretguard guards the two lifecycle endpoints with a single
// shared bearer token, compared in constant time so a timing side-channel
// cannot be used to recover it byte by byte.
package secretguard

import (
	"crypto/subtle"

	"github.com/pbusenius/nllb-api/pkg/apierr"
)

// Guard holds the configured bearer token.
type Guard struct {
	token string
}

// New returns a Guard comparing against token.
func New(token string) *Guard {
	return &Guard{token: token}
}

// Check compares the Authorization header value against the configured
// token in constant time. Returns an *apierr.Error of kind Unauthorized on
// mismatch, nil otherwise.
func (g *Guard) Check(authorizationHeader string) error {
	if subtle.ConstantTimeCompare([]byte(authorizationHeader), []byte(g.token)) != 1 {
		return apierr.New(apierr.Unauthorized, "bearer token mismatch")
	}
	return nil
}
