package token

import "time"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultExpiryBuffer is the window before hard expiry in which a token is
// already treated as expired, so requests started now do not race the real
// expiry boundary mid-flight.
const DefaultExpiryBuffer = 5 * time.Minute

// Expired reports whether the claims are expired or inside the default
// refresh buffer. Nil claims and claims without an exp are always expired.
func Expired(c *Claims) bool {
	return ExpiredWithin(c, DefaultExpiryBuffer)
}

// ExpiredWithin reports whether the claims expire within the given buffer.
func ExpiredWithin(c *Claims, buffer time.Duration) bool {
	if c == nil || c.ExpiresAt == 0 {
		return true
	}
	return time.Unix(c.ExpiresAt, 0).Sub(NowTimeFunc()) < buffer
}
