package token

import (
	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/opencampus/vitrine/users"
)

// Claims is the decoded payload of a backend-issued access token. It is
// derived from the raw token every time it is needed, never cached, so it can
// not go stale against the store.
type Claims struct {
	Subject   string     // id claim
	ExpiresAt int64      // exp, epoch seconds (0 when absent)
	IssuedAt  int64      // iat, epoch seconds (0 when absent)
	Role      users.Role // role claim, normalised to the enum

	IsNewUser              bool
	HasSecurityQuestions   bool
	NeedsSecurityQuestions bool
}

// Decode parses the payload segment of a compact JWS token without verifying
// the signature; transport security is the backend's concern, the portal only
// reads its own tokens back. Malformed input of any kind returns nil — a
// corrupted or absent token is an expected state, not an error.
func Decode(raw string) *Claims {
	if raw == "" {
		return nil
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil
	}

	claims := &Claims{}

	if id, ok := mapClaims["id"].(string); ok {
		claims.Subject = id
	} else if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = int64(exp)
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = int64(iat)
	}

	claims.Role = roleClaim(mapClaims["role"])
	claims.IsNewUser, _ = mapClaims["isNewUser"].(bool)
	claims.HasSecurityQuestions, _ = mapClaims["hasSecurityQuestions"].(bool)
	claims.NeedsSecurityQuestions, _ = mapClaims["needsSecurityQuestions"].(bool)

	return claims
}

// roleClaim accepts the two role encodings the backend emits, a bare string
// or an object with a name field.
func roleClaim(v any) users.Role {
	switch role := v.(type) {
	case string:
		return users.ParseRole(role)
	case map[string]any:
		if name, ok := role["name"].(string); ok {
			return users.ParseRole(name)
		}
	}
	return users.RoleUnknown
}
