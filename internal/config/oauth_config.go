package config

// OAuthConfig describes the optional social-login provider the portal
// completes the code exchange against. Empty issuer disables the flow; the
// /auth/callback route then only accepts backend-issued tokens directly.
type OAuthConfig interface {
	GetOAuthIssuerURL() string
	GetOAuthClientID() string
	GetOAuthClientSecret() string
	GetOAuthScopes() []string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetOAuthIssuerURL() string {
	return GetEnv("OAUTH_ISSUER_URL", "")
}

func (OAuth) GetOAuthClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (OAuth) GetOAuthClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

func (OAuth) GetOAuthScopes() []string {
	return []string{"openid", "profile", "email"}
}
