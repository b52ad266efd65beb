package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	apperrors "github.com/opencampus/vitrine/internal/errors"
	"github.com/opencampus/vitrine/users"
)

// TokenPair is the credential pair issued by login, signup and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignupRequest is the payload for user registration.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Login exchanges credentials for a token pair. Rejected credentials map to
// ErrInvalidCredentials regardless of whether the backend answers 401 or 404.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var pair TokenPair
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/users/login", nil, body, "", &pair)
	if apperrors.Is(err, apperrors.ErrUnauthorized) || apperrors.Is(err, apperrors.ErrNotFound) {
		return TokenPair{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.Login]")
	}
	return pair, nil
}

// Signup registers a new user and returns their initial token pair.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/users/signup", nil, req, "", &pair); err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.Signup]")
	}
	return pair, nil
}

// User fetches a profile by id.
func (c *Client) User(ctx context.Context, id, accessToken string) (*users.Profile, error) {
	var profile users.Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, accessToken, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.User]")
	}
	return &profile, nil
}

// Refresh exchanges a refresh token for a fresh pair. The backend may rotate
// the refresh token; when it does not, RefreshToken comes back empty.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/users/refresh", nil, body, "", &pair); err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.Refresh]")
	}
	return pair, nil
}

// Logout notifies the backend that the user's session ended.
func (c *Client) Logout(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/users/logout/"+url.PathEscape(id), nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// SearchUsers finds users matching the query string.
func (c *Client) SearchUsers(ctx context.Context, q, accessToken string) ([]users.Profile, error) {
	query := url.Values{"q": []string{q}}
	var found []users.Profile
	if err := c.do(ctx, http.MethodGet, "/users/search", query, nil, accessToken, &found); err != nil {
		return nil, errors.Wrap(err, "[Client.SearchUsers]")
	}
	return found, nil
}
