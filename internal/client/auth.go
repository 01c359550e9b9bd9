package client

import (
	"context"
	"net/http"
)

// UserProfile is the authenticated user's profile as returned by the API.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// AuthSession is a login result: the token pair plus the profile.
type AuthSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// Login exchanges credentials for a session and persists the token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	var session AuthSession
	err := c.do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(session.AccessToken, session.RefreshToken); err != nil {
		return nil, err
	}
	return &session, nil
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AcceptTOS bool   `json:"accept_tos"`
}

// Register creates an account. It does not log the new user in.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, http.MethodPost, "/api/user/register", input, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout revokes the server-side session and clears the stored pair. The
// local pair is cleared even when the revoke call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/user/logout", nil, nil)
	if clearErr := c.store.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}
