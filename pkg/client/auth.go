package client

import (
	"context"
	"fmt"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
	CaptchaToken  string `json:"captchaToken,omitempty"`
}

// LoginResult is the login response: either a minted access token or a
// pending second-factor challenge. The refresh credential arrives as a
// cookie on this response and stays in the client's jar.
type LoginResult struct {
	User              *domain.User `json:"user"`
	AccessToken       string       `json:"accessToken,omitempty"`
	ExpiresIn         int          `json:"expiresIn,omitempty"`
	RequiresTwoFactor bool         `json:"requiresTwoFactor,omitempty"`
}

// Login authenticates with email and password. The caller (the session
// store) decides what to do with the returned token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var res LoginResult
	if err := c.post(ctx, "/auth/login", req, &res); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &res, nil
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone,omitempty"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

// RegisterResult is the registration response. There is no access token:
// registration never auto-logs-in — the user signs in separately, after
// verifying their email.
type RegisterResult struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.post(ctx, "/auth/register", req, &res); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &res, nil
}

// Logout invalidates the server-side session and refresh credential.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// GetProfile returns the authenticated user's full record.
func (c *Client) GetProfile(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/profile", &u); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &u, nil
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// UpdateProfile updates the user's profile and returns the new record.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error) {
	var u domain.User
	if err := c.put(ctx, "/users/profile", req, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &u, nil
}

// EnableTwoFactor starts 2FA enrollment and returns the otpauth secret to
// load into an authenticator app. Enrollment completes with VerifyTwoFactor.
func (c *Client) EnableTwoFactor(ctx context.Context) (*domain.TwoFactorSetup, error) {
	var setup domain.TwoFactorSetup
	if err := c.post(ctx, "/auth/2fa/enable", nil, &setup); err != nil {
		return nil, fmt.Errorf("client.EnableTwoFactor: %w", err)
	}
	return &setup, nil
}

// VerifyTwoFactor confirms 2FA enrollment with the first code.
func (c *Client) VerifyTwoFactor(ctx context.Context, code string) error {
	if err := c.post(ctx, "/auth/2fa/verify", map[string]string{"code": code}, nil); err != nil {
		return fmt.Errorf("client.VerifyTwoFactor: %w", err)
	}
	return nil
}

// DisableTwoFactor turns 2FA off. A current code is required.
func (c *Client) DisableTwoFactor(ctx context.Context, code string) error {
	if err := c.post(ctx, "/auth/2fa/disable", map[string]string{"code": code}, nil); err != nil {
		return fmt.Errorf("client.DisableTwoFactor: %w", err)
	}
	return nil
}
