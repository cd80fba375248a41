package client

import (
	"context"
	"fmt"
	"net/http"
)

// refreshResponse mirrors the refresh endpoint's body. The rotated refresh
// token travels back in an HTTP cookie that the jar picks up; the body's
// copy of it is ignored.
type refreshResponse struct {
	Tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"tokens"`
}

// refreshAccessToken exchanges the refresh cookie for a new access token
// and stores it. Concurrent callers share one in-flight exchange: when
// several requests fail with an expired token in the same window, exactly
// one refresh call goes out and all of them retry with the same new token.
// This is a correctness requirement, not an optimization — with
// server-side refresh-token rotation, redundant concurrent exchanges can
// invalidate each other's results.
//
// On failure the token store is cleared and the session-expired hook
// fires; the error propagates so the original caller's request fails
// rather than hangs.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	tok, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		var res refreshResponse
		req := &apiRequest{method: http.MethodPost, path: "/auth/refresh", out: &res}
		if err := c.send(ctx, req); err != nil {
			c.log.Warn(ctx, "token refresh failed", "err", err)
			if cerr := c.tokens.Clear(); cerr != nil {
				c.log.Error(ctx, "clearing token after failed refresh", "err", cerr)
			}
			c.sessionExpired()
			return "", err
		}
		if err := c.tokens.SetToken(res.Tokens.AccessToken); err != nil {
			return "", fmt.Errorf("store refreshed token: %w", err)
		}
		c.log.Debug(ctx, "access token refreshed")
		return res.Tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return tok.(string), nil
}
