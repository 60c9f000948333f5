package sadad

import (
	"context"
	"errors"
	"net/http"
)

// AcquireRefreshToken exchanges the client credentials for a refresh token.
// A response without a refresh token means wrong credentials, wrong mode or an outage;
// the gateway does not tell these apart, so neither does the returned error.
func (c *Client) AcquireRefreshToken(ctx context.Context) (string, error) {
	headers := []string{
		"Content-Type: application/json",
		"Authorization: Basic " + c.basicAuth(),
	}

	p, _, err := c.doRequest(ctx, http.MethodPost, c.endpoints.api(pathRefreshToken), headers, struct{}{})
	if err != nil {
		return "", err
	}
	if gwErr := p.gatewayError(); gwErr != nil {
		return "", &AuthError{Stage: "refresh", Cause: gwErr}
	}

	token := p.field("refreshToken")
	if token == "" {
		return "", &AuthError{Stage: "refresh"}
	}
	return token, nil
}

// MintAccessToken exchanges a refresh token for a short-lived access token.
func (c *Client) MintAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", &AuthError{Stage: "access", Cause: errors.New("refresh token is empty")}
	}

	headers := []string{
		"Content-Type: application/json",
		"Authorization: Bearer " + refreshToken,
	}

	p, _, err := c.doRequest(ctx, http.MethodPost, c.endpoints.api(pathAccessToken), headers, nil)
	if err != nil {
		return "", err
	}
	if gwErr := p.gatewayError(); gwErr != nil {
		return "", &AuthError{Stage: "access", Cause: gwErr}
	}

	token := p.field("accessToken")
	if token == "" {
		return "", &AuthError{Stage: "access"}
	}
	return token, nil
}

// bearerHeaders mints a fresh access token for one protected call. Access tokens are
// never reused across calls.
func (c *Client) bearerHeaders(ctx context.Context, refreshToken string) ([]string, error) {
	accessToken, err := c.MintAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return []string{
		"Content-Type: application/json",
		"Authorization: Bearer " + accessToken,
	}, nil
}
