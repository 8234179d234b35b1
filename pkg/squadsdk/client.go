package squadsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// CallbackSecretHeader authenticates the web tier to the sign-in endpoint.
const CallbackSecretHeader = "X-Callback-Secret"

// Client calls the unauthenticated endpoints and, when CallbackSecret is
// set, the sign-in gate.
type Client struct {
	BaseURL        string
	CallbackSecret string
	HTTPClient     *http.Client
}

func NewClient(baseURL, callbackSecret string) *Client {
	return &Client{
		BaseURL:        strings.TrimSuffix(baseURL, "/"),
		CallbackSecret: callbackSecret,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignIn asks the gate to admit a verified email. A denial is returned as
// ErrAccessRestricted.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/signin", req, map[string]string{
		CallbackSecretHeader: c.CallbackSecret,
	})
	if err != nil {
		return nil, err
	}

	var out SignInResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateInvitation pre-checks an invitation link without consuming it.
func (c *Client) ValidateInvitation(ctx context.Context, token string) (*ValidateInvitationResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/invitations/validate", ValidateInvitationRequest{Token: token}, nil)
	if err != nil {
		return nil, err
	}

	var out ValidateInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return nil, err
	}

	var out JWKSResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// NewSession wraps an access token returned by SignIn.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}
