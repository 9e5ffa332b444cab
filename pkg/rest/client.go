package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tiffino/tiffino-go/pkg/enums"
	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// Config wires a platform client.
type Config struct {
	BaseURL string
	// Timeout zero leaves the transport default in place; the client never
	// retries on its own.
	Timeout time.Duration
	Tokens  TokenStore
	// OnUnauthorized runs after a 401 has cleared the stored tokens. The
	// role identifies which login surface the session belonged to.
	OnUnauthorized func(role enums.Role)
}

// Client talks to the platform backend. All state lives server-side; the
// client only attaches credentials and decodes responses.
type Client struct {
	http           *resty.Client
	tokens         TokenStore
	onUnauthorized func(role enums.Role)
	logg           *logger.Logger
}

// New builds a platform client.
func New(cfg Config, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	c := &Client{
		tokens:         cfg.Tokens,
		onUnauthorized: cfg.OnUnauthorized,
		logg:           logg,
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		httpClient = httpClient.SetTimeout(cfg.Timeout)
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		c.attachToken(req)
		return nil
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.handleUnauthorized(resp.Request.Context(), resp.Request.URL)
		}
		return nil
	})

	c.http = httpClient
	return c, nil
}

// attachToken selects the credential by URL prefix, falling back through
// super > admin > user when the preferred role has no stored token.
func (c *Client) attachToken(req *resty.Request) {
	preferred := roleForPath(req.URL)

	token, ok := c.tokens.Token(preferred)
	if !ok || !usableToken(token) {
		token = ""
		for _, role := range []enums.Role{enums.RoleSuper, enums.RoleAdmin, enums.RoleUser} {
			if fallback, found := c.tokens.Token(role); found && usableToken(fallback) {
				token = fallback
				break
			}
		}
	}

	if usableToken(token) {
		req.SetHeader("Authorization", "Bearer "+token)
	}
}

func (c *Client) handleUnauthorized(ctx context.Context, rawURL string) {
	if err := c.tokens.ClearTokens(); err != nil {
		c.logg.Error(ctx, "rest.clear_tokens_failed", err)
	}
	if c.onUnauthorized != nil {
		// By response time the request URL has been resolved against the
		// base URL, so route on the path component.
		path := rawURL
		if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
			path = u.Path
		}
		c.onUnauthorized(roleForPath(path))
	}
}

// decode unmarshals a successful response body, or converts an error
// response into a typed error.
func decode(resp *resty.Response, err error, out any) error {
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request failed")
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func errorFromResponse(resp *resty.Response) error {
	code := codeForStatus(resp.StatusCode())
	message := http.StatusText(resp.StatusCode())

	var envelope types.ErrorEnvelope
	if json.Unmarshal(resp.Body(), &envelope) == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	return pkgerrors.New(code, message)
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	default:
		return pkgerrors.CodeDependency
	}
}
