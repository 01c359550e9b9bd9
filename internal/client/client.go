// Package client is the Go consumer of the storefront API. It owns bearer
// token attachment, the single-retry refresh policy on 401 responses, and
// unwrapping of the response envelopes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      TokenStore
	// OnSessionExpired fires once when a refresh attempt fails and the
	// stored session has been cleared. Hosts use it to route to login.
	OnSessionExpired func()
}

// Client calls the storefront API. Safe for concurrent use; concurrent 401s
// share a single in-flight refresh.
type Client struct {
	baseURL          string
	http             *http.Client
	store            TokenStore
	refreshGroup     singleflight.Group
	onSessionExpired func()
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		http:             httpClient,
		store:            opts.Store,
		onSessionExpired: opts.OnSessionExpired,
	}, nil
}

// do issues an authenticated request and decodes the unwrapped data payload
// into out. On a 401 it performs exactly one refresh-and-retry; a second 401
// clears the session and fires the expiry hook.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	data, _, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed response body")
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) (json.RawMessage, *types.Pagination, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode request body")
		}
		payload = encoded
	}

	access, _ := c.store.Tokens()
	status, responseBody, err := c.send(ctx, method, path, payload, access)
	if err != nil {
		return nil, nil, err
	}

	if status == http.StatusUnauthorized && access != "" {
		newAccess, refreshErr := c.refresh(ctx)
		if refreshErr != nil {
			return nil, nil, refreshErr
		}
		status, responseBody, err = c.send(ctx, method, path, payload, newAccess)
		if err != nil {
			return nil, nil, err
		}
		// The retried request carried a token the server just minted, so a
		// second 401 means the session itself is gone.
		if status == http.StatusUnauthorized {
			c.expireSession()
			return nil, nil, errorFromResponse(status, responseBody)
		}
	}

	if status < 200 || status > 299 {
		return nil, nil, errorFromResponse(status, responseBody)
	}
	data, page := unwrapData(responseBody)
	return data, page, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, genericErrorMessage)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, genericErrorMessage)
	}
	return resp.StatusCode, body, nil
}

// refresh exchanges the stored pair for a new one. Concurrent callers share
// one in-flight exchange; on failure the session is cleared and the expiry
// hook fires exactly once.
func (c *Client) refresh(ctx context.Context) (string, error) {
	result, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		token, err := c.exchange(ctx)
		if err != nil {
			c.expireSession()
			return nil, err
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) exchange(ctx context.Context) (string, error) {
	access, refreshToken := c.store.Tokens()
	if refreshToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{
		"access_token":  access,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode refresh request")
	}

	status, body, err := c.send(ctx, http.MethodPost, "/api/user/refresh-token", payload, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", errorFromResponse(status, body)
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	data, _ := unwrapData(body)
	if err := json.Unmarshal(data, &tokens); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed refresh response")
	}
	if err := c.store.Save(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to persist tokens")
	}
	return tokens.AccessToken, nil
}

func (c *Client) expireSession() {
	_ = c.store.Clear()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// unwrapData peels the {"data": ...} envelope once. Paged listings nest the
// envelope twice ({"data": {"data": [...], "pagination": {...}}}); the inner
// slice comes back as data with the pagination block alongside it. Bodies
// without the envelope pass through untouched.
func unwrapData(body []byte) (json.RawMessage, *types.Pagination) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return json.RawMessage(body), nil
	}

	var paged struct {
		Data       json.RawMessage   `json:"data"`
		Pagination *types.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(envelope.Data, &paged); err == nil && len(paged.Data) != 0 && paged.Pagination != nil {
		return paged.Data, paged.Pagination
	}
	return envelope.Data, nil
}
