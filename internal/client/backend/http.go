package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ebergstrom/daybreak/internal/common"
)

const requestTimeout = 12 * time.Second

// HTTPClient implements Client against the JSON API under /api. An expired
// access token is refreshed transparently: on 401 the client exchanges the
// refresh token once and replays the request.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "http://localhost:8080").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPClient) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *HTTPClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	req := registerRequest{Username: username, Salt: salt, Verifier: verifier}
	return c.do(ctx, http.MethodPost, "/api/register", req, nil)
}

func (c *HTTPClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	var out saltResponse
	if err := c.do(ctx, http.MethodPost, "/api/salt", saltRequest{Username: username}, &out); err != nil {
		return nil, err
	}
	return out.Salt, nil
}

func (c *HTTPClient) Login(ctx context.Context, username string, verifier []byte) error {
	var out tokenPair
	err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Username: username, Verifier: verifier}, &out)
	if err != nil {
		return err
	}
	c.SetTokens(out.AccessToken, out.RefreshToken)
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil)
}

func (c *HTTPClient) Upsert(ctx context.Context, table string, record json.RawMessage) (string, error) {
	var out upsertResponse
	err := c.do(ctx, http.MethodPost, "/api/records/"+url.PathEscape(table), record, &out)
	if err != nil {
		return "", err
	}
	return out.RemoteID, nil
}

func (c *HTTPClient) Delete(ctx context.Context, table string, remoteID string) error {
	path := "/api/records/" + url.PathEscape(table) + "/" + url.PathEscape(remoteID)
	err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if errors.Is(err, common.ErrNotFound) {
		// already gone on the server, same outcome
		return nil
	}
	return err
}

func (c *HTTPClient) PresignAttachment(ctx context.Context) (string, string, error) {
	var out presignResponse
	if err := c.do(ctx, http.MethodPost, "/api/attachments/presign", nil, &out); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do runs one JSON round trip. body may be nil, a struct to marshal, or a
// pre-marshaled json.RawMessage. On 401 it refreshes the token pair and
// replays the request once.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	status, err := c.roundTrip(ctx, method, path, body, out)
	if err == nil || status != http.StatusUnauthorized {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	_, err = c.roundTrip(ctx, method, path, body, out)
	return err
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refreshToken := c.Tokens()
	if refreshToken == "" {
		return common.ErrUnauthorized
	}

	var out tokenPair
	status, err := c.roundTrip(ctx, http.MethodPost, "/api/refresh", refreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		if status == http.StatusUnauthorized {
			return common.ErrRefreshTokenExpired
		}
		return err
	}

	c.SetTokens(out.AccessToken, out.RefreshToken)
	return nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, body any, out any) (int, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	if access, _ := c.Tokens(); access != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return resp.StatusCode, c.mapStatus(resp.StatusCode, eb.Error)
}

// mapStatus classifies failures for the sync loop: 5xx is recoverable
// (ErrNetwork), 4xx is a terminal rejection of the request.
func (c *HTTPClient) mapStatus(status int, msg string) error {
	switch {
	case status >= 500:
		return fmt.Errorf("%w: server status %d", common.ErrNetwork, status)
	case status == http.StatusUnauthorized:
		return common.ErrUnauthorized
	case status == http.StatusNotFound:
		return common.ErrNotFound
	default:
		if strings.TrimSpace(msg) != "" {
			return fmt.Errorf("%w: %s", common.ErrValidation, msg)
		}
		return fmt.Errorf("%w: status %d", common.ErrValidation, status)
	}
}
