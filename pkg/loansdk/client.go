package loansdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/loanapply/pkg/httpx"
)

// Client talks to the loan application service. After Login it sends the
// issued token with every authenticated call.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken replaces the bearer token. An empty token sends no header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body, err := json.Marshal(LoginRequest{UserName: username, Password: password})
	if err != nil {
		return nil, err
	}
	var out LoginResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(body), "application/json", false, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// Logout tells the server the session ended and drops the local token.
// Tokens are stateless, so the old token stays valid until it expires.
func (c *Client) Logout(ctx context.Context) (*LogoutResponse, error) {
	var out LogoutResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/logout", nil, "", true, &out); err != nil {
		return nil, err
	}
	c.SetToken("")
	return &out, nil
}

// TestToken checks the current token.
func (c *Client) TestToken(ctx context.Context) (*TokenInfoResponse, error) {
	var out TokenInfoResponse
	if err := c.call(ctx, http.MethodGet, "/api/auth/test", nil, "", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply runs phase one: the form is validated and the document staged.
// A nil content sends the form without a file.
func (c *Client) Apply(ctx context.Context, form LoanForm, filename string, content io.Reader) (*ApplyResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form.Values() {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return nil, err
			}
		}
	}
	if content != nil {
		fw, err := mw.CreateFormFile("prop_proof_docs", filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out ApplyResponse
	if err := c.call(ctx, http.MethodPost, "/api/loan/apply", &buf, mw.FormDataContentType(), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Confirm runs phase two and returns the stored application.
func (c *Client) Confirm(ctx context.Context, form LoanForm) (*ApplicationResponse, error) {
	body := strings.NewReader(form.Values().Encode())
	var out ApplicationResponse
	if err := c.call(ctx, http.MethodPost, "/api/loan/confirm", body, "application/x-www-form-urlencoded", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmStaged fills the document fields from a phase one result and
// confirms.
func (c *Client) ConfirmStaged(ctx context.Context, form LoanForm, staged *ApplyResponse) (*ApplicationResponse, error) {
	form.PropProofDocs = staged.FileInfo.FilePath
	form.PropProofDocsName = staged.FileInfo.FileName
	return c.Confirm(ctx, form)
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "", false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}

// call performs a request and unwraps the envelope into target.
func (c *Client) call(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
	auth bool,
	target any,
) error {
	resp, err := c.do(ctx, method, path, body, contentType, auth)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, target)
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
	auth bool,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); auth && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeEnvelope reads an envelope and returns an *APIError for any
// non-zero code.
func decodeEnvelope(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Code != httpx.CodeSuccess {
		apiErr := &APIError{Code: env.Code, Msg: env.Msg}
		var details struct {
			ValidationErrors
			RateLimited
		}
		if len(env.Data) > 0 && json.Unmarshal(env.Data, &details) == nil {
			apiErr.Errors = details.Errors
			apiErr.RetryAfter = details.RetryAfter
		}
		return apiErr
	}

	if target == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
