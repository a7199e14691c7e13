package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

const (
	defaultVerifyURL        = "https://www.google.com/recaptcha/api/siteverify"
	defaultTimeout          = 5 * time.Second
	responseReadLimit int64 = 1024
)

var errSecretRequired = errors.New("recaptcha secret is required")

// Client verifies reCAPTCHA v3 tokens with the siteverify endpoint.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
	action     string
	minScore   float64
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithVerifyURL(u string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			c.verifyURL = trimmed
		}
	}
}

// NewClient builds a verifier that expects tokens minted for action with at
// least minScore.
func NewClient(secret, action string, minScore float64, opts ...Option) (*Client, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		verifyURL:  defaultVerifyURL,
		secret:     secret,
		action:     strings.TrimSpace(action),
		minScore:   minScore,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Result is the decoded siteverify response.
type Result struct {
	Success     bool      `json:"success"`
	Score       float64   `json:"score"`
	Action      string    `json:"action"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

// Verify checks token. A rejected or low-score token is SECURITY_CHECK_FAILED;
// transport failures are DEPENDENCY_ERROR.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (*Result, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSecurityCheck, "security check token missing")
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build siteverify request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute siteverify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "siteverify request failed")
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode siteverify response")
	}

	switch {
	case !result.Success:
		return &result, pkgerrors.New(pkgerrors.CodeSecurityCheck, "security check failed").
			WithDetails(map[string]any{"error_codes": result.ErrorCodes})
	case c.action != "" && result.Action != c.action:
		return &result, pkgerrors.New(pkgerrors.CodeSecurityCheck, "security check action mismatch")
	case result.Score < c.minScore:
		return &result, pkgerrors.New(pkgerrors.CodeSecurityCheck, "security check score too low")
	}
	return &result, nil
}
