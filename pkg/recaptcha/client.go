/**
 * @description
 * This package provides the bot-verification collaborator: acquiring a
 * reCAPTCHA token for a form action and verifying it against Google's scoring
 * service. When no secret key is configured the service runs in simulated mode:
 * a fixed sentinel token always verifies with a high score and anything else is
 * rejected, so local development needs no external provider.
 *
 * @dependencies
 * - context, encoding/json, net/http, net/url, time: Standard Go libraries.
 */
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SimulatedToken is the sentinel accepted in simulated mode.
const SimulatedToken = "SIMULATED_TOKEN"

// DefaultScoreThreshold is the minimum score a token must reach in addition to
// the bare success flag.
const DefaultScoreThreshold = 0.5

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// TokenSource acquires a bot-verification token for a named form action. An
// empty token with a nil error means the provider declined or is unavailable.
type TokenSource interface {
	Token(ctx context.Context, action string) (string, error)
}

// Verifier checks a token server-side.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Verification, error)
}

// Verification is the outcome of a server-side token check. Error carries the
// user-facing reason when Success is false.
type Verification struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// SimulatedSource always hands out the sentinel token. Used when no site key
// is configured.
type SimulatedSource struct{}

// Token returns the simulated sentinel token.
func (SimulatedSource) Token(ctx context.Context, action string) (string, error) {
	return SimulatedToken, nil
}

// Client verifies tokens against the remote scoring service, or simulates the
// check when no secret is configured.
type Client struct {
	SecretKey      string
	ScoreThreshold float64
	HTTPClient     *http.Client

	// verifyURL is overridable in tests.
	verifyURL string
}

// NewClient creates a verification client. An empty secretKey enables
// simulated mode.
func NewClient(secretKey string, scoreThreshold float64) *Client {
	if scoreThreshold <= 0 {
		scoreThreshold = DefaultScoreThreshold
	}
	return &Client{
		SecretKey:      secretKey,
		ScoreThreshold: scoreThreshold,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		verifyURL: siteVerifyURL,
	}
}

// Simulated reports whether the client runs without a configured secret.
func (c *Client) Simulated() bool {
	return strings.TrimSpace(c.SecretKey) == ""
}

// siteVerifyResponse mirrors the scoring service's response body.
type siteVerifyResponse struct {
	Success bool `json:"success"`
	// Score is a pointer: the service omits it for non-v3 keys, and an absent
	// score must not fail the threshold check.
	Score      *float64 `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a token. In simulated mode only the sentinel succeeds. A
// non-nil error is returned only for transport-level faults; a rejected token
// comes back as Success=false with a reason.
func (c *Client) Verify(ctx context.Context, token string) (*Verification, error) {
	if token == "" {
		return &Verification{Success: false, Error: "Token de verificación requerido."}, nil
	}

	if c.Simulated() {
		if token == SimulatedToken {
			return &Verification{Success: true, Score: 0.9}, nil
		}
		return &Verification{Success: false, Error: "Verificación de seguridad fallida."}, nil
	}

	form := url.Values{}
	form.Set("secret", c.SecretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode siteverify response: %w", err)
	}

	var score float64
	if body.Score != nil {
		score = *body.Score
	}
	if !body.Success || (body.Score != nil && score < c.ScoreThreshold) {
		return &Verification{
			Success: false,
			Score:   score,
			Error:   "La verificación de seguridad no fue exitosa. Intenta de nuevo.",
		}, nil
	}

	return &Verification{Success: true, Score: score}, nil
}
