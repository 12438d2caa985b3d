// Package backend is a client for the Refer REST API. Server-side behavior is
// out of scope; only the documented request and response shapes are relied on.
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
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/models/dto"
	"github.com/hongminglow/refer-web/internal/referral"
)

const statusSuccess = "success"

// APIError is a non-success answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// envelope is the backend's response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Dashboard is the decoded /get-user-refer payload.
type Dashboard struct {
	User     models.User
	Snapshot referral.Snapshot
}

type dashboardData struct {
	User           models.User       `json:"user"`
	ReferredUsers  []referral.Person `json:"referredUsers"`
	ConvertedUsers []referral.Person `json:"convertedUsers"`
	ReferralStats  struct {
		TotalReferrals int `json:"totalReferrals"`
		TotalConverted int `json:"totalConverted"`
		TotalEarned    int `json:"totalEarned"`
	} `json:"referralStats"`
}

// CallObserver records backend calls by route.
type CallObserver interface {
	ObserveBackendCall(route string, status int, elapsed time.Duration)
}

// Client calls the backend. It never retries.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *zap.Logger
	observer CallObserver
}

// NewClient builds a client rooted at baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Observe reports every call to obs.
func (c *Client) Observe(obs CallObserver) *Client {
	c.observer = obs
	return c
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (string, error) {
	var out dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Signup creates an account and returns its bearer token.
func (c *Client) Signup(ctx context.Context, req dto.SignupRequest) (string, error) {
	var out dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/signup", "", req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GetUserByID fetches a profile, including purchase and referrer state.
func (c *Client) GetUserByID(ctx context.Context, token, id string) (models.User, error) {
	var out dto.UserEnvelope
	path := "/get-user-by-id?" + url.Values{"id": {id}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

// UpdateUserByID updates name, email and optionally the password.
func (c *Client) UpdateUserByID(ctx context.Context, token, id string, payload dto.UpdateUserPayload) (models.User, error) {
	var out dto.UserEnvelope
	path := "/update-user-by-id/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, token, payload, &out); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

// GetUserRefer fetches the referral dashboard snapshot.
func (c *Client) GetUserRefer(ctx context.Context, token, id string) (Dashboard, error) {
	var out dashboardData
	path := "/get-user-refer?" + url.Values{"id": {id}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		User: out.User,
		Snapshot: referral.Snapshot{
			TotalReferrals: out.ReferralStats.TotalReferrals,
			TotalConverted: out.ReferralStats.TotalConverted,
			TotalEarned:    out.ReferralStats.TotalEarned,
			ReferredUsers:  out.ReferredUsers,
			ConvertedUsers: out.ConvertedUsers,
		},
	}, nil
}

// PurchaseBook records a purchase against the buyer's referrer.
func (c *Client) PurchaseBook(ctx context.Context, token string, req dto.PurchaseRequest) error {
	return c.do(ctx, http.MethodPut, "/purchase-book", token, req, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.observe(path, resp.StatusCode, time.Since(start))
	c.log.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		if errors.Is(decodeErr, io.EOF) && out == nil {
			return nil
		}
		return fmt.Errorf("decode %s response: %w", path, decodeErr)
	}
	if env.Status != "" && env.Status != statusSuccess {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func (c *Client) observe(path string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(routeOf(path), status, elapsed)
	}
}

// routeOf drops the query and any id segment so labels stay bounded.
func routeOf(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path = strings.TrimPrefix(path, "/")
	route, _, _ := strings.Cut(path, "/")
	return "/" + route
}
