// Package marketplace is the HTTP client of the marketplace REST API.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Config captures the settings of the marketplace API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.MarketplaceAPI over HTTP.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger
}

var _ ports.MarketplaceAPI = (*Client)(nil)

// NewClient validates cfg and returns a Client. A default timeout is applied
// when none is provided.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("marketplace base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("marketplace base url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{base: base, http: &http.Client{Timeout: timeout}, logger: logger}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out ports.LoginResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", nil, body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &domain.APIError{Status: http.StatusBadGateway, Message: "login response without access token"}
	}
	return &out, nil
}

func (c *Client) GetEnterprise(ctx context.Context, token string, id domain.EnterpriseID) (*domain.Enterprise, error) {
	var raw json.RawMessage
	err := c.do(ctx, "get_enterprise", http.MethodGet, enterprisePath(id, ""), token, nil, nil, &raw)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("enterprise %d: %w", id, domain.ErrEnterpriseNotFound)
		}
		return nil, err
	}

	var ent domain.Enterprise
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, fmt.Errorf("decode enterprise: %w", err)
	}
	ent.Raw = raw
	return &ent, nil
}

func (c *Client) CanCreateDemand(ctx context.Context, token string, id domain.EnterpriseID) (*domain.DemandGate, error) {
	var gate domain.DemandGate
	if err := c.do(ctx, "can_create_demand", http.MethodGet, enterprisePath(id, "/can-create-demand"), token, nil, nil, &gate); err != nil {
		return nil, err
	}
	return &gate, nil
}

func (c *Client) SubmitQualification(ctx context.Context, token string, id domain.EnterpriseID, sub ports.QualificationSubmission) error {
	return c.do(ctx, "submit_qualification", http.MethodPut, enterprisePath(id, "/qualification"), token, nil, sub, nil)
}

func (c *Client) RegisterSupplier(ctx context.Context, token string, reg ports.SupplierRegistration) (*domain.Enterprise, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "register_supplier", http.MethodPost, "/enterprises/register", token, nil, reg, &raw); err != nil {
		return nil, err
	}
	var ent domain.Enterprise
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ent); err != nil {
			return nil, fmt.Errorf("decode enterprise: %w", err)
		}
		ent.Raw = raw
	}
	return &ent, nil
}

func (c *Client) VerifyEnterprise(ctx context.Context, token string, id domain.EnterpriseID, approve bool) error {
	q := url.Values{"approve": {strconv.FormatBool(approve)}}
	err := c.do(ctx, "verify_enterprise", http.MethodPost, enterprisePath(id, "/verify"), token, q, nil, nil)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("enterprise %d: %w", id, domain.ErrEnterpriseNotFound)
	}
	return err
}

// Ping checks that the API answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace ping: %w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

func enterprisePath(id domain.EnterpriseID, suffix string) string {
	return "/enterprises/" + strconv.FormatInt(int64(id), 10) + suffix
}

func (c *Client) do(ctx context.Context, op, method, path, token string, query url.Values, in, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.MarketplaceRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("marketplace %s: %w: %w", op, domain.ErrMarketplaceUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.MarketplaceRequestDuration.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("marketplace %s: %w", op, domain.ErrUnauthorized)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := errorDetail(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("detail", msg).
			Msg("marketplace request failed")
		return &domain.APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// errorDetail extracts the server message from a FastAPI-style error body:
// {"detail": "..."} or {"detail": [{"msg": "..."}]}.
func errorDetail(r io.Reader) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
