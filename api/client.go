// Package api is a client for the automation hub REST API used by the
// console: namespaces, sync remotes, container images and the active user.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/logger"
	"github.com/sfi2k7/hubconsole/params"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5001/api/automation-hub/
	BaseURL  string
	Token    string
	Username string
	Password string
	Timeout  time.Duration
	// RateLimit caps requests per second; zero means unlimited.
	RateLimit  rate.Limit
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the hub API.
type Client struct {
	base    *url.URL
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	Namespaces            *NamespaceService
	Remotes               *RemoteService
	ExecutionEnvironments *ExecutionEnvironmentService
	ActiveUser            *ActiveUserService
}

// NewClient validates cfg and builds a Client with its services.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "api: base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("api: base url %q must be absolute", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	c := &Client{
		base: base,
		cfg:  cfg,
		http: hc,
		log:  logger.OrNop(cfg.Logger).With(zap.String("component", "api")),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	c.Namespaces = &NamespaceService{client: c}
	c.Remotes = &RemoteService{client: c}
	c.ExecutionEnvironments = &ExecutionEnvironmentService{client: c}
	c.ActiveUser = &ActiveUserService{client: c}
	return c, nil
}

// URL resolves an API path with the query of p.
func (c *Client) URL(path string, p params.Params) *url.URL {
	u := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	u.RawQuery = p.Encode()
	return u
}

func (c *Client) do(ctx context.Context, method, path string, p params.Params, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "api: rate limit")
		}
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "api: encoding request")
		}
		rdr = bytes.NewReader(b)
	}

	u := c.URL(path, p)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return errors.Wrap(err, "api: building request")
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.cfg.Token != "":
		req.Header.Set("Authorization", "Token "+c.cfg.Token)
	case c.cfg.Username != "":
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "api: %s %s", method, u.Path)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.String("request_id", reqID),
	)

	if err := checkError(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "api: decoding %s %s", method, u.Path)
	}
	return nil
}
