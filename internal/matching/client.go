package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Endpoint paths on the management server.
const (
	DataPath              = "/rhn/manager/subscription-matching/data"
	PinsPath              = "/rhn/manager/subscription-matching/pins"
	ScheduleMatcherPath   = "/rhn/manager/subscription-matching/schedule-matcher-run"
	defaultServerURL      = "https://localhost"
	defaultUserAgent      = "submatch/0.1"
	defaultRequestTimeout = 5 * time.Second
)

// Fetcher starts snapshot fetches. It is implemented by *Client.
type Fetcher interface {
	Get(ctx context.Context) *Request
}

// API is the full set of server operations the console uses.
type API interface {
	Fetcher
	FetchData(ctx context.Context) (*Data, error)
	AddPin(ctx context.Context, systemID, subscriptionID int64) ([]PinnedMatch, error)
	DeletePin(ctx context.Context, pinID int64) ([]PinnedMatch, error)
	ScheduleMatcherRun(ctx context.Context) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Options configure a Client.
type Options struct {
	ServerURL string
	Username  string
	Password  string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// Client talks to the subscription matching endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	username  string
	password  string
	log       zerolog.Logger
}

// NewClient builds a Client for the given server.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.ServerURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		username:  opts.Username,
		password:  opts.Password,
		log:       opts.Logger.With().Str("component", "matching").Logger(),
	}, nil
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get starts a data fetch and returns its handle immediately.
func (c *Client) Get(ctx context.Context) *Request {
	id := uuid.NewString()
	return Start(ctx, id, func(ctx context.Context) (*Data, error) {
		return c.fetchData(ctx, id)
	})
}

// FetchData retrieves a full matching snapshot.
func (c *Client) FetchData(ctx context.Context) (*Data, error) {
	return c.fetchData(ctx, uuid.NewString())
}

func (c *Client) fetchData(ctx context.Context, requestID string) (*Data, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Data
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: DataPath}, requestID, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type pinRequest struct {
	SystemID       int64 `json:"system_id"`
	SubscriptionID int64 `json:"subscription_id"`
}

// AddPin asks the server to pin a system to a subscription. It returns the
// server's pin list after the change.
func (c *Client) AddPin(ctx context.Context, systemID, subscriptionID int64) ([]PinnedMatch, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if systemID <= 0 || subscriptionID <= 0 {
		return nil, fmt.Errorf("system id and subscription id required")
	}
	var pins []PinnedMatch
	body := pinRequest{SystemID: systemID, SubscriptionID: subscriptionID}
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: PinsPath}, uuid.NewString(), body, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

// DeletePin removes a pin and returns the server's pin list after the change.
func (c *Client) DeletePin(ctx context.Context, pinID int64) ([]PinnedMatch, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if pinID <= 0 {
		return nil, fmt.Errorf("pin id required")
	}
	rel := &url.URL{Path: PinsPath + "/" + formatID(pinID) + "/delete"}
	var pins []PinnedMatch
	if err := c.do(ctx, http.MethodPost, rel, uuid.NewString(), nil, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

// ScheduleMatcherRun asks the server to run the matcher as soon as possible.
func (c *Client) ScheduleMatcherRun(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, &url.URL{Path: ScheduleMatcherPath}, uuid.NewString(), nil, nil)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, requestID string, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", rel.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse server url %q: missing host", serverURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
