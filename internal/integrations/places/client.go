package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"
	nearbySearch   = "/maps/api/place/nearbysearch/json"
	searchRadius   = "1500"
	searchType     = "restaurant"
)

// tokenPayload is the expected JSON shape stored in SSM for the API key.
type tokenPayload struct {
	Token string `json:"token"`
}

// searchResponse is the only part of the nearby-search body we look at.
type searchResponse struct {
	Status string `json:"status"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses. URL never carries the key.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("places: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client queries the nearby-search endpoint of the places API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string
	breaker     *gobreaker.CircuitBreaker
	logger      *slog.Logger

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreakerSettings overrides the circuit breaker guarding the endpoint.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// NewClient creates a Client whose API key is read from the parameter store
// on first use and cached for the lifetime of the process.
func NewClient(ps Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("places: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("places: parameter prefix must not be empty")
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(c.defaultBreakerSettings())
	}
	return c, nil
}

func (c *Client) defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "places-nearby-search",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("places circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
}

func (c *Client) keyParameterName() string {
	return c.paramPrefix + "/places-api-key"
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = fetchAPIKeyFromParamStore(ctx, c.getter, c.keyParameterName())
	})
	return c.apiKey, c.keyErr
}

// QueryURL returns the nearby-search URL for the given coordinates without
// the API key. Coordinates are concatenated verbatim, so the literal
// "undefined" placeholder ends up in the URL unchanged.
func (c *Client) QueryURL(lat, lng string) string {
	return queryURL(c.baseURL, lat, lng)
}

// QueryURL is Client.QueryURL against the public endpoint.
func QueryURL(lat, lng string) string {
	return queryURL(defaultBaseURL, lat, lng)
}

func queryURL(baseURL, lat, lng string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + nearbySearch + "?location=" + lat + "," + lng + "&radius=" + searchRadius + "&type=" + searchType
}

// NearbySearch issues one GET for restaurants around lat,lng. The body is
// read and dropped; only the API status string is returned for logging.
func (c *Client) NearbySearch(ctx context.Context, lat, lng string) (string, error) {
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return "", err
	}

	public := c.QueryURL(lat, lng)
	target := public + "&key=" + url.QueryEscape(apiKey)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("places: create request: %w", redactURLError(reqErr, public))
		}
		req.Header.Set("Accept", "application/json")
		return c.doRequest(req, public)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("places: request skipped: %w", err)
		}
		return "", err
	}
	return out.(string), nil
}

func (c *Client) doRequest(req *http.Request, public string) (string, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return "", fmt.Errorf("places: request failed: %w", redactURLError(doErr, public))
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        public,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("places: read response body: %w", err)
	}
	var payload searchResponse
	if err := json.Unmarshal(buf, &payload); err != nil {
		return "", fmt.Errorf("places: decode response: %w", err)
	}
	return payload.Status, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// redactURLError swaps the keyed URL in a *url.Error for the public one.
func redactURLError(err error, public string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = public
	}
	return err
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("places: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("places: key parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("places: fetch key from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("places: unmarshal paramstore key value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("places: API key is empty")
	}
	return tp.Token, nil
}
