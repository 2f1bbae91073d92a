// Package client provides the poold API client for the poolctl CLI.
//
// Every command goes through one RPC endpoint: the client posts
// {"method", "params": [args, options]} and gets back either a result or a
// command error. A command error is returned as *dhcpsvc.CommandError so
// callers can show the server's message verbatim.
//
// Requests share one circuit breaker. Only transport failures and 5xx
// answers count against it; a command the server rejected is a healthy
// answer. CRUD calls retry on connection errors. Range checks never retry:
// the pool dialog issues a fresh check on the next edit instead.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("poold API unavailable: too many failed requests, retry shortly")

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Database  string    `json:"database"`
	Error     string    `json:"error,omitempty"`
}

// Result is a single-entry command result with the entry still encoded.
type Result struct {
	Result  json.RawMessage `json:"result"`
	Value   string          `json:"value"`
	Summary string          `json:"summary"`
}

// FindResult is a find command result with the entries still encoded.
type FindResult struct {
	Result    json.RawMessage `json:"result"`
	Count     int             `json:"count"`
	Truncated bool            `json:"truncated"`
	Summary   string          `json:"summary"`
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     int    `json:"id"`
}

type rpcResponse struct {
	Result    json.RawMessage       `json:"result"`
	Error     *dhcpsvc.CommandError `json:"error"`
	RequestID string                `json:"request_id"`
}

// statusError is a non-2xx answer that did not carry a command error.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.code, e.body)
}

// PoolAPIClient talks to one poold instance.
type PoolAPIClient struct {
	client  *resty.Client
	check   *resty.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
}

// NewPoolAPIClient creates a client for the daemon at apiAddr ("host:port").
func NewPoolAPIClient(apiAddr string, timeout time.Duration) *PoolAPIClient {
	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	client := newRestyClient(baseURL, timeout)
	// Only retry on connection errors, not HTTP errors
	client.
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil
		})

	return &PoolAPIClient{
		client:  client,
		check:   newRestyClient(baseURL, timeout),
		breaker: newBreaker(apiAddr),
		baseURL: baseURL,
	}
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New()

	// Route Resty's internal logging through our structured logging system
	client.SetLogger(utils.RestyLogger{})

	client.
		SetTimeout(timeout).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("poolctl/%s", config.Version))

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)", resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})
	return client
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("API circuit %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var cmdErr *dhcpsvc.CommandError
			if errors.As(err, &cmdErr) {
				return true
			}
			var stErr *statusError
			if errors.As(err, &stErr) {
				return stErr.code < http.StatusInternalServerError
			}
			return errors.Is(err, context.Canceled)
		},
	})
}

// BaseURL returns the API root this client talks to.
func (api *PoolAPIClient) BaseURL() string {
	return api.baseURL
}

// Call runs method with args and options and decodes the command result
// into out (which may be nil). options is sent as a JSON object and may be nil.
func (api *PoolAPIClient) Call(ctx context.Context, method string, args []string, options any, out any) error {
	return api.call(ctx, api.client, method, args, options, out)
}

func (api *PoolAPIClient) call(ctx context.Context, rc *resty.Client, method string, args []string, options any, out any) error {
	if args == nil {
		args = []string{}
	}
	if options == nil {
		options = struct{}{}
	}
	body := rpcRequest{Method: method, Params: []any{args, options}}

	res, err := api.breaker.Execute(func() (interface{}, error) {
		var envelope rpcResponse
		resp, err := rc.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&envelope).
			SetError(&envelope).
			Post("/rpc")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
		}
		if envelope.Error != nil {
			logging.Debug("Command %s failed (request %s): %s", method, envelope.RequestID, envelope.Error.Message)
			return nil, envelope.Error
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, &statusError{code: resp.StatusCode(), body: resp.String()}
		}
		return envelope.Result, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrUnavailable
		}
		return err
	}

	if out == nil {
		return nil
	}
	raw, _ := res.(json.RawMessage)
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected response format for %s: %w", method, err)
	}
	return nil
}

// Health queries GET /health. A degraded daemon answers 503 with a body,
// which is returned along with an error.
func (api *PoolAPIClient) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	resp, err := api.client.R().
		SetContext(ctx).
		SetResult(&health).
		SetError(&health).
		Get("/health")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return &health, fmt.Errorf("daemon is %s: %s", health.Status, health.Error)
	}
	return &health, nil
}

// IsValid implements dhcp.Checker. The call is not retried.
func (api *PoolAPIClient) IsValid(ctx context.Context, subnetPath []string, rangeText string) (dhcp.CheckResult, error) {
	var res dhcp.CheckResult
	args := append(append([]string(nil), subnetPath...), rangeText)
	err := api.call(ctx, api.check, "dhcppool_is_valid", args, nil, &res)
	return res, err
}

// CreateAPIClient creates a client from the global CLI flags.
func CreateAPIClient() *PoolAPIClient {
	return NewPoolAPIClient(config.Global.APIAddr, time.Duration(config.Global.Timeout)*time.Second)
}
