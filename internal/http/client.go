// Package http implements the gateways that talk to the PUBG API and the
// telemetry CDN.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/pubg/internal/constants"
	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Response is a completed GET. Error holds the status or transport failure
// seen by response interceptors; Get also returns it.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// Client is the HTTP gateway. Every call is a single GET with a fixed timeout
// and the JSON:API Accept header. Non-200 responses become *pubg.APIError.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *retryablehttp.Client
	logger       pubg.Logger
	debug        bool
	userAgent    string
	gateway      string
	metrics      *Metrics
	interceptors *InterceptorChain
	extraRequest []RequestInterceptor
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger pubg.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithMetrics records every request on metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithGateway sets the gateway label used in logs and metrics.
func WithGateway(name string) Option {
	return func(c *Client) {
		c.gateway = name
	}
}

// WithRequestInterceptor appends a request interceptor after the built-in ones.
func WithRequestInterceptor(interceptor RequestInterceptor) Option {
	return func(c *Client) {
		c.extraRequest = append(c.extraRequest, interceptor)
	}
}

// NewClient creates a gateway anchored at baseURL. A non-empty apiKey is sent
// as a Bearer token on every request; the telemetry CDN gateway passes "".
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: retryClient,
		userAgent:  constants.DefaultUserAgent,
		gateway:    GatewayAPI,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.interceptors = client.buildChain()

	return client
}

func (c *Client) buildChain() *InterceptorChain {
	chain := NewInterceptorChain()

	if c.metrics != nil {
		chain.OnRequest(MetricsRequestInterceptor())
	}

	if c.apiKey != "" {
		chain.OnRequest(AuthenticationInterceptor(c.apiKey))
	}

	if c.debug && c.logger != nil {
		chain.OnRequest(LoggingInterceptor(c.logger))
		chain.OnResponse(LoggingResponseInterceptor(c.logger))
	}

	if c.metrics != nil {
		chain.OnResponse(MetricsResponseInterceptor(c.metrics, c.gateway))
	}

	chain.OnRequest(c.extraRequest...)

	return chain
}

// neverRetry stops after the first attempt. Requests are never retried; the
// caller decides what to do with a rate limit.
func neverRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	return false, ctx.Err()
}

// Endpoint creates an endpoint under the gateway base URL.
func (c *Client) Endpoint(segments ...string) (*pubg.Endpoint, error) {
	return pubg.NewEndpoint(c.baseURL, segments...)
}

// Get performs the request. A non-200 status returns the response together
// with a *pubg.APIError; a transport failure returns a nil response and an
// error wrapping pubg.ErrConnection.
func (c *Client) Get(ctx context.Context, endpoint *pubg.Endpoint) (*Response, error) {
	req := &Request{
		Method:  http.MethodGet,
		URL:     endpoint.String(),
		Headers: make(http.Header),
	}
	req.Headers.Set("Accept", constants.MediaTypeJSONAPI)
	req.Headers.Set("User-Agent", c.userAgent)

	err := c.interceptors.BeforeSend(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := c.do(ctx, req)

	err = c.interceptors.AfterReceive(ctx, req, resp)
	if err != nil && resp.Error == nil {
		return resp, err
	}

	if resp.StatusCode == 0 {
		return nil, resp.Error
	}

	return resp, resp.Error
}

func (c *Client) do(ctx context.Context, req *Request) *Response {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultHTTPTimeout)
	defer cancel()

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return &Response{Error: fmt.Errorf("creating request: %w", err)}
	}

	httpReq.Header = req.Headers.Clone()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			c.closeBody(httpResp.Body)
		}

		return &Response{Error: fmt.Errorf("%w: %s %s: %w", pubg.ErrConnection, req.Method, req.URL, err)}
	}

	defer c.closeBody(httpResp.Body)

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &Response{Error: fmt.Errorf("%w: reading body of %s: %w", pubg.ErrConnection, req.URL, err)}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Error:      pubg.ErrorForStatus(httpResp.StatusCode, httpResp.Header, body),
	}
}

func (c *Client) closeBody(body io.ReadCloser) {
	err := body.Close()
	if err != nil && c.logger != nil {
		c.logger.Warn("failed to close response body", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Request performs the GET and decodes the JSON:API payload. It implements
// pubg.Requester.
func (c *Client) Request(ctx context.Context, endpoint *pubg.Endpoint) (*pubg.Document, error) {
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var doc pubg.Document

	err = json.Unmarshal(resp.Body, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", pubg.ErrDecode, endpoint, err)
	}

	return &doc, nil
}
