package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Request is an outgoing GET as seen by interceptors. Interceptors may edit
// Headers; Metadata carries values from request to response interceptors.
type Request struct {
	Method   string
	URL      string
	Headers  http.Header
	Metadata map[string]interface{}
}

func (r *Request) setHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}

	r.Headers.Set(key, value)
}

func (r *Request) setMetadata(key string, value interface{}) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]interface{})
	}

	r.Metadata[key] = value
}

// RequestInterceptor runs before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor runs after every attempt, including failed ones;
// resp.Error carries the failure.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain runs interceptors in registration order. The first failing
// interceptor stops the chain.
type InterceptorChain struct {
	before []RequestInterceptor
	after  []ResponseInterceptor
}

// NewInterceptorChain creates an empty chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// OnRequest registers request interceptors.
func (c *InterceptorChain) OnRequest(interceptors ...RequestInterceptor) {
	c.before = append(c.before, interceptors...)
}

// OnResponse registers response interceptors.
func (c *InterceptorChain) OnResponse(interceptors ...ResponseInterceptor) {
	c.after = append(c.after, interceptors...)
}

// BeforeSend runs the request interceptors.
func (c *InterceptorChain) BeforeSend(ctx context.Context, req *Request) error {
	for i, interceptor := range c.before {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor %d: %w", i, err)
		}
	}

	return nil
}

// AfterReceive runs the response interceptors.
func (c *InterceptorChain) AfterReceive(ctx context.Context, req *Request, resp *Response) error {
	for i, interceptor := range c.after {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor %d: %w", i, err)
		}
	}

	return nil
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger pubg.Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs the outcome of every request. Failures are
// logged at error level together with the remaining rate limit budget.
func LoggingResponseInterceptor(logger pubg.Logger) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"url":    req.URL,
			"status": resp.StatusCode,
		}

		if limit, ok := pubg.ParseRateLimit(resp.Headers); ok {
			fields["ratelimit_remaining"] = limit.Remaining
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("HTTP Response Error", fields)
		} else {
			logger.Debug("HTTP Response", fields)
		}

		return nil
	}
}

// AuthenticationInterceptor adds the API key as a Bearer token.
func AuthenticationInterceptor(apiKey string) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		req.setHeader("Authorization", "Bearer "+apiKey)

		return nil
	}
}

// HeaderInterceptor sets fixed headers, e.g. a tracing id, on every request.
// The Accept header cannot be overridden this way.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		for key, value := range headers {
			if http.CanonicalHeaderKey(key) == "Accept" {
				continue
			}

			req.setHeader(key, value)
		}

		return nil
	}
}

const startTimeKey = "start_time"

// MetricsRequestInterceptor stamps the request with its start time.
func MetricsRequestInterceptor() RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		req.setMetadata(startTimeKey, time.Now())

		return nil
	}
}

// MetricsResponseInterceptor feeds the outcome and latency into metrics.
func MetricsResponseInterceptor(metrics *Metrics, gateway string) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		var elapsed time.Duration

		if startTime, ok := req.Metadata[startTimeKey].(time.Time); ok {
			elapsed = time.Since(startTime)
		}

		metrics.observe(gateway, resp, elapsed)

		return nil
	}
}
