package http_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pubghttp "github.com/fivetwenty-io/pubg/internal/http"
)

var errRejected = errors.New("rejected")

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	t.Parallel()

	chain := pubghttp.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.OnRequest(func(ctx context.Context, req *pubghttp.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.OnRequest(func(ctx context.Context, req *pubghttp.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &pubghttp.Request{
		Method: "GET",
		URL:    "https://api.pubg.com/status",
	}

	err := chain.BeforeSend(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := pubghttp.NewInterceptorChain()
	called := false

	chain.OnRequest(func(ctx context.Context, req *pubghttp.Request) error {
		return errRejected
	})

	chain.OnRequest(func(ctx context.Context, req *pubghttp.Request) error {
		called = true

		return nil
	})

	err := chain.BeforeSend(context.Background(), &pubghttp.Request{})
	require.ErrorIs(t, err, errRejected)
	assert.Contains(t, err.Error(), "request interceptor 0")
	assert.False(t, called)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	t.Parallel()

	chain := pubghttp.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.OnResponse(func(ctx context.Context, req *pubghttp.Request, resp *pubghttp.Response) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.OnResponse(func(ctx context.Context, req *pubghttp.Request, resp *pubghttp.Response) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.AfterReceive(ctx, &pubghttp.Request{}, &pubghttp.Response{StatusCode: 200})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := pubghttp.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	})
	req := &pubghttp.Request{Method: "GET"}

	err := interceptor(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestHeaderInterceptor_KeepsAccept(t *testing.T) {
	t.Parallel()

	interceptor := pubghttp.HeaderInterceptor(map[string]string{"accept": "text/html"})
	req := &pubghttp.Request{Method: "GET"}
	req.Headers = map[string][]string{"Accept": {"application/vnd.api+json"}}

	err := interceptor(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "application/vnd.api+json", req.Headers.Get("Accept"))
}

func TestAuthenticationInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := pubghttp.AuthenticationInterceptor("test-key")
	req := &pubghttp.Request{Method: "GET"}

	err := interceptor(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", req.Headers.Get("Authorization"))
}

func TestMetricsRequestInterceptor(t *testing.T) {
	t.Parallel()

	req := &pubghttp.Request{Method: "GET"}

	err := pubghttp.MetricsRequestInterceptor()(context.Background(), req)
	require.NoError(t, err)

	started, ok := req.Metadata["start_time"].(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), started, time.Second)
}
