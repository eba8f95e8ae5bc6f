package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetriesTransientFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{MaxRetries: 3, RequestsPerSec: 100})
	body, err := client.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "two failed attempts plus the success")
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such thing"))
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{MaxRetries: 3, RequestsPerSec: 100})
	_, err := client.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "4xx must not be retried")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "no such thing", string(statusErr.Body))
	assert.False(t, statusErr.Retryable())
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{MaxRetries: 1, RequestsPerSec: 100})
	_, err := client.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.Retryable())
}

func TestGetSetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{RequestsPerSec: 100})
	_, err := client.Get(context.Background(), srv.URL, map[string]string{"User-Agent": "test-agent"})
	require.NoError(t, err)
}

func TestGetHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(ClientOptions{MaxRetries: 5, RequestsPerSec: 100})
	_, err := client.Get(ctx, srv.URL, nil)
	require.Error(t, err)
}
