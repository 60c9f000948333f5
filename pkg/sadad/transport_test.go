package sadad

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportSend(t *testing.T) {
	var (
		gotMethod string
		gotAuth   string
		gotType   string
		gotBody   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"response":{"ok":true}}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.Client())
	data, status, err := transport.Send(context.Background(), http.MethodPost, server.URL,
		[]string{"Content-Type: application/json", "Authorization: Bearer a:b", "malformed"},
		map[string]string{"ref": "A-1"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"response":{"ok":true}}`, string(data))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer a:b", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"ref":"A-1"}`, gotBody)
}

func TestHTTPTransportNilBody(t *testing.T) {
	var contentLength int64 = -1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentLength = r.ContentLength
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	data, status, err := NewHTTPTransport(server.Client()).Send(context.Background(), http.MethodPost, server.URL, nil, nil)
	require.NoError(t, err, "non-2xx statuses are not transport errors")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "upstream down", string(data))
	assert.Equal(t, int64(0), contentLength)
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := NewHTTPTransport(nil).Send(context.Background(), http.MethodGet, url, nil, nil)
	require.Error(t, err)
}

func TestHTTPTransportCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewHTTPTransport(server.Client()).Send(ctx, http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}
