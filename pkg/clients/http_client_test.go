package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(r.Method + ":" + r.Header.Get("X-Test") + ":" + string(body)))
	}))
	defer server.Close()

	client := NewHTTPClient()
	headers := http.Header{}
	headers.Set("X-Test", "yes")

	tests := []struct {
		name     string
		headers  http.Header
		body     []byte
		expected string
	}{
		{
			name:     "Post with headers",
			headers:  headers,
			body:     []byte(`{"amount":100}`),
			expected: `POST:yes:{"amount":100}`,
		},
		{
			name:     "Post without headers or body",
			expected: "POST::",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, err := client.Post(context.Background(), server.URL, tt.headers, tt.body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, status)
			assert.Equal(t, tt.expected, string(body))
		})
	}
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewHTTPClient().Post(ctx, server.URL, nil, nil)
	assert.Error(t, err)
}
