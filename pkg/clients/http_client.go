package clients

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

const timeout = time.Second * 15

var ErrFailedCloseResponseBody = errors.New("failed close response body")

//go:generate mockgen -source=http_client.go -destination=mock_http_client.go -package=clients

type HTTPClientI interface {
	Post(ctx context.Context, url string, headers http.Header, body []byte) (int, []byte, error)
}

type HTTPClientAdapter struct {
	client *http.Client
}

func (h *HTTPClientAdapter) Post(ctx context.Context, url string, headers http.Header, body []byte) (int, []byte, error) {
	return h.send(ctx, http.MethodPost, url, headers, body)
}

func (h *HTTPClientAdapter) send(ctx context.Context, method, url string, headers http.Header, body []byte) (statusCode int, respBody []byte, err error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return
	}
	if headers != nil {
		req.Header = headers.Clone()
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}

	defer func() {
		if e := resp.Body.Close(); e != nil {
			err = errors.Join(err, ErrFailedCloseResponseBody)
		}
	}()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	statusCode = resp.StatusCode

	return
}

type HTTPClient struct {
	client HTTPClientI
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		client: &HTTPClientAdapter{
			client: &http.Client{Timeout: timeout},
		},
	}
}

func (h *HTTPClient) Post(ctx context.Context, url string, headers http.Header, body []byte) (int, []byte, error) {
	return h.client.Post(ctx, url, headers, body)
}

func (h *HTTPClient) SetClient(mock HTTPClientI) {
	h.client = mock
}
