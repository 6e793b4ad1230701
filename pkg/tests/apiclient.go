package tests

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"geo_feedback/pkg/contextx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// APIClient is a JSON client for handler tests. Success bodies (2xx) are
// decoded into dest, everything else into errDest. Either may be nil.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return APIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (a APIClient) Get(ctx context.Context, endpoint string, headers http.Header, dest, errDest any) (*http.Response, error) {
	return a.do(ctx, http.MethodGet, endpoint, headers, http.NoBody, dest, errDest)
}

// Post sends request encoded as JSON.
func (a APIClient) Post(ctx context.Context, endpoint string, headers http.Header, request, dest, errDest any) (*http.Response, error) {
	return a.send(ctx, http.MethodPost, endpoint, headers, request, dest, errDest)
}

// PostJSON sends a raw body, allowing malformed JSON in tests.
func (a APIClient) PostJSON(ctx context.Context, endpoint string, headers http.Header, body string, dest, errDest any) (*http.Response, error) {
	return a.do(ctx, http.MethodPost, endpoint, headers, bytes.NewReader([]byte(body)), dest, errDest)
}

func (a APIClient) DeleteWithBody(ctx context.Context, endpoint string, headers http.Header, request, dest, errDest any) (*http.Response, error) {
	return a.send(ctx, http.MethodDelete, endpoint, headers, request, dest, errDest)
}

func (a APIClient) send(
	ctx context.Context,
	method, endpoint string,
	headers http.Header,
	request, dest, errDest any,
) (*http.Response, error) {
	b, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return a.do(ctx, method, endpoint, headers, bytes.NewReader(b), dest, errDest)
}

func (a APIClient) do(
	ctx context.Context,
	method, endpoint string,
	headers http.Header,
	payload io.Reader,
	dest, errDest any,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	if payload != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	contextx.LoggerFromContextOrDefault(ctx).Debug("api call",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)),
	)

	if err := decode(resp.StatusCode, body, dest, errDest); err != nil {
		return nil, err
	}

	return resp, nil
}

func decode(status int, body []byte, dest, errDest any) error {
	target, name := errDest, "error"
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		target, name = dest, "success"
	}

	if target == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("json.Unmarshal(%s destination): %w", name, err)
	}

	return nil
}
