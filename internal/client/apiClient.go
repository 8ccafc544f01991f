package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pix-storefront/internal/model"
)

const maxResponseBytes = 4 * 1024 * 1024

// apiClient is the shared transport for the storefront and enterprise APIs:
// JSON bodies, optional bearer token, 401 classification.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
}

type outcome interface {
	Outcome() model.Result
}

func newAPIClient(baseURL string, timeout time.Duration) (*apiClient, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, &RequestError{Op: "create api client", Err: errors.New("api url is empty")}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate api url", Err: fmt.Errorf("invalid api url: %s", trimmed)}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &apiClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(trimmed, "/"),
	}, nil
}

func (c *apiClient) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes the request and returns the raw body. Only transport failures
// and 401 are errors here; the PHP endpoints send success=false bodies with
// 4xx codes, so decoding decides the rest.
func (c *apiClient) do(ctx context.Context, op, method, path string, query url.Values, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &RequestError{Op: op, Err: fmt.Errorf("marshal request body: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return 0, nil, &RequestError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, raw, &RequestError{Op: op, StatusCode: resp.StatusCode, Err: ErrUnauthorized}
	}

	return resp.StatusCode, raw, nil
}

// decodeEnvelope unwraps a storefront {success, message, data} response.
func decodeEnvelope[T any](op string, status int, raw []byte) (T, error) {
	var env model.Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		var zero T
		return zero, &RequestError{Op: op, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.Success {
		msg := env.Message
		if env.Error != "" {
			msg = env.Error
		}
		var zero T
		return zero, newBusinessError(op, status, msg, env.Errors)
	}
	return env.Data, nil
}

func getEnvelope[T any](ctx context.Context, c *apiClient, op, method, path string, query url.Values, token string, body any) (T, error) {
	status, raw, err := c.do(ctx, op, method, path, query, token, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeEnvelope[T](op, status, raw)
}

// call performs an enterprise request and decodes into out, which must embed
// model.Result.
func (c *apiClient) call(ctx context.Context, op, method, path string, query url.Values, token string, body any, out outcome) error {
	status, raw, err := c.do(ctx, op, method, path, query, token, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Op: op, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	if res := out.Outcome(); !res.Success {
		return newBusinessError(op, status, res.Reason(), nil)
	}
	return nil
}
