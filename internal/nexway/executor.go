package nexway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Shuvo786/Nexway-API/internal/metrics"
)

// Executor performs a single HTTP exchange and returns the raw response
// body. It does not decode, retry or follow redirects.
type Executor struct {
	doer   Doer
	logger *slog.Logger
}

// NewExecutor creates an executor over the given transport.
func NewExecutor(d Doer, logger *slog.Logger) *Executor {
	return &Executor{doer: d, logger: logger}
}

// Execute sends method to rawURL with the given body and headers.
//
// For GET, a url.Values or map[string]string body becomes the query string
// and no request body is sent. For POST, PUT and DELETE, string and []byte
// bodies are sent as-is, maps are JSON-encoded when the supplied
// Content-Type is application/json and form-encoded otherwise, and any
// other value is JSON-encoded. Headers are sent exactly as supplied.
//
// A connection failure or a 400 status yields *TransportError. Every other
// status returns the body for the caller to interpret.
func (e *Executor) Execute(
	ctx context.Context,
	method, rawURL string,
	body any,
	headers map[string]string,
) ([]byte, error) {
	verb := strings.ToUpper(method)
	if rawURL == "" || !supportedMethod(verb) {
		return nil, &InvalidRequestError{Method: method, URL: rawURL}
	}

	target := rawURL
	reader := io.Reader(http.NoBody)

	if verb == http.MethodGet {
		q, err := encodeQuery(body)
		if err != nil {
			return nil, &InvalidRequestError{Method: method, URL: rawURL, Err: fmt.Errorf("encoding query: %w", err)}
		}
		if q != "" {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + q
		}
	} else {
		payload, err := encodeBody(body, isJSONContent(headers))
		if err != nil {
			return nil, &InvalidRequestError{Method: method, URL: rawURL, Err: fmt.Errorf("encoding request body: %w", err)}
		}
		if len(payload) > 0 {
			reader = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequestWithContext(ctx, verb, target, reader)
	if err != nil {
		return nil, &InvalidRequestError{Method: method, URL: rawURL}
	}
	for k, v := range headers {
		req.Header[k] = append(req.Header[k], v)
	}

	e.logger.Debug("nexway request", "method", verb, "host", req.URL.Host, "path", req.URL.Path)

	start := time.Now()
	resp, err := e.doer.Do(req)
	metrics.APIRequestDuration.WithLabelValues(verb).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(verb, "error").Inc()
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	metrics.APIRequestsTotal.WithLabelValues(verb, status).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	e.logger.Debug("nexway response", "method", verb, "path", req.URL.Path, "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode == http.StatusBadRequest {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

func supportedMethod(verb string) bool {
	switch verb {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func isJSONContent(headers map[string]string) bool {
	for k, v := range headers {
		if !strings.EqualFold(k, "Content-Type") {
			continue
		}
		mt, _, err := mime.ParseMediaType(v)
		return err == nil && mt == "application/json"
	}
	return false
}

func encodeQuery(body any) (string, error) {
	switch v := body.(type) {
	case nil:
		return "", nil
	case url.Values:
		return v.Encode(), nil
	case map[string]string:
		return formValues(v).Encode(), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported query type %T", body)
	}
}

func encodeBody(body any, asJSON bool) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case url.Values:
		return []byte(v.Encode()), nil
	case map[string]string:
		if asJSON {
			return json.Marshal(v)
		}
		return []byte(formValues(v).Encode()), nil
	default:
		return json.Marshal(v)
	}
}

func formValues(m map[string]string) url.Values {
	vals := make(url.Values, len(m))
	for k, v := range m {
		vals.Set(k, v)
	}
	return vals
}
