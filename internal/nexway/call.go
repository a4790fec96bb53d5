package nexway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shuvo786/Nexway-API/internal/metrics"
)

// call describes one domain request.
type call struct {
	operation string
	method    string
	url       string
	secret    string
	body      any
	// public calls carry no bearer token and no API headers.
	public bool
}

// send runs the uniform operation template: token, headers, exchange,
// empty-body check. It records a span and an operation metric.
func (c *Client) send(ctx context.Context, cl call) (body []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "nexway."+cl.operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("nexway.operation", cl.operation),
			attribute.String("http.request.method", cl.method),
			attribute.String("nexway.environment", c.creds.Environment.String()),
		),
	)
	defer func() {
		metrics.OperationsTotal.WithLabelValues(cl.operation, metrics.Result(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var headers map[string]string
	if !cl.public {
		bearer, tokErr := c.tokens.Acquire(ctx, true)
		if tokErr != nil {
			return nil, fmt.Errorf("%s: acquiring token: %w", cl.operation, tokErr)
		}
		headers = apiHeaders(cl.secret, bearer)
	}

	body, err = c.exec.Execute(ctx, cl.method, cl.url, cl.body, headers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cl.operation, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s: %w", cl.operation, ErrEmptyResponse)
	}
	return body, nil
}

// sendJSON runs send and checks the body is a JSON document.
func (c *Client) sendJSON(ctx context.Context, cl call) (json.RawMessage, error) {
	body, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: decoding response: %w", cl.operation, ErrUnsupportedFormat)
	}
	return json.RawMessage(body), nil
}

func apiHeaders(secret, bearer string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + strings.TrimSpace(bearer),
		"Content-Type":  "application/json",
		"Cache-Control": "no-cache",
	}
	if secret != "" {
		h["secret"] = secret
	}
	return h
}

func (c *Client) hostURL(segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(c.endpoints.HostURL, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(s)
	}
	return b.String()
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
