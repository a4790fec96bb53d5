package nexway_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
	"github.com/Shuvo786/Nexway-API/internal/nexway/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutor_RejectsBeforeNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		url     string
		body    any
		wantMsg string
	}{
		{name: "unsupported verb", method: "PATCH", url: "http://example.invalid/x"},
		{name: "unknown verb", method: "FETCH", url: "http://example.invalid/x"},
		{name: "empty verb", method: "", url: "http://example.invalid/x"},
		{name: "empty url", method: http.MethodGet, url: ""},
		{
			name:    "query of unsupported type",
			method:  http.MethodGet,
			url:     "http://example.invalid/x",
			body:    42,
			wantMsg: "encoding query: unsupported query type int",
		},
		{
			name:    "body that cannot be marshaled",
			method:  http.MethodPost,
			url:     "http://example.invalid/x",
			body:    map[string]any{"ch": make(chan int)},
			wantMsg: "encoding request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// No expectations: any Do call fails the test.
			doer := mocks.NewMockDoer(t)
			exec := nexway.NewExecutor(doer, discardLogger())

			body, err := exec.Execute(context.Background(), tt.method, tt.url, tt.body, nil)
			require.ErrorIs(t, err, nexway.ErrInvalidRequest)
			assert.NotErrorIs(t, err, nexway.ErrTransport)
			assert.Nil(t, body)

			var ire *nexway.InvalidRequestError
			require.ErrorAs(t, err, &ire)
			assert.Equal(t, tt.method, ire.Method)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestExecutor_TransportFailure(t *testing.T) {
	t.Parallel()

	netErr := &url.Error{Op: "Post", URL: "http://api", Err: syscall.ECONNREFUSED}

	doer := mocks.NewMockDoer(t)
	doer.EXPECT().Do(mock.Anything).Return(nil, netErr)

	exec := nexway.NewExecutor(doer, discardLogger())
	_, err := exec.Execute(context.Background(), "post", "http://api/connect/stock", "{}", nil)

	require.ErrorIs(t, err, nexway.ErrTransport)
	require.ErrorIs(t, err, syscall.ECONNREFUSED)

	var te *nexway.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.StatusCode)
}

func TestExecutor_MethodCaseInsensitive(t *testing.T) {
	t.Parallel()

	doer := mocks.NewMockDoer(t)
	doer.EXPECT().
		Do(mock.MatchedBy(func(r *http.Request) bool { return r.Method == http.MethodDelete })).
		Return(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("done")),
		}, nil)

	exec := nexway.NewExecutor(doer, discardLogger())
	body, err := exec.Execute(context.Background(), "dElEtE", "http://api/iam/tokens/reset", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
}

func TestExecutor_Encoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		body      any
		headers   map[string]string
		wantQuery url.Values
		wantBody  string
	}{
		{
			name:      "GET map becomes query string",
			method:    "get",
			body:      map[string]string{"secret": "s", "provider": "p"},
			wantQuery: url.Values{"secret": {"s"}, "provider": {"p"}},
			wantBody:  "",
		},
		{
			name:      "GET url.Values becomes query string",
			method:    http.MethodGet,
			body:      url.Values{"config": {"c1"}},
			wantQuery: url.Values{"config": {"c1"}},
		},
		{
			name:      "POST map with JSON content type is JSON-encoded",
			method:    http.MethodPost,
			body:      map[string]string{"partnerOrderNumber": "PO-1"},
			headers:   map[string]string{"Content-Type": "application/json"},
			wantQuery: url.Values{},
			wantBody:  `{"partnerOrderNumber":"PO-1"}`,
		},
		{
			name:      "PUT map without content type is form-encoded",
			method:    http.MethodPut,
			body:      map[string]string{"a": "1", "b": "x y"},
			wantQuery: url.Values{},
			wantBody:  "a=1&b=x+y",
		},
		{
			name:      "POST pre-serialized string is sent as-is",
			method:    http.MethodPost,
			body:      `{"order":true}`,
			headers:   map[string]string{"Content-Type": "application/json"},
			wantQuery: url.Values{},
			wantBody:  `{"order":true}`,
		},
		{
			name:      "POST struct is JSON-encoded",
			method:    http.MethodPost,
			body:      struct{ Language string `json:"language"` }{Language: "en"},
			headers:   map[string]string{"Content-Type": "application/json; charset=utf-8"},
			wantQuery: url.Values{},
			wantBody:  `{"language":"en"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotQuery url.Values
			var gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				_, _ = w.Write([]byte("ok"))
			}))
			defer srv.Close()

			exec := nexway.NewExecutor(srv.Client(), discardLogger())
			body, err := exec.Execute(context.Background(), tt.method, srv.URL+"/x", tt.body, tt.headers)
			require.NoError(t, err)
			assert.Equal(t, "ok", string(body))
			assert.Equal(t, tt.wantQuery, gotQuery)
			assert.Equal(t, tt.wantBody, gotBody)
		})
	}
}

func TestExecutor_HeadersPassedThrough(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "partner-secret", r.Header.Get("secret"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	exec := nexway.NewExecutor(srv.Client(), discardLogger())
	_, err := exec.Execute(context.Background(), http.MethodGet, srv.URL, nil, map[string]string{
		"secret":        "partner-secret",
		"Authorization": "Bearer abc",
		"Cache-Control": "no-cache",
	})
	require.NoError(t, err)
}

func TestExecutor_StatusHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "200 returns body", status: http.StatusOK},
		{name: "201 returns body", status: http.StatusCreated},
		{name: "400 is a transport error", status: http.StatusBadRequest, wantErr: true},
		{name: "401 returns body", status: http.StatusUnauthorized},
		{name: "404 returns body", status: http.StatusNotFound},
		{name: "500 returns body", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"status":"x"}`))
			}))
			defer srv.Close()

			exec := nexway.NewExecutor(srv.Client(), discardLogger())
			body, err := exec.Execute(context.Background(), http.MethodGet, srv.URL, nil, nil)

			if tt.wantErr {
				require.ErrorIs(t, err, nexway.ErrTransport)
				var te *nexway.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.status, te.StatusCode)
				assert.JSONEq(t, `{"status":"x"}`, string(te.Body))
				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, `{"status":"x"}`, string(body))
		})
	}
}

func TestExecutor_DoesNotFollowRedirects(t *testing.T) {
	t.Parallel()

	var targetHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, _ *http.Request) {
		targetHits.Add(1)
		_, _ = w.Write([]byte("followed"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := nexway.New("s", "r", nexway.WithEndpoints(nexway.Endpoints{
		TokenURL: srv.URL, HostURL: srv.URL, FeedURL: srv.URL,
	}))
	require.NoError(t, err)

	body, err := c.Executor().Execute(context.Background(), http.MethodGet, srv.URL+"/start", nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "followed", string(body))
	assert.Equal(t, int32(0), targetHits.Load())
}

func TestExecutor_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := nexway.NewExecutor(srv.Client(), discardLogger())
	_, err := exec.Execute(ctx, http.MethodGet, srv.URL, nil, nil)
	require.ErrorIs(t, err, nexway.ErrTransport)
	assert.True(t, errors.Is(err, context.Canceled))
}
