package nexway_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
)

// recordedRequest is a snapshot of a request received by fakeAPI.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeAPI serves /iam/tokens with sequential tokens and delegates every
// other path to api. It records every request it sees.
type fakeAPI struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	grants   int
}

func newFakeAPI(t *testing.T, api http.HandlerFunc) *fakeAPI {
	t.Helper()

	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()

		if r.Method == http.MethodPost && r.URL.Path == "/iam/tokens" {
			f.mu.Lock()
			f.grants++
			n := f.grants
			f.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"access_token":"tok-%d","refresh_token":"ref-%d","expires_in":300}`, n, n)
			return
		}
		if api != nil {
			api(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeAPI) endpoints() nexway.Endpoints {
	return nexway.Endpoints{
		TokenURL: f.srv.URL,
		HostURL:  f.srv.URL,
		FeedURL:  f.srv.URL + "/feed",
	}
}

func (f *fakeAPI) client(t *testing.T, opts ...nexway.Option) *nexway.Client {
	t.Helper()

	opts = append([]nexway.Option{nexway.WithEndpoints(f.endpoints())}, opts...)
	c, err := nexway.New("client-secret", "partner-realm", opts...)
	require.NoError(t, err)
	return c
}

// apiRequests returns recorded requests excluding token grants.
func (f *fakeAPI) apiRequests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedRequest
	for _, r := range f.requests {
		if r.Path == "/iam/tokens" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// tokenRequests returns recorded token grant requests.
func (f *fakeAPI) tokenRequests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedRequest
	for _, r := range f.requests {
		if r.Path == "/iam/tokens" {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func jsonOK(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}
