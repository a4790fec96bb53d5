package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shuvo786/Nexway-API/internal/config"
	"github.com/Shuvo786/Nexway-API/internal/mockserver"
	"github.com/Shuvo786/Nexway-API/internal/nexway"
)

func newMock(t *testing.T) *httptest.Server {
	t.Helper()

	srv := mockserver.New(mockserver.Config{
		ClientSecret: "mock-client-secret",
		RealmName:    "mock-realm",
		Secret:       "mock-secret",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// execute runs the CLI against ts with mock credentials prepended.
func execute(t *testing.T, ts *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()

	base := []string{
		"--base-url", ts.URL,
		"--client-secret", "mock-client-secret",
		"--realm", "mock-realm",
		"--secret", "mock-secret",
		"--log-level", "error",
	}

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append(base, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	return out.String(), err
}

func TestStockCommand(t *testing.T) {
	t.Parallel()

	ts := newMock(t)
	out, err := execute(t, ts, "", "--output", "json", "stock", "REF-1", "OOS-2")
	require.NoError(t, err)

	var resp struct {
		Stocks []struct {
			ProductRef string `json:"productRef"`
			Available  bool   `json:"available"`
		} `json:"stocks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Stocks, 2)
	assert.True(t, resp.Stocks[0].Available)
	assert.Equal(t, "OOS-2", resp.Stocks[1].ProductRef)
	assert.False(t, resp.Stocks[1].Available)
}

func TestOrderCommands(t *testing.T) {
	t.Parallel()

	ts := newMock(t)

	out, err := execute(t, ts, `{"partnerOrderNumber":"ORD-42","items":[{"ref":"REF-1"}]}`, "orders", "create")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"orderId\"", "pretty output is indented")

	var created struct {
		OrderID      string `json:"orderId"`
		Subscription struct {
			SubscriptionID string `json:"subscriptionId"`
		} `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.OrderID)

	out, err = execute(t, ts, "", "--output", "json", "orders", "get", created.OrderID)
	require.NoError(t, err)
	assert.Contains(t, out, `"partnerOrderNumber":"ORD-42"`)

	out, err = execute(t, ts, "", "--output", "json", "subscriptions", "renew", "ORD-42", created.Subscription.SubscriptionID)
	require.NoError(t, err)
	assert.Contains(t, out, `"renewals":1`)

	out, err = execute(t, ts, "", "--output", "json", "orders", "cancel", "ORD-42", "--comment", "test")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"cancelled"`)
	assert.Contains(t, out, `"cancelReasonCode":2`)
}

func TestOrderCreate_InvalidDocument(t *testing.T) {
	t.Parallel()

	ts := newMock(t)
	_, err := execute(t, ts, "not json", "orders", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestCatalogCommands(t *testing.T) {
	t.Parallel()

	ts := newMock(t)

	_, err := execute(t, ts, "", "catalog", "categories", "fr")
	require.NoError(t, err)

	_, err = execute(t, ts, "", "catalog", "oslist")
	require.NoError(t, err)
}

func TestFeedCommand(t *testing.T) {
	t.Parallel()

	ts := newMock(t)
	path := filepath.Join(t.TempDir(), "catalog.xml")

	out, err := execute(t, ts, "", "feed", "--provider", "acme", "--feed-config", "default", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml")))
}

func TestFeedCommand_MissingProvider(t *testing.T) {
	t.Parallel()

	ts := newMock(t)
	_, err := execute(t, ts, "", "feed")
	require.ErrorIs(t, err, nexway.ErrMissingParameter)
}

func TestTokenCommand(t *testing.T) {
	t.Parallel()

	ts := newMock(t)

	out, err := execute(t, ts, "", "token")
	require.NoError(t, err)
	assert.Contains(t, out, "Access token:")
	assert.Contains(t, out, "****")

	out, err = execute(t, ts, "", "--output", "json", "token", "--show")
	require.NoError(t, err)
	var tok map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tok))
	assert.NotContains(t, tok["access_token"], "*")
	assert.Equal(t, "Bearer", tok["token_type"])

	out, err = execute(t, ts, "", "token", "invalidate")
	require.NoError(t, err)
	assert.Equal(t, "Tokens reset.\n", out)
}

func TestCommand_BadCredentials(t *testing.T) {
	t.Parallel()

	ts := newMock(t)
	_, err := execute(t, ts, "", "--client-secret", "wrong", "stock", "REF-1")
	require.ErrorIs(t, err, nexway.ErrAuth)
}

func TestCommand_MissingCredentials(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"stock", "REF-1"})
	root.SetOut(io.Discard)
	root.SetErr(&errOut)

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nexway.client_secret is required")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"version"})
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "nexway dev "))
}

func TestPrintDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		doc     string
		want    string
		wantErr bool
	}{
		{name: "pretty", format: "pretty", doc: `{"a":1,"b":[true]}`, want: "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}\n"},
		{name: "json passthrough", format: "json", doc: " {\"a\":1}\n", want: "{\"a\":1}\n"},
		{name: "pretty rejects invalid", format: "pretty", doc: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := printDocument(&buf, tt.format, json.RawMessage(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestClientOptions_Endpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		feed    string
		env     string
		want    nexway.Endpoints
		wantEnv nexway.Environment
	}{
		{
			name:    "environment defaults",
			env:     "production",
			want:    nexway.EndpointsFor(nexway.Production),
			wantEnv: nexway.Production,
		},
		{
			name:    "base url overrides all hosts",
			env:     "staging",
			base:    "http://127.0.0.1:8089/",
			want:    nexway.Endpoints{TokenURL: "http://127.0.0.1:8089", HostURL: "http://127.0.0.1:8089", FeedURL: "http://127.0.0.1:8089"},
			wantEnv: nexway.Staging,
		},
		{
			name: "feed url alone keeps environment hosts",
			env:  "staging",
			feed: "http://feed.local",
			want: func() nexway.Endpoints {
				e := nexway.EndpointsFor(nexway.Staging)
				e.FeedURL = "http://feed.local"
				return e
			}(),
			wantEnv: nexway.Staging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Defaults()
			cfg.Nexway.Environment = tt.env
			cfg.Nexway.BaseURL = tt.base
			cfg.Nexway.FeedURL = tt.feed

			opts, err := clientOptions(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.NoError(t, err)
			c, err := nexway.New("cs", "realm", opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Endpoints())
			assert.Equal(t, tt.wantEnv, c.Environment())
		})
	}
}

func TestClientOptions_EnvironmentMatchesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env    string
		wantOK bool
	}{
		{env: "staging", wantOK: true},
		{env: "Production", wantOK: true},
		{env: "prod", wantOK: false},
		{env: "uat", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			cfg := config.Defaults()
			cfg.Nexway.ClientSecret = "cs"
			cfg.Nexway.RealmName = "realm"
			cfg.Nexway.Environment = tt.env

			_, optsErr := clientOptions(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			validateErr := cfg.Validate()

			assert.Equal(t, tt.wantOK, optsErr == nil, "clientOptions")
			assert.Equal(t, tt.wantOK, validateErr == nil, "Validate")
		})
	}
}
