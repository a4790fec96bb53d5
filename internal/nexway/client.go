// Package nexway provides a client for the Nexway Connect REST API: token
// lifecycle management plus the order, subscription, catalog, stock and
// product feed endpoints.
package nexway

import (
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 30 * time.Second
	tracerName     = "github.com/Shuvo786/Nexway-API/internal/nexway"
)

// Environment selects one of the two fixed Nexway URL sets.
type Environment int

const (
	// Staging targets the UAT environment. It is the default.
	Staging Environment = iota
	// Production targets the live environment.
	Production
)

func (e Environment) String() string {
	if e == Production {
		return "production"
	}
	return "staging"
}

// ParseEnvironment converts "production" or "staging" (any case) to an
// Environment. An empty string means staging. Anything else is reported as
// not ok.
func ParseEnvironment(s string) (Environment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production":
		return Production, true
	case "staging", "":
		return Staging, true
	default:
		return Staging, false
	}
}

// Endpoints is the set of base URLs used by a client. All three always come
// from the same environment.
type Endpoints struct {
	TokenURL string
	HostURL  string
	FeedURL  string
}

// EndpointsFor returns the fixed URL set for env.
func EndpointsFor(env Environment) Endpoints {
	if env == Production {
		return Endpoints{
			TokenURL: "https://api.nexway.store",
			HostURL:  "https://api.nexway.store",
			FeedURL:  "http://webservices.nexway.com",
		}
	}
	return Endpoints{
		TokenURL: "https://api.staging.nexway.build",
		HostURL:  "https://api-uat.staging.nexway.build",
		FeedURL:  "http://connect-uat.nexway.build",
	}
}

// Credentials identify the partner account against the token endpoint.
type Credentials struct {
	ClientSecret string
	RealmName    string
	Environment  Environment
}

// Doer is the HTTP transport capability the client depends on.
// *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Nexway Connect API client. A Client holds a single cached
// token and is not safe for concurrent domain calls that expect to share
// one token grant; each call performs its own grant.
type Client struct {
	creds     Credentials
	endpoints *Endpoints
	doer      Doer
	timeout   time.Duration
	insecure  bool
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	exec   *Executor
	tokens *TokenManager
}

// Option configures the Client.
type Option func(*Client)

// WithEnvironment selects production or staging. Staging is the default.
func WithEnvironment(env Environment) Option {
	return func(c *Client) {
		c.creds.Environment = env
	}
}

// WithEndpoints overrides the whole URL set, e.g. to target a mock server.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = &e
	}
}

// WithHTTPClient overrides the HTTP transport. WithTimeout and
// WithInsecureSkipVerify have no effect when a custom Doer is supplied.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithTimeout overrides the 30 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate and host verification.
// This only exists for compatibility with legacy staging setups and must
// not be enabled against production.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithNowFunc overrides the clock used to stamp Token.ObtainedAt.
func WithNowFunc(fn func() time.Time) Option {
	return func(c *Client) {
		c.now = fn
	}
}

// WithTracer overrides the OpenTelemetry tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New creates a client for the given partner credentials.
func New(clientSecret, realmName string, opts ...Option) (*Client, error) {
	var missing []string
	if clientSecret == "" {
		missing = append(missing, "clientSecret")
	}
	if realmName == "" {
		missing = append(missing, "realmName")
	}
	if len(missing) > 0 {
		return nil, &MissingParameterError{Operation: "New", Fields: missing}
	}

	c := &Client{
		creds: Credentials{
			ClientSecret: clientSecret,
			RealmName:    realmName,
			Environment:  Staging,
		},
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.endpoints == nil {
		e := EndpointsFor(c.creds.Environment)
		c.endpoints = &e
	}
	if c.doer == nil {
		c.doer = newHTTPClient(c.timeout, c.insecure)
	}
	if c.insecure {
		c.logger.Warn("TLS verification disabled", "environment", c.creds.Environment.String())
	}

	c.exec = NewExecutor(c.doer, c.logger)
	c.tokens = newTokenManager(c.creds, *c.endpoints, c.exec, c.logger, c.now)

	return c, nil
}

// Environment reports the environment the client was built for.
func (c *Client) Environment() Environment {
	return c.creds.Environment
}

// Endpoints reports the URL set in use.
func (c *Client) Endpoints() Endpoints {
	return *c.endpoints
}

// Tokens returns the client's token manager.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// Executor returns the generic executor used by every operation.
func (c *Client) Executor() *Executor {
	return c.exec
}

func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // explicit legacy opt-in
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
