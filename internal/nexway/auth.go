package nexway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Shuvo786/Nexway-API/internal/metrics"
)

const (
	tokenPath      = "/iam/tokens"
	tokenResetPath = "/iam/tokens/reset" //nolint:gosec // not a credential

	grantClientCredentials = "client_credentials"
	grantRefreshToken      = "refresh_token" //nolint:gosec // grant type name
)

// Token is the grant returned by the token endpoint.
type Token struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int
	RefreshExpiresIn int
	ObtainedAt       time.Time
}

// TokenManager owns the current access/refresh token pair. It moves between
// two states: unauthenticated (no token) and authenticated. Acquire enters
// the authenticated state, Invalidate always leaves it.
type TokenManager struct {
	creds    Credentials
	tokenURL string
	resetURL string
	exec     *Executor
	logger   *slog.Logger

	mu      sync.Mutex
	token   *Token
	nowFunc func() time.Time
}

func newTokenManager(
	creds Credentials,
	endpoints Endpoints,
	exec *Executor,
	logger *slog.Logger,
	now func() time.Time,
) *TokenManager {
	return &TokenManager{
		creds:    creds,
		tokenURL: strings.TrimRight(endpoints.TokenURL, "/") + tokenPath,
		resetURL: strings.TrimRight(endpoints.HostURL, "/") + tokenResetPath,
		exec:     exec,
		logger:   logger,
		nowFunc:  now,
	}
}

type tokenRequest struct {
	ClientSecret string `json:"clientSecret"`
	RealmName    string `json:"realmName"`
	GrantType    string `json:"grantType"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// tokenResponse decodes only the fields that decide the outcome strictly.
// The descriptive fields are kept raw and read best-effort.
type tokenResponse struct {
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token"`
	Error            json.RawMessage `json:"error"`
	Message          json.RawMessage `json:"message"`
	TokenType        json.RawMessage `json:"token_type"`
	ExpiresIn        json.RawMessage `json:"expires_in"`
	RefreshExpiresIn json.RawMessage `json:"refresh_expires_in"`
}

// tokenResult is either tokenSuccess or tokenFailure.
type tokenResult interface {
	tokenResult()
}

type tokenSuccess struct {
	token Token
}

type tokenFailure struct {
	code    string
	message string
}

func (tokenSuccess) tokenResult() {}
func (tokenFailure) tokenResult() {}

// Acquire returns a fresh access token. When forceRefresh is set and a
// refresh token is held, it uses the refresh-token grant; otherwise it
// performs a client-credentials grant. There is no expiry check: every call
// goes to the token endpoint.
func (m *TokenManager) Acquire(ctx context.Context, forceRefresh bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req := tokenRequest{
		ClientSecret: m.creds.ClientSecret,
		RealmName:    m.creds.RealmName,
		GrantType:    grantClientCredentials,
	}
	if forceRefresh && m.token != nil && m.token.RefreshToken != "" {
		req.GrantType = grantRefreshToken
		req.RefreshToken = m.token.RefreshToken
	}

	tok, err := m.grant(ctx, req)
	metrics.TokenGrantsTotal.WithLabelValues(req.GrantType, metrics.Result(err)).Inc()
	if err != nil {
		return "", fmt.Errorf("%s grant: %w", req.GrantType, err)
	}

	m.token = tok
	return tok.AccessToken, nil
}

func (m *TokenManager) grant(ctx context.Context, req tokenRequest) (*Token, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling token request: %w", err)
	}

	m.logger.Debug("requesting token", "grant_type", req.GrantType, "realm", m.creds.RealmName)

	body, err := m.exec.Execute(ctx, http.MethodPost, m.tokenURL, payload, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	result, err := parseTokenResponse(body)
	if err != nil {
		return nil, err
	}

	switch r := result.(type) {
	case tokenFailure:
		return nil, &AuthError{Code: r.code, Message: r.message}
	case tokenSuccess:
		r.token.ObtainedAt = m.nowFunc()
		return &r.token, nil
	default:
		return nil, ErrTokenNotFound
	}
}

func parseTokenResponse(body []byte) (tokenResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyResponse
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: token response is not a JSON object", ErrUnsupportedFormat)
	}

	var resp tokenResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	if present(resp.Error) {
		return tokenFailure{
			code:    rawString(resp.Error),
			message: rawString(resp.Message),
		}, nil
	}
	if resp.AccessToken == "" {
		return nil, ErrTokenNotFound
	}

	return tokenSuccess{token: Token{
		AccessToken:      resp.AccessToken,
		RefreshToken:     resp.RefreshToken,
		TokenType:        rawString(resp.TokenType),
		ExpiresIn:        rawSeconds(resp.ExpiresIn),
		RefreshExpiresIn: rawSeconds(resp.RefreshExpiresIn),
	}}, nil
}

// Invalidate asks the server to reset refresh tokens and clears the local
// token regardless of the outcome. The reset error, if any, is returned.
func (m *TokenManager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	headers := map[string]string{}
	if m.token != nil {
		headers["Authorization"] = "Bearer " + m.token.AccessToken
	}
	m.token = nil

	_, err := m.exec.Execute(ctx, http.MethodDelete, m.resetURL, nil, headers)
	metrics.TokenInvalidationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		m.logger.Warn("token reset call failed, local token cleared", "error", err)
		return fmt.Errorf("resetting tokens: %w", err)
	}
	return nil
}

// Authenticated reports whether a token is currently held.
func (m *TokenManager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != nil
}

// Token returns a copy of the held token.
func (m *TokenManager) Token() (Token, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return Token{}, false
	}
	return *m.token, true
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func rawString(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// rawSeconds reads a duration given as a JSON number or a numeric string.
// Anything else reads as zero.
func rawSeconds(raw json.RawMessage) int {
	f, err := strconv.ParseFloat(rawString(raw), 64)
	if err != nil {
		return 0
	}
	return int(f)
}
