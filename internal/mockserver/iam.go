package mockserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	accessTTL  = 300
	refreshTTL = 1800
)

type tokenRequest struct {
	ClientSecret string `json:"clientSecret"`
	RealmName    string `json:"realmName"`
	GrantType    string `json:"grantType"`
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
}

type tokenError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleToken serves POST /iam/tokens for both grant types.
func (s *Server) handleToken(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, tokenError{Error: "invalid_request", Message: "malformed body"})
	}

	if req.ClientSecret != s.cfg.ClientSecret || req.RealmName != s.cfg.RealmName {
		s.log.Warn("token request rejected", "realm", req.RealmName, "grant_type", req.GrantType)
		return c.JSON(http.StatusUnauthorized, tokenError{
			Error:   "invalid_client",
			Message: "invalid client credentials",
		})
	}

	switch req.GrantType {
	case "client_credentials":
	case "refresh_token":
		if !s.state.consumeRefresh(req.RefreshToken) {
			return c.JSON(http.StatusUnauthorized, tokenError{
				Error:   "invalid_grant",
				Message: "refresh token is not active",
			})
		}
	default:
		return c.JSON(http.StatusBadRequest, tokenError{
			Error:   "unsupported_grant_type",
			Message: "grant type " + req.GrantType + " is not supported",
		})
	}

	access, refresh := s.state.issue()
	s.log.Debug("issued token", "grant_type", req.GrantType, "realm", req.RealmName)

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        accessTTL,
		RefreshExpiresIn: refreshTTL,
	})
}

// handleTokenReset serves DELETE /iam/tokens/reset. A known bearer token is
// revoked together with its refresh token; anything else is a no-op.
func (s *Server) handleTokenReset(c echo.Context) error {
	if bearer, ok := bearerToken(c.Request()); ok {
		s.state.revoke(bearer)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}
