package nexway

import (
	"context"
	"encoding/json"
	"net/http"
)

type categoriesParams struct {
	Secret   string `param:"secret" validate:"required"`
	Language string `param:"language" validate:"required"`
}

// GetCategories returns the catalog categories for a language.
func (c *Client) GetCategories(ctx context.Context, secret, language string) (json.RawMessage, error) {
	if err := checkParams("GetCategories", categoriesParams{Secret: secret, Language: language}); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "GetCategories",
		method:    http.MethodGet,
		url:       c.hostURL("connect", "catalog", "categories", escape(language)),
		secret:    secret,
	})
}

type secretParams struct {
	Secret string `param:"secret" validate:"required"`
}

// GetOperatingSystems returns the list of operating systems known to the
// catalog.
func (c *Client) GetOperatingSystems(ctx context.Context, secret string) (json.RawMessage, error) {
	if err := checkParams("GetOperatingSystems", secretParams{Secret: secret}); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "GetOperatingSystems",
		method:    http.MethodGet,
		url:       c.hostURL("connect", "catalog", "oslist"),
		secret:    secret,
	})
}
