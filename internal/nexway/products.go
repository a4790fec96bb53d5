package nexway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

type stockParams struct {
	Secret      string   `json:"-" param:"secret" validate:"required"`
	ProductRefs []string `json:"productRefs" validate:"required,min=1,dive,required"`
}

// GetStockStatus returns stock information for one or more product
// references. A single reference is sent as a one-element list.
func (c *Client) GetStockStatus(
	ctx context.Context,
	secret string,
	productRefs ...string,
) (json.RawMessage, error) {
	p := stockParams{Secret: secret, ProductRefs: refs(productRefs)}
	if err := checkParams("GetStockStatus", p); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "GetStockStatus",
		method:    http.MethodPost,
		url:       c.hostURL("connect", "stock"),
		secret:    secret,
		body:      p,
	})
}

type crossUpSellParams struct {
	Secret   string   `json:"-" param:"secret" validate:"required"`
	Language string   `json:"language" validate:"required"`
	Products []string `json:"products" validate:"required,min=1,dive,required"`
}

// GetCrossUpSell returns cross-sell and up-sell suggestions for the given
// products.
func (c *Client) GetCrossUpSell(
	ctx context.Context,
	secret, language string,
	products ...string,
) (json.RawMessage, error) {
	p := crossUpSellParams{Secret: secret, Language: language, Products: refs(products)}
	if err := checkParams("GetCrossUpSell", p); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "GetCrossUpSell",
		method:    http.MethodPost,
		url:       c.hostURL("connect", "order", "crossupsell"),
		secret:    secret,
		body:      p,
	})
}

type feedParams struct {
	Secret   string `param:"secret" validate:"required"`
	Provider string `param:"provider" validate:"required"`
	Config   string `param:"config" validate:"required"`
}

// GetProductFeed downloads the XML catalog feed. The feed endpoint is not
// authenticated with a bearer token; the secret travels in the query string.
// The XML is returned unparsed.
func (c *Client) GetProductFeed(
	ctx context.Context,
	secret, provider, config string,
) ([]byte, error) {
	p := feedParams{Secret: secret, Provider: provider, Config: config}
	if err := checkParams("GetProductFeed", p); err != nil {
		return nil, err
	}

	return c.send(ctx, call{
		operation: "GetProductFeed",
		method:    http.MethodGet,
		url:       strings.TrimRight(c.endpoints.FeedURL, "/") + "/getCatalog.xml",
		body: url.Values{
			"secret":   {secret},
			"provider": {provider},
			"config":   {config},
		},
		public: true,
	})
}
