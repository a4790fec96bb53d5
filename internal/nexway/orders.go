package nexway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// DefaultCancelReasonCode is the reason code used by the CLI when none is
// given.
const DefaultCancelReasonCode = "2"

type createOrderParams struct {
	Secret string          `param:"secret" validate:"required"`
	Order  json.RawMessage `param:"order" validate:"required,min=1"`
}

// CreateOrder submits an order document. The document is sent unmodified.
func (c *Client) CreateOrder(
	ctx context.Context,
	secret string,
	order json.RawMessage,
) (json.RawMessage, error) {
	p := createOrderParams{Secret: secret, Order: order}
	if err := checkParams("CreateOrder", p); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "CreateOrder",
		method:    http.MethodPost,
		url:       c.hostURL("connect", "order", "new"),
		secret:    secret,
		body:      order,
	})
}

// CancelOrderRequest identifies the order to cancel. ReasonCode must be an
// unsigned integer in decimal form.
type CancelOrderRequest struct {
	Secret             string `param:"secret" validate:"required"`
	PartnerOrderNumber string `param:"partnerOrderNumber" validate:"required"`
	ReasonCode         string `param:"reasonCode" validate:"required,number"`
	Comment            string `param:"comment"`
}

type cancelOrderBody struct {
	Comment            string `json:"comment"`
	PartnerOrderNumber string `json:"partnerOrderNumber"`
	ReasonCode         int    `json:"reasonCode"`
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) (json.RawMessage, error) {
	if err := checkParams("CancelOrder", req); err != nil {
		return nil, err
	}
	code, err := strconv.Atoi(req.ReasonCode)
	if err != nil {
		return nil, &MissingParameterError{Operation: "CancelOrder", Fields: []string{"reasonCode"}}
	}

	return c.sendJSON(ctx, call{
		operation: "CancelOrder",
		method:    http.MethodPut,
		url:       c.hostURL("connect", "order", "cancel"),
		secret:    req.Secret,
		body: cancelOrderBody{
			Comment:            req.Comment,
			PartnerOrderNumber: req.PartnerOrderNumber,
			ReasonCode:         code,
		},
	})
}

type orderParams struct {
	Secret  string `param:"secret" validate:"required"`
	OrderID string `param:"orderId" validate:"required"`
}

// GetOrder returns an order.
func (c *Client) GetOrder(ctx context.Context, secret, orderID string) (json.RawMessage, error) {
	if err := checkParams("GetOrder", orderParams{Secret: secret, OrderID: orderID}); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "GetOrder",
		method:    http.MethodGet,
		url:       c.hostURL("connect", "order", escape(orderID)),
		secret:    secret,
	})
}

// GetOrderDownloadInfo returns the download links of an order.
func (c *Client) GetOrderDownloadInfo(
	ctx context.Context,
	secret, orderID string,
) (json.RawMessage, error) {
	if err := checkParams("GetOrderDownloadInfo", orderParams{Secret: secret, OrderID: orderID}); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "GetOrderDownloadInfo",
		method:    http.MethodGet,
		url:       c.hostURL("connect", "order", escape(orderID), "download"),
		secret:    secret,
	})
}

type downloadTimeParams struct {
	PartnerOrderNumber string `json:"partnerOrderNumber" validate:"required"`
	Value              string `json:"value" validate:"required"`
}

// UpdateDownloadTime changes the download expiry of an order. The secret is
// optional for this endpoint and only sent when non-empty.
func (c *Client) UpdateDownloadTime(
	ctx context.Context,
	secret, partnerOrderNumber, value string,
) (json.RawMessage, error) {
	p := downloadTimeParams{PartnerOrderNumber: partnerOrderNumber, Value: value}
	if err := checkParams("UpdateDownloadTime", p); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: "UpdateDownloadTime",
		method:    http.MethodPut,
		url:       c.hostURL("connect", "order", "download"),
		secret:    secret,
		body:      p,
	})
}
