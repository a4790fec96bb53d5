package nexway

import (
	"context"
	"encoding/json"
	"net/http"
)

// SubscriptionRequest identifies a subscription within a partner order.
type SubscriptionRequest struct {
	Secret             string `json:"-" param:"secret" validate:"required"`
	PartnerOrderNumber string `json:"partnerOrderNumber" validate:"required"`
	SubscriptionID     string `json:"subscriptionId" validate:"required"`
}

// GetSubscriptionStatus returns the state of a subscription.
func (c *Client) GetSubscriptionStatus(ctx context.Context, req SubscriptionRequest) (json.RawMessage, error) {
	return c.subscription(ctx, "GetSubscriptionStatus", http.MethodPost, req, "connect", "subscription")
}

// CancelSubscription stops a subscription.
func (c *Client) CancelSubscription(ctx context.Context, req SubscriptionRequest) (json.RawMessage, error) {
	return c.subscription(ctx, "CancelSubscription", http.MethodPut, req, "connect", "subscription")
}

// RenewSubscription renews a subscription.
func (c *Client) RenewSubscription(ctx context.Context, req SubscriptionRequest) (json.RawMessage, error) {
	return c.subscription(ctx, "RenewSubscription", http.MethodPut, req, "connect", "subscription", "renew")
}

func (c *Client) subscription(
	ctx context.Context,
	operation, method string,
	req SubscriptionRequest,
	path ...string,
) (json.RawMessage, error) {
	if err := checkParams(operation, req); err != nil {
		return nil, err
	}

	return c.sendJSON(ctx, call{
		operation: operation,
		method:    method,
		url:       c.hostURL(path...),
		secret:    req.Secret,
		body:      req,
	})
}
