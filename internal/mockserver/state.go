package mockserver

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errUnknownOrder        = errors.New("order not found")
	errUnknownSubscription = errors.New("subscription not found")
)

// Order is the mock server's view of a created order.
type Order struct {
	OrderID            string          `json:"orderId"`
	PartnerOrderNumber string          `json:"partnerOrderNumber"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	DownloadTime       string          `json:"downloadTime,omitempty"`
	CancelReasonCode   int             `json:"cancelReasonCode,omitempty"`
	CancelComment      string          `json:"cancelComment,omitempty"`
	Subscription       Subscription    `json:"subscription"`
	Document           json.RawMessage `json:"order"`
}

// Subscription is attached to every mock order.
type Subscription struct {
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
	Renewals       int    `json:"renewals"`
}

type grant struct {
	refresh string
	issued  time.Time
}

// state holds tokens and orders in memory.
type state struct {
	mu      sync.Mutex
	access  map[string]grant    // access token -> grant
	refresh map[string]struct{} // live refresh tokens
	orders  map[string]*Order   // keyed by orderId and partnerOrderNumber
	now     func() time.Time
}

func newState() *state {
	return &state{
		access:  make(map[string]grant),
		refresh: make(map[string]struct{}),
		orders:  make(map[string]*Order),
		now:     time.Now,
	}
}

func (s *state) issue() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access = uuid.NewString()
	refresh = "rt-" + uuid.NewString()
	s.access[access] = grant{refresh: refresh, issued: s.now()}
	s.refresh[refresh] = struct{}{}
	return access, refresh
}

// consumeRefresh removes a refresh token; refresh tokens are single use.
func (s *state) consumeRefresh(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refresh[token]; !ok {
		return false
	}
	delete(s.refresh, token)
	return true
}

func (s *state) validAccess(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.access[token]
	return ok
}

// revoke drops an access token and its refresh token.
func (s *state) revoke(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.access[access]; ok {
		delete(s.refresh, g.refresh)
		delete(s.access, access)
	}
}

func (s *state) createOrder(partnerOrderNumber string, doc json.RawMessage) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if partnerOrderNumber == "" {
		partnerOrderNumber = "PO-" + id[:8]
	}
	o := &Order{
		OrderID:            id,
		PartnerOrderNumber: partnerOrderNumber,
		Status:             "created",
		CreatedAt:          s.now().UTC(),
		Subscription: Subscription{
			SubscriptionID: "SUB-" + id[:8],
			Status:         "active",
		},
		Document: doc,
	}
	s.orders[o.OrderID] = o
	s.orders[o.PartnerOrderNumber] = o
	return *o
}

// withOrder runs fn on the order identified by key under the lock.
func (s *state) withOrder(key string, fn func(o *Order) error) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[key]
	if !ok {
		return Order{}, errUnknownOrder
	}
	if fn != nil {
		if err := fn(o); err != nil {
			return Order{}, err
		}
	}
	return *o, nil
}

func (s *state) withSubscription(partnerOrderNumber, subscriptionID string, fn func(sub *Subscription)) (Order, error) {
	return s.withOrder(partnerOrderNumber, func(o *Order) error {
		if o.Subscription.SubscriptionID != subscriptionID {
			return errUnknownSubscription
		}
		if fn != nil {
			fn(&o.Subscription)
		}
		return nil
	})
}
