package mockserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: msg})
}

type stockRequest struct {
	ProductRefs []string `json:"productRefs"`
}

type stockEntry struct {
	ProductRef string `json:"productRef"`
	Available  bool   `json:"available"`
	Quantity   int    `json:"quantity"`
}

// handleStock reports every product as available except references starting
// with "OOS".
func (s *Server) handleStock(c echo.Context) error {
	var req stockRequest
	if err := c.Bind(&req); err != nil || len(req.ProductRefs) == 0 {
		return badRequest(c, "productRefs is required")
	}

	stocks := make([]stockEntry, 0, len(req.ProductRefs))
	for _, ref := range req.ProductRefs {
		e := stockEntry{ProductRef: ref, Available: true, Quantity: 100}
		if strings.HasPrefix(ref, "OOS") {
			e.Available, e.Quantity = false, 0
		}
		stocks = append(stocks, e)
	}
	return c.JSON(http.StatusOK, map[string]any{"stocks": stocks})
}

type crossUpSellRequest struct {
	Language string   `json:"language"`
	Products []string `json:"products"`
}

func (s *Server) handleCrossUpSell(c echo.Context) error {
	var req crossUpSellRequest
	if err := c.Bind(&req); err != nil || req.Language == "" || len(req.Products) == 0 {
		return badRequest(c, "language and products are required")
	}

	crossSell := make([]string, 0, len(req.Products))
	upSell := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		crossSell = append(crossSell, p+"-ADDON")
		upSell = append(upSell, p+"-PREMIUM")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"language":  req.Language,
		"crossSell": crossSell,
		"upSell":    upSell,
	})
}

// handleCreateOrder stores the submitted document as-is. The partner order
// number is taken from the document when present.
func (s *Server) handleCreateOrder(c echo.Context) error {
	doc, err := io.ReadAll(c.Request().Body)
	if err != nil || !json.Valid(doc) {
		return badRequest(c, "order must be a JSON document")
	}

	var head struct {
		PartnerOrderNumber string `json:"partnerOrderNumber"`
	}
	// Non-object documents simply have no order number.
	_ = json.Unmarshal(doc, &head)

	o := s.state.createOrder(head.PartnerOrderNumber, doc)
	s.log.Info("order created", "order_id", o.OrderID, "partner_order_number", o.PartnerOrderNumber)
	return c.JSON(http.StatusCreated, o)
}

type cancelOrderRequest struct {
	Comment            string `json:"comment"`
	PartnerOrderNumber string `json:"partnerOrderNumber"`
	ReasonCode         int    `json:"reasonCode"`
}

func (s *Server) handleCancelOrder(c echo.Context) error {
	var req cancelOrderRequest
	if err := c.Bind(&req); err != nil || req.PartnerOrderNumber == "" {
		return badRequest(c, "partnerOrderNumber is required")
	}

	o, err := s.state.withOrder(req.PartnerOrderNumber, func(o *Order) error {
		o.Status = "cancelled"
		o.CancelReasonCode = req.ReasonCode
		o.CancelComment = req.Comment
		o.Subscription.Status = "cancelled"
		return nil
	})
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

type downloadTimeRequest struct {
	PartnerOrderNumber string `json:"partnerOrderNumber"`
	Value              string `json:"value"`
}

func (s *Server) handleUpdateDownloadTime(c echo.Context) error {
	var req downloadTimeRequest
	if err := c.Bind(&req); err != nil || req.PartnerOrderNumber == "" || req.Value == "" {
		return badRequest(c, "partnerOrderNumber and value are required")
	}

	o, err := s.state.withOrder(req.PartnerOrderNumber, func(o *Order) error {
		o.DownloadTime = req.Value
		return nil
	})
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"partnerOrderNumber": o.PartnerOrderNumber,
		"downloadTime":       o.DownloadTime,
	})
}

func (s *Server) handleGetOrder(c echo.Context) error {
	o, err := s.state.withOrder(c.Param("id"), nil)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

type download struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func (s *Server) handleOrderDownload(c echo.Context) error {
	o, err := s.state.withOrder(c.Param("id"), nil)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if o.Status == "cancelled" {
		return c.JSON(http.StatusConflict, apiError{Code: http.StatusConflict, Message: "order is cancelled"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"orderId": o.OrderID,
		"downloads": []download{{
			URL:       "https://downloads.example.invalid/" + o.OrderID,
			ExpiresAt: o.DownloadTime,
		}},
	})
}

type subscriptionRequest struct {
	PartnerOrderNumber string `json:"partnerOrderNumber"`
	SubscriptionID     string `json:"subscriptionId"`
}

func (s *Server) subscription(c echo.Context, fn func(sub *Subscription)) error {
	var req subscriptionRequest
	if err := c.Bind(&req); err != nil || req.PartnerOrderNumber == "" || req.SubscriptionID == "" {
		return badRequest(c, "partnerOrderNumber and subscriptionId are required")
	}

	o, err := s.state.withSubscription(req.PartnerOrderNumber, req.SubscriptionID, fn)
	switch {
	case errors.Is(err, errUnknownOrder), errors.Is(err, errUnknownSubscription):
		return badRequest(c, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"partnerOrderNumber": o.PartnerOrderNumber,
		"subscription":       o.Subscription,
	})
}

func (s *Server) handleSubscriptionStatus(c echo.Context) error {
	return s.subscription(c, nil)
}

func (s *Server) handleSubscriptionCancel(c echo.Context) error {
	return s.subscription(c, func(sub *Subscription) {
		sub.Status = "cancelled"
	})
}

func (s *Server) handleSubscriptionRenew(c echo.Context) error {
	return s.subscription(c, func(sub *Subscription) {
		sub.Status = "active"
		sub.Renewals++
	})
}

type category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var categoryNames = map[string][]string{
	"en": {"Antivirus", "Office", "Games", "Utilities"},
	"fr": {"Antivirus", "Bureautique", "Jeux", "Utilitaires"},
	"de": {"Antivirus", "Büro", "Spiele", "Werkzeuge"},
}

func (s *Server) handleCategories(c echo.Context) error {
	lang := strings.ToLower(c.Param("language"))
	names, ok := categoryNames[lang]
	if !ok {
		return c.JSON(http.StatusNotFound, apiError{Code: http.StatusNotFound, Message: "unknown language " + lang})
	}

	cats := make([]category, 0, len(names))
	for i, n := range names {
		cats = append(cats, category{ID: i + 1, Name: n})
	}
	return c.JSON(http.StatusOK, map[string]any{"language": lang, "categories": cats})
}

func (s *Server) handleOperatingSystems(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"operatingSystems": []string{"Windows", "macOS", "Linux", "Android", "iOS"},
	})
}
