package mockserver

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type catalog struct {
	XMLName  xml.Name      `xml:"catalog"`
	Provider string        `xml:"provider,attr"`
	Config   string        `xml:"config,attr"`
	Products []feedProduct `xml:"product"`
}

type feedProduct struct {
	Ref      string `xml:"ref,attr"`
	Name     string `xml:"name"`
	Price    string `xml:"price"`
	Currency string `xml:"currency"`
}

var feedProducts = []feedProduct{
	{Ref: "NW-AV-001", Name: "Antivirus Plus 1 Year", Price: "29.99", Currency: "EUR"},
	{Ref: "NW-OF-002", Name: "Office Suite Home", Price: "79.00", Currency: "EUR"},
	{Ref: "NW-UT-003", Name: "Disk Utilities Pro", Price: "19.50", Currency: "EUR"},
}

// handleCatalogFeed serves GET /getCatalog.xml. The feed is authenticated by
// the secret query parameter only.
func (s *Server) handleCatalogFeed(c echo.Context) error {
	if c.QueryParam("secret") != s.cfg.Secret {
		return c.String(http.StatusForbidden, "invalid secret")
	}
	provider, cfg := c.QueryParam("provider"), c.QueryParam("config")
	if provider == "" || cfg == "" {
		return c.String(http.StatusNotFound, "unknown provider or config")
	}

	return c.XML(http.StatusOK, catalog{
		Provider: provider,
		Config:   cfg,
		Products: feedProducts,
	})
}
