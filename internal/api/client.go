package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/tayloree/foodcat/internal/categorize"
)

const (
	defaultBaseURL = "https://squid-api.tjek.com/v2"
	userAgent      = "foodcat/1.0"

	unknownProduct   = "Ukendt produkt"
	unknownStore     = "Ukendt butik"
	unknownStartDate = "Ukendt startdato"
	unknownEndDate   = "Ukendt slutdato"
	defaultCurrency  = "DKK"
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status from catalog API")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	Retries           int
	RequestsPerSecond float64
}

// Client talks to the Tjek catalog API.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a catalog API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

// NewClientWithBaseURL creates an unthrottled client without retries (for testing).
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient(Options{BaseURL: baseURL, Timeout: 5 * time.Second})
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

func (c *Client) getAndDecode(ctx context.Context, path string, params map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.baseURL + path)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("executing request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode(), path)
	}

	if err := json.Unmarshal([]byte(resp.String()), out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// FetchCatalogs lists the newest paged catalogs for a dealer, dropping
// catalogs without offers.
func (c *Client) FetchCatalogs(ctx context.Context, dealer Dealer) ([]Catalog, error) {
	params := map[string]string{
		"dealer_id": dealer.ID,
		"order_by":  "-publication_date",
		"offset":    "0",
		"limit":     "24",
		"types":     "paged",
	}

	var raw []Catalog
	if err := c.getAndDecode(ctx, "/catalogs", params, &raw); err != nil {
		return nil, fmt.Errorf("fetching catalogs for %s: %w", dealer.Name, err)
	}

	catalogs := make([]Catalog, 0, len(raw))
	for _, cat := range raw {
		if cat.OfferCount <= 0 {
			continue
		}
		cat.Dealer = dealer.Name
		catalogs = append(catalogs, cat)
	}
	return catalogs, nil
}

// FetchHotspots returns the offers of a catalog mapped to engine offers.
func (c *Client) FetchHotspots(ctx context.Context, catalog Catalog) ([]categorize.Offer, error) {
	var hotspots []Hotspot
	if err := c.getAndDecode(ctx, "/catalogs/"+catalog.ID+"/hotspots", nil, &hotspots); err != nil {
		return nil, fmt.Errorf("fetching hotspots for catalog %s: %w", catalog.ID, err)
	}

	offers := make([]categorize.Offer, 0, len(hotspots))
	for _, h := range hotspots {
		offers = append(offers, toOffer(h.Offer, catalog.Dealer))
	}
	return offers, nil
}

// FetchAllCatalogs lists catalogs for every dealer. A dealer whose listing
// fails is logged and skipped.
func (c *Client) FetchAllCatalogs(ctx context.Context, dealers []Dealer) ([]Catalog, error) {
	var all []Catalog
	for _, dealer := range dealers {
		catalogs, err := c.FetchCatalogs(ctx, dealer)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).WithField("dealer", dealer.Name).Warn("skipping dealer")
			continue
		}
		log.WithFields(log.Fields{"dealer": dealer.Name, "catalogs": len(catalogs)}).Debug("fetched catalogs")
		all = append(all, catalogs...)
	}
	return all, nil
}

// FetchOffers collects every offer of every catalog of the given dealers.
// Any hotspot failure fails the whole fetch.
func (c *Client) FetchOffers(ctx context.Context, dealers []Dealer) ([]categorize.Offer, error) {
	catalogs, err := c.FetchAllCatalogs(ctx, dealers)
	if err != nil {
		return nil, err
	}

	offers := []categorize.Offer{}
	for _, cat := range catalogs {
		batch, err := c.FetchHotspots(ctx, cat)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"catalog": cat.ID, "dealer": cat.Dealer, "offers": len(batch)}).Debug("fetched hotspots")
		offers = append(offers, batch...)
	}
	log.WithFields(log.Fields{"dealers": len(dealers), "catalogs": len(catalogs), "offers": len(offers)}).Info("fetched offers")
	return offers, nil
}

func toOffer(h *HotspotOffer, dealer string) categorize.Offer {
	o := categorize.Offer{
		Name:      unknownProduct,
		Currency:  defaultCurrency,
		Store:     dealer,
		ValidFrom: unknownStartDate,
		ValidTo:   unknownEndDate,
	}
	if o.Store == "" {
		o.Store = unknownStore
	}
	if h == nil {
		return o
	}

	o.Name = orDefault(h.Heading, unknownProduct)
	o.ValidFrom = orDefault(h.RunFrom, unknownStartDate)
	o.ValidTo = orDefault(h.RunTill, unknownEndDate)
	if p := h.Pricing; p != nil {
		if p.Price != nil {
			o.Price = *p.Price
		}
		o.Currency = orDefault(p.Currency, defaultCurrency)
	}
	if q := h.Quantity; q != nil {
		if q.Size != nil && q.Size.From != nil {
			o.Weight = *q.Size.From
		}
		if q.Unit != nil {
			o.WeightUnit = q.Unit.Symbol
		}
	}
	return o
}

func orDefault(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

// ParseDealers parses "Name:id" pairs separated by commas, semicolons or
// underscores, e.g. "Netto:9ba51,Føtex:bdf5A".
func ParseDealers(raw string) ([]Dealer, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '_'
	})

	dealers := make([]Dealer, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, id, ok := strings.Cut(part, ":")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			return nil, fmt.Errorf("dealer %d %q: expected Name:id", i+1, part)
		}
		dealers = append(dealers, Dealer{Name: name, ID: id})
	}
	return dealers, nil
}

// FormatDealers is the inverse of ParseDealers.
func FormatDealers(dealers []Dealer) string {
	parts := make([]string, len(dealers))
	for i, d := range dealers {
		parts[i] = d.Name + ":" + d.ID
	}
	return strings.Join(parts, ",")
}

// CatalogOfferTotal sums offer counts across catalogs.
func CatalogOfferTotal(catalogs []Catalog) int {
	total := 0
	for _, c := range catalogs {
		total += c.OfferCount
	}
	return total
}
