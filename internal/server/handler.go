package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

// OfferSource fetches live offers from the catalog API.
type OfferSource interface {
	FetchOffers(ctx context.Context, dealers []api.Dealer) ([]categorize.Offer, error)
}

// OfferStore reads previously persisted runs.
type OfferStore interface {
	ListOffers(ctx context.Context, opts store.ListOptions) ([]categorize.CategorizedOffer, error)
}

// Defaults are the matching parameters used when a request omits them.
type Defaults struct {
	MatchItemsLimit   int
	FilterItemsLimit  int
	AccuracyThreshold int
	Workers           int
}

// Deps bundles what the handlers need. Source and Store are optional.
type Deps struct {
	Matcher  *categorize.Matcher
	Source   OfferSource
	Dealers  []api.Dealer
	Store    OfferStore
	Defaults Defaults
	Version  string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	deps Deps
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Deps) *Handler {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{deps: deps}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CategorizeRequest is the body accepted by POST /api/v1/categorize.
type CategorizeRequest struct {
	Offers            []categorize.Offer `json:"offers"`
	MatchItemsLimit   *int               `json:"matchItemsLimit,omitempty"`
	AccuracyThreshold *int               `json:"accuracyThreshold,omitempty"`
	FilterItemsLimit  *int               `json:"filterItemsLimit,omitempty"`
	Filter            *bool              `json:"filter,omitempty"`
}

// CategorizeResponse is returned by POST /api/v1/categorize.
type CategorizeResponse struct {
	Offers   []categorize.CategorizedOffer `json:"offers"`
	Total    int                           `json:"total"`
	Accepted int                           `json:"accepted"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodcat",
		"version": h.deps.Version,
	})
}

// Categorize scores the posted offers and, unless filter is false, runs the
// food post-filter over the result.
func (h *Handler) Categorize(c *gin.Context) {
	if h.deps.Matcher == nil {
		abort(c, http.StatusServiceUnavailable, "unavailable", "no category reference loaded")
		return
	}

	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.Offers == nil {
		abort(c, http.StatusBadRequest, "invalid_body", "offers is required")
		return
	}

	d := h.deps.Defaults
	matchLimit := intOr(req.MatchItemsLimit, d.MatchItemsLimit)
	filterLimit := intOr(req.FilterItemsLimit, d.FilterItemsLimit)
	threshold := intOr(req.AccuracyThreshold, d.AccuracyThreshold)
	switch {
	case matchLimit < 0 || filterLimit < 0:
		abort(c, http.StatusBadRequest, "invalid_body", "item limits must not be negative")
		return
	case threshold < 0 || threshold > 100:
		abort(c, http.StatusBadRequest, "invalid_body", "accuracyThreshold must be within 0-100")
		return
	}

	categorized, err := h.deps.Matcher.CategorizeAll(c.Request.Context(), req.Offers, matchLimit, d.Workers)
	if err != nil {
		abort(c, http.StatusServiceUnavailable, "cancelled", err.Error())
		return
	}

	result := categorized
	if req.Filter == nil || *req.Filter {
		result = filter.PostFilter(categorized, threshold, filterLimit)
	}

	c.JSON(http.StatusOK, CategorizeResponse{
		Offers:   result,
		Total:    len(req.Offers),
		Accepted: len(result),
	})
}

// Catalogs fetches the current offers of the configured dealers.
func (h *Handler) Catalogs(c *gin.Context) {
	if h.deps.Source == nil || len(h.deps.Dealers) == 0 {
		abort(c, http.StatusServiceUnavailable, "unavailable", "no catalog dealers configured")
		return
	}

	offers, err := h.deps.Source.FetchOffers(c.Request.Context(), h.deps.Dealers)
	if err != nil {
		log.WithError(err).Warn("catalog fetch failed")
		abort(c, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	if offers == nil {
		offers = []categorize.Offer{}
	}

	c.JSON(http.StatusOK, gin.H{
		"offers": offers,
		"total":  len(offers),
	})
}

// StoredOffers lists offers of a persisted run, the latest by default.
func (h *Handler) StoredOffers(c *gin.Context) {
	if h.deps.Store == nil {
		abort(c, http.StatusServiceUnavailable, "unavailable", "no offer store configured")
		return
	}

	opts := store.ListOptions{Category: c.Query("category")}
	if opts.Category != "" {
		opts.Category = filter.ResolveCategory(opts.Category)
	}

	var err error
	if opts.RunID, err = queryInt64(c, "run"); err != nil {
		abort(c, http.StatusBadRequest, "invalid_query", "run must be a non-negative integer")
		return
	}
	limit, err := queryInt64(c, "limit")
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_query", "limit must be a non-negative integer")
		return
	}
	opts.Limit = int(limit)

	offers, err := h.deps.Store.ListOffers(c.Request.Context(), opts)
	if err != nil {
		log.WithError(err).Error("listing stored offers")
		abort(c, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if offers == nil {
		offers = []categorize.CategorizedOffer{}
	}

	c.JSON(http.StatusOK, gin.H{
		"offers": offers,
		"total":  len(offers),
	})
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func queryInt64(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
