package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/config"
	"github.com/tayloree/foodcat/internal/server"
	"github.com/tayloree/foodcat/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeSource struct {
	offers []categorize.Offer
	err    error
	got    []api.Dealer
}

func (f *fakeSource) FetchOffers(_ context.Context, dealers []api.Dealer) ([]categorize.Offer, error) {
	f.got = dealers
	return f.offers, f.err
}

type fakeStore struct {
	offers []categorize.CategorizedOffer
	opts   store.ListOptions
}

func (f *fakeStore) ListOffers(_ context.Context, opts store.ListOptions) ([]categorize.CategorizedOffer, error) {
	f.opts = opts
	return f.offers, nil
}

func testMatcher(t *testing.T) *categorize.Matcher {
	t.Helper()
	m, err := categorize.NewMatcher([]categorize.CategoryDefinition{
		{Category: "Proteiner", Items: []string{"kylling", "laks"}},
		{Category: "Grøntsager", Items: []string{"gulerødder", "løg"}},
	}, categorize.DefaultConfig())
	require.NoError(t, err)
	return m
}

func setupTestRouter(t *testing.T, deps server.Deps, perMinute int) *gin.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Environment = "test"
	cfg.Server.RequestsPerMinute = perMinute
	if deps.Defaults == (server.Defaults{}) {
		deps.Defaults = server.Defaults{MatchItemsLimit: 2, AccuracyThreshold: 40, Workers: 2}
	}
	return server.SetupRouter(cfg, server.NewHandler(deps))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t, server.Deps{Version: "1.2.3"}, 0)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "foodcat", body["service"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestCategorize(t *testing.T) {
	router := setupTestRouter(t, server.Deps{Matcher: testMatcher(t)}, 0)
	offers := []categorize.Offer{
		{Name: "Hel kylling", Price: 49.95, Store: "Netto"},
		{Name: "Øl", Price: 5, Store: "Netto"},
	}

	t.Run("filters by default", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/categorize", map[string]any{"offers": offers})
		require.Equal(t, http.StatusOK, w.Code)

		var resp server.CategorizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, 1, resp.Accepted)
		require.Len(t, resp.Offers, 1)
		assert.Equal(t, "Hel kylling", resp.Offers[0].Name)
		assert.Equal(t, []string{"Proteiner"}, resp.Offers[0].Categories)
	})

	t.Run("filter disabled keeps unknowns", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/categorize", map[string]any{"offers": offers, "filter": false})
		require.Equal(t, http.StatusOK, w.Code)

		var resp server.CategorizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Accepted)
		assert.Equal(t, []string{categorize.UnknownCategory}, resp.Offers[1].Categories)
	})

	t.Run("empty offers", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/categorize", `{"offers": []}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"offers": [], "total": 0, "accepted": 0}`, w.Body.String())
	})
}

func TestCategorize_BadRequests(t *testing.T) {
	router := setupTestRouter(t, server.Deps{Matcher: testMatcher(t)}, 0)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"offers": [`},
		{name: "missing offers", body: `{}`},
		{name: "wrong field type", body: `{"offers": [{"name": 12}]}`},
		{name: "threshold out of range", body: `{"offers": [], "accuracyThreshold": 101}`},
		{name: "negative limit", body: `{"offers": [], "matchItemsLimit": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/categorize", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_body", resp.Error)
		})
	}
}

func TestCategorize_NoMatcher(t *testing.T) {
	router := setupTestRouter(t, server.Deps{}, 0)
	w := doJSON(t, router, http.MethodPost, "/api/v1/categorize", `{"offers": []}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCatalogs(t *testing.T) {
	dealers := []api.Dealer{{Name: "Netto", ID: "9ba51"}}

	t.Run("returns live offers", func(t *testing.T) {
		src := &fakeSource{offers: []categorize.Offer{{Name: "Laks", Store: "Netto"}}}
		router := setupTestRouter(t, server.Deps{Source: src, Dealers: dealers}, 0)

		w := doJSON(t, router, http.MethodGet, "/api/v1/catalogs", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, dealers, src.got)

		var body struct {
			Offers []categorize.Offer `json:"offers"`
			Total  int                `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Total)
		assert.Equal(t, "Laks", body.Offers[0].Name)
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		src := &fakeSource{err: errors.New("connection refused")}
		router := setupTestRouter(t, server.Deps{Source: src, Dealers: dealers}, 0)

		w := doJSON(t, router, http.MethodGet, "/api/v1/catalogs", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("no dealers configured", func(t *testing.T) {
		router := setupTestRouter(t, server.Deps{Source: &fakeSource{}}, 0)
		w := doJSON(t, router, http.MethodGet, "/api/v1/catalogs", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestStoredOffers(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		router := setupTestRouter(t, server.Deps{}, 0)
		w := doJSON(t, router, http.MethodGet, "/api/v1/offers", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("passes resolved query", func(t *testing.T) {
		st := &fakeStore{offers: []categorize.CategorizedOffer{{
			Offer:      categorize.Offer{Name: "Laks"},
			Categories: []string{"Proteiner"},
		}}}
		router := setupTestRouter(t, server.Deps{Store: st}, 0)

		w := doJSON(t, router, http.MethodGet, "/api/v1/offers?category=fisk&run=3&limit=10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, store.ListOptions{RunID: 3, Category: "Proteiner", Limit: 10}, st.opts)
		assert.Contains(t, w.Body.String(), `"total":1`)
	})

	t.Run("empty store yields empty list", func(t *testing.T) {
		router := setupTestRouter(t, server.Deps{Store: &fakeStore{}}, 0)
		w := doJSON(t, router, http.MethodGet, "/api/v1/offers", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"offers": [], "total": 0}`, w.Body.String())
	})

	t.Run("bad query", func(t *testing.T) {
		router := setupTestRouter(t, server.Deps{Store: &fakeStore{}}, 0)
		for _, path := range []string{"/api/v1/offers?run=abc", "/api/v1/offers?limit=-2"} {
			w := doJSON(t, router, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	router := setupTestRouter(t, server.Deps{}, 2)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code, "limits are tracked per client")
}
