package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/categorize"
)

const catalogsJSON = `[
	{"id": "cat-1", "dealer_id": "9ba51", "offer_count": 2},
	{"id": "cat-empty", "dealer_id": "9ba51", "offer_count": 0}
]`

const hotspotsJSON = `[
	{"offer": {
		"heading": "Hel kylling",
		"run_from": "2024-03-01T00:00:00+0000",
		"run_till": "2024-03-07T23:59:59+0000",
		"pricing": {"price": 45.95, "currency": "DKK"},
		"quantity": {"size": {"from": 1200, "to": 1400}, "unit": {"symbol": "g"}}
	}},
	{"offer": null}
]`

func newTestCatalogServer(t *testing.T, failDealer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/catalogs":
			q := r.URL.Query()
			assert.Equal(t, "-publication_date", q.Get("order_by"))
			assert.Equal(t, "paged", q.Get("types"))
			assert.Equal(t, "24", q.Get("limit"))
			if q.Get("dealer_id") == failDealer {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(catalogsJSON))
		case r.URL.Path == "/catalogs/cat-1/hotspots":
			_, _ = w.Write([]byte(hotspotsJSON))
		case strings.HasSuffix(r.URL.Path, "/hotspots"):
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetchCatalogs_DropsEmptyCatalogs(t *testing.T) {
	srv := newTestCatalogServer(t, "")
	defer srv.Close()

	client := api.NewClientWithBaseURL(srv.URL)
	catalogs, err := client.FetchCatalogs(context.Background(), api.Dealer{Name: "Netto", ID: "9ba51"})

	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, "cat-1", catalogs[0].ID)
	assert.Equal(t, "Netto", catalogs[0].Dealer)
	assert.Equal(t, 2, api.CatalogOfferTotal(catalogs))
}

func TestFetchHotspots_MapsOffersWithDefaults(t *testing.T) {
	srv := newTestCatalogServer(t, "")
	defer srv.Close()

	client := api.NewClientWithBaseURL(srv.URL)
	offers, err := client.FetchHotspots(context.Background(), api.Catalog{ID: "cat-1", Dealer: "Netto"})

	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, categorize.Offer{
		Name:       "Hel kylling",
		Price:      45.95,
		Currency:   "DKK",
		Weight:     1200,
		WeightUnit: "g",
		Store:      "Netto",
		ValidFrom:  "2024-03-01T00:00:00+0000",
		ValidTo:    "2024-03-07T23:59:59+0000",
	}, offers[0])
	assert.Equal(t, categorize.Offer{
		Name:      "Ukendt produkt",
		Currency:  "DKK",
		Store:     "Netto",
		ValidFrom: "Ukendt startdato",
		ValidTo:   "Ukendt slutdato",
	}, offers[1])
}

func TestFetchHotspots_UnknownStore(t *testing.T) {
	srv := newTestCatalogServer(t, "")
	defer srv.Close()

	offers, err := api.NewClientWithBaseURL(srv.URL).FetchHotspots(context.Background(), api.Catalog{ID: "cat-1"})
	require.NoError(t, err)
	assert.Equal(t, "Ukendt butik", offers[0].Store)
}

func TestFetchOffers_SkipsFailingDealer(t *testing.T) {
	srv := newTestCatalogServer(t, "broken")
	defer srv.Close()

	client := api.NewClientWithBaseURL(srv.URL)
	offers, err := client.FetchOffers(context.Background(), []api.Dealer{
		{Name: "Broken", ID: "broken"},
		{Name: "Netto", ID: "9ba51"},
	})

	require.NoError(t, err)
	assert.Len(t, offers, 2)
	assert.Equal(t, "Netto", offers[0].Store)
}

func TestFetchOffers_HotspotFailureFailsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/catalogs" {
			_, _ = w.Write([]byte(`[{"id": "cat-9", "offer_count": 4}]`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := api.NewClientWithBaseURL(srv.URL).FetchOffers(context.Background(), []api.Dealer{{Name: "Netto", ID: "9ba51"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "cat-9")
}

func TestFetchCatalogs_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "not a list"`))
	}))
	defer srv.Close()

	_, err := api.NewClientWithBaseURL(srv.URL).FetchCatalogs(context.Background(), api.Dealer{Name: "Netto", ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestFetchCatalogs_CancelledContext(t *testing.T) {
	srv := newTestCatalogServer(t, "")
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.NewClientWithBaseURL(srv.URL).FetchCatalogs(ctx, api.Dealer{Name: "Netto", ID: "9ba51"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseDealers(t *testing.T) {
	tests := []struct {
		in   string
		want []api.Dealer
	}{
		{"", []api.Dealer{}},
		{"Netto:9ba51", []api.Dealer{{Name: "Netto", ID: "9ba51"}}},
		{"Netto:9ba51,Føtex:bdf5A", []api.Dealer{{Name: "Netto", ID: "9ba51"}, {Name: "Føtex", ID: "bdf5A"}}},
		{"Netto:9ba51_Bilka:93f13", []api.Dealer{{Name: "Netto", ID: "9ba51"}, {Name: "Bilka", ID: "93f13"}}},
		{" Lidl : 71c90 ; ", []api.Dealer{{Name: "Lidl", ID: "71c90"}}},
	}
	for _, tc := range tests {
		got, err := api.ParseDealers(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := api.ParseDealers("Netto")
	assert.Error(t, err)
	_, err = api.ParseDealers("Netto:")
	assert.Error(t, err)

	dealers := []api.Dealer{{Name: "Netto", ID: "9ba51"}, {Name: "Føtex", ID: "bdf5A"}}
	assert.Equal(t, "Netto:9ba51,Føtex:bdf5A", api.FormatDealers(dealers))
}
