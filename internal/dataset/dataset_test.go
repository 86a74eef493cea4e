package dataset_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/dataset"
)

func TestDecodeCategories(t *testing.T) {
	in := `[
		{"category": "Proteiner", "items": [" kylling ", "", "laks"]},
		{"category": "Tom", "items": []}
	]`

	defs, err := dataset.DecodeCategories(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []categorize.CategoryDefinition{
		{Category: "Proteiner", Items: []string{"kylling", "laks"}},
		{Category: "Tom", Items: []string{}},
	}, defs)
}

func TestDecodeCategories_MissingName(t *testing.T) {
	_, err := dataset.DecodeCategories(strings.NewReader(`[{"items": ["ris"]}]`))
	require.ErrorIs(t, err, dataset.ErrInvalidInput)
	assert.Contains(t, err.Error(), "index 0")
}

func TestDecodeOffers(t *testing.T) {
	in := `[{"name": "Hel kylling", "price": 45.95, "valuta": "DKK", "weight": 1200,
		"weight_unit": "g", "store": "Netto", "run_from": "2024-03-01", "run_till": "2024-03-07"}]`

	offers, err := dataset.DecodeOffers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, categorize.Offer{
		Name: "Hel kylling", Price: 45.95, Currency: "DKK", Weight: 1200, WeightUnit: "g",
		Store: "Netto", ValidFrom: "2024-03-01", ValidTo: "2024-03-07",
	}, offers[0])
}

func TestDecodeOffers_WrongTypeNamesIndex(t *testing.T) {
	in := `[{"name": "Laks"}, {"name": 42}]`

	_, err := dataset.DecodeOffers(strings.NewReader(in))
	require.ErrorIs(t, err, dataset.ErrInvalidInput)
	assert.Contains(t, err.Error(), "offer 1")
	assert.Contains(t, err.Error(), `"name"`)
}

func TestDecodeOffers_NotAnArray(t *testing.T) {
	_, err := dataset.DecodeOffers(strings.NewReader(`{"name": "Laks"}`))
	require.ErrorIs(t, err, dataset.ErrInvalidInput)
}

func TestWriteJSONAndLoadCategorized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	offers := []categorize.CategorizedOffer{{
		Offer:         categorize.Offer{Name: "Hel kylling", Store: "Netto"},
		Categories:    []string{"Proteiner"},
		MatchedItems:  []categorize.MatchCandidate{{Name: "kylling", Accuracy: 65, Category: "Proteiner"}},
		MatchAccuracy: 65,
	}}

	require.NoError(t, dataset.WriteJSON(path, offers))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"matchedItems"`)
	assert.Contains(t, string(raw), `"valuta"`)

	got, err := dataset.LoadCategorized(path)
	require.NoError(t, err)
	assert.Equal(t, offers, got)
}

func TestLoadCategorized_RequiresCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "Laks"}]`), 0o644))

	_, err := dataset.LoadCategorized(path)
	require.ErrorIs(t, err, dataset.ErrInvalidInput)
}

func TestLoadOffers_MissingFile(t *testing.T) {
	_, err := dataset.LoadOffers(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
