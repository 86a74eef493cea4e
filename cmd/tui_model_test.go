package cmd

import (
	"testing"

	"github.com/charmbracelet/bubbles/list"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/filter"
)

func tuiOffer(name, store string, accuracy int, categories ...string) categorize.CategorizedOffer {
	matched := make([]categorize.MatchCandidate, 0, len(categories))
	for _, c := range categories {
		if c != categorize.UnknownCategory {
			matched = append(matched, categorize.MatchCandidate{Name: name, Accuracy: accuracy, Category: c})
		}
	}
	return categorize.CategorizedOffer{
		Offer:         categorize.Offer{Name: name, Store: store, Price: 20, Currency: "DKK", ValidTo: "2026-10-20T00:00:00+0200"},
		Categories:    categories,
		MatchedItems:  matched,
		MatchAccuracy: accuracy,
	}
}

func TestCanonicalSortMode(t *testing.T) {
	assert.Equal(t, filter.SortAccuracy, canonicalSortMode("score"))
	assert.Equal(t, filter.SortPrice, canonicalSortMode("cheapest"))
	assert.Equal(t, filter.SortEnding, canonicalSortMode("expiry"))
	assert.Equal(t, filter.SortName, canonicalSortMode("alpha"))
	assert.Equal(t, "", canonicalSortMode("relevance"))
	assert.Equal(t, "", canonicalSortMode(""))
}

func TestBuildGroupedListItems_PriorityOrderAndUnknownLast(t *testing.T) {
	offers := []categorize.CategorizedOffer{
		tuiOffer("Gulerødder", "Netto", 100, "Grøntsager"),
		tuiOffer("Opvaskemiddel", "Netto", 0, categorize.UnknownCategory),
		tuiOffer("Løg", "Føtex", 100, "Grøntsager"),
		tuiOffer("Hel kylling", "Netto", 90, "Proteiner"),
	}

	items, starts := buildGroupedListItems(offers)

	require.Len(t, items, 7)
	assert.Equal(t, []int{0, 2, 5}, starts)

	header, ok := items[0].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Proteiner", header.name)
	assert.Equal(t, 1, header.ordinal)

	header2, ok := items[2].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Grøntsager", header2.name)
	assert.Equal(t, 2, header2.count)

	header3, ok := items[5].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, categorize.UnknownCategory, header3.name)
	assert.Equal(t, 3, header3.ordinal)
}

func TestBuildGroupedListItems_Empty(t *testing.T) {
	items, starts := buildGroupedListItems(nil)
	assert.Empty(t, items)
	assert.Empty(t, starts)
}

func TestBuildCategoryChoices_AlwaysIncludesCurrent(t *testing.T) {
	offers := []categorize.CategorizedOffer{
		tuiOffer("Hel kylling", "Netto", 90, "Proteiner"),
		tuiOffer("Laks", "Netto", 90, "Proteiner"),
		tuiOffer("Løg", "Netto", 100, "Grøntsager"),
	}

	choices := buildCategoryChoices(offers, "Frugter")

	assert.Equal(t, []string{"", "Proteiner", "Grøntsager", "Frugter"}, choices)
}

func TestBuildStoreChoices_SkipsBlankStores(t *testing.T) {
	offers := []categorize.CategorizedOffer{
		tuiOffer("Hel kylling", "Netto", 90, "Proteiner"),
		tuiOffer("Laks", "  ", 90, "Proteiner"),
		tuiOffer("Løg", "Føtex", 100, "Grøntsager"),
	}

	assert.Equal(t, []string{"", "Føtex", "Netto"}, buildStoreChoices(offers, ""))
}

func TestBuildLimitChoices(t *testing.T) {
	assert.Equal(t, []int{0, 10, 25, 50, 100}, buildLimitChoices(0))
	assert.Equal(t, []int{0, 10, 25, 30, 50, 100}, buildLimitChoices(30))
	assert.Equal(t, []int{0, 10, 25, 50, 100}, buildLimitChoices(25))
}

func TestStableIDForOffer_IgnoresCaseAndSpacing(t *testing.T) {
	a := tuiOffer("Hel kylling", "Netto", 90, "Proteiner")
	b := tuiOffer(" HEL KYLLING ", "netto", 90, "Proteiner")
	assert.Equal(t, stableIDForOffer(a), stableIDForOffer(b))
	assert.NotEqual(t, stableIDForOffer(a), stableIDForGroup("Proteiner"))
}

func TestBuildTUIOfferItem_FilterValueCoversMatches(t *testing.T) {
	item := buildTUIOfferItem(tuiOffer("Hel kylling", "Netto", 90, "Proteiner"), "Proteiner")

	assert.Equal(t, "Hel kylling", item.Title())
	assert.Contains(t, item.Description(), "20.00 DKK")
	assert.Contains(t, item.Description(), "90%")
	assert.Contains(t, item.Description(), "ends 2026-10-20")
	assert.Contains(t, item.FilterValue(), "netto")
	assert.Contains(t, item.FilterValue(), "proteiner")
}

func TestRenderOfferDetailContent_ShowsRejection(t *testing.T) {
	offer := tuiOffer("Opvaskemiddel", "Netto", 0, categorize.UnknownCategory)
	content := renderOfferDetailContent(offer, filter.ReasonUnknown, 60)

	assert.Contains(t, content, "Opvaskemiddel")
	assert.Contains(t, content, "rejected: unknown_category")
	assert.Contains(t, content, "none")
	assert.Contains(t, content, "Store:")
}

func TestOffersTUIModel_AppliesInlineFilters(t *testing.T) {
	m := newLoadingOffersTUIModel(tuiLoadConfig{initialOpts: filter.Options{AccuracyThreshold: 40}})
	next, _ := m.Update(tuiDataLoadedMsg{
		sourceLabel: "offers.json",
		allOffers: []categorize.CategorizedOffer{
			tuiOffer("Hel kylling", "Netto", 90, "Proteiner"),
			tuiOffer("Opvaskemiddel", "Netto", 0, categorize.UnknownCategory),
		},
		initialOpts: filter.Options{AccuracyThreshold: 40},
	})
	model := next.(offersTUIModel)

	assert.False(t, model.loading)
	assert.Equal(t, 1, model.visibleOffers)

	model.opts.KeepRejected = true
	model.applyCurrentFilters(false)
	assert.Equal(t, 2, model.visibleOffers)

	_, isOffer := model.list.SelectedItem().(tuiOfferItem)
	assert.True(t, isOffer)
	assert.IsType(t, []list.Item{}, model.list.Items())
}

func TestOffersTUIModel_LoadErrorQuits(t *testing.T) {
	m := newLoadingOffersTUIModel(tuiLoadConfig{})
	next, cmd := m.Update(tuiDataLoadErrMsg{err: notFoundError("no offers")})

	model := next.(offersTUIModel)
	assert.Error(t, model.fatalErr)
	assert.NotNil(t, cmd)
}
