package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/config"
	"github.com/tayloree/foodcat/internal/dataset"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

// matchSettings are the matching parameters after flags override config.
type matchSettings struct {
	matchItemsLimit   int
	filterItemsLimit  int
	accuracyThreshold int
	workers           int
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, invalidArgsError(err.Error(), "foodcat --config foodcat.yaml")
	}
	setupLogging(cmd.ErrOrStderr(), cfg.Log.Level)
	return cfg, nil
}

func setupLogging(w io.Writer, level string) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: !flagVerbose})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if flagVerbose {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
}

// resolveMatching merges explicitly set flags over the configured defaults.
func resolveMatching(cmd *cobra.Command, cfg *config.Config) (matchSettings, error) {
	s := matchSettings{
		matchItemsLimit:   cfg.Matching.MatchItemsLimit,
		filterItemsLimit:  cfg.Matching.FilterItemsLimit,
		accuracyThreshold: cfg.Matching.AccuracyThreshold,
		workers:           cfg.Matching.Workers,
	}
	flags := cmd.Flags()
	if flags.Changed("limit") {
		s.matchItemsLimit = flagMatchLimit
	}
	if flags.Changed("filter-limit") {
		s.filterItemsLimit = flagFilterLimit
	}
	if flags.Changed("threshold") {
		s.accuracyThreshold = flagThreshold
	}
	if flags.Changed("workers") {
		s.workers = flagWorkers
	}

	switch {
	case s.matchItemsLimit < 0 || s.filterItemsLimit < 0:
		return s, invalidArgsError("--limit and --filter-limit must not be negative", "foodcat --offers offers.json --limit 2")
	case s.accuracyThreshold < 0 || s.accuracyThreshold > 100:
		return s, invalidArgsError("--threshold must be between 0 and 100", "foodcat --offers offers.json --threshold 40")
	case s.workers < 0:
		return s, invalidArgsError("--workers must not be negative", "foodcat --offers offers.json --workers 4")
	}
	return s, nil
}

func categoriesPath(cfg *config.Config) string {
	if flagCategories != "" {
		return flagCategories
	}
	return cfg.Data.CategoriesPath()
}

func loadMatcher(cfg *config.Config) (*categorize.Matcher, error) {
	path := categoriesPath(cfg)
	defs, err := dataset.LoadCategories(path)
	if err != nil {
		return nil, inputFileError("category reference", path, err)
	}
	m, err := categorize.NewMatcher(defs, categorize.DefaultConfig())
	if err != nil {
		return nil, invalidArgsError(fmt.Sprintf("category reference %s: %v", path, err))
	}
	log.WithFields(log.Fields{"categories": m.CategoryCount(), "items": m.ItemCount()}).Debug("loaded category reference")
	return m, nil
}

func loadOffers(path string) ([]categorize.Offer, error) {
	offers, err := dataset.LoadOffers(path)
	if err != nil {
		return nil, inputFileError("offers", path, err)
	}
	return offers, nil
}

func inputFileError(what, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return notFoundError(
			fmt.Sprintf("%s file %s not found", what, path),
			"Check the path or set data.dir in foodcat.yaml.",
		)
	}
	return invalidArgsError(fmt.Sprintf("reading %s file %s: %v", what, path, err))
}

func resolveDealers(cfg *config.Config) ([]api.Dealer, error) {
	var (
		dealers []api.Dealer
		err     error
	)
	if len(flagDealers) > 0 {
		dealers, err = api.ParseDealers(strings.Join(flagDealers, ","))
	} else {
		dealers, err = cfg.Catalog.DealerList()
	}
	if err != nil {
		return nil, invalidArgsError(err.Error(), "foodcat fetch --dealer Netto:9ba51")
	}
	if len(dealers) == 0 {
		return nil, invalidArgsError(
			"no dealers configured",
			"foodcat fetch --dealer Netto:9ba51",
			"export BUSINESS_IDS=Netto:9ba51,Rema1000:11deC",
		)
	}
	return dealers, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Store.Path, err)
	}
	return s, nil
}

// categorizeOffers scores offers and, unless --all is set, applies the
// post-filter with the selection flags.
func categorizeOffers(cmd *cobra.Command, m *categorize.Matcher, offers []categorize.Offer, s matchSettings) ([]categorize.CategorizedOffer, []categorize.CategorizedOffer, error) {
	categorized, err := m.CategorizeAll(cmd.Context(), offers, s.matchItemsLimit, s.workers)
	if err != nil {
		return nil, nil, err
	}
	selected := filter.Apply(categorized, selectionOptions(s))
	log.WithFields(log.Fields{
		"offers":   len(offers),
		"selected": len(selected),
		"matched":  filter.Stats(categorized).Matched,
	}).Debug("categorized offers")
	return categorized, selected, nil
}

func selectionOptions(s matchSettings) filter.Options {
	return filter.Options{
		AccuracyThreshold: s.accuracyThreshold,
		MatchItemsLimit:   s.filterItemsLimit,
		KeepRejected:      flagAll,
		Category:          flagCategory,
		Store:             flagStore,
		Query:             flagQuery,
		Sort:              flagSort,
		Limit:             flagMax,
	}
}
