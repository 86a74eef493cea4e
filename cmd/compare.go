package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

type compareStoreResult struct {
	Rank            int     `json:"rank"`
	Store           string  `json:"store"`
	AcceptedOffers  int     `json:"acceptedOffers"`
	AverageAccuracy float64 `json:"averageAccuracy"`
	AveragePrice    float64 `json:"averagePrice"`
	TopCategory     string  `json:"topCategory"`
	TopOffer        string  `json:"topOffer"`
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare stores by how many food offers survive filtering",
	Example: `  foodcat compare --offers data/api-offers.json
  foodcat compare --run 3 --category protein
  foodcat compare --offers data/api-offers.json --threshold 60 --json`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&flagOffers, "offers", "", "Offers JSON file to categorize (default: latest stored run)")
	compareCmd.Flags().Int64Var(&flagRun, "run", 0, "Stored run to compare (0 = latest)")
	registerMatchFlags(compareCmd.Flags())
	registerSelectionFlags(compareCmd.Flags())
}

func runCompare(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if flagRun < 0 {
		return invalidArgsError("--run must not be negative", "foodcat compare --run 3")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	settings, err := resolveMatching(cmd, cfg)
	if err != nil {
		return err
	}

	var selected []categorize.CategorizedOffer
	if flagOffers != "" {
		matcher, err := loadMatcher(cfg)
		if err != nil {
			return err
		}
		offers, err := loadOffers(flagOffers)
		if err != nil {
			return err
		}
		if _, selected, err = categorizeOffers(cmd, matcher, offers, settings); err != nil {
			return err
		}
	} else {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := resolveStoredRun(cmd.Context(), st, flagRun)
		if err != nil {
			return err
		}
		stored, err := st.ListOffers(cmd.Context(), store.ListOptions{RunID: run.ID})
		if err != nil {
			return err
		}
		selected = filter.Apply(stored, selectionOptions(settings))
	}

	results := compareStores(selected)
	if len(results) == 0 {
		return notFoundError(
			"no stores have offers matching your filters",
			"Relax filters like --category/--query or lower --threshold.",
		)
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nStore comparison (%d store(s))\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(
			cmd.OutOrStdout(),
			"%d. %s\n   food offers: %d | avg accuracy: %.1f%% | avg price: %.2f | top category: %s\n   top: %s\n\n",
			r.Rank,
			r.Store,
			r.AcceptedOffers,
			r.AverageAccuracy,
			r.AveragePrice,
			r.TopCategory,
			r.TopOffer,
		)
	}
	return nil
}

// compareStores groups offers by store and ranks stores by offer count,
// then average accuracy, then name.
func compareStores(offers []categorize.CategorizedOffer) []compareStoreResult {
	byStore := map[string][]categorize.CategorizedOffer{}
	for _, o := range offers {
		name := strings.TrimSpace(o.Store)
		if name == "" {
			name = "Unknown store"
		}
		byStore[name] = append(byStore[name], o)
	}

	results := make([]compareStoreResult, 0, len(byStore))
	for name, group := range byStore {
		summary := filter.Stats(group)
		priceSum := 0.0
		for _, o := range group {
			priceSum += o.Price
		}

		best := filter.Sort(group, filter.SortAccuracy)[0]
		results = append(results, compareStoreResult{
			Store:           name,
			AcceptedOffers:  len(group),
			AverageAccuracy: summary.AverageAccuracy,
			AveragePrice:    priceSum / float64(len(group)),
			TopCategory:     summary.Categories[0].Category,
			TopOffer:        emptyIf(filter.CleanText(best.Name), "Unnamed offer"),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AcceptedOffers != results[j].AcceptedOffers {
			return results[i].AcceptedOffers > results[j].AcceptedOffers
		}
		if results[i].AverageAccuracy != results[j].AverageAccuracy {
			return results[i].AverageAccuracy > results[j].AverageAccuracy
		}
		return results[i].Store < results[j].Store
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func emptyIf(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
