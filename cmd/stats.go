package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/config"
	"github.com/tayloree/foodcat/internal/display"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

var (
	flagRun      int64
	flagListRuns bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the category distribution of offers",
	Long: "Show how offers spread across food categories, either for an offers file\n" +
		"(categorized on the fly) or for a stored run (the latest by default).",
	Example: `  foodcat stats --offers data/api-offers.json
  foodcat stats --run 3 --json
  foodcat stats --runs`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&flagOffers, "offers", "", "Offers JSON file to categorize and summarize")
	statsCmd.Flags().Int64Var(&flagRun, "run", 0, "Stored run to summarize (0 = latest)")
	statsCmd.Flags().BoolVar(&flagListRuns, "runs", false, "List stored runs instead")
	registerMatchFlags(statsCmd.Flags())
}

func runStats(cmd *cobra.Command, _ []string) error {
	if flagRun < 0 {
		return invalidArgsError("--run must not be negative", "foodcat stats --run 3")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if flagListRuns {
		return listRuns(cmd, cfg)
	}

	offers, source, err := statsSource(cmd, cfg)
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		return notFoundError(
			fmt.Sprintf("no offers found in %s", source),
			"Store a run with `foodcat run` or pass --offers FILE.",
		)
	}

	summary := filter.Stats(offers)
	if flagJSON {
		return display.PrintStatsJSON(cmd.OutOrStdout(), summary)
	}
	display.PrintStats(cmd.OutOrStdout(), summary, source)
	return nil
}

// statsSource returns the offers to summarize and a label for them.
func statsSource(cmd *cobra.Command, cfg *config.Config) ([]categorize.CategorizedOffer, string, error) {
	if flagOffers != "" {
		settings, err := resolveMatching(cmd, cfg)
		if err != nil {
			return nil, "", err
		}
		matcher, err := loadMatcher(cfg)
		if err != nil {
			return nil, "", err
		}
		offers, err := loadOffers(flagOffers)
		if err != nil {
			return nil, "", err
		}
		categorized, err := matcher.CategorizeAll(cmd.Context(), offers, settings.matchItemsLimit, settings.workers)
		return categorized, flagOffers, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	run, err := resolveStoredRun(cmd.Context(), st, flagRun)
	if err != nil {
		return nil, "", err
	}
	if !flagJSON {
		display.PrintRunContext(cmd.OutOrStdout(), *run)
	}
	offers, err := st.ListOffers(cmd.Context(), store.ListOptions{RunID: run.ID})
	return offers, fmt.Sprintf("run #%d", run.ID), err
}

func resolveStoredRun(ctx context.Context, st *store.Store, id int64) (*store.Run, error) {
	var (
		run *store.Run
		err error
	)
	if id == 0 {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.GetRun(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if run == nil && id == 0 {
		return nil, notFoundError("no stored runs", "Store one with `foodcat run` or `foodcat upload`.")
	}
	if run == nil {
		return nil, notFoundError(fmt.Sprintf("run #%d not found", id), "List runs with `foodcat stats --runs`.")
	}
	return run, nil
}

func listRuns(cmd *cobra.Command, cfg *config.Config) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), 0)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return notFoundError("no stored runs", "Store one with `foodcat run` or `foodcat upload`.")
	}
	if flagJSON {
		return display.PrintRunsJSON(cmd.OutOrStdout(), runs)
	}
	display.PrintRuns(cmd.OutOrStdout(), runs)
	return nil
}
