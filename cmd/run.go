package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/dataset"
	"github.com/tayloree/foodcat/internal/display"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

const categorizedOffersFile = "api-categorized-offers.json"

var flagNoStore bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, categorize, filter and store the current offers",
	Long: "Run the whole pipeline: fetch offers for the configured dealers, write the raw\n" +
		"offers, categorize and filter them, write the result, persist it as a new run\n" +
		"and print the category distribution.",
	Example: `  foodcat run
  foodcat run --dealer Netto:9ba51 --threshold 50
  foodcat run --no-store --json`,
	RunE: runPipeline,
}

type runResult struct {
	RawFile         string                `json:"rawFile"`
	CategorizedFile string                `json:"categorizedFile"`
	Fetched         int                   `json:"fetched"`
	Accepted        int                   `json:"accepted"`
	Rejected        map[filter.Reason]int `json:"rejected"`
	Run             *store.Run            `json:"run,omitempty"`
	Stats           filter.Summary        `json:"stats"`
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&flagDealers, "dealer", nil, "Dealer as Name:id (repeatable; default from config)")
	runCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Skip persisting the run")
	registerMatchFlags(runCmd.Flags())
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	settings, err := resolveMatching(cmd, cfg)
	if err != nil {
		return err
	}
	matcher, err := loadMatcher(cfg)
	if err != nil {
		return err
	}
	dealers, err := resolveDealers(cfg)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.Catalog.ClientOptions())
	defer client.Close()

	offers, err := client.FetchOffers(cmd.Context(), dealers)
	if err != nil {
		return upstreamError("fetching offers", err)
	}
	if len(offers) == 0 {
		return notFoundError(
			fmt.Sprintf("no offers found for %s", api.FormatDealers(dealers)),
			"Check the dealer ids with `foodcat catalogs`.",
		)
	}

	result := runResult{
		RawFile:         cfg.Data.Path(rawOffersFile),
		CategorizedFile: cfg.Data.Path(categorizedOffersFile),
		Fetched:         len(offers),
	}
	if err := dataset.WriteJSON(result.RawFile, offers); err != nil {
		return err
	}

	categorized, selected, err := categorizeOffers(cmd, matcher, offers, settings)
	if err != nil {
		return err
	}
	result.Accepted = len(selected)
	result.Rejected = filter.Rejections(categorized, selectionOptions(settings))
	result.Stats = filter.Stats(categorized)
	if err := dataset.WriteJSON(result.CategorizedFile, selected); err != nil {
		return err
	}

	if !flagNoStore && len(selected) > 0 {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.SaveRun(cmd.Context(), selected, store.SaveOptions{
			Source:     "run:" + api.FormatDealers(dealers),
			BatchSize:  cfg.Store.BatchSize,
			BatchDelay: cfg.Store.BatchDelay,
		})
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		result.Run = &run
	}
	log.WithFields(log.Fields{"fetched": result.Fetched, "accepted": result.Accepted}).Info("pipeline finished")

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d raw offers to %s\n", result.Fetched, result.RawFile)
	fmt.Fprintf(out, "Wrote %d categorized offers to %s\n", result.Accepted, result.CategorizedFile)
	for _, reason := range sortedReasons(result.Rejected) {
		fmt.Fprintf(out, "  rejected %s: %d\n", reason, result.Rejected[reason])
	}
	if result.Run != nil {
		fmt.Fprintf(out, "Stored %d offers as run #%d\n", result.Run.OfferCount, result.Run.ID)
	}
	display.PrintStats(out, result.Stats, "fetched offers")
	return nil
}

func sortedReasons(counts map[filter.Reason]int) []filter.Reason {
	reasons := make([]filter.Reason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}
