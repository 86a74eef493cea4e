package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/dataset"
)

const rawOffersFile = "api-offers.json"

var flagDealers []string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch current catalog offers for the configured dealers",
	Long: "Fetch every offer of the newest catalogs of each dealer and write them as\n" +
		"an offers JSON file (default <data.dir>/api-offers.json).",
	Example: `  foodcat fetch
  foodcat fetch --dealer Netto:9ba51 --dealer Rema1000:11deC
  foodcat fetch --out /tmp/offers.json --json`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&flagDealers, "dealer", nil, "Dealer as Name:id (repeatable; default from config)")
	fetchCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (default <data.dir>/api-offers.json)")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
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

	out := flagOut
	if out == "" {
		out = cfg.Data.Path(rawOffersFile)
	}
	if err := dataset.WriteJSON(out, offers); err != nil {
		return err
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"file":    out,
			"offers":  len(offers),
			"dealers": len(dealers),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d offers from %d dealer(s) to %s\n", len(offers), len(dealers), out)
	return nil
}
