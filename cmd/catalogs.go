package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/display"
)

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "List the current catalogs of the configured dealers",
	Long:  "List the newest catalogs with offers for each dealer. Use this to check dealer ids before fetching.",
	Example: `  foodcat catalogs
  foodcat catalogs --dealer Netto:9ba51 --json`,
	RunE: runCatalogs,
}

func init() {
	rootCmd.AddCommand(catalogsCmd)

	catalogsCmd.Flags().StringSliceVar(&flagDealers, "dealer", nil, "Dealer as Name:id (repeatable; default from config)")
}

func runCatalogs(cmd *cobra.Command, _ []string) error {
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

	catalogs, err := client.FetchAllCatalogs(cmd.Context(), dealers)
	if err != nil {
		return upstreamError("fetching catalogs", err)
	}
	if len(catalogs) == 0 {
		return notFoundError(
			fmt.Sprintf("no catalogs found for %s", api.FormatDealers(dealers)),
			"Check the dealer ids in BUSINESS_IDS or --dealer.",
		)
	}

	if flagJSON {
		return display.PrintCatalogsJSON(cmd.OutOrStdout(), catalogs)
	}
	display.PrintCatalogs(cmd.OutOrStdout(), catalogs)
	return nil
}
