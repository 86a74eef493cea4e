package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/dataset"
	"github.com/tayloree/foodcat/internal/store"
)

var flagInput string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Persist an already categorized offers file as a new run",
	Example: `  foodcat upload --input data/api-categorized-offers.json
  foodcat upload --input results.json --json`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVarP(&flagInput, "input", "i", "", "Categorized offers JSON file")
}

func runUpload(cmd *cobra.Command, _ []string) error {
	if flagInput == "" {
		return invalidArgsError(
			"--input is required for upload",
			"foodcat upload --input data/api-categorized-offers.json",
		)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	offers, err := dataset.LoadCategorized(flagInput)
	if err != nil {
		return inputFileError("categorized offers", flagInput, err)
	}
	if len(offers) == 0 {
		return notFoundError(
			fmt.Sprintf("no offers found in %s", flagInput),
			"Produce a file with `foodcat --offers FILE --out FILE`.",
		)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.SaveRun(cmd.Context(), offers, store.SaveOptions{
		Source:     "upload:" + filepath.Base(flagInput),
		BatchSize:  cfg.Store.BatchSize,
		BatchDelay: cfg.Store.BatchDelay,
	})
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(run)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d offers as run #%d\n", run.OfferCount, run.ID)
	return nil
}
