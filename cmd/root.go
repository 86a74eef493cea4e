package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tayloree/foodcat/internal/dataset"
	"github.com/tayloree/foodcat/internal/display"
	"github.com/tayloree/foodcat/internal/filter"
)

// Version is stamped at build time.
var Version = "dev"

var (
	flagConfig     string
	flagCategories string
	flagJSON       bool
	flagVerbose    bool

	flagOffers      string
	flagMatchLimit  int
	flagFilterLimit int
	flagThreshold   int
	flagWorkers     int
	flagCategory    string
	flagStore       string
	flagQuery       string
	flagSort        string
	flagMax         int
	flagAll         bool
	flagOut         string
)

var rootCmd = &cobra.Command{
	Use:   "foodcat",
	Short: "Categorize grocery offers into food categories",
	Long: "CLI tool that assigns Danish grocery catalog offers to food categories by fuzzy\n" +
		"matching offer names against a category reference file, then drops offers that\n" +
		"are not plain food components.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -offers x.json, threshold=50, --treshold 50).",
	Example: `  foodcat --offers data/api-offers.json
  foodcat --offers data/api-offers.json --category protein --sort price
  foodcat run
  foodcat stats --run 3
  foodcat explain "Hel kylling" "Hakket oksekød 8-12%"
  foodcat serve`,
	RunE: runCategorize,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.Version = Version
	commandTree = rootCmd

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./foodcat.yaml)")
	pf.StringVar(&flagCategories, "categories", "", "Category reference file (default <data.dir>/Foodcomponent.json)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().StringVar(&flagOffers, "offers", "", "Offers JSON file to categorize")
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Also write the selected offers to this file")
	registerMatchFlags(rootCmd.Flags())
	registerSelectionFlags(rootCmd.Flags())
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(normalizedArgs) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = append(normalizedArgs, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if hasJSONPreference(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

// resetCLIState restores every flag to its default so runCLI can be called
// repeatedly in one process.
func resetCLIState() {
	resetFlags(rootCmd)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func registerMatchFlags(f *pflag.FlagSet) {
	f.IntVar(&flagMatchLimit, "limit", 2, "Matched items kept per offer at categorization (0 = all)")
	f.IntVar(&flagFilterLimit, "filter-limit", 0, "Matched items kept per offer after filtering (0 = all)")
	f.IntVarP(&flagThreshold, "threshold", "t", 40, "Minimum match accuracy an offer needs to survive filtering")
	f.IntVar(&flagWorkers, "workers", 0, "Parallel categorization workers (0 = one per CPU)")
}

func registerSelectionFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagCategory, "category", "c", "", "Only offers in this category (e.g., protein, grøntsager, bread)")
	f.StringVarP(&flagStore, "store", "s", "", "Only offers from this store (e.g., Netto)")
	f.StringVarP(&flagQuery, "query", "q", "", "Search offers by keyword in the name")
	f.StringVar(&flagSort, "sort", "", "Sort offers by accuracy, price, ending, or name")
	f.IntVarP(&flagMax, "max", "n", 0, "Maximum number of offers to show (0 = all)")
	f.BoolVar(&flagAll, "all", false, "Keep offers the food filter would reject")
}

func validateSortMode() error {
	if filter.ValidSortMode(flagSort) {
		return nil
	}
	return invalidArgsError(
		"invalid value for --sort (use accuracy, price, ending, or name)",
		"foodcat --offers offers.json --sort price",
		"foodcat --offers offers.json --sort ending",
	)
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if flagOffers == "" {
		return invalidArgsError(
			"please provide --offers FILE or use a subcommand",
			"foodcat --offers data/api-offers.json",
			"foodcat run",
		)
	}

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
	offers, err := loadOffers(flagOffers)
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		return notFoundError(
			fmt.Sprintf("no offers found in %s", flagOffers),
			"Fetch fresh offers with `foodcat fetch`.",
		)
	}

	_, selected, err := categorizeOffers(cmd, matcher, offers, settings)
	if err != nil {
		return err
	}

	if flagOut != "" {
		if err := dataset.WriteJSON(flagOut, selected); err != nil {
			return err
		}
	}

	if len(selected) == 0 {
		return notFoundError(
			"no offers survive the filters",
			"Lower --threshold, relax --category/--store/--query, or pass --all.",
		)
	}

	if flagJSON {
		return display.PrintOffersJSON(cmd.OutOrStdout(), selected)
	}
	display.PrintOffers(cmd.OutOrStdout(), selected)
	return nil
}
