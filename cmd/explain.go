package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/display"
)

var explainCmd = &cobra.Command{
	Use:   "explain NAME...",
	Short: "Show how offer names are scored against the category reference",
	Long: "Print the scoring trace for each name: the cleaned text, every candidate\n" +
		"fragment, each item that shared a word with it and why it was accepted or\n" +
		"rejected, and the final categorization.",
	Example: `  foodcat explain "Hel kylling"
  foodcat explain "Hakket oksekød 8-12%" "Lasagne med oksekød" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().IntVar(&flagMatchLimit, "limit", 2, "Matched items kept per offer (0 = all)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	if flagMatchLimit < 0 {
		return invalidArgsError("--limit must not be negative", `foodcat explain "Hel kylling" --limit 2`)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	matcher, err := loadMatcher(cfg)
	if err != nil {
		return err
	}

	exps := make([]categorize.Explanation, 0, len(args))
	for _, name := range args {
		if strings.TrimSpace(name) == "" {
			continue
		}
		exps = append(exps, matcher.Explain(name, flagMatchLimit))
	}
	if len(exps) == 0 {
		return invalidArgsError("no offer names given", `foodcat explain "Hel kylling"`)
	}

	if flagJSON {
		return display.PrintExplanationJSON(cmd.OutOrStdout(), exps)
	}
	for _, exp := range exps {
		display.PrintExplanation(cmd.OutOrStdout(), exp)
	}
	return nil
}
