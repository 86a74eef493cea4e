package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/config"
	"github.com/tayloree/foodcat/internal/display"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse categorized offers interactively in the terminal",
	Example: `  foodcat tui --offers data/api-offers.json
  foodcat tui --run 3 --category protein --sort price`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&flagOffers, "offers", "", "Offers JSON file to categorize (default: latest stored run)")
	tuiCmd.Flags().Int64Var(&flagRun, "run", 0, "Stored run to browse (0 = latest)")
	registerMatchFlags(tuiCmd.Flags())
	registerSelectionFlags(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if flagRun < 0 {
		return invalidArgsError("--run must not be negative", "foodcat tui --run 3")
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`foodcat tui` requires an interactive terminal",
			"Use `foodcat --offers data/api-offers.json --json` in pipelines.",
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
	opts := selectionOptions(settings)

	if flagJSON {
		offers, _, err := loadTUIData(cmd.Context(), cfg, settings)
		if err != nil {
			return err
		}
		selected := filter.Apply(offers, opts)
		if len(selected) == 0 {
			return notFoundError(
				"no offers survive the filters",
				"Lower --threshold, relax --category/--store/--query, or pass --all.",
			)
		}
		return display.PrintOffersJSON(cmd.OutOrStdout(), selected)
	}

	// The TUI owns the terminal; keep log lines from tearing the layout.
	setupLogging(io.Discard, cfg.Log.Level)

	model := newLoadingOffersTUIModel(tuiLoadConfig{
		ctx:         cmd.Context(),
		cfg:         cfg,
		settings:    settings,
		initialOpts: opts,
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if m, ok := final.(offersTUIModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

// loadTUIData returns every categorized offer, unfiltered, plus a label for
// where they came from.
func loadTUIData(ctx context.Context, cfg *config.Config, settings matchSettings) ([]categorize.CategorizedOffer, string, error) {
	if flagOffers != "" {
		matcher, err := loadMatcher(cfg)
		if err != nil {
			return nil, "", err
		}
		offers, err := loadOffers(flagOffers)
		if err != nil {
			return nil, "", err
		}
		if len(offers) == 0 {
			return nil, "", notFoundError(fmt.Sprintf("no offers found in %s", flagOffers))
		}
		categorized, err := matcher.CategorizeAll(ctx, offers, settings.matchItemsLimit, settings.workers)
		if err != nil {
			return nil, "", err
		}
		return categorized, flagOffers, nil
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	run, err := resolveStoredRun(ctx, st, flagRun)
	if err != nil {
		return nil, "", err
	}
	offers, err := st.ListOffers(ctx, store.ListOptions{RunID: run.ID})
	if err != nil {
		return nil, "", err
	}
	return offers, fmt.Sprintf("run #%d (%s)", run.ID, run.Source), nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}
