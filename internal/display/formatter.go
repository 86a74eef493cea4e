package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	unknownTag   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// CatalogJSON is the JSON output shape for a catalog.
type CatalogJSON struct {
	ID         string `json:"id"`
	Dealer     string `json:"dealer"`
	DealerID   string `json:"dealerId"`
	OfferCount int    `json:"offerCount"`
	RunFrom    string `json:"runFrom"`
	RunTill    string `json:"runTill"`
}

// PrintOffers renders categorized offers to the writer.
func PrintOffers(w io.Writer, offers []categorize.CategorizedOffer) {
	fmt.Fprintf(w, "\n%s - %s\n\n",
		headerStyle.Render("Food offers"),
		cyanStyle.Render(fmt.Sprintf("%d items", len(offers))),
	)

	for _, o := range offers {
		printOffer(w, o)
		fmt.Fprintln(w)
	}
}

// PrintOffersJSON renders offers in the categorized export shape.
func PrintOffersJSON(w io.Writer, offers []categorize.CategorizedOffer) error {
	if offers == nil {
		offers = []categorize.CategorizedOffer{}
	}
	return json.NewEncoder(w).Encode(offers)
}

// PrintCatalogs renders a list of catalogs to the writer.
func PrintCatalogs(w io.Writer, catalogs []api.Catalog) {
	fmt.Fprintf(w, "\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("%d catalogs with %d offers:", len(catalogs), api.CatalogOfferTotal(catalogs))),
	)
	for _, c := range catalogs {
		fmt.Fprintf(w, "  %s  %s\n", cyanStyle.Render(c.ID), titleStyle.Render(c.Dealer))
		fmt.Fprintf(w, "        %d offers\n", c.OfferCount)
		if c.RunFrom != "" || c.RunTill != "" {
			fmt.Fprintf(w, "        %s\n", dimStyle.Render(validity(c.RunFrom, c.RunTill)))
		}
		fmt.Fprintln(w)
	}
}

// PrintCatalogsJSON renders catalogs as JSON.
func PrintCatalogsJSON(w io.Writer, catalogs []api.Catalog) error {
	out := make([]CatalogJSON, 0, len(catalogs))
	for _, c := range catalogs {
		out = append(out, CatalogJSON{
			ID:         c.ID,
			Dealer:     c.Dealer,
			DealerID:   c.DealerID,
			OfferCount: c.OfferCount,
			RunFrom:    c.RunFrom,
			RunTill:    c.RunTill,
		})
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintStats renders a category distribution.
func PrintStats(w io.Writer, s filter.Summary, source string) {
	fmt.Fprintf(w, "\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("Category distribution for %s:", source)),
	)
	for _, c := range s.Categories {
		fmt.Fprintf(w, "  %s: %d offers (%.1f%%)\n", cyanStyle.Render(c.Category), c.Count, c.Percent)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render(fmt.Sprintf(
		"%d total | %d matched | %d unknown | average accuracy %.1f%%",
		s.Total, s.Matched, s.Unknown, s.AverageAccuracy,
	)))
}

// PrintStatsJSON renders a summary as JSON.
func PrintStatsJSON(w io.Writer, s filter.Summary) error {
	return json.NewEncoder(w).Encode(s)
}

// PrintRuns renders stored runs, newest first.
func PrintRuns(w io.Writer, runs []store.Run) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Stored runs:"))
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s  %d offers  %s\n",
			cyanStyle.Render(fmt.Sprintf("#%d", r.ID)),
			r.Source,
			r.OfferCount,
			dimStyle.Render(r.CreatedAt.Format("2006-01-02 15:04")),
		)
	}
	fmt.Fprintln(w)
}

// PrintRunsJSON renders runs as JSON.
func PrintRunsJSON(w io.Writer, runs []store.Run) error {
	if runs == nil {
		runs = []store.Run{}
	}
	return json.NewEncoder(w).Encode(runs)
}

// PrintRunContext prints a dim line showing which stored run is used.
func PrintRunContext(w io.Writer, run store.Run) {
	fmt.Fprintf(w, "%s\n\n",
		dimStyle.Render(fmt.Sprintf("Using run #%d (%s, %d offers, %s)",
			run.ID, run.Source, run.OfferCount, run.CreatedAt.Format("2006-01-02 15:04"))),
	)
}

// PrintExplanation renders a scoring trace.
func PrintExplanation(w io.Writer, exp categorize.Explanation) {
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(exp.Name))
	fmt.Fprintf(w, "  %s\n", dimStyle.Render("cleaned: "+exp.Cleaned))
	if exp.HasEgg {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render("egg bonus applies"))
	}

	for _, frag := range exp.Fragments {
		header := fmt.Sprintf("  fragment %q", frag.Product)
		if frag.PreparedPenalty > 0 {
			header += fmt.Sprintf(" (prepared-meal penalty %d)", frag.PreparedPenalty)
		}
		fmt.Fprintln(w, header)
		if len(frag.Pairs) == 0 {
			fmt.Fprintf(w, "    %s\n", dimStyle.Render("no item shares a word"))
			continue
		}
		for _, p := range frag.Pairs {
			verdict := errorStyle.Render("rejected")
			if p.Accepted {
				verdict = priceStyle.Render("accepted")
			}
			fmt.Fprintf(w, "    %s %s %s %s\n",
				cyanStyle.Render(p.Item),
				dimStyle.Render("("+p.Category+")"),
				scoreStyle.Render(fmt.Sprintf("%d/%d", p.Accuracy, p.Threshold)),
				verdict,
			)
			fmt.Fprintf(w, "      %s\n", dimStyle.Render(fmt.Sprintf(
				"matches %d | product %.2f | item %.2f | short-word %.2f",
				p.MatchCount, p.ProductCoverage, p.ItemCoverage, p.ShortWordPenalty,
			)))
		}
	}

	fmt.Fprintln(w)
	printOffer(w, exp.Result)
	fmt.Fprintln(w)
}

// PrintExplanationJSON renders scoring traces as JSON.
func PrintExplanationJSON(w io.Writer, exps []categorize.Explanation) error {
	if exps == nil {
		exps = []categorize.Explanation{}
	}
	return json.NewEncoder(w).Encode(exps)
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func printOffer(w io.Writer, o categorize.CategorizedOffer) {
	name := filter.CleanText(o.Name)
	if name == "" {
		name = "Unnamed offer"
	}

	// Title line
	tag := ""
	if !o.Matched() {
		tag = unknownTag.Render(categorize.UnknownCategory) + " "
	}
	fmt.Fprintf(w, "  %s%s\n", tag, titleStyle.Render(wordWrap(name, 72, "  ")))

	// Price / category
	var parts []string
	if price := formatPrice(o.Offer); price != "" {
		parts = append(parts, priceStyle.Render(price))
	}
	if o.Matched() {
		parts = append(parts, cyanStyle.Render(o.PrimaryCategory()))
		parts = append(parts, scoreStyle.Render(fmt.Sprintf("%d%%", o.MatchAccuracy)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(parts, " | "))
	}

	// Matched items
	if o.Matched() {
		items := make([]string, 0, len(o.MatchedItems))
		for _, m := range o.MatchedItems {
			items = append(items, fmt.Sprintf("%s (%d)", m.Name, m.Accuracy))
		}
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(wordWrap("matches: "+strings.Join(items, ", "), 72, "    ")))
	}

	// Meta
	var meta []string
	if o.ValidFrom != "" || o.ValidTo != "" {
		meta = append(meta, validity(o.ValidFrom, o.ValidTo))
	}
	if o.Store != "" {
		meta = append(meta, o.Store)
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(strings.Join(meta, " | ")))
	}
}

func formatPrice(o categorize.Offer) string {
	if o.Price <= 0 {
		return ""
	}
	out := fmt.Sprintf("%.2f %s", o.Price, o.Currency)
	if o.Weight > 0 {
		out += fmt.Sprintf(" / %g %s", o.Weight, o.WeightUnit)
	}
	return strings.TrimSpace(out)
}

func validity(from, till string) string {
	return fmt.Sprintf("Valid %s - %s", shortDate(from), shortDate(till))
}

// shortDate keeps the date part of an ISO timestamp.
func shortDate(raw string) string {
	if len(raw) >= 10 && raw[4] == '-' && raw[7] == '-' {
		return raw[:10]
	}
	if raw == "" {
		return "?"
	}
	return raw
}

func wordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
