package cmd

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagSpec struct {
	name          string
	requiresValue bool
}

type flagTable struct {
	long  map[string]flagSpec
	short map[byte]bool
}

// commandTree is the root command the tolerance tables are read from. It is
// set in init so the tables follow whatever flags the commands register.
var commandTree *cobra.Command

var (
	cliTablesOnce sync.Once
	cliFlagTable  flagTable
	cliCommandSet []string
)

func loadCLITables() {
	cliTablesOnce.Do(func() {
		cliFlagTable = collectFlags(commandTree)
		cliCommandSet = collectCommands(commandTree)
	})
}

func cliFlags() flagTable {
	loadCLITables()
	return cliFlagTable
}

func knownCommands() []string {
	loadCLITables()
	return cliCommandSet
}

// collectFlags walks every command's local and persistent flags. cobra adds
// help and version lazily on Execute, so those are seeded up front.
func collectFlags(root *cobra.Command) flagTable {
	table := flagTable{
		long: map[string]flagSpec{
			"help":    {name: "help"},
			"version": {name: "version"},
		},
		short: map[byte]bool{'h': false},
	}
	if root == nil {
		return table
	}

	record := func(f *pflag.Flag) {
		needsValue := f.NoOptDefVal == ""
		table.long[f.Name] = flagSpec{name: f.Name, requiresValue: needsValue}
		if len(f.Shorthand) == 1 {
			table.short[f.Shorthand[0]] = needsValue
		}
	}
	var walk func(*cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(record)
		c.PersistentFlags().VisitAll(record)
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
	return table
}

func collectCommands(root *cobra.Command) []string {
	names := []string{"completion", "help"}
	if root == nil {
		return names
	}
	for _, child := range root.Commands() {
		if !slices.Contains(names, child.Name()) {
			names = append(names, child.Name())
		}
	}
	slices.Sort(names)
	return names
}

var flagAliases = map[string]string{
	"file":          "offers",
	"offers-file":   "offers",
	"min-accuracy":  "threshold",
	"accuracy":      "threshold",
	"cat":           "category",
	"shop":          "store",
	"search":        "query",
	"top":           "max",
	"rejected":      "all",
	"output":        "out",
	"dealers":       "dealer",
	"business-id":   "dealer",
	"business-ids":  "dealer",
	"category-file": "categories",
}

func normalizeCLIArgs(args []string) ([]string, []string) {
	out := make([]string, 0, len(args))
	notes := make([]string, 0, 2)
	commandChosen := false
	activeCommand := ""
	nestedCommandAllowed := false
	nestedCommandChosen := false
	allowBareFlagRewrite := true
	expectingValue := false
	afterDoubleDash := false

	for i, tok := range args {
		if afterDoubleDash {
			out = append(out, tok)
			continue
		}

		if expectingValue {
			out = append(out, tok)
			expectingValue = false
			continue
		}

		if tok == "--" {
			out = append(out, tok)
			afterDoubleDash = true
			continue
		}

		canBeCommand := !commandChosen || (nestedCommandAllowed && !nestedCommandChosen)
		normalized, note, isFlag, needsValue, isCommand := normalizeToken(tok, canBeCommand, allowBareFlagRewrite)
		if note != "" {
			notes = append(notes, note)
		}
		out = append(out, normalized)

		if isCommand {
			if !commandChosen {
				commandChosen = true
				activeCommand = normalized
				allowBareFlagRewrite = bareFlagRewriteAllowed(activeCommand)
				nestedCommandAllowed = allowsNestedCommandArg(activeCommand)
				continue
			}
			if nestedCommandAllowed && !nestedCommandChosen {
				nestedCommandChosen = true
			}
		}
		if isFlag && needsValue && !strings.Contains(normalized, "=") && i < len(args)-1 {
			expectingValue = true
		}
	}

	return out, notes
}

func normalizeToken(tok string, canBeCommand bool, allowBareFlagRewrite bool) (normalized, note string, isFlag, needsValue, isCommand bool) {
	if tok == "--" {
		return tok, "", false, false, false
	}

	if strings.HasPrefix(tok, "--") {
		flagName, rest := splitFlag(strings.TrimPrefix(tok, "--"))
		canonical, ok := resolveFlagName(flagName)
		if ok {
			newTok := "--" + canonical + rest
			if newTok != tok {
				return newTok, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", tok, newTok, newTok), true, cliFlags().long[canonical].requiresValue, false
			}
			return newTok, "", true, cliFlags().long[canonical].requiresValue, false
		}
		return tok, "", true, false, false
	}

	if strings.HasPrefix(tok, "-") && len(tok) > 2 {
		flagName, rest := splitFlag(strings.TrimPrefix(tok, "-"))
		canonical, ok := resolveFlagName(flagName)
		if ok {
			newTok := "--" + canonical + rest
			return newTok, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", tok, newTok, newTok), true, cliFlags().long[canonical].requiresValue, false
		}
		return tok, "", true, false, false
	}

	if strings.Contains(tok, "=") && !strings.HasPrefix(tok, "-") {
		flagName, rest := splitFlag(tok)
		canonical, ok := resolveFlagName(flagName)
		if ok {
			newTok := "--" + canonical + rest
			return newTok, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", tok, newTok, newTok), true, cliFlags().long[canonical].requiresValue, false
		}
	}

	if canBeCommand && !strings.HasPrefix(tok, "-") {
		if corrected, ok := resolveCommand(tok); ok {
			if corrected != tok {
				return corrected, fmt.Sprintf("interpreted command `%s` as `%s`; use `%s` next time.", tok, corrected, corrected), false, false, true
			}
			return tok, "", false, false, true
		}
	}

	if allowBareFlagRewrite && !strings.HasPrefix(tok, "-") {
		canonical, ok := resolveFlagName(tok)
		if ok {
			newTok := "--" + canonical
			return newTok, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", tok, newTok, newTok), true, cliFlags().long[canonical].requiresValue, false
		}
	}

	return tok, "", false, false, false
}

func bareFlagRewriteAllowed(command string) bool {
	// Flag-only commands, where rewriting bare tokens like `runs` -> `--runs`
	// cannot clash with a positional argument.
	switch command {
	case "catalogs", "stats", "upload", "fetch":
		return true
	default:
		return false
	}
}

func allowsNestedCommandArg(command string) bool {
	// These commands accept another command token as a positional argument.
	switch command {
	case "help", "completion":
		return true
	default:
		return false
	}
}

func resolveFlagName(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "_", "-")

	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	flags := cliFlags().long
	if _, ok := flags[name]; ok {
		return name, true
	}

	if suggestion, ok := closestMatch(name, sortedKeys(flags), 2); ok {
		return suggestion, true
	}
	return "", false
}

func resolveCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	commands := knownCommands()
	if slices.Contains(commands, name) {
		return name, true
	}
	if suggestion, ok := closestMatch(name, commands, 2); ok {
		return suggestion, true
	}
	return "", false
}

func explainCLIError(err error) string {
	return formatCLIErrorText(classifyCLIError(err))
}

func splitFlag(value string) (string, string) {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) == 2 {
		return parts[0], "=" + parts[1]
	}
	return value, ""
}

func extractUnknownValue(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return ""
	}

	remaining := strings.TrimSpace(msg[idx+len(marker):])
	remaining = strings.TrimPrefix(remaining, ":")
	remaining = strings.TrimSpace(remaining)

	if strings.HasPrefix(remaining, "\"") {
		remaining = strings.TrimPrefix(remaining, "\"")
		end := strings.Index(remaining, "\"")
		if end >= 0 {
			return remaining[:end]
		}
	}

	if strings.HasPrefix(remaining, "`") {
		remaining = strings.TrimPrefix(remaining, "`")
		end := strings.Index(remaining, "`")
		if end >= 0 {
			return remaining[:end]
		}
	}

	if fields := strings.Fields(remaining); len(fields) > 0 {
		return strings.Trim(fields[0], "\"`")
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best := ""
	bestDist := maxDistance + 1

	for _, candidate := range candidates {
		d := levenshtein(target, candidate)
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}

	if bestDist <= maxDistance {
		return best, true
	}
	return "", false
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
