package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCLIArgs_RewritesCommonFlagSyntax(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-offers", "offers.json", "json"})

	assert.Equal(t, []string{"--offers", "offers.json", "--json"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesKeyValueToken(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--offers", "offers.json", "threshold=50"})

	assert.Equal(t, []string{"--offers", "offers.json", "--threshold=50"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesTypoFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--treshold", "50"})

	assert.Equal(t, []string{"--threshold", "50"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesFlagAlias(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--min-accuracy", "60", "--shop", "Netto"})

	assert.Equal(t, []string{"--threshold", "60", "--store", "Netto"}, args)
	assert.Len(t, notes, 2)
}

func TestNormalizeCLIArgs_RewritesCommandTypo(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"statss", "--run", "3"})

	assert.Equal(t, []string{"stats", "--run", "3"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesBareFlagForFlagOnlyCommand(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"stats", "runs"})

	assert.Equal(t, []string{"stats", "--runs"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_KeepsExplainNamesPositional(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"explain", "store", "laks"})

	assert.Equal(t, []string{"explain", "store", "laks"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteCompletionPositionalArgs(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"completion", "zsh"})

	assert.Equal(t, []string{"completion", "zsh"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteHelpCommandArgAsFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"help", "stats"})

	assert.Equal(t, []string{"help", "stats"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_RespectsDoubleDashBoundary(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"stats", "--", "runs"})

	assert.Equal(t, []string{"stats", "--", "runs"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_LeavesKnownShorthandUntouched(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-t", "50", "-n", "5"})

	assert.Equal(t, []string{"-t", "50", "-n", "5"}, args)
	assert.Empty(t, notes)
}

func TestExplainCLIError_UnknownFlagIncludesSuggestionAndExamples(t *testing.T) {
	msg := explainCLIError(errors.New("unknown flag: --treshold"))

	assert.Contains(t, msg, "Try `--threshold`.")
	assert.Contains(t, msg, "foodcat --offers data/api-offers.json")
	assert.Contains(t, msg, "foodcat --offers data/api-offers.json --category protein")
}

func TestExplainCLIError_UnknownCommandIncludesSuggestionAndExamples(t *testing.T) {
	msg := explainCLIError(errors.New("unknown command \"explian\" for \"foodcat\""))

	assert.Contains(t, msg, "Did you mean `explain`?")
	assert.Contains(t, msg, "foodcat stats --run 3")
	assert.Contains(t, msg, "foodcat catalogs")
}

func TestKnownCommands_FollowRegisteredCommands(t *testing.T) {
	commands := knownCommands()

	for _, name := range []string{"fetch", "catalogs", "run", "upload", "stats", "compare", "explain", "tui", "serve", "completion", "help"} {
		assert.Contains(t, commands, name)
	}
	assert.IsIncreasing(t, commands)
}

func TestCLIFlags_ValueRequirementFollowsFlagType(t *testing.T) {
	flags := cliFlags()

	assert.True(t, flags.long["threshold"].requiresValue)
	assert.True(t, flags.long["dealer"].requiresValue)
	assert.False(t, flags.long["runs"].requiresValue)
	assert.False(t, flags.long["json"].requiresValue)
	assert.True(t, flags.short['t'])
	assert.True(t, flags.short['p'])
	assert.False(t, flags.short['v'])
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("stats", "stats"))
	assert.Equal(t, 1, levenshtein("treshold", "threshold"))
	assert.Equal(t, 3, levenshtein("", "run"))
}
