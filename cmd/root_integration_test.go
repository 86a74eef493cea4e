package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/filter"
	"github.com/tayloree/foodcat/internal/store"
)

type cliFixture struct {
	dir        string
	config     string
	categories string
	offers     string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	dir := t.TempDir()

	f := cliFixture{
		dir:        dir,
		config:     filepath.Join(dir, "foodcat.yaml"),
		categories: filepath.Join(dir, "Foodcomponent.json"),
		offers:     filepath.Join(dir, "offers.json"),
	}

	writeFile(t, f.config, "data:\n  dir: "+dir+"\nstore:\n  path: "+filepath.Join(dir, "foodcat.db")+"\n  batch_delay: 0s\nlog:\n  level: warn\n")
	writeFile(t, f.categories, `[
  {"category": "Proteiner", "items": ["kylling", "laks"]},
  {"category": "Grøntsager", "items": ["gulerødder", "løg"]}
]`)
	writeFile(t, f.offers, `[
  {"name": "Hel kylling", "price": 45, "valuta": "DKK", "store": "Netto"},
  {"name": "Gulerødder", "price": 10, "valuta": "DKK", "store": "Føtex"},
  {"name": "Opvaskemiddel", "price": 20, "valuta": "DKK", "store": "Netto"}
]`)
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (f cliFixture) args(extra ...string) []string {
	return append([]string{"--config", f.config, "--categories", f.categories}, extra...)
}

func TestRunCLI_CompletionZsh(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI([]string{"completion", "zsh"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "#compdef foodcat")
	assert.Empty(t, stderr.String())
}

func TestRunCLI_HelpStats(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI([]string{"help", "stats"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "foodcat stats [flags]")
	assert.Empty(t, stderr.String())
}

func TestRunCLI_TolerantRewriteWithoutSideEffects(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI([]string{"stats", "-run", "3", "--help"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "foodcat stats [flags]")
	assert.Contains(t, stderr.String(), "interpreted `-run` as `--run`")
}

func TestRunCLI_DoubleDashBoundary(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI([]string{"stats", "--", "runs", "--help"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "foodcat stats [flags]")
	assert.False(t, strings.Contains(stderr.String(), "interpreted `runs` as `--runs`"))
}

func TestRunCLI_CategorizesOffersFile(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("--offers", f.offers, "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var offers []categorize.CategorizedOffer
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &offers))
	require.Len(t, offers, 2)
	assert.Equal(t, "Hel kylling", offers[0].Name)
	assert.Equal(t, "Proteiner", offers[0].PrimaryCategory())
	assert.Equal(t, "Grøntsager", offers[1].PrimaryCategory())
}

func TestRunCLI_AllKeepsUnknownOffers(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("--offers", f.offers, "--all", "--store", "netto", "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var offers []categorize.CategorizedOffer
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &offers))
	require.Len(t, offers, 2)
	assert.Equal(t, categorize.UnknownCategory, offers[1].PrimaryCategory())
}

func TestRunCLI_NoSurvivorsIsNotFound(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("--offers", f.offers, "--query", "rejer", "--json"), &stdout, &stderr)

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr.String(), "NOT_FOUND")
	assert.Empty(t, stdout.String())
}

func TestRunCLI_MissingOffersFileIsNotFound(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("--offers", filepath.Join(f.dir, "missing.json")), &stdout, &stderr)

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr.String(), "not found")
}

func TestRunCLI_InvalidThresholdIsInvalidArgs(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("--offers", f.offers, "--threshold", "150"), &stdout, &stderr)

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr.String(), "--threshold must be between 0 and 100")
}

func TestRunCLI_UploadThenStats(t *testing.T) {
	f := newCLIFixture(t)
	out := filepath.Join(f.dir, "categorized.json")

	var stdout, stderr bytes.Buffer
	code := runCLI(f.args("--offers", f.offers, "--out", out, "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	stdout.Reset()
	stderr.Reset()
	code = runCLI(f.args("upload", "--input", out, "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var run store.Run
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &run))
	assert.Equal(t, int64(1), run.ID)
	assert.Equal(t, 2, run.OfferCount)
	assert.Equal(t, "upload:categorized.json", run.Source)

	stdout.Reset()
	stderr.Reset()
	code = runCLI(f.args("stats", "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var summary filter.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Matched)

	stdout.Reset()
	stderr.Reset()
	code = runCLI(f.args("compare", "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var results []compareStoreResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Rank)
}

func TestRunCLI_StatsWithoutRunsIsNotFound(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("stats", "--json"), &stdout, &stderr)

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr.String(), "no stored runs")
}

func TestRunCLI_ExplainJSON(t *testing.T) {
	f := newCLIFixture(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	code := runCLI(f.args("explain", "Hel kylling", "--json"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var exps []categorize.Explanation
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &exps))
	require.Len(t, exps, 1)
	assert.Equal(t, "Hel kylling", exps[0].Name)
}

func TestCompareStores_RanksByCountThenAccuracy(t *testing.T) {
	offers := []categorize.CategorizedOffer{
		tuiOffer("Hel kylling", "Netto", 90, "Proteiner"),
		tuiOffer("Laks", "Netto", 80, "Proteiner"),
		tuiOffer("Løg", "Føtex", 100, "Grøntsager"),
		tuiOffer("Gulerødder", "Rema 1000", 60, "Grøntsager"),
	}

	results := compareStores(offers)

	require.Len(t, results, 3)
	assert.Equal(t, "Netto", results[0].Store)
	assert.Equal(t, 2, results[0].AcceptedOffers)
	assert.Equal(t, "Hel kylling", results[0].TopOffer)
	assert.Equal(t, "Proteiner", results[0].TopCategory)
	assert.Equal(t, "Føtex", results[1].Store)
	assert.Equal(t, "Rema 1000", results[2].Store)
	assert.Equal(t, 3, results[2].Rank)
}
