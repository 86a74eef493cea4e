package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/categorize"
	"github.com/tayloree/foodcat/internal/dataset"
	"github.com/tayloree/foodcat/internal/store"
	"golang.org/x/term"
)

const (
	// ExitSuccess is returned when the command succeeds.
	ExitSuccess = 0
	// ExitNotFound is returned when no offers, runs or files match the request.
	ExitNotFound = 1
	// ExitInvalidArgs is returned when the command input is invalid.
	ExitInvalidArgs = 2
	// ExitUpstream is returned when an external dependency fails.
	ExitUpstream = 3
	// ExitInternal is returned for unexpected internal failures.
	ExitInternal = 4
)

const (
	codeNotFound    = "NOT_FOUND"
	codeInvalidArgs = "INVALID_ARGS"
	codeUpstream    = "UPSTREAM_ERROR"
	codeInternal    = "INTERNAL_ERROR"
)

// cliError is what runCLI reports: a stable code, an exit status and
// the command lines worth trying next.
type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int
	cause       error
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *cliError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func invalidArgsError(message string, suggestions ...string) error {
	return &cliError{Code: codeInvalidArgs, Message: message, Suggestions: suggestions, ExitCode: ExitInvalidArgs}
}

func notFoundError(message string, suggestions ...string) error {
	return &cliError{Code: codeNotFound, Message: message, Suggestions: suggestions, ExitCode: ExitNotFound}
}

func upstreamError(action string, err error) error {
	return &cliError{
		Code:        codeUpstream,
		Message:     fmt.Sprintf("%s: %v", action, err),
		Suggestions: []string{"Retry in a moment.", "Check the dealer ids with `foodcat catalogs`."},
		ExitCode:    ExitUpstream,
		cause:       err,
	}
}

type jsonErrorPayload struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	if err == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(jsonErrorPayload{
		Error: jsonErrorBody{
			Code:        err.Code,
			Message:     err.Message,
			Suggestions: err.Suggestions,
			ExitCode:    err.ExitCode,
		},
	})
}

func formatCLIErrorText(err *cliError) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s", strings.ToLower(err.Code), err.Message)
	if len(err.Suggestions) > 0 {
		b.WriteString("\nsuggestions:")
		for _, suggestion := range err.Suggestions {
			b.WriteString("\n  " + suggestion)
		}
	}
	return b.String()
}

// sentinelClass maps package sentinel errors onto a CLI error class.
type sentinelClass struct {
	targets     []error
	code        string
	exitCode    int
	suggestions []string
}

var sentinelClasses = []sentinelClass{
	{
		targets:     []error{fs.ErrNotExist, store.ErrEmptyBatch},
		code:        codeNotFound,
		exitCode:    ExitNotFound,
		suggestions: []string{"Check the path or set data.dir in foodcat.yaml."},
	},
	{
		targets:     []error{dataset.ErrInvalidInput, categorize.ErrInvalidInput, categorize.ErrInvalidConfig},
		code:        codeInvalidArgs,
		exitCode:    ExitInvalidArgs,
		suggestions: []string{"foodcat explain \"Hel kylling\" --verbose"},
	},
	{
		targets:     []error{api.ErrUnexpectedStatus},
		code:        codeUpstream,
		exitCode:    ExitUpstream,
		suggestions: []string{"Retry in a moment."},
	},
}

func classifyCLIError(err error) *cliError {
	if err == nil {
		return nil
	}

	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	msg := strings.TrimSpace(err.Error())
	for _, class := range sentinelClasses {
		for _, target := range class.targets {
			if errors.Is(err, target) {
				return &cliError{Code: class.code, Message: msg, Suggestions: class.suggestions, ExitCode: class.exitCode, cause: err}
			}
		}
	}

	if usage := classifyUsageError(msg); usage != nil {
		usage.cause = err
		return usage
	}
	return &cliError{
		Code:        codeInternal,
		Message:     msg,
		Suggestions: []string{"Run `foodcat --help` for usage details."},
		ExitCode:    ExitInternal,
		cause:       err,
	}
}

// classifyUsageError recognises cobra and pflag parse failures, which only
// surface as text.
func classifyUsageError(msg string) *cliError {
	var suggestions []string
	switch {
	case strings.Contains(msg, "unknown command"):
		if bad := extractUnknownValue(msg, "unknown command"); bad != "" {
			if suggestion, ok := closestMatch(strings.ToLower(bad), knownCommands(), 2); ok {
				suggestions = append(suggestions, fmt.Sprintf("Did you mean `%s`?", suggestion))
			}
		}
		suggestions = append(suggestions, "foodcat stats --run 3", "foodcat catalogs")
	case strings.Contains(msg, "unknown flag"), strings.Contains(msg, "unknown shorthand flag"):
		if bad := extractUnknownValue(msg, "unknown flag"); bad != "" {
			if suggestion, ok := resolveFlagName(strings.TrimLeft(bad, "-")); ok {
				suggestions = append(suggestions, fmt.Sprintf("Try `--%s`.", suggestion))
			}
		}
		suggestions = append(suggestions, "foodcat --offers data/api-offers.json", "foodcat --offers data/api-offers.json --category protein")
	case strings.Contains(msg, "requires an argument for flag"),
		strings.Contains(msg, "flag needs an argument"),
		strings.Contains(msg, "invalid argument"),
		strings.Contains(msg, "required flag(s)"),
		strings.Contains(msg, " arg(s)"):
		suggestions = []string{"foodcat --offers data/api-offers.json", "foodcat explain \"Hel kylling\""}
	default:
		return nil
	}
	return &cliError{Code: codeInvalidArgs, Message: msg, Suggestions: suggestions, ExitCode: ExitInvalidArgs}
}

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func hasJSONPreference(args []string) bool {
	for _, arg := range args {
		if arg == "--json" || strings.HasPrefix(arg, "--json=") {
			return true
		}
	}
	return false
}

func hasHelpRequest(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

func shouldAutoJSON(args []string, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(args) == 0 {
		return false
	}
	if hasJSONPreference(args) || hasHelpRequest(args) {
		return false
	}
	switch firstCommand(args) {
	case "completion", "help":
		return false
	default:
		return true
	}
}

func firstCommand(args []string) string {
	expectingValue := false
	for _, arg := range args {
		if expectingValue {
			expectingValue = false
			continue
		}
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
		if strings.HasPrefix(arg, "--") {
			name, rest := splitFlag(strings.TrimPrefix(arg, "--"))
			if spec, ok := cliFlags().long[name]; ok && spec.requiresValue && rest == "" {
				expectingValue = true
			}
		} else if len(arg) == 2 && arg[0] == '-' {
			if needsVal, ok := cliFlags().short[arg[1]]; ok && needsVal {
				expectingValue = true
			}
		}
	}
	return ""
}

type quickStartJSON struct {
	Name     string   `json:"name"`
	Usage    string   `json:"usage"`
	Examples []string `json:"examples"`
}

func printQuickStart(w io.Writer, asJSON bool) error {
	help := quickStartJSON{
		Name:  "foodcat",
		Usage: "foodcat --offers FILE [flags] | [fetch|catalogs|run|upload|stats|compare|explain|tui|serve] [flags]",
		Examples: []string{
			"foodcat --offers data/api-offers.json --max 10",
			"foodcat run --dealer 9ba51",
			"foodcat explain \"Hel kylling\"",
		},
	}

	if asJSON {
		return json.NewEncoder(w).Encode(help)
	}

	_, err := fmt.Fprintf(
		w,
		"%s\nusage: %s\nexamples:\n  %s\n  %s\n  %s\nflags: --offers --threshold --limit --category --store --query --sort --max --all --json\n",
		help.Name,
		help.Usage,
		help.Examples[0],
		help.Examples[1],
		help.Examples[2],
	)
	return err
}
