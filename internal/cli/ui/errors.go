package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	✗ RESOURCE NOT FOUND
//	   No resource named 'Pst'.
//
//	   Did you mean: Post?
//
//	   → List resources: crudkit routes
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor := color.New(color.FgRed, color.Bold)
	bodyColor := color.New(color.FgRed)
	symbol := "✗"
	if opts.Level == ErrorLevelWarning {
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "!"
	}
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	if opts.NoColor {
		for _, c := range []*color.Color{headerColor, bodyColor, yellow, cyan} {
			c.DisableColor()
		}
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	for _, d := range opts.Details {
		bodyColor.Fprintf(&b, "     %s\n", d)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// SchemaError reports invalid resource declarations, one detail line per
// problem.
func SchemaError(problems []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "INVALID RESOURCES",
		Problem: fmt.Sprintf("%d problem(s) found in resource declarations:", len(problems)),
		Details: problems,
		HelpCommands: []string{
			"Directive syntax: //crudkit:resource table=<name> partials max_limit=<n>",
			"Get help: crudkit generate --help",
		},
		NoColor: noColor,
	})
}

// ResourceNotFoundError creates a standardized resource not found error
func ResourceNotFoundError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "RESOURCE NOT FOUND",
		Problem:      fmt.Sprintf("No resource named '%s'.", name),
		Suggestions:  suggestions,
		HelpCommands: []string{"List resources: crudkit routes"},
		NoColor:      noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"Create a config: crudkit init",
			"Get help: crudkit --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}
