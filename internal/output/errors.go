package output

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/auth"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitAuthError   = 3
	ExitConfigError = 4
)

// CLIError carries a user-facing summary, the cause and what to try next.
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
}

func (e *CLIError) Error() string {
	return e.Summary
}

// Classify turns known failures into a CLIError.
func Classify(err error) *CLIError {
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, interaction.ErrUnauthenticated), errors.Is(err, auth.ErrNotSignedIn), api.IsUnauthorized(err):
		return &CLIError{
			Summary:    "You need to sign in",
			Detail:     err.Error(),
			Suggestion: "Run 'zyyp login'",
			ExitCode:   ExitAuthError,
		}
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return &CLIError{
			Summary:  apiErr.Message,
			Detail:   fmt.Sprintf("HTTP %d", apiErr.StatusCode),
			ExitCode: ExitGeneral,
		}
	}
	return &CLIError{Summary: err.Error(), ExitCode: ExitGeneral}
}

func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
	} else {
		fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
	}
	if e.Detail != "" && e.Detail != e.Summary {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion == "" {
		return
	}
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		return
	}
	fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
}
