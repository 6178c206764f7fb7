// Package output formats command-line output.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/iAmNsengi/zyyp/internal/api"
)

type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
}

// ResolveColors decides whether to emit ANSI colors. Auto honors NO_COLOR and
// dumb terminals.
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

func NewPrinter(mode ColorMode) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, ResolveColors(mode))
}

func NewPrinterWithWriters(out, errw io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errw, useColors: useColors}
}

func (p *Printer) Out() io.Writer { return p.out }

func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, color.New(color.FgCyan), "", format, args...)
}

func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		p.line(p.out, color.New(color.FgGreen), "✓ ", format, args...)
		return
	}
	p.line(p.out, nil, "[OK] ", format, args...)
}

func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		p.line(p.err, color.New(color.FgYellow), "! ", format, args...)
		return
	}
	p.line(p.err, nil, "[WARN] ", format, args...)
}

func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		p.line(p.err, color.New(color.FgRed), "✗ ", format, args...)
		return
	}
	p.line(p.err, nil, "[ERROR] ", format, args...)
}

func (p *Printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) line(w io.Writer, c *color.Color, prefix, format string, args ...any) {
	if p.useColors && c != nil {
		c.Fprintf(w, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.Bold).Fprintf(p.out, "\n%s\n", title)
		return
	}
	fmt.Fprintf(p.out, "\n%s\n", title)
}

func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

func (p *Printer) Dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}
	return text
}

// Vote renders the viewer's vote as a short marker.
func (p *Printer) Vote(v api.Vote) string {
	switch v {
	case api.VoteUp:
		if p.useColors {
			return color.GreenString("▲")
		}
		return "+"
	case api.VoteDown:
		if p.useColors {
			return color.RedString("▼")
		}
		return "-"
	}
	return " "
}
