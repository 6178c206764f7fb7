package output

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"always", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestResolveColors(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !ResolveColors(ColorAlways) {
		t.Error("ColorAlways should win over NO_COLOR")
	}
	if ResolveColors(ColorAuto) {
		t.Error("ColorAuto should honor NO_COLOR")
	}
	if ResolveColors(ColorNever) {
		t.Error("ColorNever should never color")
	}
}

func TestPlainPrefixes(t *testing.T) {
	var out, errb bytes.Buffer
	p := NewPrinterWithWriters(&out, &errb, false)

	p.Success("saved %d", 3)
	p.Warning("slow")
	p.Error("broken")

	if got := out.String(); got != "[OK] saved 3\n" {
		t.Errorf("unexpected stdout %q", got)
	}
	if got := errb.String(); got != "[WARN] slow\n[ERROR] broken\n" {
		t.Errorf("unexpected stderr %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantSum  string
	}{
		{"unauthenticated", fmt.Errorf("voting: %w", interaction.ErrUnauthenticated), ExitAuthError, "You need to sign in"},
		{"401", &api.Error{StatusCode: 401, Message: "Invalid token"}, ExitAuthError, "You need to sign in"},
		{"api error", &api.Error{StatusCode: 404, Message: "Article not found"}, ExitGeneral, "Article not found"},
		{"plain", errors.New("disk full"), ExitGeneral, "disk full"},
		{"passthrough", &CLIError{Summary: "bad flag", ExitCode: ExitUsageError}, ExitUsageError, "bad flag"},
	}
	for _, tt := range tests {
		got := Classify(tt.err)
		if got.ExitCode != tt.wantCode || got.Summary != tt.wantSum {
			t.Errorf("%s: got (%d, %q), want (%d, %q)", tt.name, got.ExitCode, got.Summary, tt.wantCode, tt.wantSum)
		}
	}
}

func TestFormatError(t *testing.T) {
	var errb bytes.Buffer
	p := NewPrinterWithWriters(&bytes.Buffer{}, &errb, false)
	p.FormatError(&CLIError{Summary: "You need to sign in", Detail: "not signed in", Suggestion: "Run 'zyyp login'"})

	got := errb.String()
	for _, want := range []string{"[ERROR] You need to sign in", "Cause: not signed in", "Suggestion: Run 'zyyp login'"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestTableRenders(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ID", "Title")
	tbl.AddRow("1", "Raft in practice")
	tbl.AddRow("2", "Zero-copy IO")
	if err := tbl.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Raft in practice") || !strings.Contains(out, "Zero-copy IO") {
		t.Errorf("rows missing from table output: %q", out)
	}
}
