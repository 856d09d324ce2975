// Package output provides adapters for writing application output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// Format selects how a stamp is rendered.
type Format string

// Supported output formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatLDFlags Format = "ldflags"
	FormatEnv     Format = "env"
)

// DefaultLDFlagsPackage is the Go package whose variables the ldflags format sets.
const DefaultLDFlagsPackage = "main"

// ParseFormat validates a format name. Names are case-insensitive.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatLDFlags, FormatEnv:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want json, yaml, ldflags or env)", domain.ErrUnknownFormat, name)
	}
}

// Writer writes stamps to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out            io.Writer
	format         Format
	ldflagsPackage string
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter(format Format, ldflagsPackage string) *Writer {
	return NewWriterWithOutput(os.Stdout, format, ldflagsPackage)
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer, format Format, ldflagsPackage string) *Writer {
	if ldflagsPackage == "" {
		ldflagsPackage = DefaultLDFlagsPackage
	}
	return &Writer{out: out, format: format, ldflagsPackage: ldflagsPackage}
}

// WriteStamp renders stamp in the writer's format.
func (w *Writer) WriteStamp(stamp domain.Stamp) error {
	switch w.format {
	case FormatJSON, "":
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(stamp)
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(stamp); err != nil {
			return err
		}
		return enc.Close()
	case FormatLDFlags:
		return w.writeLDFlags(stamp)
	case FormatEnv:
		return w.writeEnv(stamp)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownFormat, w.format)
	}
}

// variable is one named stamp value.
type variable struct {
	name  string
	value string
}

// variables lists the stamp values in output order, omitting empty ones.
func variables(stamp domain.Stamp) []variable {
	all := []variable{
		{"Version", stamp.Version},
		{"ReleasedTag", stamp.ReleasedTag},
		{"Commit", stamp.CommitSHA},
		{"Branch", stamp.BranchName},
		{"Dirty", strconv.FormatBool(stamp.IsDirty)},
		{"Repository", stamp.Repository},
		{"User", stamp.UserName},
		{"RepositoryError", stamp.RepositoryError},
		{"CorrelationID", stamp.CorrelationID},
	}

	vars := all[:0]
	for _, v := range all {
		if v.value != "" {
			vars = append(vars, v)
		}
	}
	return vars
}

// writeLDFlags writes -X assignments for `go build -ldflags` on a single line.
func (w *Writer) writeLDFlags(stamp domain.Stamp) error {
	vars := variables(stamp)
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		parts = append(parts, "-X "+shellQuote(w.ldflagsPackage+"."+v.name+"="+v.value))
	}
	_, err := fmt.Fprintln(w.out, strings.Join(parts, " "))
	return err
}

// writeEnv writes STAMP_<NAME>=value lines suitable for sourcing from a shell.
func (w *Writer) writeEnv(stamp domain.Stamp) error {
	for _, v := range variables(stamp) {
		if _, err := fmt.Fprintf(w.out, "STAMP_%s=%s\n", envName(v.name), shellQuote(v.value)); err != nil {
			return err
		}
	}
	return nil
}

// envName converts CamelCase to SCREAMING_SNAKE_CASE.
func envName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
