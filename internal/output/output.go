package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/randalmurphal/datkit/ndjson"
)

// Printer handles formatted output to a writer.
// It supports both JSON and human-readable output modes.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	json   bool
	isTTY  bool
	styles *Styles
}

// Styles holds lipgloss styles for human-readable output.
type Styles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Dim     lipgloss.Style
	Key     lipgloss.Style
}

// NewPrinter creates a new Printer.
// If jsonMode is true, output will be JSON formatted.
// If isTTY is true, colors and highlighting are enabled for human output.
func NewPrinter(writer io.Writer, jsonMode bool, isTTY bool) *Printer {
	styles := &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true), // Red
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),           // Green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),           // Yellow
		Bold:    lipgloss.NewStyle().Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // Cyan
	}

	if !isTTY {
		styles.Error = lipgloss.NewStyle()
		styles.Success = lipgloss.NewStyle()
		styles.Warning = lipgloss.NewStyle()
		styles.Bold = lipgloss.NewStyle()
		styles.Dim = lipgloss.NewStyle()
		styles.Key = lipgloss.NewStyle()
	}

	return &Printer{
		w:      writer,
		errW:   writer,
		json:   jsonMode,
		isTTY:  isTTY,
		styles: styles,
	}
}

// WithStderr sets a separate writer for errors and warnings in human mode.
// Returns the printer for chaining.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errW = w
	return p
}

// IsJSON returns true if the printer is in JSON mode.
func (p *Printer) IsJSON() bool {
	return p.json
}

// Writer returns the main output writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Record prints one dat record. JSON mode writes it compactly on one line, keeping
// dat's field order; human mode pretty-prints it.
func (p *Printer) Record(v ndjson.Value) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if p.json {
		mustWrite(p.w.Write(data))
		mustWrite(fmt.Fprintln(p.w))
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("indenting record: %w", err)
	}
	mustWrite(fmt.Fprintln(p.w, p.highlight(pretty.String(), "json")))
	return nil
}

// Records prints each record in order.
func (p *Printer) Records(records []ndjson.Value) error {
	for _, rec := range records {
		if err := p.Record(rec); err != nil {
			return err
		}
	}
	return nil
}

// Lines writes raw lines unchanged in both modes.
func (p *Printer) Lines(lines []string) error {
	for _, line := range lines {
		mustWrite(fmt.Fprintln(p.w, line))
	}
	return nil
}

// List prints a list of names. JSON mode writes {"<key>": [...]}.
func (p *Printer) List(key string, items []string) error {
	if p.json {
		return p.writeJSON(map[string]any{key: items})
	}
	if len(items) == 0 {
		mustWrite(fmt.Fprintln(p.w, p.styles.Dim.Render("(no "+key+")")))
		return nil
	}
	for _, item := range items {
		mustWrite(fmt.Fprintln(p.w, item))
	}
	return nil
}

// Diff prints unified diff text, highlighted on a terminal.
func (p *Printer) Diff(text string) {
	if text == "" {
		mustWrite(fmt.Fprintln(p.w, p.styles.Dim.Render("(no changes)")))
		return
	}
	mustWrite(fmt.Fprint(p.w, p.highlight(text, "diff")))
}

// Success outputs a success message.
func (p *Printer) Success(message string) error {
	if p.json {
		return p.writeJSON(map[string]any{"message": message})
	}
	mustWrite(fmt.Fprintln(p.w, p.styles.Success.Render(message)))
	return nil
}

// KeyValue renders a key-value pair with styles applied.
func (p *Printer) KeyValue(key string, value string) {
	mustWrite(fmt.Fprintf(p.w, "%s %s\n", p.styles.Key.Render(key+":"), value))
}

// Error outputs an error.
// For JSON mode, outputs {"error": "...", "code": N} to stdout.
// For human mode, outputs a styled error message to stderr (if set).
func (p *Printer) Error(err error) {
	exitErr := &ExitError{}
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitCodeFor(err), Message: err.Error()}
	}

	if p.json {
		mustWrite(p.w.Write(ErrorJSON(exitErr.Message, exitErr.Code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Error.Render("Error"), exitErr.Message))
}

// Warn outputs a warning message to the error writer. No-op in JSON mode.
func (p *Printer) Warn(format string, args ...any) {
	if p.json {
		return
	}
	msg := fmt.Sprintf(format, args...)
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.Warning.Render("Warning"), msg))
}

// WriteJSON encodes any data as indented JSON and writes it.
func (p *Printer) WriteJSON(data any) error {
	return p.writeJSON(data)
}

func (p *Printer) writeJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorJSON returns JSON-formatted error bytes.
// Format: {"error": "message", "code": N}
func ErrorJSON(message string, code int) []byte {
	data := map[string]any{
		"error": message,
		"code":  code,
	}
	result, _ := json.Marshal(data)
	return result
}

// IsTTY checks if a writer is a terminal.
// Returns true only for os.File that is a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// mustWrite panics if a write operation fails.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}
