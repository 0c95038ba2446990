// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"labposts/internal/service"
)

// Format selects how items are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// FormatItem formats an item line.
// Format: "{ID:>4}  [x] {TITLE}\n"; the marker is "[ ]" for items in progress.
func FormatItem(w io.Writer, item service.Item) {
	fmt.Fprintf(w, "%4d  %s %s\n", item.ID, marker(item.Completed), normalizeTitle(item.Title))
}

// FormatItemDetail formats a single item with its description.
func FormatItemDetail(w io.Writer, item service.Item) {
	FormatItem(w, item)
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		return
	}
	for _, line := range strings.Split(desc, "\n") {
		fmt.Fprintf(w, "          %s\n", strings.TrimRight(line, "\r"))
	}
}

// FormatStats formats the totals line shown under a list.
func FormatStats(w io.Writer, items []service.Item) {
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	fmt.Fprintf(w, "total %d, completed %d, in progress %d\n", len(items), completed, len(items)-completed)
}

// WriteItems writes items in the given format.
func WriteItems(w io.Writer, f Format, items []service.Item) error {
	if items == nil {
		items = []service.Item{}
	}
	switch f {
	case FormatJSON:
		return writeJSON(w, items)
	case FormatYAML:
		return writeYAML(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "no items")
		return nil
	}
	for _, item := range items {
		FormatItem(w, item)
	}
	return nil
}

// WriteItem writes one item in the given format.
func WriteItem(w io.Writer, f Format, item service.Item) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, item)
	case FormatYAML:
		return writeYAML(w, item)
	}
	FormatItemDetail(w, item)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func marker(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes an item title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
