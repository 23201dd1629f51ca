package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lepinkainen/bookscout/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	maxTitleWidth  = 40
	maxAuthorWidth = 32
	columnGap      = 2
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

func writeResults(w io.Writer, results []*store.Result, format string) error {
	if results == nil {
		results = []*store.Result{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "table", "":
		return writeTable(w, results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, results []*store.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	headers := []string{"#", "TITLE", "AUTHOR", "PRICE", "FORMATS", "DRM"}
	limits := []int{0, maxTitleWidth, maxAuthorWidth, 0, 0, 0}

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Title,
			r.Author,
			r.Price,
			strings.Join(r.Formats, ", "),
			r.DRM,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if limits[i] > 0 {
				cell = truncateCell(cell, limits[i])
				row[i] = cell
			}
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(renderRow(headers, widths, headerStyle))
	for _, row := range rows {
		sb.WriteString(renderRow(row, widths, lipgloss.NewStyle()))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		width := widths[i]
		if i < len(cells)-1 {
			width += columnGap
		}
		rendered[i] = style.Copy().Width(width).Render(cell)
	}
	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " ") + "\n"
}

func truncateCell(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
