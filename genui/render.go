// Copyright (c) Microsoft. All rights reserved.

package genui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/microsoft/agno-client-go/agno"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	deltaUp     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deltaDown   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

const barWidth = 30

type chartData struct {
	Type   string `json:"type"`
	Unit   string `json:"unit"`
	Series []struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	} `json:"series"`
}

// renderChart draws a horizontal bar chart (bar and line charts share
// the terminal representation).
func renderChart(c *agno.UIComponent) (string, error) {
	var data chartData
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	maxVal := 0.0
	maxLabel := 0
	for _, s := range data.Series {
		if s.Value > maxVal {
			maxVal = s.Value
		}
		if len(s.Label) > maxLabel {
			maxLabel = len(s.Label)
		}
	}

	var b strings.Builder
	writeTitle(&b, c.Title)
	for _, s := range data.Series {
		width := 0
		if maxVal > 0 {
			width = int(s.Value / maxVal * barWidth)
		}
		if width == 0 && s.Value > 0 {
			width = 1
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(pad(s.Label, maxLabel)),
			barStyle.Render(strings.Repeat("█", width)),
			valueStyle.Render(formatNumber(s.Value, data.Unit)),
		)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

type cardData struct {
	Cards []struct {
		Title    string            `json:"title"`
		Subtitle string            `json:"subtitle"`
		Fields   map[string]string `json:"fields"`
	} `json:"cards"`
}

// renderCards draws a horizontal stack of bordered cards.
func renderCards(c *agno.UIComponent) (string, error) {
	var data cardData
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	rendered := make([]string, 0, len(data.Cards))
	for _, card := range data.Cards {
		var b strings.Builder
		b.WriteString(titleStyle.Render(card.Title))
		if card.Subtitle != "" {
			b.WriteString("\n" + labelStyle.Render(card.Subtitle))
		}
		keys := make([]string, 0, len(card.Fields))
		for k := range card.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s %s", labelStyle.Render(k+":"), card.Fields[k])
		}
		rendered = append(rendered, cardStyle.Render(b.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if c.Title != "" {
		out = titleStyle.Render(c.Title) + "\n" + out
	}
	return out, nil
}

type tableData struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// renderTable draws a comparison table with padded columns.
func renderTable(c *agno.UIComponent) (string, error) {
	var data tableData
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	widths := make([]int, len(data.Columns))
	for i, col := range data.Columns {
		widths[i] = len(col)
	}
	for _, row := range data.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeTitle(&b, c.Title)
	cells := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		cells[i] = headerStyle.Render(pad(col, widths[i]))
	}
	b.WriteString(strings.Join(cells, "  ") + "\n")
	for _, row := range data.Rows {
		cells = cells[:0]
		for i, cell := range row {
			if i < len(widths) {
				cells = append(cells, pad(cell, widths[i]))
			}
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

type metricsData struct {
	Metrics []struct {
		Label string `json:"label"`
		Value string `json:"value"`
		Delta string `json:"delta"`
	} `json:"metrics"`
}

// renderMetrics draws a dashboard row of metric tiles.
func renderMetrics(c *agno.UIComponent) (string, error) {
	var data metricsData
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	tiles := make([]string, 0, len(data.Metrics))
	for _, m := range data.Metrics {
		var b strings.Builder
		b.WriteString(labelStyle.Render(m.Label))
		b.WriteString("\n" + valueStyle.Render(m.Value))
		if m.Delta != "" {
			style := deltaUp
			if strings.HasPrefix(m.Delta, "-") {
				style = deltaDown
			}
			b.WriteString(" " + style.Render(m.Delta))
		}
		tiles = append(tiles, cardStyle.Render(b.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
	if c.Title != "" {
		out = titleStyle.Render(c.Title) + "\n" + out
	}
	return out, nil
}

func writeTitle(b *strings.Builder, title string) {
	if title != "" {
		b.WriteString(titleStyle.Render(title) + "\n")
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func formatNumber(v float64, unit string) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if unit != "" {
		return s + " " + unit
	}
	return s
}
