package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderCell renders a single coloured character
func RenderCell(color lipgloss.Color, r rune) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(r))
}

// RenderStat renders "label value" with the value highlighted
func RenderStat(label string, value any, labelColor, valueColor lipgloss.Color) string {
	l := lipgloss.NewStyle().Foreground(labelColor).Render(label)
	v := lipgloss.NewStyle().Foreground(valueColor).Bold(true).Render(fmt.Sprint(value))
	return l + " " + v
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color lipgloss.Color, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderCell(color, '■'), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
