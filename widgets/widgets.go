package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PadStyle describes how one drum pad is drawn
type PadStyle struct {
	Border lipgloss.Color
	Text   lipgloss.Color
	Symbol rune
	Bold   bool
}

// RenderDrumPad renders a bordered pad: symbol on the first line, label below
func RenderDrumPad(label string, st PadStyle, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.Border).
		Foreground(st.Text).
		Bold(st.Bold).
		Width(width).
		Align(lipgloss.Center)
	return style.Render(fmt.Sprintf("%c\n%s", st.Symbol, label))
}

// RenderPadRows lays pads out left to right, wrapping every perRow pads
func RenderPadRows(pads []string, perRow int) string {
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for start := 0; start < len(pads); start += perRow {
		end := min(start+perRow, len(pads))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, pads[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderPad renders a single colored grid cell
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderPadGrid renders a 9x9 Launchpad map, top row first. Cells without
// a colour are drawn as off.
func RenderPadGrid(cells map[[2]int][3]uint8) string {
	var lines []string
	for row := 8; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col <= 8; col++ {
			if col > 0 {
				line.WriteString(" ")
			}
			if row == 8 && col == 8 {
				line.WriteString(" ")
				continue
			}
			line.WriteString(RenderPad(cells[[2]int{row, col}]))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
