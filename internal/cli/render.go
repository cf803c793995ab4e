package cli

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/charmbracelet/lipgloss"
)

// renderTable lays out rows under a styled header with columns padded to
// their widest cell.
func renderTable(s styles, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	lines := []string{s.header.Render(padRow(headers, widths))}
	for _, row := range rows {
		lines = append(lines, s.value.Render(padRow(row, widths)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func padRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		if pad := widths[i] - len(cell); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// renderKV lays out aligned key/value pairs, one per line.
func renderKV(s styles, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		key := p[0] + strings.Repeat(" ", width-len(p[0]))
		lines = append(lines, s.key.Render(key)+"  "+s.value.Render(p[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
