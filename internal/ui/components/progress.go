package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/ui/theme"
)

// ProgressBar is a horizontal bar for a 0-100 score.
type ProgressBar struct {
	Label string
	Score float64
	Width int
	// Banded colors the percentage with theme.BandColor(Band).
	Banded bool
	Band   int
}

func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	pct := fmt.Sprintf(" %3.0f%%", p.Score)
	barWidth := max(p.Width-lipgloss.Width(out)-len(pct), 4)

	filled := min(max(int(float64(barWidth)*p.Score/100), 0), barWidth)

	out += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if p.Banded {
		style = theme.BandColor(p.Band)
	}
	return out + style.Render(pct)
}
