package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

const bannerArt = `┏━┓╺┳╸╻ ╻╺┳┓╻ ╻╺┳┓┏━╸┏━╸╻┏
┗━┓ ┃ ┃ ┃ ┃┃┗┳┛ ┃┃┣╸ ┃  ┣┻┓
┗━┛ ╹ ┗━┛╺┻┛ ╹ ╺┻┛┗━╸┗━╸╹ ╹`

// contentWidth caps the menu column so it stays readable on wide terminals.
func contentWidth(width int) int {
	return min(max(width-8, 40), 64)
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)
	if compact {
		return style.Render(theme.Title.Render("S T U D Y D E C K"))
	}
	return style.Render(theme.Title.Render(bannerArt) + "\n" +
		theme.Subtitle.Render("study · practice · take notes"))
}

func renderStatsBar(ov *tracker.Overview, cw int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Align(lipgloss.Center).
		Padding(0, 1)

	if ov == nil || ov.TotalTests == 0 && ov.TotalWrong == 0 {
		return box.Render(theme.Hint.Render("No practice yet. Pick a course to begin."))
	}

	band := tracker.ScoreBand(ov.OverallAverage)
	line := fmt.Sprintf("%s   %s   %s",
		theme.Body.Render(fmt.Sprintf("%d tests", ov.TotalTests)),
		theme.BandColor(int(band)).Render(fmt.Sprintf("avg %.0f%%", ov.OverallAverage)),
		theme.Incorrect.Render(fmt.Sprintf("%d to review", ov.TotalWrong)),
	)
	bar := components.ProgressBar{
		Score:  ov.OverallAverage,
		Width:  cw - 4,
		Banded: true,
		Band:   int(band),
	}.View()
	return box.Render(line + "\n" + bar)
}

func renderMenu(m components.Menu, cw int) string {
	return lipgloss.NewStyle().Width(cw).Render(m.View())
}

func centerIn(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
