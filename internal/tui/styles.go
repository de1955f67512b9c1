package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sportbuddy/app/internal/models"
)

var (
	brandColor  = lipgloss.Color("#22c55e")
	mutedColor  = lipgloss.Color("#6b7280")
	borderColor = lipgloss.Color("#505050")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(brandColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	badgeStyle    = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#374151"))
	selectedStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(brandColor).PaddingLeft(1)
	cardStyle     = lipgloss.NewStyle().PaddingLeft(2)
	tabStyle      = lipgloss.NewStyle().Padding(0, 2).Foreground(mutedColor)
	activeTab     = tabStyle.Foreground(brandColor).Bold(true).Underline(true)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(brandColor).Padding(1, 2)
	userBubble    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#15803d")).Padding(0, 1)
	buddyBubble   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#374151")).Padding(0, 1)
	barStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	barHighStyle  = lipgloss.NewStyle().Foreground(brandColor)
	ruleStyle     = lipgloss.NewStyle().Foreground(borderColor)
)

// barWidth is the width of a bar at 100 activity.
const barWidth = 30

// renderChart draws the weekly activity as horizontal bars, highlighting
// the busy days.
func renderChart(points []models.ActivityPoint) string {
	var b strings.Builder
	for _, p := range points {
		n := p.Activity * barWidth / 100
		if n < 1 && p.Activity > 0 {
			n = 1
		}
		style := barStyle
		if p.High {
			style = barHighStyle
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(4).Render(p.Day),
			style.Render(strings.Repeat("█", n)),
			mutedStyle.Render(" "+strconv.Itoa(p.Activity)),
		))
		b.WriteString("\n")
	}
	return b.String()
}

func statusBadge(status models.PostStatus) string {
	switch status {
	case models.PostStatusAuthor:
		return badgeStyle.Render("Your Post")
	case models.PostStatusJoined:
		return badgeStyle.Render("Joined")
	case models.PostStatusFull:
		return badgeStyle.Render("Full")
	default:
		return titleStyle.Render("[enter] Join")
	}
}
