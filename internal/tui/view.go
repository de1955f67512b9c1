package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenSignup:
		body = m.viewSignup()
	case screenMain:
		body = m.viewMain()
	case screenChat:
		body = m.viewChat()
	case screenCreate:
		body = m.viewCreate()
	case screenMatch:
		body = m.viewMatch()
	case screenReview:
		body = m.viewReview()
	}
	if m.err != nil {
		body += "\n" + errorStyle.Render(m.err.Error())
	}
	return body
}

func (m Model) viewInputs(labels []string) string {
	var b strings.Builder
	for i, in := range m.inputs {
		label := mutedStyle.Render(labels[i])
		if i == m.focus {
			label = titleStyle.Render(labels[i])
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, in.View())
	}
	return b.String()
}

func (m Model) viewSignup() string {
	return titleStyle.Render("SportBuddy") + "\n" +
		mutedStyle.Render("Find your sport buddy in Riyadh") + "\n\n" +
		m.viewInputs([]string{"Name", "Age", "Area", "Favorite sports"}) +
		mutedStyle.Render("tab: next field · enter: get started · esc: quit")
}

func (m Model) viewTabs() string {
	names := map[session.Tab]string{
		session.TabFeed:    "1 Feed",
		session.TabMyGames: "2 My Games",
		session.TabProfile: "3 Profile",
	}
	var tabs []string
	for _, t := range tabOrder {
		style := tabStyle
		if t == m.tab {
			style = activeTab
		}
		tabs = append(tabs, style.Render(names[t]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewMain() string {
	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case session.TabFeed:
		b.WriteString(titleStyle.Render("Live games in Riyadh") + "\n\n")
		b.WriteString(m.viewPosts(m.posts, "No games yet."))
		b.WriteString(mutedStyle.Render("↑/↓ select · enter join · n new game · v venues · c chat · q quit"))
	case session.TabMyGames:
		b.WriteString(titleStyle.Render("My Games") + "\n\n")
		b.WriteString(m.viewPosts(m.joined, "You haven't joined any games yet."))
		b.WriteString(mutedStyle.Render("↑/↓ select · c chat · v venues · r review · q quit"))
	case session.TabProfile:
		b.WriteString(m.viewProfile())
	}
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}

func (m Model) viewPosts(posts []*models.GamePost, empty string) string {
	if len(posts) == 0 {
		return mutedStyle.Render(empty) + "\n\n"
	}
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	var b strings.Builder
	for i, p := range posts {
		card := fmt.Sprintf("%s  %s\n%s\n%s · %s · %s · %d/%d players  %s",
			titleStyle.Render(p.Author.Name),
			mutedStyle.Render(fmt.Sprintf("★ %.1f", p.Author.Rating)),
			p.Content,
			p.Sport, p.Area, p.Time, len(p.Attendees), p.TotalSlots,
			statusBadge(p.StatusFor(userID)),
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(card))
		} else {
			b.WriteString(cardStyle.Render(card))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) viewProfile() string {
	if m.user == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.user.Name) + "\n")
	fmt.Fprintf(&b, "%s · %s\n", m.user.Age, m.user.Area)
	sports := make([]string, len(m.user.FavoriteSports))
	for i, s := range m.user.FavoriteSports {
		sports[i] = string(s)
	}
	b.WriteString(mutedStyle.Render(strings.Join(sports, ", ")) + "\n\n")
	b.WriteString(titleStyle.Render("Weekly activity") + "\n")
	b.WriteString(renderChart(m.sess.ActivityChart()))
	fmt.Fprintf(&b, "\n%d games joined\n\n", len(m.joined))
	b.WriteString(mutedStyle.Render("L log out · q quit"))
	return b.String()
}

func (m Model) renderMessages() string {
	if len(m.messages) == 0 {
		return mutedStyle.Render("Say hello to start the conversation.")
	}
	var lines []string
	for _, msg := range m.messages {
		stamp := mutedStyle.Render(msg.Timestamp.Local().Format("15:04"))
		if msg.IsUser {
			line := userBubble.Render(msg.Text) + " " + stamp
			lines = append(lines, lipgloss.PlaceHorizontal(m.chat.Width, lipgloss.Right, line))
		} else {
			lines = append(lines, buddyBubble.Render(msg.Text)+" "+stamp)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewChat() string {
	header := titleStyle.Render(m.buddy.Name) + " " + mutedStyle.Render(fmt.Sprintf("%s · %s", m.buddy.Sport, m.buddy.Area))
	typing := ""
	if m.sess.IsTyping(m.buddy.ID) {
		typing = mutedStyle.Render(m.buddy.Name + " is typing...")
	}
	input := ""
	if len(m.inputs) > 0 {
		input = m.inputs[0].View()
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		header,
		m.chat.View(),
		typing,
		ruleStyle.Render(strings.Repeat("─", max(m.chat.Width, 10))),
		input,
		mutedStyle.Render("enter send · esc back"),
	)
}

func (m Model) viewCreate() string {
	return modalStyle.Render(
		titleStyle.Render("Post a game") + "\n\n" +
			m.viewInputs([]string{"Sport", "Area", "Players needed", "Details"}) +
			mutedStyle.Render("tab: next field · enter: post · esc: cancel"),
	)
}

func (m Model) viewMatch() string {
	if m.match == nil {
		return ""
	}
	buddy := m.match.Buddy
	var b strings.Builder
	b.WriteString(titleStyle.Render("It's a match!") + "\n\n")
	fmt.Fprintf(&b, "%s · %s · %d%% match\n%s\n\n", buddy.Name, buddy.Level, buddy.MatchPercentage, mutedStyle.Render(buddy.Bio))
	b.WriteString(titleStyle.Render("Suggested venues") + "\n")
	for _, v := range m.match.Venues {
		fmt.Fprintf(&b, "%s ★ %.1f\n  %s\n", v.Name, v.Rating, mutedStyle.Render(v.Address))
	}
	b.WriteString("\n" + mutedStyle.Render("c chat · esc close"))
	return modalStyle.Render(b.String())
}

func (m Model) viewReview() string {
	stars := strings.Repeat("★", m.rating) + strings.Repeat("☆", models.MaxReviewRating-m.rating)
	input := ""
	if len(m.inputs) > 0 {
		input = m.inputs[0].View()
	}
	return modalStyle.Render(
		titleStyle.Render("Rate "+m.buddy.Name) + "\n\n" +
			stars + "\n\n" +
			input + "\n\n" +
			mutedStyle.Render("←/→ stars · enter submit · esc close"),
	)
}
