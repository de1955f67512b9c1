// Package tui drives one SportBuddy session from the terminal.
package tui

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

type screen int

const (
	screenSignup screen = iota
	screenMain
	screenChat
	screenCreate
	screenMatch
	screenReview
)

// eventMsg carries a session event into Update.
type eventMsg session.Event

// closedMsg reports that the session's event stream ended.
type closedMsg struct{}

func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// Model is the bubbletea model over a single session.
type Model struct {
	sess   *session.Session
	events <-chan session.Event

	screen screen
	tab    session.Tab
	user   *models.User
	posts  []*models.GamePost
	joined []*models.GamePost
	cursor int

	inputs []textinput.Model
	focus  int

	buddy    models.BuddyProfile
	chat     viewport.Model
	messages []*models.Message
	match    *session.MatchView
	rating   int

	width, height int
	status        string
	err           error
}

// New builds the model and subscribes to the session's events. The
// subscription ends when the session closes.
func New(sess *session.Session) Model {
	events, _ := sess.Subscribe()
	m := Model{
		sess:   sess,
		events: events,
		tab:    session.TabFeed,
		chat:   viewport.New(80, 15),
		width:  80,
		height: 24,
	}
	m.refresh()
	if m.user == nil {
		m.openSignup()
	} else {
		m.screen = screenMain
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

// refresh reloads the current user and lists from the session.
func (m *Model) refresh() {
	user, err := m.sess.User()
	if err != nil {
		m.err = err
		return
	}
	m.user = user
	if m.posts, err = m.sess.Posts(); err != nil {
		m.err = err
		return
	}
	if m.joined, err = m.sess.JoinedPosts(); err != nil {
		m.err = err
		return
	}
	if n := len(m.currentList()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) currentList() []*models.GamePost {
	if m.tab == session.TabMyGames {
		return m.joined
	}
	if m.tab == session.TabFeed {
		return m.posts
	}
	return nil
}

func (m *Model) selected() *models.GamePost {
	list := m.currentList()
	if m.cursor < 0 || m.cursor >= len(list) {
		return nil
	}
	return list[m.cursor]
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

func (m *Model) setInputs(inputs ...textinput.Model) {
	m.inputs = inputs
	m.focus = 0
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

func (m *Model) moveFocus(delta int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) openSignup() {
	m.screen = screenSignup
	m.err = nil
	area := newInput("Area (Olaya, Al Malqa, ...)", 40)
	area.SetValue(string(models.AreaOlaya))
	m.setInputs(
		newInput("Name", 60),
		newInput("Age", 3),
		area,
		newInput("Sports, comma separated (Padel, Gym)", 80),
	)
}

func (m *Model) openCreate() {
	m.sess.OpenCreatePost()
	m.screen = screenCreate
	m.err = nil
	sport := newInput("Sport", 20)
	if len(m.user.FavoriteSports) > 0 {
		sport.SetValue(string(m.user.FavoriteSports[0]))
	}
	area := newInput("Area", 40)
	area.SetValue(string(m.user.Area))
	slots := newInput("Players needed (2-22)", 2)
	slots.SetValue("4")
	content := newInput("What's the plan?", models.MaxPostContent)
	m.setInputs(sport, area, slots, content)
}

func (m *Model) openChat(buddyID string) {
	buddy, err := m.sess.OpenChat(buddyID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.buddy = buddy
	m.screen = screenChat
	m.setInputs(newInput("Type a message...", 256))
	m.loadChat()
}

func (m *Model) loadChat() {
	msgs, err := m.sess.Chat(m.buddy.ID)
	if err != nil {
		m.err = err
		return
	}
	m.messages = msgs
	m.chat.SetContent(m.renderMessages())
	m.chat.GotoBottom()
}

func (m *Model) openMatch(postID string) {
	match, err := m.sess.OpenMatch(postID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.match = match
	m.screen = screenMatch
}

func (m *Model) openReview(buddyID string) {
	buddy, err := m.sess.OpenReview(buddyID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.buddy = buddy
	m.rating = 0
	m.err = nil
	m.screen = screenReview
	m.setInputs(newInput("Comment (optional)", 200))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.chat.Width = msg.Width
		m.chat.Height = max(msg.Height-6, 3)
		m.chat.SetContent(m.renderMessages())
		return m, nil

	case eventMsg:
		if m.screen == screenChat && msg.BuddyID == m.buddy.ID {
			m.loadChat()
		}
		return m, waitForEvent(m.events)

	case closedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenSignup:
			return m.updateSignup(msg)
		case screenMain:
			return m.updateMain(msg)
		case screenChat:
			return m.updateChat(msg)
		case screenCreate:
			return m.updateCreate(msg)
		case screenMatch:
			return m.updateMatch(msg)
		case screenReview:
			return m.updateReview(msg)
		}
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateSignup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case "esc":
		return m, tea.Quit
	case "enter":
		form := session.SignupForm{
			Name: m.inputs[0].Value(),
			Age:  m.inputs[1].Value(),
		}
		if v := strings.TrimSpace(m.inputs[2].Value()); v != "" {
			area, ok := models.ParseArea(v)
			if !ok {
				m.err = fmt.Errorf("unknown area %q", v)
				return m, nil
			}
			form.Area = area
		}
		for _, v := range strings.Split(m.inputs[3].Value(), ",") {
			if strings.TrimSpace(v) == "" {
				continue
			}
			sport, ok := models.ParseSport(v)
			if !ok {
				m.err = fmt.Errorf("unknown sport %q", strings.TrimSpace(v))
				return m, nil
			}
			form.Sports = append(form.Sports, sport)
		}
		user, err := m.sess.CompleteSignup(form)
		if err != nil {
			m.err = err
			return m, nil
		}
		log.Printf("tui: %s signed up", user.ID)
		m.err = nil
		m.inputs = nil
		m.screen = screenMain
		m.tab = session.TabFeed
		m.refresh()
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "1":
		m.switchTab(session.TabFeed)
	case "2":
		m.switchTab(session.TabMyGames)
	case "3":
		m.switchTab(session.TabProfile)
	case "right", "l":
		m.switchTab(nextTab(m.tab, 1))
	case "left", "h":
		m.switchTab(nextTab(m.tab, -1))
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.currentList())-1 {
			m.cursor++
		}
	case "enter":
		post := m.selected()
		if m.tab != session.TabFeed || post == nil {
			break
		}
		if post.StatusFor(m.user.ID) != models.PostStatusOpen {
			m.status = "You can't join this game."
			break
		}
		if _, err := m.sess.JoinGame(post.ID); err != nil {
			m.status = err.Error()
			break
		}
		m.refresh()
		m.openMatch(post.ID)
	case "n":
		if m.tab == session.TabFeed {
			m.openCreate()
		}
	case "c":
		if post := m.selected(); post != nil && post.Author.ID != m.user.ID {
			m.openChat(post.Author.ID)
		}
	case "v":
		if post := m.selected(); post != nil {
			m.openMatch(post.ID)
		}
	case "r":
		if post := m.selected(); post != nil && post.Author.ID != m.user.ID {
			m.openReview(post.Author.ID)
		}
	case "L":
		if m.tab == session.TabProfile {
			m.sess.Logout()
			m.refresh()
			m.openSignup()
		}
	}
	return m, nil
}

var tabOrder = []session.Tab{session.TabFeed, session.TabMyGames, session.TabProfile}

func nextTab(tab session.Tab, delta int) session.Tab {
	for i, t := range tabOrder {
		if t == tab {
			return tabOrder[(i+delta+len(tabOrder))%len(tabOrder)]
		}
	}
	return session.TabFeed
}

func (m *Model) switchTab(tab session.Tab) {
	if err := m.sess.SetTab(tab); err != nil {
		m.status = err.Error()
		return
	}
	m.tab = tab
	m.cursor = 0
	m.refresh()
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sess.CloseChat()
		m.screen = screenMain
		m.inputs = nil
		return m, nil
	case "enter":
		text := m.inputs[0].Value()
		m.inputs[0].SetValue("")
		if _, err := m.sess.SendChat(m.buddy, text); err != nil && !errors.Is(err, session.ErrEmptyMessage) {
			m.err = err
		}
		m.loadChat()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}
	return m.updateInputs(msg)
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sess.CloseCreatePost()
		m.screen = screenMain
		m.inputs = nil
		return m, nil
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case "enter":
		form := session.PostForm{Content: m.inputs[3].Value()}
		var ok bool
		if form.Sport, ok = models.ParseSport(m.inputs[0].Value()); !ok {
			m.err = fmt.Errorf("unknown sport %q", m.inputs[0].Value())
			return m, nil
		}
		if form.Area, ok = models.ParseArea(m.inputs[1].Value()); !ok {
			m.err = fmt.Errorf("unknown area %q", m.inputs[1].Value())
			return m, nil
		}
		slots, err := strconv.Atoi(strings.TrimSpace(m.inputs[2].Value()))
		if err != nil {
			m.err = errors.New("players needed must be a number")
			return m, nil
		}
		form.Slots = slots
		if _, err := m.sess.CreatePost(form); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.inputs = nil
		m.screen = screenMain
		m.tab = session.TabFeed
		m.cursor = 0
		m.refresh()
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) updateMatch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.sess.CloseMatch()
		m.match = nil
		m.screen = screenMain
	case "c":
		buddyID := m.match.Buddy.ID
		m.sess.CloseMatch()
		m.match = nil
		m.openChat(buddyID)
	}
	return m, nil
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sess.CloseReview()
		m.screen = screenMain
		m.inputs = nil
		return m, nil
	case "left":
		if m.rating > models.MinReviewRating {
			m.rating--
		}
		return m, nil
	case "right":
		if m.rating < models.MaxReviewRating {
			m.rating++
		}
		return m, nil
	case "enter":
		if _, err := m.sess.SubmitReview(m.buddy.ID, m.rating, m.inputs[0].Value()); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.inputs = nil
		m.screen = screenMain
		m.status = "Review sent for " + m.buddy.Name
		return m, nil
	}
	return m.updateInputs(msg)
}
