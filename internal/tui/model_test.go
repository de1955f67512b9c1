package tui

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sportbuddy/app/internal/content"
	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

func setupTestModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	gen, err := content.New(content.WithRand(rand.New(rand.NewSource(11))))
	if err != nil {
		t.Fatalf("content.New() error = %v", err)
	}
	sess, err := session.New("tui-test", gen, session.Options{
		ReplyDelayMin: time.Hour,
		ReplyDelayMax: time.Hour,
	})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return New(sess), sess
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// send feeds msgs to m in order and returns the resulting model.
func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func signUp(m Model) Model {
	return send(m, keys("Sara"), tab, keys("27"), tab, tab, keys("padel, gym"), enter)
}

func TestSignupScreen(t *testing.T) {
	t.Run("Incomplete form shows error", func(t *testing.T) {
		m, _ := setupTestModel(t)
		if m.screen != screenSignup {
			t.Fatalf("screen = %v; want signup", m.screen)
		}
		got := send(m, keys("Sara"), enter)
		if got.screen != screenSignup || got.err == nil {
			t.Errorf("screen = %v, err = %v; want signup with error", got.screen, got.err)
		}
		if !strings.Contains(got.View(), session.ErrIncompleteSignup.Error()) {
			t.Error("View() does not show the signup error")
		}
	})

	t.Run("Unknown sport", func(t *testing.T) {
		m, _ := setupTestModel(t)
		got := send(m, keys("Sara"), tab, keys("27"), tab, tab, keys("curling"), enter)
		if got.err == nil || !strings.Contains(got.err.Error(), "curling") {
			t.Errorf("err = %v; want unknown sport", got.err)
		}
	})

	t.Run("Complete form", func(t *testing.T) {
		m, sess := setupTestModel(t)
		got := signUp(m)
		if got.screen != screenMain || got.tab != session.TabFeed {
			t.Fatalf("screen = %v, tab = %v; want main feed", got.screen, got.tab)
		}
		user, _ := sess.User()
		if user == nil || user.Name != "Sara" || user.Area != models.AreaOlaya {
			t.Errorf("user = %+v; want Sara in Olaya", user)
		}
		if len(user.FavoriteSports) != 2 {
			t.Errorf("FavoriteSports = %v; want Padel and Gym", user.FavoriteSports)
		}
	})
}

func TestJoinFromFeed(t *testing.T) {
	m, sess := setupTestModel(t)
	m = signUp(m)

	m = send(m, keys("j"))
	target := m.selected()
	if target == nil {
		t.Fatal("no post selected")
	}

	m = send(m, enter)
	if m.screen != screenMatch || m.match == nil || m.match.Buddy.ID != target.Author.ID {
		t.Fatalf("screen = %v, match = %+v; want match for %s", m.screen, m.match, target.Author.ID)
	}
	if !strings.Contains(m.View(), "Suggested venues") {
		t.Error("match view lists no venues")
	}

	m = send(m, esc)
	if m.screen != screenMain {
		t.Errorf("screen = %v after esc; want main", m.screen)
	}
	joined, _ := sess.JoinedPosts()
	if len(joined) != 1 || joined[0].ID != target.ID {
		t.Errorf("joined = %d posts; want [%s]", len(joined), target.ID)
	}

	// Joining again is refused in the view.
	m = send(m, enter)
	if m.screen != screenMain || m.status == "" {
		t.Errorf("screen = %v, status = %q; want a refusal", m.screen, m.status)
	}
	joined, _ = sess.JoinedPosts()
	if len(joined) != 1 {
		t.Errorf("joined = %d posts after second enter; want 1", len(joined))
	}
}

func TestCreatePostForm(t *testing.T) {
	m, sess := setupTestModel(t)
	m = signUp(m)

	m = send(m, keys("n"))
	if m.screen != screenCreate {
		t.Fatalf("screen = %v; want create", m.screen)
	}
	// Sport and area come prefilled; fill in the details.
	m = send(m, tab, tab, tab, keys("Padel at 9, bring water"), enter)
	if m.screen != screenMain {
		t.Fatalf("screen = %v, err = %v; want main", m.screen, m.err)
	}
	posts, _ := sess.Posts()
	if posts[0].Content != "Padel at 9, bring water" || posts[0].Sport != models.SportPadel {
		t.Errorf("first post = %+v; want the new padel post", posts[0])
	}
	if !strings.Contains(m.View(), "Your Post") {
		t.Error("feed view does not mark the new post")
	}

	t.Run("Bad slot count", func(t *testing.T) {
		got := send(m, keys("n"), tab, tab, tea.KeyMsg{Type: tea.KeyBackspace}, keys("1"), tab, keys("x"), enter)
		if got.screen != screenCreate || got.err == nil {
			t.Errorf("screen = %v, err = %v; want create with error", got.screen, got.err)
		}
	})
}

func TestChatScreen(t *testing.T) {
	m, sess := setupTestModel(t)
	m = signUp(m)
	buddyID := m.posts[0].Author.ID

	m = send(m, keys("c"))
	if m.screen != screenChat || m.buddy.ID != buddyID {
		t.Fatalf("screen = %v, buddy = %s; want chat with %s", m.screen, m.buddy.ID, buddyID)
	}

	m = send(m, keys("hello"), enter)
	if len(m.messages) != 1 || m.messages[0].Text != "hello" {
		t.Fatalf("messages = %v; want the sent hello", m.messages)
	}
	if !strings.Contains(m.View(), "is typing") {
		t.Error("chat view does not show the typing indicator")
	}

	// A reply delivered through the session shows up on the next event.
	sess.ReceiveReply(buddyID, "hey!")
	m = send(m, eventMsg(session.Event{Kind: session.EventMessage, BuddyID: buddyID}))
	if len(m.messages) != 2 {
		t.Errorf("messages = %d after reply event; want 2", len(m.messages))
	}

	m = send(m, esc)
	if m.screen != screenMain || sess.ReplyPending(buddyID) {
		t.Errorf("screen = %v, pending = %v; want main with reply cancelled", m.screen, sess.ReplyPending(buddyID))
	}
}

func TestReviewAndProfile(t *testing.T) {
	m, sess := setupTestModel(t)
	m = signUp(m)
	buddyID := m.posts[0].Author.ID

	m = send(m, keys("r"))
	if m.screen != screenReview {
		t.Fatalf("screen = %v; want review", m.screen)
	}
	m = send(m, enter)
	if m.err == nil {
		t.Error("review without stars was accepted")
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, keys("fun"), enter)
	if m.screen != screenMain {
		t.Fatalf("screen = %v, err = %v; want main", m.screen, m.err)
	}
	reviews, _ := sess.Reviews(buddyID)
	if len(reviews) != 1 || reviews[0].Rating != 2 || reviews[0].Comment != "fun" {
		t.Errorf("reviews = %+v; want one 2-star review", reviews)
	}

	m = send(m, keys("3"))
	view := m.View()
	if !strings.Contains(view, "Weekly activity") || !strings.Contains(view, "Sat") {
		t.Error("profile view lacks the activity chart")
	}

	m = send(m, keys("L"))
	if m.screen != screenSignup || sess.UserID() != "" {
		t.Errorf("screen = %v, user = %q; want signup with no user", m.screen, sess.UserID())
	}
}

func TestRenderChart(t *testing.T) {
	out := renderChart([]models.ActivityPoint{
		{Day: "Mon", Activity: 20},
		{Day: "Sat", Activity: 100, High: true},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("renderChart() = %d lines; want 2", len(lines))
	}
	if got := strings.Count(lines[0], "█"); got != 6 {
		t.Errorf("Mon bar = %d blocks; want 6", got)
	}
	if got := strings.Count(lines[1], "█"); got != barWidth {
		t.Errorf("Sat bar = %d blocks; want %d", got, barWidth)
	}
}
