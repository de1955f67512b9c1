package content

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sportbuddy/app/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	g, err := New(WithRand(rand.New(rand.NewSource(seed))), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestGeneratePostsUnfiltered(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		g := newTestGenerator(t, seed)
		posts := g.GeneratePosts("", "")

		if len(posts) != 5 {
			t.Fatalf("seed %d: GeneratePosts() returned %d posts, want 5", seed, len(posts))
		}
		for _, p := range posts {
			if p.TotalSlots < 3 || p.TotalSlots > 6 {
				t.Errorf("seed %d: post %s TotalSlots = %d, want in [3,6]", seed, p.ID, p.TotalSlots)
			}
			if len(p.Attendees) >= p.TotalSlots-2 {
				t.Errorf("seed %d: post %s has %d attendees, want < %d", seed, p.ID, len(p.Attendees), p.TotalSlots-2)
			}
			for i, a := range p.Attendees {
				if !strings.HasPrefix(a, "dummy_") {
					t.Errorf("seed %d: attendee %d = %q, want dummy placeholder", seed, i, a)
				}
			}
		}
	}
}

func TestGeneratePostsRosterContent(t *testing.T) {
	g := newTestGenerator(t, 1)
	posts := g.GeneratePosts("", "")

	want := []struct {
		author  string
		sport   models.Sport
		area    models.Area
		time    string
		content string
		age     time.Duration
	}{
		{"p1", models.SportFootball, models.AreaOlaya, "Tonight 8 PM", "Playing football this Thursday. We are missing a goalkeeper. Any takers?", 0},
		{"p2", models.SportBasketball, models.AreaHitteen, "Tomorrow 6 PM", "Shooting hoops at the park. Join if you want to play.", 30 * time.Minute},
		{"p3", models.SportRunning, models.AreaMalqa, "Now", "Evening jog around the neighborhood. All paces welcome.", time.Hour},
		{"p4", models.SportPadel, models.AreaNarjis, "In 2 hours", "Need 2 more players for a competitive Padel match tonight at Padel Rush. Level B+ preferred!", 90 * time.Minute},
		{"p5", models.SportGym, models.AreaDQ, "Tonight 8 PM", "HIIT session at the local gym. Come sweat with us!", 2 * time.Hour},
	}

	for i, w := range want {
		p := posts[i]
		if p.Author.ID != w.author {
			t.Errorf("posts[%d].Author.ID = %s, want %s", i, p.Author.ID, w.author)
		}
		if p.Sport != w.sport || p.Area != w.area {
			t.Errorf("posts[%d] sport/area = %s/%s, want %s/%s", i, p.Sport, p.Area, w.sport, w.area)
		}
		if p.Time != w.time {
			t.Errorf("posts[%d].Time = %q, want %q", i, p.Time, w.time)
		}
		if p.Content != w.content {
			t.Errorf("posts[%d].Content = %q, want %q", i, p.Content, w.content)
		}
		if !p.PostedAt.Equal(fixedNow.Add(-w.age)) {
			t.Errorf("posts[%d].PostedAt = %v, want %v", i, p.PostedAt, fixedNow.Add(-w.age))
		}
	}
}

func TestGeneratePostsFilters(t *testing.T) {
	sports := append([]models.Sport{""}, models.AllSports...)
	areas := append([]models.Area{""}, models.AllAreas...)

	for seed := int64(0); seed < 5; seed++ {
		g := newTestGenerator(t, seed)
		for _, sport := range sports {
			for _, area := range areas {
				posts := g.GeneratePosts(sport, area)
				for i, p := range posts {
					if sport != "" && p.Sport != sport {
						t.Errorf("GeneratePosts(%q, %q) returned sport %s", sport, area, p.Sport)
					}
					if area != "" && p.Area != area {
						t.Errorf("GeneratePosts(%q, %q) returned area %s", sport, area, p.Area)
					}
					if i > 0 && posts[i-1].PostedAt.Before(p.PostedAt) {
						t.Errorf("GeneratePosts(%q, %q) not sorted newest first at %d", sport, area, i)
					}
				}
			}
		}
	}

	g := newTestGenerator(t, 7)
	t.Run("Sport and area of the same player", func(t *testing.T) {
		posts := g.GeneratePosts(models.SportPadel, models.AreaNarjis)
		if len(posts) != 1 || posts[0].Author.ID != "p4" {
			t.Errorf("GeneratePosts(Padel, Al Narjis) = %+v, want the p4 post", posts)
		}
	})
	t.Run("No player matches", func(t *testing.T) {
		posts := g.GeneratePosts(models.SportTennis, "")
		if len(posts) != 0 {
			t.Errorf("GeneratePosts(Tennis) returned %d posts, want 0", len(posts))
		}
	})
	t.Run("Mismatched sport and area", func(t *testing.T) {
		posts := g.GeneratePosts(models.SportFootball, models.AreaMalqa)
		if len(posts) != 0 {
			t.Errorf("GeneratePosts(Football, Al Malqa) returned %d posts, want 0", len(posts))
		}
	})
}

func TestGenerateChatReply(t *testing.T) {
	g := newTestGenerator(t, 1)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"Greeting wins over location", "Hi, where are we playing?", "Hello! We're excited to meet with you today."},
		{"Salam", "SALAM alaikum", "Hello! We're excited to meet with you today."},
		{"Substring greeting", "Which place?", "Hello! We're excited to meet with you today."}, // "which" contains "hi"
		{"Location only", "Where exactly?", "We are playing at the Football courts in Olaya. See you there!"},
		{"Time", "what time", "We're starting at 8:00 PM sharp."},
		{"When", "When do we start", "We're starting at 8:00 PM sharp."},
		{"Equipment", "Should I bring a ball?", "Just bring yourself! We have extra equipment if needed."},
		{"Default", "Great, count me in", "Sounds great! Looking forward to the game."},
		{"Empty", "", "Sounds great! Looking forward to the game."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.GenerateChatReply("Sara", "Football", "Olaya", tt.message)
			if got != tt.want {
				t.Errorf("GenerateChatReply(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestMatchRule(t *testing.T) {
	g := newTestGenerator(t, 1)
	cases := map[string]string{
		"hello":           "greeting",
		"location please": "location",
		"at what time":    "time",
		"need gear?":      "equipment",
		"ok":              "default",
		"when and where?": "location",
	}
	for msg, want := range cases {
		got := "default"
		if rule, ok := g.matchRule(msg); ok {
			got = rule.Name
		}
		if got != want {
			t.Errorf("matchRule(%q) = %s, want %s", msg, got, want)
		}
	}
}

func TestGenerateVenues(t *testing.T) {
	g := newTestGenerator(t, 1)
	venues := g.GenerateVenues("Tennis", "Al Malqa")

	if len(venues) != 3 {
		t.Fatalf("GenerateVenues() returned %d venues, want 3", len(venues))
	}
	wantRatings := []float64{4.8, 4.5, 4.2}
	wantNames := []string{"Al Malqa Sports Park", "Elite Tennis Center", "Community Tennis Club"}
	for i, v := range venues {
		if v.Rating != wantRatings[i] {
			t.Errorf("venues[%d].Rating = %v, want %v", i, v.Rating, wantRatings[i])
		}
		if v.Name != wantNames[i] {
			t.Errorf("venues[%d].Name = %q, want %q", i, v.Name, wantNames[i])
		}
	}
	if venues[1].ImageURL != "https://picsum.photos/seed/Tennis2/300/200" {
		t.Errorf("venues[1].ImageURL = %s", venues[1].ImageURL)
	}
	if venues[0].Address != "King Fahd Rd, Al Malqa" {
		t.Errorf("venues[0].Address = %s", venues[0].Address)
	}

	again := g.GenerateVenues("Tennis", "Al Malqa")
	for i := range venues {
		if venues[i] != again[i] {
			t.Errorf("GenerateVenues() not deterministic at %d: %+v vs %+v", i, venues[i], again[i])
		}
	}
}

func TestActivityChart(t *testing.T) {
	g := newTestGenerator(t, 1)
	points := g.ActivityChart()
	if len(points) != 7 {
		t.Fatalf("ActivityChart() returned %d points, want 7", len(points))
	}
	if points[0].Day != "Mon" || points[6].Day != "Sun" {
		t.Errorf("ActivityChart() days = %s..%s, want Mon..Sun", points[0].Day, points[6].Day)
	}
	for _, p := range points {
		if p.High != (p.Activity > 50) {
			t.Errorf("point %s High = %v for activity %d", p.Day, p.High, p.Activity)
		}
	}
}

func TestParseTablesValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Empty roster", "fallback_sport: Football\ntemplates: {Football: [a]}\ntime_labels: [Now]\ndefault_reply: ok\n"},
		{"No fallback templates", "roster: [{id: p1, sport: Gym}]\nfallback_sport: Football\ntime_labels: [Now]\ndefault_reply: ok\n"},
		{"No time labels", "roster: [{id: p1, sport: Gym}]\nfallback_sport: Football\ntemplates: {Football: [a]}\ndefault_reply: ok\n"},
		{"Rule without keywords", "roster: [{id: p1, sport: Gym}]\nfallback_sport: Football\ntemplates: {Football: [a]}\ntime_labels: [Now]\ndefault_reply: ok\nreplies: [{name: x, reply: y}]\n"},
		{"Malformed", "roster: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTables([]byte(tt.doc)); err == nil {
				t.Errorf("ParseTables() error = nil, want error")
			}
		})
	}

	t.Run("Fallback to football templates", func(t *testing.T) {
		doc := "roster: [{id: p9, name: T, area: Olaya, sport: Tennis}]\nfallback_sport: Football\ntemplates: {Football: [kick]}\ntime_labels: [Now]\ndefault_reply: ok\n"
		tables, err := ParseTables([]byte(doc))
		if err != nil {
			t.Fatalf("ParseTables() error = %v", err)
		}
		g, err := New(WithTables(tables), WithClock(func() time.Time { return fixedNow }))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		posts := g.GeneratePosts("", "")
		if len(posts) != 1 || posts[0].Content != "kick" {
			t.Errorf("GeneratePosts() = %+v, want one post using the fallback template", posts)
		}
	})
}
