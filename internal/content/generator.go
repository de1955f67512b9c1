// Package content produces the feed posts, chat auto-replies, venue
// suggestions and profile activity from static tables. Nothing here talks
// to the network or keeps state beyond its tables and random source.
package content

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sportbuddy/app/internal/models"
)

const postSpacing = 30 * time.Minute

// Generator is safe for concurrent use.
type Generator struct {
	tables *Tables

	mu  sync.Mutex // guards rng
	rng *rand.Rand
	now func() time.Time
}

type Option func(*Generator)

// WithRand sets the random source used for slot and attendee counts.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithClock sets the clock used for post timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithTables replaces the embedded tables.
func WithTables(t *Tables) Option {
	return func(g *Generator) { g.tables = t }
}

// New returns a generator over the embedded tables unless WithTables is given.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.tables == nil {
		t, err := ParseTables(defaultTables)
		if err != nil {
			return nil, err
		}
		g.tables = t
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g, nil
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// GeneratePosts builds one post per roster player, keeps those matching the
// sport and area filters (empty means any) and returns them newest first.
func (g *Generator) GeneratePosts(sport models.Sport, area models.Area) []models.GamePost {
	now := g.now()
	posts := make([]models.GamePost, 0, len(g.tables.Roster))

	for i, player := range g.tables.Roster {
		templates := g.tables.templatesFor(player.Sport)

		slots := g.intn(4) + 1
		filled := g.intn(slots)
		attendees := make([]string, 0, filled)
		for j := 0; j < filled; j++ {
			attendees = append(attendees, fmt.Sprintf("dummy_%d", j))
		}

		posts = append(posts, models.GamePost{
			ID: fmt.Sprintf("post_%s_%d", player.ID, now.UnixMilli()),
			Author: models.PostAuthor{
				ID:     player.ID,
				Name:   player.Name,
				Rating: player.Rating,
			},
			Content:    templates[i%len(templates)],
			Sport:      player.Sport,
			Area:       player.Area,
			Time:       g.tables.TimeLabels[i%len(g.tables.TimeLabels)],
			TotalSlots: slots + 2,
			Attendees:  attendees,
			PostedAt:   now.Add(-time.Duration(i) * postSpacing),
		})
	}

	filtered := posts[:0]
	for _, p := range posts {
		if sport != "" && p.Sport != sport {
			continue
		}
		if area != "" && p.Area != area {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PostedAt.After(filtered[j].PostedAt)
	})
	return filtered
}

// GenerateChatReply picks the canned reply for lastMessage. Rules are tried
// in table order and the first one with a keyword inside the lower-cased
// message wins, so "hi, where?" gets the greeting.
func (g *Generator) GenerateChatReply(buddyName, sport, area, lastMessage string) string {
	fill := strings.NewReplacer("{buddy}", buddyName, "{sport}", sport, "{area}", area)
	if rule, ok := g.matchRule(lastMessage); ok {
		return fill.Replace(rule.Reply)
	}
	return fill.Replace(g.tables.DefaultReply)
}

// matchRule returns the first reply rule with a keyword in lastMessage.
func (g *Generator) matchRule(lastMessage string) (ReplyRule, bool) {
	lower := strings.ToLower(lastMessage)
	for _, rule := range g.tables.Replies {
		if rule.matches(lower) {
			return rule, true
		}
	}
	return ReplyRule{}, false
}

// GenerateVenues returns the suggested venues for a sport in an area. The
// result depends only on its arguments.
func (g *Generator) GenerateVenues(sport, area string) []models.Playground {
	venues := make([]models.Playground, 0, len(g.tables.Venues))
	for i, v := range g.tables.Venues {
		n := strconv.Itoa(i + 1)
		fill := strings.NewReplacer("{sport}", sport, "{area}", area, "{n}", n)
		venues = append(venues, models.Playground{
			ID:       "pg_" + n,
			Name:     fill.Replace(v.Name),
			Rating:   v.Rating,
			Address:  fill.Replace(v.Address),
			ImageURL: fill.Replace(g.tables.VenueImage),
		})
	}
	return venues
}

// ActivityChart returns the weekly activity series shown on the profile.
func (g *Generator) ActivityChart() []models.ActivityPoint {
	points := make([]models.ActivityPoint, 0, len(g.tables.Activity))
	for _, row := range g.tables.Activity {
		points = append(points, models.ActivityPoint{
			Day:      row.Day,
			Activity: row.Activity,
			High:     row.Activity > g.tables.ActivityHigh,
		})
	}
	return points
}
