package content

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/sportbuddy/app/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Player is one member of the fixed roster that seeds the feed.
type Player struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Area   models.Area  `yaml:"area"`
	Rating float64      `yaml:"rating"`
	Sport  models.Sport `yaml:"sport"`
}

// ReplyRule maps a keyword set to a canned reply. The reply may reference
// {buddy}, {sport} and {area}.
type ReplyRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

func (r ReplyRule) matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type VenueTemplate struct {
	Name    string  `yaml:"name"`
	Rating  float64 `yaml:"rating"`
	Address string  `yaml:"address"`
}

type activityRow struct {
	Day      string `yaml:"day"`
	Activity int    `yaml:"activity"`
}

// Tables holds every static table the generator draws from.
type Tables struct {
	Roster        []Player                  `yaml:"roster"`
	FallbackSport models.Sport              `yaml:"fallback_sport"`
	Templates     map[models.Sport][]string `yaml:"templates"`
	TimeLabels    []string                  `yaml:"time_labels"`
	Replies       []ReplyRule               `yaml:"replies"`
	DefaultReply  string                    `yaml:"default_reply"`
	Venues        []VenueTemplate           `yaml:"venues"`
	VenueImage    string                    `yaml:"venue_image"`
	ActivityHigh  int                       `yaml:"activity_high"`
	Activity      []activityRow             `yaml:"activity"`
}

// ParseTables decodes and validates a YAML table document.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding content tables: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	for i := range t.Replies {
		for j, kw := range t.Replies[i].Keywords {
			t.Replies[i].Keywords[j] = strings.ToLower(kw)
		}
	}
	return &t, nil
}

func (t *Tables) validate() error {
	if len(t.Roster) == 0 {
		return fmt.Errorf("content tables: empty roster")
	}
	if len(t.Templates[t.FallbackSport]) == 0 {
		return fmt.Errorf("content tables: no templates for fallback sport %q", t.FallbackSport)
	}
	if len(t.TimeLabels) == 0 {
		return fmt.Errorf("content tables: no time labels")
	}
	if t.DefaultReply == "" {
		return fmt.Errorf("content tables: missing default reply")
	}
	for _, r := range t.Replies {
		if len(r.Keywords) == 0 {
			return fmt.Errorf("content tables: reply rule %q has no keywords", r.Name)
		}
	}
	return nil
}

func (t *Tables) templatesFor(sport models.Sport) []string {
	if tpl := t.Templates[sport]; len(tpl) > 0 {
		return tpl
	}
	return t.Templates[t.FallbackSport]
}
