package models

import "time"

// MaxPostContent is the longest post body, in characters.
const MaxPostContent = 280

// PostAuthor is a copy of the author taken when the post is created.
type PostAuthor struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"avatarUrl"`
	Rating    float64 `json:"rating"`
}

// GamePost is a request for companions to play a sport at a given time and place.
type GamePost struct {
	ID         string     `json:"id"`
	Author     PostAuthor `json:"author"`
	Content    string     `json:"content"`
	Sport      Sport      `json:"sport"`
	Area       Area       `json:"area"`
	Time       string     `json:"time"` // display label, e.g. "Tonight 8 PM"
	TotalSlots int        `json:"totalSlots"`
	Attendees  []string   `json:"attendees"` // in join order, duplicates possible
	PostedAt   time.Time  `json:"postedAt"`
}

// IsFull reports whether every slot is taken.
func (p *GamePost) IsFull() bool {
	return len(p.Attendees) >= p.TotalSlots
}

// HasAttendee reports whether userID appears in the attendee list.
func (p *GamePost) HasAttendee(userID string) bool {
	for _, id := range p.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

// PostStatus is what the feed offers a given user for a post.
type PostStatus string

const (
	PostStatusOpen   PostStatus = "open"
	PostStatusAuthor PostStatus = "author"
	PostStatusJoined PostStatus = "joined"
	PostStatusFull   PostStatus = "full"
)

// StatusFor reports the post's status as seen by userID. Authorship wins
// over membership, membership over capacity.
func (p *GamePost) StatusFor(userID string) PostStatus {
	switch {
	case userID != "" && p.Author.ID == userID:
		return PostStatusAuthor
	case userID != "" && p.HasAttendee(userID):
		return PostStatusJoined
	case p.IsFull():
		return PostStatusFull
	}
	return PostStatusOpen
}
