package models

// BuddyProfile is the chat-side view of a post author. It is derived from a
// post and never stored on its own.
type BuddyProfile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Age             int      `json:"age"`
	Sport           Sport    `json:"sport"`
	Area            Area     `json:"area"`
	Bio             string   `json:"bio"`
	Level           string   `json:"level"`
	Availability    string   `json:"availability"`
	AvailableDays   []string `json:"availableDays"`
	AvatarURL       string   `json:"avatarUrl"`
	Rating          float64  `json:"rating"`
	ReviewCount     int      `json:"reviewCount"`
	MatchPercentage int      `json:"matchPercentage"`
}

// BuddyFromPost builds the buddy profile shown when chatting with the author
// of post. Age, level, review count and match percentage are placeholders.
func BuddyFromPost(post *GamePost) BuddyProfile {
	return BuddyProfile{
		ID:              post.Author.ID,
		Name:            post.Author.Name,
		Age:             25,
		Sport:           post.Sport,
		Area:            post.Area,
		Bio:             post.Content,
		Level:           "Intermediate",
		Availability:    post.Time,
		AvailableDays:   []string{},
		AvatarURL:       post.Author.AvatarURL,
		Rating:          post.Author.Rating,
		ReviewCount:     10,
		MatchPercentage: 100,
	}
}
