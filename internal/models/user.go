package models

import "time"

// User represents the player who signed up in the current session.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Age            string    `json:"age"`
	Area           Area      `json:"area"`
	FavoriteSports []Sport   `json:"favoriteSports"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
