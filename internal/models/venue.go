package models

// Playground is a suggested venue for a matched game.
type Playground struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Address  string  `json:"address"`
	ImageURL string  `json:"imageUrl"`
}

// ActivityPoint is one bar of the weekly activity chart on the profile page.
type ActivityPoint struct {
	Day      string `json:"day"`
	Activity int    `json:"activity"`
	High     bool   `json:"high"`
}
