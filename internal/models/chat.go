package models

import "time"

// UserSenderID is the sender id of every message written by the session user.
const UserSenderID = "user"

type Message struct {
	ID        string    `json:"id"`
	BuddyID   string    `json:"buddyId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsUser    bool      `json:"isUser"`
}
