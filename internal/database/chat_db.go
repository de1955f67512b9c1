package database

import (
	"database/sql"

	"github.com/sportbuddy/app/internal/models"
)

const messageColumns = "id, buddy_id, sender_id, text, sent_at, is_user"

// CreateChatMessage appends a message to its buddy's history.
func CreateChatMessage(db *sql.DB, message *models.Message) (*models.Message, error) {
	stmt, err := db.Prepare("INSERT INTO chat_messages(id, buddy_id, sender_id, text, sent_at, is_user) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(message.ID, message.BuddyID, message.SenderID, message.Text, toMillis(message.Timestamp), message.IsUser)
	if err != nil {
		return nil, err
	}

	created := &models.Message{}
	row := db.QueryRow("SELECT "+messageColumns+" FROM chat_messages WHERE id = ?", message.ID)
	if err := scanMessage(row, created); err != nil {
		return nil, err
	}
	return created, nil
}

// GetChatMessagesForBuddy retrieves the conversation with a buddy, oldest first.
func GetChatMessagesForBuddy(db *sql.DB, buddyID string) ([]*models.Message, error) {
	rows, err := db.Query("SELECT "+messageColumns+" FROM chat_messages WHERE buddy_id = ? ORDER BY seq ASC", buddyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg := &models.Message{}
		if err := scanMessage(rows, msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastChatMessage returns the newest message with a buddy, or
// sql.ErrNoRows when the conversation is empty.
func GetLastChatMessage(db *sql.DB, buddyID string) (*models.Message, error) {
	msg := &models.Message{}
	row := db.QueryRow("SELECT "+messageColumns+" FROM chat_messages WHERE buddy_id = ? ORDER BY seq DESC LIMIT 1", buddyID)
	if err := scanMessage(row, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetChatBuddyIDs lists buddies with at least one message, in order of
// first contact.
func GetChatBuddyIDs(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT buddy_id FROM chat_messages GROUP BY buddy_id ORDER BY MIN(seq) ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMessage(row rowScanner, msg *models.Message) error {
	var sentAt int64
	if err := row.Scan(&msg.ID, &msg.BuddyID, &msg.SenderID, &msg.Text, &sentAt, &msg.IsUser); err != nil {
		return err
	}
	msg.Timestamp = fromMillis(sentAt)
	return nil
}
