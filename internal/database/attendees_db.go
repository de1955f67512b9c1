package database

import (
	"database/sql"

	"github.com/sportbuddy/app/internal/models"
)

// AddAttendee appends userID to the post's attendee list. It does not check
// for an existing entry or for free slots.
func AddAttendee(db *sql.DB, postID string, userID string) (*models.GamePost, error) {
	stmt, err := db.Prepare("INSERT INTO post_attendees(post_id, user_id) SELECT id, ? FROM posts WHERE id = ?")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(userID, postID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}

	return GetPostByID(db, postID)
}

// GetAttendeesForPost returns attendee ids in join order.
func GetAttendeesForPost(db *sql.DB, postID string) ([]string, error) {
	rows, err := db.Query("SELECT user_id FROM post_attendees WHERE post_id = ? ORDER BY id ASC", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		attendees = append(attendees, userID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return attendees, nil
}

func getAllAttendees(db *sql.DB) (map[string][]string, error) {
	rows, err := db.Query("SELECT post_id, user_id FROM post_attendees ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPost := make(map[string][]string)
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		byPost[postID] = append(byPost[postID], userID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return byPost, nil
}
