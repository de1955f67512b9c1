package database

import (
	"database/sql"
	"fmt"

	"github.com/sportbuddy/app/internal/models"
)

const postColumns = "p.id, p.author_id, p.author_name, p.author_avatar, p.author_rating, p.content, p.sport, p.area, p.time_label, p.total_slots, p.posted_at"

// AppendPost inserts post, with its attendees, at the end of the feed.
func AppendPost(db *sql.DB, post *models.GamePost) (*models.GamePost, error) {
	return insertPost(db, post, "SELECT COALESCE(MAX(position), -1) + 1 FROM posts")
}

// PrependPost inserts post, with its attendees, at the head of the feed.
func PrependPost(db *sql.DB, post *models.GamePost) (*models.GamePost, error) {
	return insertPost(db, post, "SELECT COALESCE(MIN(position), 1) - 1 FROM posts")
}

func insertPost(db *sql.DB, post *models.GamePost, positionQuery string) (*models.GamePost, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var position int64
	if err := tx.QueryRow(positionQuery).Scan(&position); err != nil {
		return nil, fmt.Errorf("computing feed position: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO posts(id, author_id, author_name, author_avatar, author_rating, content, sport, area, time_label, total_slots, posted_at, position)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Author.ID, post.Author.Name, post.Author.AvatarURL, post.Author.Rating,
		post.Content, string(post.Sport), string(post.Area), post.Time, post.TotalSlots,
		toMillis(post.PostedAt), position)
	if err != nil {
		return nil, err
	}

	for _, userID := range post.Attendees {
		if _, err := tx.Exec("INSERT INTO post_attendees(post_id, user_id) VALUES(?, ?)", post.ID, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	// Re-read so the caller gets exactly what the store holds.
	return GetPostByID(db, post.ID)
}

// GetPostByID retrieves a post and its attendees.
func GetPostByID(db *sql.DB, id string) (*models.GamePost, error) {
	post := &models.GamePost{}
	row := db.QueryRow("SELECT "+postColumns+" FROM posts p WHERE p.id = ?", id)
	if err := scanPost(row, post); err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}

	attendees, err := GetAttendeesForPost(db, id)
	if err != nil {
		return nil, err
	}
	post.Attendees = attendees
	return post, nil
}

// GetAllPosts retrieves the feed in display order.
func GetAllPosts(db *sql.DB) ([]*models.GamePost, error) {
	return queryPosts(db, "SELECT "+postColumns+" FROM posts p ORDER BY p.position ASC")
}

// queryPosts runs a post query and attaches attendees. Rows are drained
// before the attendee query since the store holds a single connection.
func queryPosts(db *sql.DB, query string, args ...interface{}) ([]*models.GamePost, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}

	var posts []*models.GamePost
	for rows.Next() {
		post := &models.GamePost{}
		if err := scanPost(rows, post); err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	attendees, err := getAllAttendees(db)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		post.Attendees = attendees[post.ID]
		if post.Attendees == nil {
			post.Attendees = []string{}
		}
	}
	return posts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner, post *models.GamePost) error {
	var sport, area string
	var postedAt int64
	err := row.Scan(&post.ID, &post.Author.ID, &post.Author.Name, &post.Author.AvatarURL, &post.Author.Rating,
		&post.Content, &sport, &area, &post.Time, &post.TotalSlots, &postedAt)
	if err != nil {
		return err
	}
	post.Sport = models.Sport(sport)
	post.Area = models.Area(area)
	post.PostedAt = fromMillis(postedAt)
	return nil
}
