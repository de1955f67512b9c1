package database

import (
	"database/sql"

	"github.com/sportbuddy/app/internal/models"
)

// AppendJoinedPost adds postID to the end of the joined-games list.
func AppendJoinedPost(db *sql.DB, postID string) error {
	_, err := db.Exec("INSERT INTO joined_posts(post_id, position) SELECT ?, COALESCE(MAX(position), -1) + 1 FROM joined_posts", postID)
	return err
}

// PrependJoinedPost adds postID to the head of the joined-games list.
func PrependJoinedPost(db *sql.DB, postID string) error {
	_, err := db.Exec("INSERT INTO joined_posts(post_id, position) SELECT ?, COALESCE(MIN(position), 1) - 1 FROM joined_posts", postID)
	return err
}

// GetJoinedPosts returns the joined-games list in display order. A post
// joined twice appears twice.
func GetJoinedPosts(db *sql.DB) ([]*models.GamePost, error) {
	return queryPosts(db, `
		SELECT `+postColumns+`
		FROM joined_posts j
		JOIN posts p ON p.id = j.post_id
		ORDER BY j.position ASC, j.id ASC
	`)
}
