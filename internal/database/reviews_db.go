package database

import (
	"database/sql"

	"github.com/sportbuddy/app/internal/models"
)

// CreateReview stores a review of a buddy.
func CreateReview(db *sql.DB, review *models.Review) (*models.Review, error) {
	_, err := db.Exec("INSERT INTO reviews(id, buddy_id, rating, comment, created_at) VALUES(?, ?, ?, ?, ?)",
		review.ID, review.BuddyID, review.Rating, review.Comment, toMillis(review.Timestamp))
	if err != nil {
		return nil, err
	}

	created := &models.Review{}
	var createdAt int64
	row := db.QueryRow("SELECT id, buddy_id, rating, comment, created_at FROM reviews WHERE id = ?", review.ID)
	if err := row.Scan(&created.ID, &created.BuddyID, &created.Rating, &created.Comment, &createdAt); err != nil {
		return nil, err
	}
	created.Timestamp = fromMillis(createdAt)
	return created, nil
}

// GetReviewsForBuddy returns a buddy's reviews, oldest first.
func GetReviewsForBuddy(db *sql.DB, buddyID string) ([]*models.Review, error) {
	rows, err := db.Query("SELECT id, buddy_id, rating, comment, created_at FROM reviews WHERE buddy_id = ? ORDER BY seq ASC", buddyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		r := &models.Review{}
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.BuddyID, &r.Rating, &r.Comment, &createdAt); err != nil {
			return nil, err
		}
		r.Timestamp = fromMillis(createdAt)
		reviews = append(reviews, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
