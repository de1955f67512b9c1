package database

import (
	"database/sql"
	"strings"

	"github.com/sportbuddy/app/internal/models"
)

// CreateUser inserts the signed-up user and returns it as stored.
func CreateUser(db *sql.DB, user *models.User) (*models.User, error) {
	stmt, err := db.Prepare("INSERT INTO users(id, name, age, area, favorite_sports, avatar_url, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Name, user.Age, string(user.Area), joinSports(user.FavoriteSports), user.AvatarURL, toMillis(user.CreatedAt))
	if err != nil {
		return nil, err
	}

	return GetUserByID(db, user.ID)
}

// GetUserByID retrieves a user by their ID.
func GetUserByID(db *sql.DB, id string) (*models.User, error) {
	user := &models.User{}
	var area, sports string
	var createdAt int64
	row := db.QueryRow("SELECT id, name, age, area, favorite_sports, avatar_url, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Age, &area, &sports, &user.AvatarURL, &createdAt)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	user.Area = models.Area(area)
	user.FavoriteSports = splitSports(sports)
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}

func joinSports(sports []models.Sport) string {
	names := make([]string, len(sports))
	for i, s := range sports {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}

func splitSports(s string) []models.Sport {
	if s == "" {
		return []models.Sport{}
	}
	parts := strings.Split(s, ",")
	sports := make([]models.Sport, len(parts))
	for i, p := range parts {
		sports[i] = models.Sport(p)
	}
	return sports
}
