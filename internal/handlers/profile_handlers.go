package handlers

import (
	"log"
	"net/http"

	"github.com/sportbuddy/app/internal/session"
)

// ProfilePage shows the signed-in user with the weekly activity chart.
func ProfilePage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sess.SetTab(session.TabProfile)

	joined, err := sess.JoinedPosts()
	if err != nil {
		log.Printf("Error fetching joined posts: %v", err)
	}
	RenderTemplate(w, http.StatusOK, "profile.html", map[string]interface{}{
		"Title":       "Profile",
		"Tab":         string(session.TabProfile),
		"User":        user,
		"Activity":    sess.ActivityChart(),
		"JoinedCount": len(joined),
	})
}
