package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

var reviewStars = []int{1, 2, 3, 4, 5}

func renderReview(w http.ResponseWriter, r *http.Request, sess *session.Session, user *models.User, buddy models.BuddyProfile, errMsg string) {
	reviews, err := sess.Reviews(buddy.ID)
	if err != nil {
		// Not critical; the form still works without the list.
		log.Printf("Error fetching reviews for %s: %v", buddy.ID, err)
	}
	RenderTemplate(w, http.StatusOK, "review.html", map[string]interface{}{
		"Title":   "Review",
		"Tab":     string(session.TabMyGames),
		"User":    user,
		"Buddy":   buddy,
		"Stars":   reviewStars,
		"Reviews": reviews,
		"Error":   errMsg,
	})
}

// ReviewPage opens the review modal for a buddy.
func ReviewPage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	buddy, err := sess.OpenReview(mux.Vars(r)["buddyID"])
	if errors.Is(err, session.ErrBuddyNotFound) {
		RenderErrorPage(w, r, http.StatusNotFound, "Buddy Not Found", "There is no player with that id in your feed.")
		return
	}
	if err != nil {
		log.Printf("Error opening review: %v", err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Review Unavailable", "Could not open the review.")
		return
	}
	renderReview(w, r, sess, user, buddy, "")
}

// SubmitReview handles the review form. It expects a 'rating' field of 1
// to 5 and an optional 'comment'.
func SubmitReview(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	buddyID := mux.Vars(r)["buddyID"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form data", http.StatusBadRequest)
		return
	}

	buddy, err := sess.Buddy(buddyID)
	if err != nil {
		RenderErrorPage(w, r, http.StatusNotFound, "Buddy Not Found", "There is no player with that id in your feed.")
		return
	}

	// A missing or malformed rating is the same as no stars picked.
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	_, err = sess.SubmitReview(buddyID, rating, r.FormValue("comment"))
	if errors.Is(err, session.ErrInvalidReview) {
		renderReview(w, r, sess, user, buddy, "Pick between 1 and 5 stars.")
		return
	}
	if err != nil {
		log.Printf("Error submitting review for %s: %v", buddyID, err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Review Failed", "Failed to save the review. Please try again.")
		return
	}
	http.Redirect(w, r, "/my-games", http.StatusSeeOther)
}

// CloseReview dismisses the review modal.
func CloseReview(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).CloseReview()
	http.Redirect(w, r, "/my-games", http.StatusSeeOther)
}
