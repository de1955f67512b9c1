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

// postCard pairs a post with how it relates to the viewer.
type postCard struct {
	Post   *models.GamePost
	Status models.PostStatus
}

// FeedPage lists the feed, optionally filtered by ?sport= and ?area=.
func FeedPage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sess.SetTab(session.TabFeed)
	sess.CloseCreatePost()

	sport, _ := models.ParseSport(r.URL.Query().Get("sport"))
	area, _ := models.ParseArea(r.URL.Query().Get("area"))
	posts, err := sess.FilterPosts(sport, area)
	if err != nil {
		log.Printf("Error fetching posts: %v", err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Feed Unavailable", "Failed to retrieve games.")
		return
	}

	cards := make([]postCard, len(posts))
	for i, p := range posts {
		cards[i] = postCard{Post: p, Status: p.StatusFor(user.ID)}
	}
	RenderTemplate(w, http.StatusOK, "feed.html", map[string]interface{}{
		"Title":       "Feed",
		"Tab":         string(session.TabFeed),
		"User":        user,
		"Cards":       cards,
		"Sports":      models.AllSports,
		"Areas":       models.AllAreas,
		"SportFilter": sport,
		"AreaFilter":  area,
	})
}

// MyGamesPage lists the joined games.
func MyGamesPage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sess.SetTab(session.TabMyGames)

	joined, err := sess.JoinedPosts()
	if err != nil {
		log.Printf("Error fetching joined posts: %v", err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "My Games Unavailable", "Failed to retrieve your games.")
		return
	}
	RenderTemplate(w, http.StatusOK, "my_games.html", map[string]interface{}{
		"Title": "My Games",
		"Tab":   string(session.TabMyGames),
		"User":  user,
		"Posts": joined,
	})
}

// JoinGame adds the user to a post and shows the match modal for it.
func JoinGame(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	postID := mux.Vars(r)["postID"]

	if _, err := sess.JoinGame(postID); err != nil {
		if errors.Is(err, session.ErrPostNotFound) {
			RenderErrorPage(w, r, http.StatusNotFound, "Game Not Found", "That game is no longer in your feed.")
			return
		}
		log.Printf("Error joining %s: %v", postID, err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Join Failed", "Could not join the game. Please try again.")
		return
	}
	http.Redirect(w, r, "/match/"+postID, http.StatusSeeOther)
}

type postFormData struct {
	Sport   models.Sport
	Area    models.Area
	Content string
	Slots   int
}

func createPostPageData(user *models.User, form postFormData, errMsg string) map[string]interface{} {
	return map[string]interface{}{
		"Title":      "Post a game",
		"Tab":        string(session.TabFeed),
		"User":       user,
		"Form":       form,
		"Sports":     models.AllSports,
		"Areas":      models.AllAreas,
		"MinSlots":   session.MinPostSlots,
		"MaxSlots":   session.MaxPostSlots,
		"MaxContent": models.MaxPostContent,
		"Error":      errMsg,
	}
}

// CreatePostPage opens the create-post modal.
func CreatePostPage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sess.OpenCreatePost()
	form := postFormData{Area: user.Area, Slots: 4}
	if len(user.FavoriteSports) > 0 {
		form.Sport = user.FavoriteSports[0]
	}
	RenderTemplate(w, http.StatusOK, "create_post.html", createPostPageData(user, form, ""))
}

// CloseCreatePost dismisses the create-post modal.
func CloseCreatePost(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).CloseCreatePost()
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

// CreatePost handles the create-post form submission.
func CreatePost(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	form := postFormData{Content: r.FormValue("content")}
	form.Sport, _ = models.ParseSport(r.FormValue("sport"))
	form.Area, _ = models.ParseArea(r.FormValue("area"))
	slots, err := strconv.Atoi(r.FormValue("slots"))
	if err != nil {
		RenderTemplate(w, http.StatusOK, "create_post.html", createPostPageData(user, form, "Players needed must be a number."))
		return
	}
	form.Slots = slots

	post, err := sess.CreatePost(session.PostForm{
		Sport:   form.Sport,
		Area:    form.Area,
		Content: form.Content,
		Slots:   form.Slots,
	})
	if errors.Is(err, session.ErrInvalidPost) {
		RenderTemplate(w, http.StatusOK, "create_post.html", createPostPageData(user, form, err.Error()))
		return
	}
	if err != nil {
		log.Printf("Error creating post: %v", err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Post Failed", "Could not publish the game. Please try again.")
		return
	}

	log.Printf("session %s: created post %s", sess.ID, post.ID)
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

// MatchPage shows the match modal for a post's author with venue
// suggestions generated on every visit.
func MatchPage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	match, err := sess.OpenMatch(mux.Vars(r)["postID"])
	if errors.Is(err, session.ErrPostNotFound) {
		RenderErrorPage(w, r, http.StatusNotFound, "Game Not Found", "That game is no longer in your feed.")
		return
	}
	if err != nil {
		log.Printf("Error opening match: %v", err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Match Unavailable", "Could not load the match.")
		return
	}
	RenderTemplate(w, http.StatusOK, "match.html", map[string]interface{}{
		"Title": "It's a match",
		"Tab":   string(session.TabMyGames),
		"User":  user,
		"Match": match,
	})
}

// CloseMatch dismisses the match modal.
func CloseMatch(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).CloseMatch()
	http.Redirect(w, r, "/my-games", http.StatusSeeOther)
}
