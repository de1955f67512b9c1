package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sportbuddy/app/internal/content"
	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

// apiPost is a feed post plus how it relates to the caller.
type apiPost struct {
	*models.GamePost
	Status models.PostStatus `json:"status"`
}

func toAPIPosts(posts []*models.GamePost, userID string) []apiPost {
	out := make([]apiPost, len(posts))
	for i, p := range posts {
		out[i] = apiPost{GamePost: p, Status: p.StatusFor(userID)}
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// apiInternalError logs err and sends a generic 500.
func apiInternalError(w http.ResponseWriter, what string, err error) {
	log.Printf("API error %s: %v", what, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// Health reports liveness and the number of live sessions.
func Health(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": store.Len(),
		})
	}
}

type signupRequest struct {
	Name   string   `json:"name"`
	Age    string   `json:"age"`
	Area   string   `json:"area"`
	Sports []string `json:"sports"`
}

// APISignup completes signup from a JSON body.
func APISignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	form := session.SignupForm{Name: req.Name, Age: req.Age}
	if req.Area != "" {
		area, ok := models.ParseArea(req.Area)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown area")
			return
		}
		form.Area = area
	}
	for _, s := range req.Sports {
		sport, ok := models.ParseSport(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sport: "+s)
			return
		}
		form.Sports = append(form.Sports, sport)
	}

	user, err := SessionFromContext(r.Context()).CompleteSignup(form)
	if errors.Is(err, session.ErrIncompleteSignup) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		apiInternalError(w, "signup", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// APILogout clears the current user.
func APILogout(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).Logout()
	w.WriteHeader(http.StatusNoContent)
}

// EndSession drops the whole session, including its feed and chats.
func EndSession(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Delete(SessionFromContext(r.Context()).ID)
		clearSessionCookie(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// APIPosts lists the feed with optional ?sport= and ?area= filters.
func APIPosts(w http.ResponseWriter, r *http.Request) {
	var sport models.Sport
	var area models.Area
	if v := r.URL.Query().Get("sport"); v != "" {
		s, ok := models.ParseSport(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sport")
			return
		}
		sport = s
	}
	if v := r.URL.Query().Get("area"); v != "" {
		a, ok := models.ParseArea(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown area")
			return
		}
		area = a
	}

	sess := SessionFromContext(r.Context())
	posts, err := sess.FilterPosts(sport, area)
	if err != nil {
		apiInternalError(w, "listing posts", err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIPosts(posts, sess.UserID()))
}

type createPostRequest struct {
	Sport      string `json:"sport"`
	Area       string `json:"area"`
	Content    string `json:"content"`
	TotalSlots int    `json:"totalSlots"`
}

// APICreatePost publishes a post for the signed-in user.
func APICreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	form := session.PostForm{Content: req.Content, Slots: req.TotalSlots}
	if req.Sport != "" {
		sport, ok := models.ParseSport(req.Sport)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sport")
			return
		}
		form.Sport = sport
	}
	if req.Area != "" {
		area, ok := models.ParseArea(req.Area)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown area")
			return
		}
		form.Area = area
	}

	sess := SessionFromContext(r.Context())
	post, err := sess.CreatePost(form)
	switch {
	case errors.Is(err, session.ErrNotSignedIn):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, session.ErrInvalidPost):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		apiInternalError(w, "creating post", err)
	default:
		writeJSON(w, http.StatusCreated, apiPost{GamePost: post, Status: post.StatusFor(sess.UserID())})
	}
}

// APIJoinGame joins {postID}.
func APIJoinGame(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	post, err := sess.JoinGame(mux.Vars(r)["postID"])
	if errors.Is(err, session.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		apiInternalError(w, "joining game", err)
		return
	}
	writeJSON(w, http.StatusOK, apiPost{GamePost: post, Status: post.StatusFor(sess.UserID())})
}

// APIJoined lists the joined games.
func APIJoined(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	posts, err := sess.JoinedPosts()
	if err != nil {
		apiInternalError(w, "listing joined", err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIPosts(posts, sess.UserID()))
}

type chatResponse struct {
	Buddy    models.BuddyProfile `json:"buddy"`
	Messages []*models.Message   `json:"messages"`
	Typing   bool                `json:"typing"`
}

// APIChat returns the conversation with {buddyID}.
func APIChat(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	buddyID := mux.Vars(r)["buddyID"]
	buddy, err := sess.Buddy(buddyID)
	if errors.Is(err, session.ErrBuddyNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		apiInternalError(w, "finding buddy", err)
		return
	}
	messages, err := sess.Chat(buddyID)
	if err != nil {
		apiInternalError(w, "reading chat", err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Buddy: buddy, Messages: messages, Typing: sess.IsTyping(buddyID)})
}

// APISendMessage sends {"text": ...} to {buddyID} and schedules the reply.
func APISendMessage(w http.ResponseWriter, r *http.Request) {
	var req chatFrame
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := SessionFromContext(r.Context())
	buddy, err := sess.Buddy(mux.Vars(r)["buddyID"])
	if errors.Is(err, session.ErrBuddyNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		apiInternalError(w, "finding buddy", err)
		return
	}
	msg, err := sess.SendChat(buddy, req.Text)
	if errors.Is(err, session.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		apiInternalError(w, "sending message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// APIVenues suggests venues for ?sport= in ?area=.
func APIVenues(gen *content.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sport := r.URL.Query().Get("sport")
		area := r.URL.Query().Get("area")
		if sport == "" || area == "" {
			writeError(w, http.StatusBadRequest, "sport and area are required")
			return
		}
		writeJSON(w, http.StatusOK, gen.GenerateVenues(sport, area))
	}
}

type reviewRequest struct {
	BuddyID string `json:"buddyId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// APISubmitReview records a review for a buddy.
func APISubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	review, err := SessionFromContext(r.Context()).SubmitReview(req.BuddyID, req.Rating, req.Comment)
	switch {
	case errors.Is(err, session.ErrInvalidReview):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrBuddyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		apiInternalError(w, "submitting review", err)
	default:
		writeJSON(w, http.StatusCreated, review)
	}
}

type profileResponse struct {
	User        *models.User           `json:"user"`
	Activity    []models.ActivityPoint `json:"activity"`
	JoinedCount int                    `json:"joinedCount"`
}

// APIProfile returns the signed-in user with the activity chart.
func APIProfile(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	user, err := sess.User()
	if err != nil {
		apiInternalError(w, "loading user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, session.ErrNotSignedIn.Error())
		return
	}
	joined, err := sess.JoinedPosts()
	if err != nil {
		apiInternalError(w, "listing joined", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: user, Activity: sess.ActivityChart(), JoinedCount: len(joined)})
}

// APIState returns the screen-level state of the session.
func APIState(w http.ResponseWriter, r *http.Request) {
	state, err := SessionFromContext(r.Context()).Snapshot()
	if err != nil {
		apiInternalError(w, "reading state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
