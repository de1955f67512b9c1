package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

const sessionCookieName = "sportbuddy_session"

type contextKey int

const sessionKey contextKey = iota

// SessionMiddleware attaches the caller's session to the request context,
// opening a new one (and setting the cookie) when the cookie is missing or
// its session has expired.
func SessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sess, _ = store.Get(cookie.Value)
			}
			if sess == nil {
				created, err := store.Create()
				if err != nil {
					log.Printf("Error creating session: %v", err)
					http.Error(w, "Could not create session", http.StatusInternalServerError)
					return
				}
				sess = created
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session SessionMiddleware attached, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// RequireSignup redirects to the signup page while no user is signed in.
func RequireSignup(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess == nil || sess.UserID() == "" {
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// currentUser loads the signed-in user for page handlers behind
// RequireSignup.
func currentUser(w http.ResponseWriter, r *http.Request) (*session.Session, *models.User, bool) {
	sess := SessionFromContext(r.Context())
	user, err := sess.User()
	if err != nil {
		RenderErrorPage(w, r, http.StatusInternalServerError, "Session Error", err.Error())
		return nil, nil, false
	}
	if user == nil {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return nil, nil, false
	}
	return sess, user, true
}

// signupFormData is what the signup template needs to re-render the form.
type signupFormData struct {
	Name   string
	Age    string
	Area   models.Area
	Sports []models.Sport
}

func signupPageData(form signupFormData, errMsg string) map[string]interface{} {
	return map[string]interface{}{
		"Title":  "Sign up",
		"Form":   form,
		"Areas":  models.AllAreas,
		"Sports": models.AllSports,
		"Error":  errMsg,
	}
}

// SignupPage renders the signup form, or sends signed-in users to the feed.
func SignupPage(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess.UserID() != "" {
		http.Redirect(w, r, "/feed", http.StatusSeeOther)
		return
	}
	RenderTemplate(w, http.StatusOK, "signup.html", signupPageData(signupFormData{Area: models.AreaOlaya}, ""))
}

// Signup handles the signup form submission.
func Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	form := signupFormData{
		Name: r.FormValue("name"),
		Age:  r.FormValue("age"),
	}
	if area, ok := models.ParseArea(r.FormValue("area")); ok {
		form.Area = area
	}
	for _, v := range r.Form["sports"] {
		if sport, ok := models.ParseSport(v); ok {
			form.Sports = append(form.Sports, sport)
		}
	}

	sess := SessionFromContext(r.Context())
	user, err := sess.CompleteSignup(session.SignupForm{
		Name:   form.Name,
		Age:    form.Age,
		Area:   form.Area,
		Sports: form.Sports,
	})
	if errors.Is(err, session.ErrIncompleteSignup) {
		RenderTemplate(w, http.StatusOK, "signup.html", signupPageData(form, "Please enter your name, your age and at least one sport."))
		return
	}
	if err != nil {
		log.Printf("Error completing signup: %v", err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Signup Failed", "Could not complete signup. Please try again.")
		return
	}

	log.Printf("session %s: %s signed up", sess.ID, user.ID)
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

// Logout signs the user out. The session, with its feed, joined games and
// chats, stays alive under the same cookie.
func Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	sess.Logout()
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}

// clearSessionCookie expires the cookie of a session that was ended.
func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
