package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sportbuddy/app/internal/content"
	"github.com/sportbuddy/app/internal/session"
)

// RouterConfig carries what the routes need beyond the session store.
type RouterConfig struct {
	Store          *session.Store
	Generator      *content.Generator
	AllowedOrigins []string
}

// NewRouter wires the pages, the JSON API and the chat websocket. Every
// route except /health runs inside a session.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", Health(cfg.Store)).Methods("GET")

	app := r.NewRoute().Subrouter()
	app.Use(SessionMiddleware(cfg.Store))
	RegisterPageRoutes(app)
	RegisterAPIRoutes(app, cfg)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RenderErrorPage(w, r, http.StatusNotFound, "Page Not Found", "The page you are looking for does not exist.")
	})

	// With no allowed origins the API stays same-origin only.
	if len(cfg.AllowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}

// RegisterPageRoutes adds the HTML pages and their form posts.
func RegisterPageRoutes(r *mux.Router) {
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/feed", http.StatusSeeOther)
	}).Methods("GET")

	r.HandleFunc("/signup", SignupPage).Methods("GET")
	r.HandleFunc("/signup", Signup).Methods("POST")
	r.HandleFunc("/logout", Logout).Methods("POST")

	r.HandleFunc("/feed", RequireSignup(FeedPage)).Methods("GET")
	r.HandleFunc("/my-games", RequireSignup(MyGamesPage)).Methods("GET")
	r.HandleFunc("/profile", RequireSignup(ProfilePage)).Methods("GET")

	r.HandleFunc("/posts/new", RequireSignup(CreatePostPage)).Methods("GET")
	r.HandleFunc("/posts/new/close", CloseCreatePost).Methods("POST")
	r.HandleFunc("/posts", RequireSignup(CreatePost)).Methods("POST")
	r.HandleFunc("/posts/{postID}/join", RequireSignup(JoinGame)).Methods("POST")

	r.HandleFunc("/match/close", CloseMatch).Methods("POST")
	r.HandleFunc("/match/{postID}", RequireSignup(MatchPage)).Methods("GET")

	r.HandleFunc("/chat/{buddyID}", RequireSignup(ChatPage)).Methods("GET")
	r.HandleFunc("/chat/{buddyID}", RequireSignup(PostChatMessage)).Methods("POST")
	r.HandleFunc("/chat/{buddyID}/close", CloseChat).Methods("POST")

	r.HandleFunc("/review/close", CloseReview).Methods("POST")
	r.HandleFunc("/review/{buddyID}", RequireSignup(ReviewPage)).Methods("GET")
	r.HandleFunc("/review/{buddyID}", RequireSignup(SubmitReview)).Methods("POST")
}

// RegisterAPIRoutes adds the JSON API under /api.
func RegisterAPIRoutes(r *mux.Router, cfg RouterConfig) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/signup", APISignup).Methods("POST")
	api.HandleFunc("/logout", APILogout).Methods("POST")
	api.HandleFunc("/session", EndSession(cfg.Store)).Methods("DELETE")
	api.HandleFunc("/state", APIState).Methods("GET")
	api.HandleFunc("/profile", APIProfile).Methods("GET")

	api.HandleFunc("/posts", APIPosts).Methods("GET")
	api.HandleFunc("/posts", APICreatePost).Methods("POST")
	api.HandleFunc("/posts/{postID}/join", APIJoinGame).Methods("POST")
	api.HandleFunc("/joined", APIJoined).Methods("GET")

	api.HandleFunc("/chat/{buddyID}/messages", APIChat).Methods("GET")
	api.HandleFunc("/chat/{buddyID}/messages", APISendMessage).Methods("POST")
	api.HandleFunc("/chat/{buddyID}/ws", ChatSocket(cfg.AllowedOrigins)).Methods("GET")

	api.HandleFunc("/venues", APIVenues(cfg.Generator)).Methods("GET")
	api.HandleFunc("/reviews", APISubmitReview).Methods("POST")
}
