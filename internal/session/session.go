// Package session holds the state of one SportBuddy session: the signed-up
// user, the feed, the joined games, the chat histories and which screen or
// modal is showing. Every transition runs under the session lock, so a
// transition never observes another one half done.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sportbuddy/app/internal/content"
	"github.com/sportbuddy/app/internal/database"
	"github.com/sportbuddy/app/internal/models"
)

var (
	ErrIncompleteSignup = errors.New("name, age and at least one sport are required")
	ErrNotSignedIn      = errors.New("no user signed in")
	ErrPostNotFound     = errors.New("post not found")
	ErrBuddyNotFound    = errors.New("buddy not found")
	ErrInvalidPost      = errors.New("invalid post")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrInvalidReview    = errors.New("rating must be between 1 and 5")
	ErrUnknownTab       = errors.New("unknown tab")
	ErrClosed           = errors.New("session closed")
)

type Tab string

const (
	TabFeed    Tab = "feed"
	TabMyGames Tab = "my_games"
	TabProfile Tab = "profile"
)

const (
	// placeholderUserID is recorded when someone joins a game while signed out.
	placeholderUserID = "temp"
	newAuthorRating   = 5.0
	newPostTimeLabel  = "Now"
	placeholderAvatar = "https://via.placeholder.com/150"

	MinPostSlots = 2
	MaxPostSlots = 22
)

type SignupForm struct {
	Name   string
	Age    string
	Area   models.Area
	Sports []models.Sport
}

type PostForm struct {
	Sport   models.Sport
	Area    models.Area
	Content string
	Slots   int
}

// MatchView is the content of the match modal. It is rebuilt every time
// the modal opens.
type MatchView struct {
	Buddy  models.BuddyProfile `json:"buddy"`
	Venues []models.Playground `json:"venues"`
}

// Options tune a session. Zero values fall back to the defaults.
type Options struct {
	ReplyDelayMin time.Duration
	ReplyDelayMax time.Duration
	Now           func() time.Time
	Rand          *rand.Rand
}

type Session struct {
	ID string

	db      *sql.DB
	gen     *content.Generator
	replies *Replier

	mu       sync.Mutex
	now      func() time.Time
	rng      *rand.Rand
	delayMin time.Duration
	delayMax time.Duration

	userID      string
	activeTab   Tab
	showCreate  bool
	activeChat  *models.BuddyProfile
	match       *MatchView
	reviewBuddy *models.BuddyProfile
	typing      map[string]bool

	subs     map[int]chan Event
	nextSub  int
	lastSeen time.Time
	closed   bool
}

// New opens a session with its own in-memory store, seeded with the
// generated feed.
func New(id string, gen *content.Generator, opts Options) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.ReplyDelayMin == 0 && opts.ReplyDelayMax == 0 {
		opts.ReplyDelayMin = 1500 * time.Millisecond
		opts.ReplyDelayMax = 2500 * time.Millisecond
	}
	if opts.ReplyDelayMax < opts.ReplyDelayMin {
		return nil, fmt.Errorf("reply delay max %v below min %v", opts.ReplyDelayMax, opts.ReplyDelayMin)
	}

	db, err := database.InitDB(":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	for _, post := range gen.GeneratePosts("", "") {
		post := post
		if _, err := database.AppendPost(db, &post); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding feed: %w", err)
		}
	}

	return &Session{
		ID:        id,
		db:        db,
		gen:       gen,
		replies:   NewReplier(),
		now:       opts.Now,
		rng:       opts.Rand,
		delayMin:  opts.ReplyDelayMin,
		delayMax:  opts.ReplyDelayMax,
		activeTab: TabFeed,
		typing:    make(map[string]bool),
		subs:      make(map[int]chan Event),
		lastSeen:  opts.Now(),
	}, nil
}

// Close cancels pending replies, ends subscriptions and drops the store.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.replies.CancelAll()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	return s.db.Close()
}

func (s *Session) touch() {
	s.lastSeen = s.now()
}

// LastSeen is when the session last handled a transition or read.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Touch marks the session as in use.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
}

// CompleteSignup makes the described player the current user. Incomplete
// forms change nothing and return ErrIncompleteSignup.
func (s *Session) CompleteSignup(form SignupForm) (*models.User, error) {
	name := strings.TrimSpace(form.Name)
	age := strings.TrimSpace(form.Age)
	sports := uniqueSports(form.Sports)
	if name == "" || age == "" || len(sports) == 0 {
		return nil, ErrIncompleteSignup
	}
	area := form.Area
	if area == "" {
		area = models.AreaOlaya
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()

	user, err := database.CreateUser(s.db, &models.User{
		ID:             uuid.NewString(),
		Name:           name,
		Age:            age,
		Area:           area,
		FavoriteSports: sports,
		AvatarURL:      "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random",
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("storing user: %w", err)
	}
	s.userID = user.ID
	s.activeTab = TabFeed
	return user, nil
}

// Logout clears the current user. Feed, joined games and chats remain.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.closeChatLocked()
	s.userID = ""
	s.activeTab = TabFeed
	s.showCreate = false
	s.match = nil
	s.reviewBuddy = nil
}

// User returns the current user, or nil when signed out.
func (s *Session) User() (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked()
}

func (s *Session) userLocked() (*models.User, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.userID == "" {
		return nil, nil
	}
	return database.GetUserByID(s.db, s.userID)
}

// UserID returns the current user's id, or "" when signed out.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Posts returns the feed, newest first.
func (s *Session) Posts() ([]*models.GamePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	return database.GetAllPosts(s.db)
}

// FilterPosts returns the feed restricted to a sport and area; empty
// values match anything.
func (s *Session) FilterPosts(sport models.Sport, area models.Area) ([]*models.GamePost, error) {
	posts, err := s.Posts()
	if err != nil {
		return nil, err
	}
	filtered := posts[:0]
	for _, p := range posts {
		if (sport == "" || p.Sport == sport) && (area == "" || p.Area == area) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Post returns one feed post.
func (s *Session) Post(postID string) (*models.GamePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.postLocked(postID)
}

func (s *Session) postLocked(postID string) (*models.GamePost, error) {
	post, err := database.GetPostByID(s.db, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// JoinedPosts returns the joined-games list in display order.
func (s *Session) JoinedPosts() ([]*models.GamePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	return database.GetJoinedPosts(s.db)
}

// JoinGame records the current user (or a placeholder when signed out) as
// an attendee and adds the post to the joined games. Membership and
// capacity are not checked: joining twice records the user twice.
func (s *Session) JoinGame(postID string) (*models.GamePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()

	userID := s.userID
	if userID == "" {
		userID = placeholderUserID
	}

	post, err := database.AddAttendee(s.db, postID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("joining %s: %w", postID, err)
	}
	if err := database.AppendJoinedPost(s.db, postID); err != nil {
		return nil, fmt.Errorf("recording joined %s: %w", postID, err)
	}
	return post, nil
}

// CreatePost publishes a post by the current user, who becomes its first
// attendee. The post heads both the feed and the joined games, and the
// create modal closes.
func (s *Session) CreatePost(form PostForm) (*models.GamePost, error) {
	content := strings.TrimSpace(form.Content)
	if content == "" || utf8.RuneCountInString(content) > models.MaxPostContent {
		return nil, fmt.Errorf("%w: content must be 1 to %d characters", ErrInvalidPost, models.MaxPostContent)
	}
	if form.Slots < MinPostSlots || form.Slots > MaxPostSlots {
		return nil, fmt.Errorf("%w: slots must be between %d and %d", ErrInvalidPost, MinPostSlots, MaxPostSlots)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()

	user, err := s.userLocked()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}

	sport := form.Sport
	if sport == "" {
		sport = models.SportFootball
	}
	area := form.Area
	if area == "" {
		area = user.Area
	}
	avatar := user.AvatarURL
	if avatar == "" {
		avatar = placeholderAvatar
	}

	post, err := database.PrependPost(s.db, &models.GamePost{
		ID: "local_" + uuid.NewString(),
		Author: models.PostAuthor{
			ID:        user.ID,
			Name:      user.Name,
			AvatarURL: avatar,
			Rating:    newAuthorRating,
		},
		Content:    content,
		Sport:      sport,
		Area:       area,
		Time:       newPostTimeLabel,
		TotalSlots: form.Slots,
		Attendees:  []string{user.ID},
		PostedAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("storing post: %w", err)
	}
	if err := database.PrependJoinedPost(s.db, post.ID); err != nil {
		return nil, fmt.Errorf("recording own post: %w", err)
	}
	s.showCreate = false
	return post, nil
}

// SendMessage appends a message from the user to a buddy's history. Blank
// text is ignored with ErrEmptyMessage.
func (s *Session) SendMessage(buddyID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	return s.sendMessageLocked(buddyID, text)
}

func (s *Session) sendMessageLocked(buddyID, text string) (*models.Message, error) {
	return s.appendMessageLocked(&models.Message{
		ID:        uuid.NewString(),
		BuddyID:   buddyID,
		SenderID:  models.UserSenderID,
		Text:      text,
		Timestamp: s.stamp(),
		IsUser:    true,
	})
}

// stamp is the current time at the precision messages are stored with.
func (s *Session) stamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

// ReceiveReply appends a buddy's message, stamped after the message it
// answers.
func (s *Session) ReceiveReply(buddyID, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.receiveReplyLocked(buddyID, text)
}

func (s *Session) receiveReplyLocked(buddyID, text string) (*models.Message, error) {
	stamp := s.stamp()
	last, err := database.GetLastChatMessage(s.db, buddyID)
	switch {
	case err == nil:
		if !stamp.After(last.Timestamp) {
			stamp = last.Timestamp.Add(time.Millisecond)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	return s.appendMessageLocked(&models.Message{
		ID:        uuid.NewString(),
		BuddyID:   buddyID,
		SenderID:  buddyID,
		Text:      text,
		Timestamp: stamp,
		IsUser:    false,
	})
}

func (s *Session) appendMessageLocked(msg *models.Message) (*models.Message, error) {
	created, err := database.CreateChatMessage(s.db, msg)
	if err != nil {
		return nil, fmt.Errorf("storing message: %w", err)
	}
	s.emit(Event{Kind: EventMessage, BuddyID: created.BuddyID, Message: created})
	return created, nil
}

// SendChat sends text to buddy and schedules the buddy's auto-reply after
// the typing delay. A message sent while a reply is pending replaces that
// reply with one answering the newer message.
func (s *Session) SendChat(buddy models.BuddyProfile, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	msg, err := s.sendMessageLocked(buddy.ID, text)
	if err != nil {
		return nil, err
	}

	delay := s.replyDelayLocked()
	s.typing[buddy.ID] = true
	s.emit(Event{Kind: EventTyping, BuddyID: buddy.ID})
	s.replies.Schedule(buddy.ID, delay, func(id uint64) {
		s.deliverReply(buddy, text, id)
	})
	return msg, nil
}

func (s *Session) replyDelayLocked() time.Duration {
	spread := s.delayMax - s.delayMin
	if spread <= 0 {
		return s.delayMin
	}
	return s.delayMin + time.Duration(s.rng.Int63n(int64(spread)+1))
}

func (s *Session) deliverReply(buddy models.BuddyProfile, lastMessage string, id uint64) {
	reply := s.gen.GenerateChatReply(buddy.Name, string(buddy.Sport), string(buddy.Area), lastMessage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.replies.Claim(buddy.ID, id) {
		return
	}
	delete(s.typing, buddy.ID)
	s.emit(Event{Kind: EventTypingStopped, BuddyID: buddy.ID})
	if _, err := s.receiveReplyLocked(buddy.ID, reply); err != nil {
		log.Printf("session %s: storing reply from %s: %v", s.ID, buddy.ID, err)
	}
}

// ReplyPending reports whether an auto-reply to buddyID is scheduled.
func (s *Session) ReplyPending(buddyID string) bool {
	return s.replies.Pending(buddyID)
}

// IsTyping reports whether the buddy's typing indicator is showing.
func (s *Session) IsTyping(buddyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing[buddyID]
}

// Chat returns the conversation with a buddy, oldest first.
func (s *Session) Chat(buddyID string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	return database.GetChatMessagesForBuddy(s.db, buddyID)
}

// Buddy finds the buddy profile for buddyID, preferring the most recently
// joined game they host, then any feed post of theirs.
func (s *Session) Buddy(buddyID string) (models.BuddyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.BuddyProfile{}, ErrClosed
	}
	return s.buddyLocked(buddyID)
}

func (s *Session) buddyLocked(buddyID string) (models.BuddyProfile, error) {
	joined, err := database.GetJoinedPosts(s.db)
	if err != nil {
		return models.BuddyProfile{}, err
	}
	for i := len(joined) - 1; i >= 0; i-- {
		if joined[i].Author.ID == buddyID {
			return models.BuddyFromPost(joined[i]), nil
		}
	}
	posts, err := database.GetAllPosts(s.db)
	if err != nil {
		return models.BuddyProfile{}, err
	}
	for _, p := range posts {
		if p.Author.ID == buddyID {
			return models.BuddyFromPost(p), nil
		}
	}
	return models.BuddyProfile{}, ErrBuddyNotFound
}

// OpenChat makes buddyID the active conversation.
func (s *Session) OpenChat(buddyID string) (models.BuddyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.BuddyProfile{}, ErrClosed
	}
	s.touch()
	buddy, err := s.buddyLocked(buddyID)
	if err != nil {
		return buddy, err
	}
	if s.activeChat != nil && s.activeChat.ID != buddy.ID {
		s.closeChatLocked()
	}
	s.activeChat = &buddy
	return buddy, nil
}

// CloseChat leaves the active conversation and cancels its pending reply.
func (s *Session) CloseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.closeChatLocked()
}

func (s *Session) closeChatLocked() {
	if s.activeChat == nil {
		return
	}
	id := s.activeChat.ID
	if s.replies.Cancel(id) || s.typing[id] {
		delete(s.typing, id)
		s.emit(Event{Kind: EventTypingStopped, BuddyID: id})
	}
	s.activeChat = nil
}

// ActiveChat returns the open conversation's buddy, if any.
func (s *Session) ActiveChat() (models.BuddyProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeChat == nil {
		return models.BuddyProfile{}, false
	}
	return *s.activeChat, true
}

// SetTab switches the main screen.
func (s *Session) SetTab(tab Tab) error {
	switch tab {
	case TabFeed, TabMyGames, TabProfile:
	default:
		return ErrUnknownTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.activeTab = tab
	return nil
}

func (s *Session) OpenCreatePost() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showCreate = true
}

func (s *Session) CloseCreatePost() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showCreate = false
}

// OpenMatch shows the match modal for a post's author with freshly
// generated venue suggestions.
func (s *Session) OpenMatch(postID string) (*MatchView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	post, err := s.postLocked(postID)
	if err != nil {
		return nil, err
	}
	buddy := models.BuddyFromPost(post)
	s.match = &MatchView{
		Buddy:  buddy,
		Venues: s.gen.GenerateVenues(string(buddy.Sport), string(buddy.Area)),
	}
	return s.match, nil
}

// CloseMatch hides the match modal and forgets its venues.
func (s *Session) CloseMatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.match = nil
}

// OpenReview shows the review form for a buddy.
func (s *Session) OpenReview(buddyID string) (models.BuddyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.BuddyProfile{}, ErrClosed
	}
	buddy, err := s.buddyLocked(buddyID)
	if err != nil {
		return buddy, err
	}
	s.reviewBuddy = &buddy
	return buddy, nil
}

func (s *Session) CloseReview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviewBuddy = nil
}

// SubmitReview records a rating of 1 to 5 stars for a buddy and closes the
// review modal.
func (s *Session) SubmitReview(buddyID string, rating int, comment string) (*models.Review, error) {
	if rating < models.MinReviewRating || rating > models.MaxReviewRating {
		return nil, ErrInvalidReview
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.touch()
	if _, err := s.buddyLocked(buddyID); err != nil {
		return nil, err
	}
	review, err := database.CreateReview(s.db, &models.Review{
		ID:        uuid.NewString(),
		BuddyID:   buddyID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("storing review: %w", err)
	}
	s.reviewBuddy = nil
	return review, nil
}

// Reviews lists the reviews left for a buddy in this session.
func (s *Session) Reviews(buddyID string) ([]*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return database.GetReviewsForBuddy(s.db, buddyID)
}

// ActivityChart is the static weekly activity shown on the profile.
func (s *Session) ActivityChart() []models.ActivityPoint {
	return s.gen.ActivityChart()
}

// State is a point-in-time copy of the screen-level state.
type State struct {
	User            *models.User         `json:"user"`
	ActiveTab       Tab                  `json:"activeTab"`
	ShowCreateModal bool                 `json:"showCreateModal"`
	ActiveChat      *models.BuddyProfile `json:"activeChat,omitempty"`
	Match           *MatchView           `json:"match,omitempty"`
	ReviewBuddy     *models.BuddyProfile `json:"reviewBuddy,omitempty"`
	Typing          []string             `json:"typing"`
}

// Snapshot copies the current screen-level state.
func (s *Session) Snapshot() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.userLocked()
	if err != nil {
		return State{}, err
	}
	st := State{
		User:            user,
		ActiveTab:       s.activeTab,
		ShowCreateModal: s.showCreate,
		Match:           s.match,
		Typing:          []string{},
	}
	if s.activeChat != nil {
		chat := *s.activeChat
		st.ActiveChat = &chat
	}
	if s.reviewBuddy != nil {
		rb := *s.reviewBuddy
		st.ReviewBuddy = &rb
	}
	for id := range s.typing {
		st.Typing = append(st.Typing, id)
	}
	return st, nil
}

func uniqueSports(sports []models.Sport) []models.Sport {
	seen := make(map[models.Sport]bool, len(sports))
	out := make([]models.Sport, 0, len(sports))
	for _, sp := range sports {
		if sp == "" || seen[sp] {
			continue
		}
		seen[sp] = true
		out = append(out, sp)
	}
	return out
}
