package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sportbuddy/app/internal/session"
)

// ChatPage opens the conversation with a buddy.
func ChatPage(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := currentUser(w, r)
	if !ok {
		return
	}
	buddyID := mux.Vars(r)["buddyID"]

	buddy, err := sess.OpenChat(buddyID)
	if errors.Is(err, session.ErrBuddyNotFound) {
		RenderErrorPage(w, r, http.StatusNotFound, "Buddy Not Found", "There is no player with that id in your feed.")
		return
	}
	if err != nil {
		log.Printf("Error opening chat with %s: %v", buddyID, err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Chat Unavailable", "Could not open the chat.")
		return
	}

	messages, err := sess.Chat(buddyID)
	if err != nil {
		log.Printf("Error fetching chat with %s: %v", buddyID, err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Chat Unavailable", "Could not load messages.")
		return
	}
	RenderTemplate(w, http.StatusOK, "chat.html", map[string]interface{}{
		"Title":    buddy.Name,
		"Tab":      string(session.TabMyGames),
		"User":     user,
		"Buddy":    buddy,
		"Messages": messages,
		"Typing":   sess.IsTyping(buddyID),
	})
}

// PostChatMessage sends the form's text to the buddy. Blank messages are
// ignored.
func PostChatMessage(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	buddyID := mux.Vars(r)["buddyID"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form data", http.StatusBadRequest)
		return
	}

	buddy, err := sess.Buddy(buddyID)
	if errors.Is(err, session.ErrBuddyNotFound) {
		RenderErrorPage(w, r, http.StatusNotFound, "Buddy Not Found", "There is no player with that id in your feed.")
		return
	}
	if err != nil {
		log.Printf("Error finding buddy %s: %v", buddyID, err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Chat Unavailable", "Could not send the message.")
		return
	}

	if _, err := sess.SendChat(buddy, r.FormValue("text")); err != nil && !errors.Is(err, session.ErrEmptyMessage) {
		log.Printf("Error sending message to %s: %v", buddyID, err)
		RenderErrorPage(w, r, http.StatusInternalServerError, "Chat Unavailable", "Failed to send message. Please try again.")
		return
	}
	http.Redirect(w, r, "/chat/"+buddyID, http.StatusSeeOther)
}

// CloseChat leaves the conversation, dropping any reply still on its way.
func CloseChat(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).CloseChat()
	http.Redirect(w, r, "/my-games", http.StatusSeeOther)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// chatFrame is what a websocket client sends to say something.
type chatFrame struct {
	Text string `json:"text"`
}

// chatSocket connects one websocket to a session's events for one buddy.
type chatSocket struct {
	sess   *session.Session
	buddy  string
	conn   *websocket.Conn
	events <-chan session.Event
}

// ChatSocket upgrades to a websocket that pushes typing and message events
// for {buddyID} and accepts {"text": "..."} frames as outgoing messages.
func ChatSocket(allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigins, r.Header.Get("Origin"), r.Host)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		buddyID := mux.Vars(r)["buddyID"]
		buddy, err := sess.Buddy(buddyID)
		if err != nil {
			writeError(w, http.StatusNotFound, "buddy not found")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			log.Printf("Error upgrading chat socket: %v", err)
			return
		}

		events, unsubscribe := sess.Subscribe()
		c := &chatSocket{sess: sess, buddy: buddy.ID, conn: conn, events: events}
		go c.writePump()
		c.readPump(func(text string) {
			if _, err := sess.SendChat(buddy, text); err != nil && !errors.Is(err, session.ErrEmptyMessage) {
				log.Printf("session %s: sending to %s: %v", sess.ID, buddy.ID, err)
			}
		})
		unsubscribe()
	}
}

func (c *chatSocket) readPump(send func(text string)) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("session %s: chat socket: %v", c.sess.ID, err)
			}
			return
		}
		var frame chatFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Printf("session %s: invalid chat frame: %v", c.sess.ID, err)
			continue
		}
		send(frame.Text)
	}
}

func (c *chatSocket) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Unsubscribed or the session closed.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if ev.BuddyID != c.buddy {
				continue
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// originAllowed accepts same-host requests, requests without an Origin
// header and origins listed in allowed ("*" allows any).
func originAllowed(allowed []string, origin, host string) bool {
	if origin == "" {
		return true
	}
	if strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://") == host {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
