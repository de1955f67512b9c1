package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/sportbuddy/app/internal/models"
	"github.com/sportbuddy/app/internal/session"
)

func TestAPISignup(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Teardown()

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{"Missing sports", map[string]interface{}{"name": "Ali", "age": "22"}, http.StatusBadRequest},
		{"Unknown sport", map[string]interface{}{"name": "Ali", "age": "22", "sports": []string{"Curling"}}, http.StatusBadRequest},
		{"Unknown area", map[string]interface{}{"name": "Ali", "age": "22", "area": "Mars", "sports": []string{"Gym"}}, http.StatusBadRequest},
		{"Valid", map[string]interface{}{"name": "Ali", "age": "22", "sports": []string{"gym"}}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			if status := ts.postJSON(t, "/api/signup", tt.body, &got); status != tt.wantStatus {
				t.Errorf("POST /api/signup status = %d; want %d (body %v)", status, tt.wantStatus, got)
			}
		})
	}

	var profile struct {
		User     models.User            `json:"user"`
		Activity []models.ActivityPoint `json:"activity"`
	}
	if status := ts.getJSON(t, "/api/profile", &profile); status != http.StatusOK {
		t.Fatalf("GET /api/profile status = %d; want 200", status)
	}
	if profile.User.Area != models.AreaOlaya || len(profile.User.FavoriteSports) != 1 || profile.User.FavoriteSports[0] != models.SportGym {
		t.Errorf("profile user = %+v; want Olaya with Gym", profile.User)
	}
	if len(profile.Activity) != 7 {
		t.Errorf("activity has %d days; want 7", len(profile.Activity))
	}

	if status := ts.postJSON(t, "/api/logout", map[string]string{}, nil); status != http.StatusNoContent {
		t.Errorf("POST /api/logout status = %d; want 204", status)
	}
	if status := ts.getJSON(t, "/api/profile", nil); status != http.StatusUnauthorized {
		t.Errorf("GET /api/profile after logout status = %d; want 401", status)
	}
}

func TestAPIPostsAndJoin(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Teardown()

	posts := ts.feed(t)
	if len(posts) != 5 {
		t.Fatalf("feed has %d posts; want 5", len(posts))
	}

	t.Run("Area filter", func(t *testing.T) {
		var filtered []feedPost
		ts.getJSON(t, "/api/posts?area="+url.QueryEscape(posts[0].Area), &filtered)
		for _, p := range filtered {
			if p.Area != posts[0].Area {
				t.Errorf("post %s in %s returned for area %s", p.ID, p.Area, posts[0].Area)
			}
		}
		if len(filtered) == 0 {
			t.Error("area filter dropped every post")
		}
	})

	t.Run("Unknown sport filter", func(t *testing.T) {
		if status := ts.getJSON(t, "/api/posts?sport=Curling", nil); status != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", status)
		}
	})

	t.Run("Signed out join uses placeholder", func(t *testing.T) {
		var joined feedPost
		if status := ts.postJSON(t, "/api/posts/"+posts[0].ID+"/join", nil, &joined); status != http.StatusOK {
			t.Fatalf("join status = %d; want 200", status)
		}
		if last := joined.Attendees[len(joined.Attendees)-1]; last != "temp" {
			t.Errorf("last attendee = %q; want temp", last)
		}
		var list []feedPost
		ts.getJSON(t, "/api/joined", &list)
		if len(list) != 1 || list[0].ID != posts[0].ID {
			t.Errorf("joined = %v; want [%s]", list, posts[0].ID)
		}
	})

	t.Run("Join unknown post", func(t *testing.T) {
		if status := ts.postJSON(t, "/api/posts/missing/join", nil, nil); status != http.StatusNotFound {
			t.Errorf("status = %d; want 404", status)
		}
	})

	t.Run("Create requires signup", func(t *testing.T) {
		body := map[string]interface{}{"sport": "Padel", "content": "Padel?", "totalSlots": 4}
		if status := ts.postJSON(t, "/api/posts", body, nil); status != http.StatusUnauthorized {
			t.Errorf("status = %d; want 401", status)
		}
	})

	t.Run("Create after signup", func(t *testing.T) {
		ts.postJSON(t, "/api/signup", map[string]interface{}{"name": "Ali", "age": "22", "area": "Al Narjis", "sports": []string{"Padel"}}, nil)
		body := map[string]interface{}{"sport": "Padel", "content": "Padel?", "totalSlots": 4}
		var created feedPost
		if status := ts.postJSON(t, "/api/posts", body, &created); status != http.StatusCreated {
			t.Fatalf("status = %d; want 201", status)
		}
		if created.Area != "Al Narjis" || created.Status != string(models.PostStatusAuthor) {
			t.Errorf("created = %+v; want the user's area and author status", created)
		}
		var list []feedPost
		ts.getJSON(t, "/api/joined", &list)
		if len(list) != 2 || list[0].ID != created.ID {
			t.Errorf("joined list does not start with the new post: %v", list)
		}
	})
}

func TestAPIChat(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Teardown()
	buddy := ts.feed(t)[0].Author

	if status := ts.postJSON(t, "/api/chat/"+buddy.ID+"/messages", map[string]string{"text": ""}, nil); status != http.StatusBadRequest {
		t.Errorf("empty message status = %d; want 400", status)
	}
	if status := ts.postJSON(t, "/api/chat/nobody/messages", map[string]string{"text": "hi"}, nil); status != http.StatusNotFound {
		t.Errorf("unknown buddy status = %d; want 404", status)
	}

	var sent models.Message
	if status := ts.postJSON(t, "/api/chat/"+buddy.ID+"/messages", map[string]string{"text": "sounds good"}, &sent); status != http.StatusCreated {
		t.Fatalf("send status = %d; want 201", status)
	}
	if !sent.IsUser || sent.SenderID != models.UserSenderID {
		t.Errorf("sent = %+v; want a user message", sent)
	}
	chat := ts.waitForReply(t, buddy.ID, 2)
	if chat.Messages[1].Text != "Sounds great! Looking forward to the game." {
		t.Errorf("reply = %q; want the default reply", chat.Messages[1].Text)
	}
	if chat.Buddy.ID != buddy.ID || chat.Buddy.Level != "Intermediate" {
		t.Errorf("buddy = %+v; want the profile derived from %s", chat.Buddy, buddy.ID)
	}
}

func TestAPIVenuesAndReviews(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Teardown()

	var venues []models.Playground
	if status := ts.getJSON(t, "/api/venues?sport=Tennis&area=Olaya", &venues); status != http.StatusOK {
		t.Fatalf("venues status = %d; want 200", status)
	}
	if len(venues) != 3 || venues[1].Name != "Elite Tennis Center" {
		t.Errorf("venues = %+v; want three with Elite Tennis Center second", venues)
	}
	if status := ts.getJSON(t, "/api/venues?sport=Tennis", nil); status != http.StatusBadRequest {
		t.Errorf("venues without area status = %d; want 400", status)
	}

	buddy := ts.feed(t)[0].Author
	if status := ts.postJSON(t, "/api/reviews", map[string]interface{}{"buddyId": buddy.ID, "rating": 0}, nil); status != http.StatusBadRequest {
		t.Errorf("zero rating status = %d; want 400", status)
	}
	if status := ts.postJSON(t, "/api/reviews", map[string]interface{}{"buddyId": "nobody", "rating": 3}, nil); status != http.StatusNotFound {
		t.Errorf("unknown buddy status = %d; want 404", status)
	}
	var review models.Review
	if status := ts.postJSON(t, "/api/reviews", map[string]interface{}{"buddyId": buddy.ID, "rating": 3, "comment": "ok"}, &review); status != http.StatusCreated {
		t.Fatalf("review status = %d; want 201", status)
	}
	if review.Rating != 3 || review.BuddyID != buddy.ID {
		t.Errorf("review = %+v", review)
	}
}

func TestAPIStateHealthAndEndSession(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Teardown()

	var state session.State
	if status := ts.getJSON(t, "/api/state", &state); status != http.StatusOK {
		t.Fatalf("state status = %d; want 200", status)
	}
	if state.ActiveTab != session.TabFeed || state.User != nil {
		t.Errorf("state = %+v; want feed tab and no user", state)
	}

	var health map[string]interface{}
	if status := ts.getJSON(t, "/health", &health); status != http.StatusOK || health["status"] != "ok" {
		t.Errorf("health = %d %v; want 200 ok", status, health)
	}

	before := sessionCookie(t, ts).Value
	req, _ := http.NewRequest(http.MethodDelete, ts.server.URL+"/api/session", nil)
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/session failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE /api/session status = %d; want 204", resp.StatusCode)
	}
	if _, ok := ts.store.Get(before); ok {
		t.Error("session still live after DELETE /api/session")
	}
}

func TestCORSOrigins(t *testing.T) {
	corsHeader := func(t *testing.T, ts *testServer, origin string) string {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, ts.server.URL+"/api/posts", nil)
		req.Header.Set("Origin", origin)
		resp, err := ts.client.Do(req)
		if err != nil {
			t.Fatalf("GET /api/posts failed: %v", err)
		}
		resp.Body.Close()
		return resp.Header.Get("Access-Control-Allow-Origin")
	}

	t.Run("Same origin only by default", func(t *testing.T) {
		ts := setupTestServer(t)
		defer ts.Teardown()
		if got := corsHeader(t, ts, "https://elsewhere.example"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q; want none", got)
		}
	})

	t.Run("Listed origin", func(t *testing.T) {
		ts := newTestServer(t, 5*time.Millisecond, []string{"https://app.example"})
		defer ts.Teardown()
		if got := corsHeader(t, ts, "https://app.example"); got != "https://app.example" {
			t.Errorf("Access-Control-Allow-Origin = %q; want https://app.example", got)
		}
		if got := corsHeader(t, ts, "https://elsewhere.example"); got != "" {
			t.Errorf("Access-Control-Allow-Origin for unlisted origin = %q; want none", got)
		}
	})
}
