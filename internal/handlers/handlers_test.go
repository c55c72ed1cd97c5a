package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/trailfeed/trailfeed-backend/internal/handlers"
	"github.com/trailfeed/trailfeed-backend/internal/routes"
	"github.com/trailfeed/trailfeed-backend/internal/services"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

// newTestServer wires the full router over in-memory storage, the same way
// main does with STORAGE_BACKEND=memory.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	stores := store.NewMemoryStores()
	feed := services.NewCommentFeed()

	userService := services.NewUserService(stores.Users, "test-secret")
	experienceService := services.NewExperienceService(stores.Experiences, stores.Users)
	commentService := services.NewCommentService(stores.Comments, stores.Experiences, stores.Users, feed)

	r := chi.NewRouter()
	routes.SetupRoutes(r, routes.Handlers{
		Users:       handlers.NewUserHandler(userService),
		Experiences: handlers.NewExperienceHandler(experienceService),
		Comments:    handlers.NewCommentHandler(commentService),
		Upload:      handlers.NewUploadHandler(nil),
		CommentFeed: handlers.NewCommentFeedHandler(feed),
		UserService: userService,
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, decoded
}

// registerUser creates an account and returns its token and ID.
func registerUser(t *testing.T, h http.Handler, name, email string) (string, string) {
	t.Helper()
	rec, body := doJSON(t, h, http.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "wanderlust",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got status %d\n%s", rec.Code, rec.Body.String())
	}
	token, _ := body["token"].(string)
	user, _ := body["user"].(map[string]interface{})
	id, _ := user["id"].(string)
	if token == "" || id == "" {
		t.Fatalf("register: missing token or user ID in response: %v", body)
	}
	return token, id
}

func createExperience(t *testing.T, h http.Handler, token, title string) string {
	t.Helper()
	rec, body := doJSON(t, h, http.MethodPost, "/api/experiences", token, map[string]interface{}{
		"title":       title,
		"description": "worth every step",
		"location":    map[string]string{"city": "Zermatt", "country": "Switzerland"},
		"categories":  []string{"hiking"},
		"rating":      5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create experience: got status %d\n%s", rec.Code, rec.Body.String())
	}
	exp, _ := body["experience"].(map[string]interface{})
	id, _ := exp["id"].(string)
	if id == "" {
		t.Fatalf("create experience: missing ID in response: %v", body)
	}
	return id
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestServer(t)

	registerUser(t, h, "Alice", "alice@example.com")

	t.Run("DuplicateEmail", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodPost, "/api/users", "", map[string]string{
			"name": "Alice Again", "email": "alice@example.com", "password": "different",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("got status %d, want 409", rec.Code)
		}
	})

	t.Run("LoginSuccess", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodPost, "/api/users/login", "", map[string]string{
			"email": "alice@example.com", "password": "wanderlust",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		if body["token"] == "" {
			t.Error("login response has no token")
		}
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodPost, "/api/users/login", "", map[string]string{
			"email": "alice@example.com", "password": "guess",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", rec.Code)
		}
		if msg, _ := body["message"].(string); msg != "Invalid email or password" {
			t.Errorf("got message %q, want the generic credentials message", msg)
		}
	})
}

func TestProfileEndpoints(t *testing.T) {
	h := newTestServer(t)
	token, userID := registerUser(t, h, "Alice", "alice@example.com")

	t.Run("GetMe", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodGet, "/api/users/me", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		user, _ := body["user"].(map[string]interface{})
		if user["email"] != "alice@example.com" {
			t.Errorf("got user %v, want alice@example.com", user)
		}
	})

	t.Run("GetMeUnauthenticated", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodGet, "/api/users/me", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", rec.Code)
		}
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodPut, "/api/users/profile", token, map[string]string{
			"bio": "always on the road",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		user, _ := body["user"].(map[string]interface{})
		if user["bio"] != "always on the road" {
			t.Errorf("got user %v, want updated bio", user)
		}
	})

	t.Run("PublicProfileHidesEmail", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodGet, "/api/users/"+userID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		user, _ := body["user"].(map[string]interface{})
		if _, present := user["email"]; present {
			t.Error("public profile exposes the email address")
		}
		if user["name"] != "Alice" {
			t.Errorf("got user %v, want name Alice", user)
		}
	})
}

func TestExperienceEndpoints(t *testing.T) {
	h := newTestServer(t)
	aliceToken, aliceID := registerUser(t, h, "Alice", "alice@example.com")
	bobToken, _ := registerUser(t, h, "Bob", "bob@example.com")

	expID := createExperience(t, h, aliceToken, "Hiking the Alps")

	t.Run("CreateRequiresAuth", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodPost, "/api/experiences", "", map[string]interface{}{
			"title": "nope",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", rec.Code)
		}
	})

	t.Run("GetPublic", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodGet, "/api/experiences/"+expID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		exp, _ := body["experience"].(map[string]interface{})
		if exp["title"] != "Hiking the Alps" {
			t.Errorf("got experience %v", exp)
		}
		author, _ := exp["user"].(map[string]interface{})
		if author["name"] != "Alice" {
			t.Errorf("got author %v, want Alice", author)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodGet, "/api/experiences/no-such-id", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("got status %d, want 404", rec.Code)
		}
	})

	t.Run("UpdateByNonOwner", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodPut, "/api/experiences/"+expID, bobToken, map[string]string{
			"title": "Bob's now",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", rec.Code)
		}
	})

	t.Run("UpdateByOwner", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodPut, "/api/experiences/"+expID, aliceToken, map[string]string{
			"title": "Hiking the Alps, revisited",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		exp, _ := body["experience"].(map[string]interface{})
		if exp["title"] != "Hiking the Alps, revisited" {
			t.Errorf("got experience %v", exp)
		}
	})

	t.Run("LikeToggle", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodPut, "/api/experiences/"+expID+"/like", bobToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		if liked, _ := body["liked"].(bool); !liked {
			t.Error("first toggle did not like")
		}
		likes, _ := body["likes"].([]interface{})
		if len(likes) != 1 {
			t.Errorf("got likes %v, want one entry", likes)
		}

		rec, body = doJSON(t, h, http.MethodPut, "/api/experiences/"+expID+"/like", bobToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		if liked, _ := body["liked"].(bool); liked {
			t.Error("second toggle did not unlike")
		}
	})

	t.Run("ListFilterByUser", func(t *testing.T) {
		createExperience(t, h, bobToken, "Tokyo street food")

		rec, body := doJSON(t, h, http.MethodGet, "/api/experiences?user="+aliceID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		list, _ := body["experiences"].([]interface{})
		if len(list) != 1 {
			t.Errorf("got %d experiences, want 1 for Alice", len(list))
		}
	})

	t.Run("ListKeyword", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodGet, "/api/experiences?keyword=tokyo", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		list, _ := body["experiences"].([]interface{})
		if len(list) != 1 {
			t.Errorf("got %d experiences for keyword tokyo, want 1", len(list))
		}
	})

	t.Run("ListPagination", func(t *testing.T) {
		for i := 0; i < 12; i++ {
			createExperience(t, h, aliceToken, fmt.Sprintf("Filler trip %02d", i))
		}
		rec, body := doJSON(t, h, http.MethodGet, "/api/experiences?page=2", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		if page, _ := body["page"].(float64); page != 2 {
			t.Errorf("got page %v, want 2", body["page"])
		}
		if pages, _ := body["pages"].(float64); pages != 2 {
			t.Errorf("got pages %v, want 2", body["pages"])
		}
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodDelete, "/api/experiences/"+expID, aliceToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		rec, _ = doJSON(t, h, http.MethodGet, "/api/experiences/"+expID, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("got status %d after delete, want 404", rec.Code)
		}
	})
}

func TestCommentEndpoints(t *testing.T) {
	h := newTestServer(t)
	aliceToken, _ := registerUser(t, h, "Alice", "alice@example.com")
	bobToken, _ := registerUser(t, h, "Bob", "bob@example.com")
	expID := createExperience(t, h, aliceToken, "Hiking the Alps")

	t.Run("CreateRequiresAuth", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodPost, "/api/comments", "", map[string]string{
			"experienceId": expID, "text": "nice",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", rec.Code)
		}
	})

	t.Run("CreateOnMissingExperience", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodPost, "/api/comments", bobToken, map[string]string{
			"experienceId": "no-such-id", "text": "hello?",
		})
		if rec.Code != http.StatusNotFound {
			t.Errorf("got status %d, want 404", rec.Code)
		}
	})

	var commentID string
	t.Run("Create", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodPost, "/api/comments", bobToken, map[string]string{
			"experienceId": expID, "text": "Looks amazing!",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		comment, _ := body["comment"].(map[string]interface{})
		commentID, _ = comment["id"].(string)
		if commentID == "" {
			t.Fatalf("comment response has no ID: %v", body)
		}
		author, _ := comment["user"].(map[string]interface{})
		if author["name"] != "Bob" {
			t.Errorf("got author %v, want Bob", author)
		}
	})

	t.Run("ListPublic", func(t *testing.T) {
		rec, body := doJSON(t, h, http.MethodGet, "/api/comments/experience/"+expID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
		comments, _ := body["comments"].([]interface{})
		if len(comments) != 1 {
			t.Errorf("got %d comments, want 1", len(comments))
		}
	})

	t.Run("DeleteByOther", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodDelete, "/api/comments/"+commentID, aliceToken, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", rec.Code)
		}
	})

	t.Run("DeleteByAuthor", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodDelete, "/api/comments/"+commentID, bobToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d\n%s", rec.Code, rec.Body.String())
		}
	})
}

func TestUploadWithoutCloudinary(t *testing.T) {
	h := newTestServer(t)
	token, _ := registerUser(t, h, "Alice", "alice@example.com")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/upload", token, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want 503 when uploads are not configured", rec.Code)
	}
}
