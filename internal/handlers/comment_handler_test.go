package handlers_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/handlers"
	"github.com/lumeo-app/backend/internal/testutil"
)

func TestCommentHandler(t *testing.T) {
	store := testutil.NewStore()
	alice := seedUser(t, store, "a@x.com", "alice", "p1")
	post := seedPost(t, store, "T", alice.Email)
	h := handlers.NewCommentHandler(store)
	e := echo.New()

	createComment := func(t *testing.T, content string) {
		t.Helper()
		c, rec := newContext(e, http.MethodPost, "/api/comment/create",
			`{"postId":"`+post.ID.Hex()+`","content":"`+content+`"}`)
		authenticate(c, alice)
		if err := h.CreateComment(c); err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("got status %d, want 201", rec.Code)
		}
	}

	t.Run("comments read back oldest first", func(t *testing.T) {
		createComment(t, "first")
		createComment(t, "second")

		c, rec := newContext(e, http.MethodGet, "/api/post/"+post.ID.Hex()+"/comments", "")
		authenticate(c, alice)
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())

		if err := h.GetCommentsByPost(c); err != nil {
			t.Fatalf("GetCommentsByPost() error = %v", err)
		}

		body := decodeBody(t, rec)
		comments, ok := body["comments"].([]interface{})
		if !ok {
			t.Fatalf("response missing comments: %v", body)
		}
		if len(comments) != 2 {
			t.Fatalf("got %d comments, want 2", len(comments))
		}
		first := comments[0].(map[string]interface{})
		second := comments[1].(map[string]interface{})
		if first["content"] != "first" || second["content"] != "second" {
			t.Errorf("order = [%v %v], want oldest first", first["content"], second["content"])
		}
		if first["user"] != alice.Email {
			t.Errorf("comment user = %v, want %q", first["user"], alice.Email)
		}
	})

	t.Run("rejects a malformed post id", func(t *testing.T) {
		c, _ := newContext(e, http.MethodPost, "/api/comment/create",
			`{"postId":"nope","content":"hi"}`)
		authenticate(c, alice)

		err := h.CreateComment(c)
		if got := httpStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", got)
		}
	})

	t.Run("rejects a comment without content", func(t *testing.T) {
		c, _ := newContext(e, http.MethodPost, "/api/comment/create",
			`{"postId":"`+post.ID.Hex()+`"}`)
		authenticate(c, alice)

		err := h.CreateComment(c)
		if got := httpStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", got)
		}
	})
}
