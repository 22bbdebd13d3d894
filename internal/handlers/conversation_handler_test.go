package handlers_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/handlers"
	"github.com/lumeo-app/backend/internal/models"
	"github.com/lumeo-app/backend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func conversationSetup(t *testing.T) (*echo.Echo, *handlers.ConversationHandler, *testutil.Store, *models.User, *models.User) {
	t.Helper()
	store := testutil.NewStore()
	alice := seedUser(t, store, "a@x.com", "alice", "p1")
	bob := seedUser(t, store, "b@x.com", "bob", "p2")
	h := handlers.NewConversationHandler(store, store, store)
	return echo.New(), h, store, alice, bob
}

func TestConversationHandler_CreateConversation(t *testing.T) {
	t.Run("resolves emails and always includes the caller", func(t *testing.T) {
		e, h, store, alice, bob := conversationSetup(t)

		c, rec := newContext(e, http.MethodPost, "/api/conversations",
			`{"participants":["b@x.com"]}`)
		authenticate(c, alice)

		if err := h.CreateConversation(c); err != nil {
			t.Fatalf("CreateConversation() error = %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("got status %d, want 201", rec.Code)
		}

		id, _ := decodeBody(t, rec)["conversationId"].(string)
		if id == "" {
			t.Fatal("response missing conversationId")
		}
		convID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			t.Fatalf("conversationId not an object id: %v", err)
		}

		conv, err := store.FindByParticipants(c.Request().Context(), alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("created conversation not findable: %v", err)
		}
		if conv.ID != convID {
			t.Errorf("found conversation %s, want %s", conv.ID.Hex(), convID.Hex())
		}
		if len(conv.Participants) != 2 {
			t.Errorf("got %d participants, want 2 (caller auto-included)", len(conv.Participants))
		}
	})

	t.Run("creating twice never reuses a conversation", func(t *testing.T) {
		e, h, _, alice, _ := conversationSetup(t)

		ids := make(map[string]bool)
		for i := 0; i < 2; i++ {
			c, rec := newContext(e, http.MethodPost, "/api/conversations",
				`{"participants":["b@x.com"]}`)
			authenticate(c, alice)
			if err := h.CreateConversation(c); err != nil {
				t.Fatalf("CreateConversation() error = %v", err)
			}
			id, _ := decodeBody(t, rec)["conversationId"].(string)
			ids[id] = true
		}
		if len(ids) != 2 {
			t.Errorf("got %d distinct conversations, want 2 (no dedup on explicit create)", len(ids))
		}
	})

	t.Run("unknown participant email is 404", func(t *testing.T) {
		e, h, _, alice, _ := conversationSetup(t)

		c, _ := newContext(e, http.MethodPost, "/api/conversations",
			`{"participants":["nobody@x.com"]}`)
		authenticate(c, alice)

		err := h.CreateConversation(c)
		if got := httpStatus(t, err); got != http.StatusNotFound {
			t.Errorf("got status %d, want 404", got)
		}
	})
}

func TestConversationHandler_SendMessage(t *testing.T) {
	send := func(t *testing.T, e *echo.Echo, h *handlers.ConversationHandler, sender *models.User, body string) map[string]interface{} {
		t.Helper()
		c, rec := newContext(e, http.MethodPost, "/api/messages", body)
		authenticate(c, sender)
		if err := h.SendMessage(c); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("got status %d, want 201", rec.Code)
		}
		return decodeBody(t, rec)
	}

	t.Run("sending without a conversation id reuses the pair's conversation", func(t *testing.T) {
		e, h, _, alice, bob := conversationSetup(t)

		first := send(t, e, h, alice, `{"recipientId":"`+bob.ID.Hex()+`","text":"hi"}`)
		second := send(t, e, h, alice, `{"recipientId":"`+bob.ID.Hex()+`","text":"again"}`)

		if first["conversationId"] == "" || first["conversationId"] != second["conversationId"] {
			t.Errorf("conversation ids differ: %v vs %v", first["conversationId"], second["conversationId"])
		}
	})

	t.Run("denormalizes the last message onto the conversation", func(t *testing.T) {
		e, h, _, alice, bob := conversationSetup(t)

		send(t, e, h, alice, `{"recipientId":"`+bob.ID.Hex()+`","text":"hello bob"}`)

		c, rec := newContext(e, http.MethodGet, "/api/conversations", "")
		authenticate(c, bob)
		if err := h.ListConversations(c); err != nil {
			t.Fatalf("ListConversations() error = %v", err)
		}

		conversations, ok := decodeBody(t, rec)["conversations"].([]interface{})
		if !ok || len(conversations) != 1 {
			t.Fatalf("got %d conversations, want 1", len(conversations))
		}
		conv := conversations[0].(map[string]interface{})
		last, ok := conv["lastMessage"].(map[string]interface{})
		if !ok {
			t.Fatalf("conversation missing lastMessage: %v", conv)
		}
		if last["text"] != "hello bob" {
			t.Errorf("lastMessage text = %v, want %q", last["text"], "hello bob")
		}
		sender, ok := conv["lastMessageSender"].(map[string]interface{})
		if !ok {
			t.Fatalf("conversation missing lastMessageSender: %v", conv)
		}
		if sender["username"] != "alice" {
			t.Errorf("lastMessageSender username = %v, want alice", sender["username"])
		}
		participants, ok := conv["participantsData"].([]interface{})
		if !ok || len(participants) != 2 {
			t.Fatalf("got %d participant profiles, want 2", len(participants))
		}
		for _, p := range participants {
			if _, leaked := p.(map[string]interface{})["password"]; leaked {
				t.Error("participant profile contains password field")
			}
		}
	})

	t.Run("requires text", func(t *testing.T) {
		e, h, _, alice, bob := conversationSetup(t)

		c, _ := newContext(e, http.MethodPost, "/api/messages",
			`{"recipientId":"`+bob.ID.Hex()+`"}`)
		authenticate(c, alice)
		err := h.SendMessage(c)
		if got := httpStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", got)
		}
	})

	t.Run("requires a conversation or recipient", func(t *testing.T) {
		e, h, _, alice, _ := conversationSetup(t)

		c, _ := newContext(e, http.MethodPost, "/api/messages", `{"text":"hi"}`)
		authenticate(c, alice)
		err := h.SendMessage(c)
		if got := httpStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", got)
		}
	})
}

func TestConversationHandler_Transcripts(t *testing.T) {
	e, h, _, alice, bob := conversationSetup(t)

	send := func(t *testing.T, body string) string {
		t.Helper()
		c, rec := newContext(e, http.MethodPost, "/api/messages", body)
		authenticate(c, alice)
		if err := h.SendMessage(c); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		id, _ := decodeBody(t, rec)["conversationId"].(string)
		return id
	}

	convID := send(t, `{"recipientId":"`+bob.ID.Hex()+`","text":"one"}`)
	send(t, `{"conversationId":"`+convID+`","text":"two"}`)

	t.Run("embedded transcript is newest first", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/api/conversations/"+convID, "")
		authenticate(c, alice)
		c.SetParamNames("id")
		c.SetParamValues(convID)

		if err := h.GetConversation(c); err != nil {
			t.Fatalf("GetConversation() error = %v", err)
		}

		conv, ok := decodeBody(t, rec)["conversation"].(map[string]interface{})
		if !ok {
			t.Fatal("response missing conversation")
		}
		messages, ok := conv["messages"].([]interface{})
		if !ok || len(messages) != 2 {
			t.Fatalf("got %d messages, want 2", len(messages))
		}
		if messages[0].(map[string]interface{})["text"] != "two" {
			t.Errorf("messages[0] text = %v, want two (newest first)", messages[0].(map[string]interface{})["text"])
		}
	})

	t.Run("message listing is enriched and newest first", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/api/conversations/"+convID+"/messages", "")
		authenticate(c, bob)
		c.SetParamNames("id")
		c.SetParamValues(convID)

		if err := h.ListMessages(c); err != nil {
			t.Fatalf("ListMessages() error = %v", err)
		}

		messages, ok := decodeBody(t, rec)["messages"].([]interface{})
		if !ok || len(messages) != 2 {
			t.Fatalf("got %d messages, want 2", len(messages))
		}
		newest := messages[0].(map[string]interface{})
		if newest["text"] != "two" {
			t.Errorf("messages[0] text = %v, want two", newest["text"])
		}
		sender, ok := newest["senderData"].(map[string]interface{})
		if !ok {
			t.Fatalf("message missing senderData: %v", newest)
		}
		if sender["username"] != "alice" {
			t.Errorf("senderData username = %v, want alice", sender["username"])
		}
	})

	t.Run("unknown conversation is 404", func(t *testing.T) {
		unknown := primitive.NewObjectID().Hex()
		c, _ := newContext(e, http.MethodGet, "/api/conversations/"+unknown, "")
		authenticate(c, alice)
		c.SetParamNames("id")
		c.SetParamValues(unknown)

		err := h.GetConversation(c)
		if got := httpStatus(t, err); got != http.StatusNotFound {
			t.Errorf("got status %d, want 404", got)
		}
	})
}
