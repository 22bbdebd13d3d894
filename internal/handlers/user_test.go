package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/handlers"
	"github.com/lumeo-app/backend/internal/models"
	"github.com/lumeo-app/backend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, store *testutil.Store, email, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: email, Username: username, Password: string(hash)}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	setup := func(t *testing.T) (*echo.Echo, *handlers.UserHandler, *testutil.Store, *models.User) {
		t.Helper()
		store := testutil.NewStore()
		user := seedUser(t, store, "a@x.com", "alice", "old-pass")
		return echo.New(), handlers.NewUserHandler(store), store, user
	}

	t.Run("updates only provided fields and rehashes password", func(t *testing.T) {
		e, h, store, user := setup(t)
		before := user.UpdatedAt

		c, rec := newContext(e, http.MethodPut, "/api/user/update",
			`{"username":"alice2","password":"new-pass"}`)
		authenticate(c, user)

		if err := h.UpdateProfile(c); err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", rec.Code)
		}

		updated, err := store.GetUserByID(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("refetch: %v", err)
		}
		if updated.Username != "alice2" {
			t.Errorf("username = %q, want alice2", updated.Username)
		}
		if updated.Email != "a@x.com" {
			t.Errorf("email changed to %q", updated.Email)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("new-pass")); err != nil {
			t.Errorf("new password does not verify: %v", err)
		}
		if !updated.UpdatedAt.After(before) {
			t.Error("updatedAt not bumped")
		}

		body := decodeBody(t, rec)
		respUser, _ := body["user"].(map[string]interface{})
		if _, leaked := respUser["password"]; leaked {
			t.Error("update response contains password field")
		}
	})

	t.Run("reports no changes for an unknown user id", func(t *testing.T) {
		e, h, _, _ := setup(t)
		c, _ := newContext(e, http.MethodPut, "/api/user/update", `{"username":"ghost"}`)
		c.Set("user", &models.JwtCustomClaims{
			UserID: primitive.NewObjectID().Hex(),
			Email:  "ghost@x.com",
		})

		err := h.UpdateProfile(c)
		if got := httpStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", got)
		}
	})
}

func TestUserHandler_GetUserByEmail(t *testing.T) {
	store := testutil.NewStore()
	user := seedUser(t, store, "a@x.com", "alice", "p1")
	h := handlers.NewUserHandler(store)
	e := echo.New()

	t.Run("returns the profile without the hash", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/api/user/get/a@x.com", "")
		authenticate(c, user)
		c.SetParamNames("email")
		c.SetParamValues("a@x.com")

		if err := h.GetUserByEmail(c); err != nil {
			t.Fatalf("GetUserByEmail() error = %v", err)
		}

		body := decodeBody(t, rec)
		respUser, ok := body["user"].(map[string]interface{})
		if !ok {
			t.Fatalf("response missing user: %v", body)
		}
		if respUser["username"] != "alice" {
			t.Errorf("username = %v, want alice", respUser["username"])
		}
		if _, leaked := respUser["password"]; leaked {
			t.Error("profile response contains password field")
		}
	})

	t.Run("404 for an unknown email", func(t *testing.T) {
		c, _ := newContext(e, http.MethodGet, "/api/user/get/nobody@x.com", "")
		authenticate(c, user)
		c.SetParamNames("email")
		c.SetParamValues("nobody@x.com")

		err := h.GetUserByEmail(c)
		if got := httpStatus(t, err); got != http.StatusNotFound {
			t.Errorf("got status %d, want 404", got)
		}
	})
}
