package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/handler"
	sqliteRepo "github.com/sakif/messagely/internal/repository/sqlite"
	"github.com/sakif/messagely/internal/service"
)

// newTestAPI assembles the real stack — handlers, services, token
// middleware, in-memory SQLite — behind an httptest server. These tests
// exercise the wire contract end to end: status codes, JSON shapes, and
// the auth boundary.
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest()
	validate := validator.New()

	authHandler := handler.NewAuthHandler(service.NewAuthService(db, tokens, passwords, logger), validate, logger)
	userHandler := handler.NewUserHandler(service.NewUserService(db, db, logger), logger)
	messageHandler := handler.NewMessageHandler(service.NewMessageService(db, db, logger), validate, logger)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{username}", userHandler.HandleGet)
		r.Get("/users/{username}/to", userHandler.HandleInbox)
		r.Get("/users/{username}/from", userHandler.HandleOutbox)
		r.Post("/messages", messageHandler.HandleSend)
		r.Get("/messages/{id}", messageHandler.HandleGet)
		r.Post("/messages/{id}/read", messageHandler.HandleMarkRead)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON fires a JSON request, optionally with a bearer token, and
// decodes the response body into out (when out is non-nil).
func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response of %s %s: %v", method, path, err)
		}
	}
	return resp
}

// register registers a user and returns their token.
func register(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()

	var res struct {
		Token string `json:"token"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"username":   username,
		"password":   password,
		"first_name": "Test",
		"last_name":  "User",
		"phone":      "+14155550000",
	}, &res)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	return res.Token
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	srv := newTestAPI(t)

	token := register(t, srv, "alice", "secret1")
	assert.NotEmpty(t, token)

	t.Run("login with correct password", func(t *testing.T) {
		var res struct {
			Token string `json:"token"`
		}
		resp := doJSON(t, srv, http.MethodPost, "/auth/login", "",
			map[string]string{"username": "alice", "password": "secret1"}, &res)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("login with wrong password is 400", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/auth/login", "",
			map[string]string{"username": "alice", "password": "wrong"}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login for unknown user is the same 400", func(t *testing.T) {
		var res struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		resp := doJSON(t, srv, http.MethodPost, "/auth/login", "",
			map[string]string{"username": "ghost", "password": "wrong"}, &res)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid username/password", res.Message)
	})

	t.Run("duplicate registration is 409", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
			"username":   "alice",
			"password":   "whatever1",
			"first_name": "A",
			"last_name":  "B",
		}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("register with missing fields is 400", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/auth/register", "",
			map[string]string{"username": "carol"}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPI_AuthBoundary(t *testing.T) {
	srv := newTestAPI(t)
	token := register(t, srv, "alice", "secret1")

	t.Run("no token is 401", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/users", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/users", "not.a.jwt", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token lists users", func(t *testing.T) {
		var res struct {
			Users []struct {
				Username string `json:"username"`
			} `json:"users"`
		}
		resp := doJSON(t, srv, http.MethodGet, "/users", token, nil, &res)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, res.Users, 1)
		assert.Equal(t, "alice", res.Users[0].Username)
	})
}

func TestAPI_ProfileAccess(t *testing.T) {
	srv := newTestAPI(t)
	aliceToken := register(t, srv, "alice", "secret1")
	bobToken := register(t, srv, "bob", "secret2")

	t.Run("own profile includes timestamps, never the hash", func(t *testing.T) {
		var res map[string]map[string]any
		resp := doJSON(t, srv, http.MethodGet, "/users/alice", aliceToken, nil, &res)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		user := res["user"]
		assert.Equal(t, "alice", user["username"])
		assert.Contains(t, user, "join_at")
		assert.Contains(t, user, "last_login_at")
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("someone else's profile is 401", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/users/alice", bobToken, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPI_MessageFlow(t *testing.T) {
	srv := newTestAPI(t)
	aliceToken := register(t, srv, "alice", "secret1")
	bobToken := register(t, srv, "bob", "secret2")
	carolToken := register(t, srv, "carol", "secret3")

	// alice sends a message to bob
	var sent struct {
		Message struct {
			ID     string  `json:"id"`
			From   string  `json:"from_username"`
			To     string  `json:"to_username"`
			ReadAt *string `json:"read_at"`
		} `json:"message"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/messages", aliceToken,
		map[string]string{"to_username": "bob", "body": "lunch?"}, &sent)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", sent.Message.From)
	assert.Equal(t, "bob", sent.Message.To)
	assert.Nil(t, sent.Message.ReadAt)
	msgID := sent.Message.ID

	t.Run("recipient views the message with nested parties", func(t *testing.T) {
		var res struct {
			Message struct {
				Body     string `json:"body"`
				FromUser struct {
					Username string `json:"username"`
				} `json:"from_user"`
				ToUser struct {
					Username string `json:"username"`
				} `json:"to_user"`
			} `json:"message"`
		}
		resp := doJSON(t, srv, http.MethodGet, "/messages/"+msgID, bobToken, nil, &res)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "lunch?", res.Message.Body)
		assert.Equal(t, "alice", res.Message.FromUser.Username)
		assert.Equal(t, "bob", res.Message.ToUser.Username)
	})

	t.Run("third party cannot view it", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/messages/"+msgID, carolToken, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("sender cannot mark it read", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/messages/"+msgID+"/read", aliceToken, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("recipient marks it read, idempotently", func(t *testing.T) {
		var first struct {
			Message struct {
				ID     string  `json:"id"`
				ReadAt *string `json:"read_at"`
			} `json:"message"`
		}
		resp := doJSON(t, srv, http.MethodPost, "/messages/"+msgID+"/read", bobToken, nil, &first)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotNil(t, first.Message.ReadAt)

		var second struct {
			Message struct {
				ReadAt *string `json:"read_at"`
			} `json:"message"`
		}
		resp = doJSON(t, srv, http.MethodPost, "/messages/"+msgID+"/read", bobToken, nil, &second)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, first.Message.ReadAt, second.Message.ReadAt)
	})

	t.Run("inbox and outbox are self-only", func(t *testing.T) {
		var inbox struct {
			Messages []struct {
				FromUser struct {
					Username string `json:"username"`
				} `json:"from_user"`
			} `json:"messages"`
		}
		resp := doJSON(t, srv, http.MethodGet, "/users/bob/to", bobToken, nil, &inbox)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, inbox.Messages, 1)
		assert.Equal(t, "alice", inbox.Messages[0].FromUser.Username)

		resp = doJSON(t, srv, http.MethodGet, "/users/bob/to", aliceToken, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("sending to an unknown user is 404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/messages", aliceToken,
			map[string]string{"to_username": "ghost", "body": "hello?"}, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown message id is 404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/messages/does-not-exist", aliceToken, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
