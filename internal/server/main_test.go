package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"missnotes/internal/config"
	"missnotes/internal/database"
	"missnotes/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	// Disables per-route rate limiting and keeps config validation quiet.
	_ = os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// setupTestServer builds a full server against a fresh in-memory sqlite
// database, without Redis. Routes are wired exactly as in production.
func setupTestServer(t *testing.T) (*fiber.App, *Server) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	cfg := &config.Config{
		JWTSecret: "test-secret-which-is-long-enough!",
		Port:      "0",
		Env:       "test",
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.Respond(c, err)
		},
	})
	s.SetupRoutes(app)
	return app, s
}

// doJSON performs a request with an optional bearer token and JSON body,
// decoding the JSON response into out when it is non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// registerUser creates an account through the API and returns its token
// and decoded user.
func registerUser(t *testing.T, app *fiber.App, name, email string) (string, models.User) {
	t.Helper()

	var result struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "Password123!",
	}, &result)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, result.Token)
	return result.Token, result.User
}

// makeFriends wires an accepted friendship: requester sends, receiver accepts.
func makeFriends(t *testing.T, app *fiber.App, s *Server, requesterToken, receiverToken string, receiverID uint) {
	t.Helper()

	var friendship models.Friendship
	resp := doJSON(t, app, http.MethodPost,
		"/api/friends/requests/"+itoa(receiverID), requesterToken, nil, &friendship)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost,
		"/api/friends/requests/"+itoa(friendship.ID)+"/accept", receiverToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.dispatcher.Wait()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
