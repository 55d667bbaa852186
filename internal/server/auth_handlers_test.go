package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inschoolz/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret-key-for-unit-tests-only",
		Port:                 "0",
		Timezone:             "Asia/Seoul",
		BulkWorkerTimeoutMin: 30,
	}
}

func protectedApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})
	return app
}

func TestGenerateToken_RoundTripsThroughAuthRequired(t *testing.T) {
	s := &Server{config: testConfig()}
	app := protectedApp(s)

	token, err := s.generateToken(42, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired_MissingTokenRejected(t *testing.T) {
	s := &Server{config: testConfig()}
	app := protectedApp(s)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_WrongIssuerRejected(t *testing.T) {
	s := &Server{config: testConfig()}
	app := protectedApp(s)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "42",
		"iss": "someone-else",
		"aud": "inschoolz-client",
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_WrongSecretRejected(t *testing.T) {
	s := &Server{config: testConfig()}
	app := protectedApp(s)

	other := &Server{config: &config.Config{JWTSecret: "a-different-secret-entirely-here"}}
	token, err := other.generateToken(42, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalUserID(t *testing.T) {
	s := &Server{config: testConfig()}

	var gotID uint
	var gotOK bool
	app := fiber.New()
	app.Get("/maybe", func(c *fiber.Ctx) error {
		gotID, gotOK = s.optionalUserID(c)
		return c.SendStatus(http.StatusOK)
	})

	// Without a token the viewer is anonymous.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/maybe", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.False(t, gotOK)

	// With a valid token the viewer is identified.
	token, err := s.generateToken(7, "bob")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.True(t, gotOK)
	assert.Equal(t, uint(7), gotID)
}
