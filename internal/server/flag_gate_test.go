package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inschoolz/internal/featureflags"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateApp(s *Server, method, path string, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Add(method, path, func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.Next()
	}, handler)
	return app
}

func TestFeatureFlagGates(t *testing.T) {
	cases := []struct {
		name    string
		flag    string
		path    string
		handler func(*Server) fiber.Handler
	}{
		{"GameScores", "games", "/api/games/reaction/scores", func(s *Server) fiber.Handler { return s.SubmitGameScore }},
		{"ReferralRedemption", "referrals", "/api/referral", func(s *Server) fiber.Handler { return s.RedeemReferral }},
		{"BulkOperations", "bulk_operations", "/api/admin/bulk-operations", func(s *Server) fiber.Handler { return s.AdminSubmitBulkOperation }},
	}

	for _, tc := range cases {
		t.Run(tc.name+"OffReturns503", func(t *testing.T) {
			s := &Server{config: testConfig(), featureFlags: featureflags.NewManager(tc.flag + "=off")}
			app := gateApp(s, http.MethodPost, tc.path, tc.handler(s))

			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		})

		t.Run(tc.name+"OnReachesRequestValidation", func(t *testing.T) {
			s := &Server{config: testConfig(), featureFlags: featureflags.NewManager(tc.flag + "=on")}
			app := gateApp(s, http.MethodPost, tc.path, tc.handler(s))

			// A malformed body fails parsing only after the gate admits
			// the request.
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader("{"))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
