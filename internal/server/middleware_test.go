package server

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Get("/admin-only", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	}, s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func expectRoleQuery(mock sqlmock.Sqlmock, role string) {
	rows := sqlmock.NewRows([]string{"role", "is_admin"}).AddRow(role, false)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "role","is_admin" FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(1, 1).
		WillReturnRows(rows)
}

func TestAdminRequired_AllowsAdmin(t *testing.T) {
	db, mock := setupMockDB(t)
	s := &Server{config: testConfig(), db: db}
	app := adminApp(s)

	expectRoleQuery(mock, "admin")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRequired_RejectsStudent(t *testing.T) {
	db, mock := setupMockDB(t)
	s := &Server{config: testConfig(), db: db}
	app := adminApp(s)

	expectRoleQuery(mock, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
