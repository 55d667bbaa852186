package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inschoolz/internal/bulkops"
	"inschoolz/internal/models"
	"inschoolz/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recentBulkOpRepo is a stub for repository.BulkOpRepository serving a fixed
// recent list.
type recentBulkOpRepo struct {
	ops []models.BulkOperation
}

func (r *recentBulkOpRepo) CreatePending(context.Context, *models.BulkOperation) error { return nil }
func (r *recentBulkOpRepo) GetByOpID(_ context.Context, opID string) (*models.BulkOperation, error) {
	return nil, models.NewNotFoundError("BulkOperation", opID)
}
func (r *recentBulkOpRepo) ListRecent(context.Context, int) ([]models.BulkOperation, error) {
	return r.ops, nil
}
func (r *recentBulkOpRepo) MarkRunning(context.Context, string) error { return nil }
func (r *recentBulkOpRepo) UpdateProgress(context.Context, string, int, int, string) error {
	return nil
}
func (r *recentBulkOpRepo) Finish(context.Context, string, models.BulkOperationStatus, string) error {
	return nil
}
func (r *recentBulkOpRepo) SweepOrphans(context.Context) (int64, error) { return 0, nil }

var _ repository.BulkOpRepository = (*recentBulkOpRepo)(nil)

func TestAdminRecentBulkOperations_CollectionRoot(t *testing.T) {
	repo := &recentBulkOpRepo{ops: []models.BulkOperation{
		{OpID: "op-2", Type: models.BulkOpCreateBots, Status: models.BulkOpStatusRunning, StartedAt: time.Now()},
		{OpID: "op-1", Type: models.BulkOpCleanup, Status: models.BulkOpStatusCompleted, StartedAt: time.Now().Add(-time.Hour)},
	}}
	s := &Server{orchestrator: bulkops.NewOrchestrator(repo, "", 0)}

	app := fiber.New()
	g := app.Group("/api/admin/bulk-operations")
	g.Get("/", s.AdminRecentBulkOperations)
	g.Get("/recent", s.AdminRecentBulkOperations)
	g.Get("/:opId", s.AdminGetBulkOperation)

	for _, path := range []string{"/api/admin/bulk-operations", "/api/admin/bulk-operations/recent"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)

		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		var body struct {
			Success bool                   `json:"success"`
			Data    []models.BulkOperation `json:"data"`
			Total   int                    `json:"total"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()

		assert.True(t, body.Success, path)
		assert.Equal(t, 2, body.Total, path)
		require.Len(t, body.Data, 2, path)
		assert.Equal(t, "op-2", body.Data[0].OpID)
	}

	// The :opId route still matches everything else under the group.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/bulk-operations/op-unknown", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
