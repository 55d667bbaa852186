package bulkops

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBulkOpRepo implements repository.BulkOpRepository in memory with the
// same one-in-flight-per-type rule as the SQL implementation.
type memBulkOpRepo struct {
	mu  sync.Mutex
	ops map[string]*models.BulkOperation
}

func newMemBulkOpRepo() *memBulkOpRepo {
	return &memBulkOpRepo{ops: map[string]*models.BulkOperation{}}
}

func (r *memBulkOpRepo) CreatePending(_ context.Context, op *models.BulkOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.ops {
		if existing.Type == op.Type && !existing.Status.IsTerminal() {
			return &repository.ErrOperationInProgress{Conflict: existing}
		}
	}
	op.Status = models.BulkOpStatusPending
	if op.StartedAt.IsZero() {
		op.StartedAt = time.Now()
	}
	clone := *op
	r.ops[op.OpID] = &clone
	return nil
}

func (r *memBulkOpRepo) GetByOpID(_ context.Context, opID string) (*models.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[opID]
	if !ok {
		return nil, models.NewNotFoundError("BulkOperation", opID)
	}
	clone := *op
	return &clone, nil
}

func (r *memBulkOpRepo) ListRecent(_ context.Context, limit int) ([]models.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BulkOperation, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, *op)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memBulkOpRepo) MarkRunning(_ context.Context, opID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[opID]
	if !ok || op.Status != models.BulkOpStatusPending {
		return models.NewNotFoundError("BulkOperation", opID)
	}
	op.Status = models.BulkOpStatusRunning
	return nil
}

func (r *memBulkOpRepo) UpdateProgress(_ context.Context, opID string, progress, total int, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[opID]
	if !ok || op.Status.IsTerminal() {
		return nil
	}
	op.Progress, op.Total = progress, total
	if message != "" {
		op.Message = message
	}
	return nil
}

func (r *memBulkOpRepo) Finish(_ context.Context, opID string, status models.BulkOperationStatus, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[opID]
	if !ok || op.Status.IsTerminal() {
		return models.NewNotFoundError("BulkOperation", opID)
	}
	now := time.Now()
	op.Status = status
	op.Message = message
	op.CompletedAt = &now
	return nil
}

func (r *memBulkOpRepo) SweepOrphans(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swept int64
	now := time.Now()
	for _, op := range r.ops {
		if !op.Status.IsTerminal() {
			op.Status = models.BulkOpStatusFailed
			op.Message = "interrupted by server restart"
			op.CompletedAt = &now
			swept++
		}
	}
	return swept, nil
}

// writeWorkerScript drops an executable shell script standing in for the
// bulk worker binary.
func writeWorkerScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bulkworker")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func waitTerminal(t *testing.T, repo repository.BulkOpRepository, opID string) *models.BulkOperation {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		op, err := repo.GetByOpID(context.Background(), opID)
		require.NoError(t, err)
		if op.Status.IsTerminal() {
			return op
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("operation %s never reached a terminal state", opID)
	return nil
}

func TestOrchestrator_WorkerSuccess(t *testing.T) {
	worker := writeWorkerScript(t, `
echo "Progress: 1/3"
echo "Progress: 2/3"
echo "Message: creating bots"
echo "Progress: 3/3"
exit 0`)
	repo := newMemBulkOpRepo()
	orch := NewOrchestrator(repo, worker, time.Minute)

	op, err := orch.Submit(context.Background(), models.BulkOpCreateBots, Params{Count: 3})
	require.NoError(t, err)
	require.NotEmpty(t, op.OpID)

	final := waitTerminal(t, repo, op.OpID)
	assert.Equal(t, models.BulkOpStatusCompleted, final.Status)
	assert.Equal(t, 3, final.Progress)
	assert.Equal(t, 3, final.Total)
	assert.Equal(t, "creating bots", final.Message)
	assert.NotNil(t, final.CompletedAt)
}

func TestOrchestrator_WorkerFailure(t *testing.T) {
	worker := writeWorkerScript(t, `
echo "Progress: 1/10"
exit 1`)
	repo := newMemBulkOpRepo()
	orch := NewOrchestrator(repo, worker, time.Minute)

	op, err := orch.Submit(context.Background(), models.BulkOpCleanup, Params{})
	require.NoError(t, err)

	final := waitTerminal(t, repo, op.OpID)
	assert.Equal(t, models.BulkOpStatusFailed, final.Status)
	assert.Contains(t, final.Message, "worker failed")
}

func TestOrchestrator_SpawnErrorFailsRow(t *testing.T) {
	repo := newMemBulkOpRepo()
	orch := NewOrchestrator(repo, "/nonexistent/bulkworker", time.Minute)

	op, err := orch.Submit(context.Background(), models.BulkOpCleanup, Params{})
	require.NoError(t, err)

	final := waitTerminal(t, repo, op.OpID)
	assert.Equal(t, models.BulkOpStatusFailed, final.Status)
	assert.Contains(t, final.Message, "worker spawn error")
}

func TestOrchestrator_TimeoutKillsWorker(t *testing.T) {
	worker := writeWorkerScript(t, `
echo "Progress: 1/100"
sleep 30`)
	repo := newMemBulkOpRepo()
	orch := NewOrchestrator(repo, worker, 200*time.Millisecond)

	op, err := orch.Submit(context.Background(), models.BulkOpDeletePosts, Params{})
	require.NoError(t, err)

	final := waitTerminal(t, repo, op.OpID)
	assert.Equal(t, models.BulkOpStatusFailed, final.Status)
	assert.Contains(t, final.Message, "timed out")
}

func TestOrchestrator_DuplicateTypeConflicts(t *testing.T) {
	worker := writeWorkerScript(t, `sleep 2`)
	repo := newMemBulkOpRepo()
	orch := NewOrchestrator(repo, worker, time.Minute)
	ctx := context.Background()

	first, err := orch.Submit(ctx, models.BulkOpCreateBots, Params{Count: 10})
	require.NoError(t, err)

	_, err = orch.Submit(ctx, models.BulkOpCreateBots, Params{Count: 10})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	conflict, ok := appErr.Details.(*models.BulkOperation)
	require.True(t, ok)
	assert.Equal(t, first.OpID, conflict.OpID)

	// A different type is not blocked.
	_, err = orch.Submit(ctx, models.BulkOpCleanup, Params{})
	assert.NoError(t, err)

	// Exactly one create_bots row exists.
	ops, err := repo.ListRecent(ctx, 100)
	require.NoError(t, err)
	count := 0
	for _, op := range ops {
		if op.Type == models.BulkOpCreateBots {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestOrchestrator_ValidatesParams(t *testing.T) {
	repo := newMemBulkOpRepo()
	orch := NewOrchestrator(repo, "unused", time.Minute)
	ctx := context.Background()

	tests := []struct {
		name   string
		opType models.BulkOperationType
		params Params
	}{
		{"UnknownType", models.BulkOperationType("explode"), Params{}},
		{"CountTooLarge", models.BulkOpCreateBots, Params{Count: 15001}},
		{"CountMissing", models.BulkOpCreateBots, Params{}},
		{"PostsPerSchoolTooLarge", models.BulkOpGeneratePosts, Params{PostsPerSchool: 11}},
		{"CommentsPerPostTooLarge", models.BulkOpGenerateComments, Params{CommentsPerPost: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orch.Submit(ctx, tt.opType, tt.params)
			assert.Error(t, err)
		})
	}

	// Nothing was recorded for any rejected submission.
	ops, err := repo.ListRecent(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
