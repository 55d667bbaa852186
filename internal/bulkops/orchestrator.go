package bulkops

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"inschoolz/internal/models"
	"inschoolz/internal/observability"
	"inschoolz/internal/repository"

	"gorm.io/datatypes"
)

var (
	progressRe = regexp.MustCompile(`^Progress:\s*(\d+)\s*/\s*(\d+)\s*$`)
	messageRe  = regexp.MustCompile(`^Message:\s*(.+)$`)
)

// Orchestrator submits bulk operations and supervises their worker
// processes. State lives in bulk_operations rows; the orchestrator itself
// holds nothing that a restart could lose.
type Orchestrator struct {
	repo      repository.BulkOpRepository
	workerBin string
	timeout   time.Duration
}

// NewOrchestrator returns a new Orchestrator spawning workerBin with the
// given per-operation timeout.
func NewOrchestrator(repo repository.BulkOpRepository, workerBin string, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Orchestrator{
		repo:      repo,
		workerBin: workerBin,
		timeout:   timeout,
	}
}

// Submit validates and records a new operation, then starts its worker in
// the background. A non-terminal operation of the same type yields a
// CONFLICT AppError carrying that operation's current state.
func (o *Orchestrator) Submit(ctx context.Context, opType models.BulkOperationType, params Params) (*models.BulkOperation, error) {
	if err := ValidateParams(opType, params); err != nil {
		return nil, err
	}

	encoded, err := params.Encode()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	op := &models.BulkOperation{
		OpID:    models.NewBulkOpID(opType),
		Type:    opType,
		Params:  datatypes.JSON(encoded),
		Message: "대기 중...",
	}
	if err := o.repo.CreatePending(ctx, op); err != nil {
		var inProgress *repository.ErrOperationInProgress
		if errors.As(err, &inProgress) {
			return nil, models.NewConflictError(
				fmt.Sprintf("%s 작업이 이미 진행 중입니다.", opType),
				inProgress.Conflict,
			)
		}
		return nil, err
	}

	go o.run(op)
	return op, nil
}

// Get returns one operation by its public id.
func (o *Orchestrator) Get(ctx context.Context, opID string) (*models.BulkOperation, error) {
	return o.repo.GetByOpID(ctx, opID)
}

// Recent returns the 20 most recent operations, newest first.
func (o *Orchestrator) Recent(ctx context.Context) ([]models.BulkOperation, error) {
	return o.repo.ListRecent(ctx, 20)
}

// SweepOrphans fails rows left non-terminal by a dead process. Call once at
// startup before accepting submissions.
func (o *Orchestrator) SweepOrphans(ctx context.Context) error {
	swept, err := o.repo.SweepOrphans(ctx)
	if err != nil {
		return err
	}
	if swept > 0 {
		slog.Warn("failed orphaned bulk operations from previous run", slog.Int64("count", swept))
	}
	return nil
}

// run supervises one worker process to a terminal state. Every exit path
// lands the row in completed or failed exactly once.
func (o *Orchestrator) run(op *models.BulkOperation) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	start := time.Now()
	finish := func(status models.BulkOperationStatus, message string) {
		if err := o.repo.Finish(context.Background(), op.OpID, status, message); err != nil {
			slog.Error("failed to finalize bulk operation",
				slog.String("op_id", op.OpID), slog.String("error", err.Error()))
			return
		}
		observability.BulkOperationsTotal.WithLabelValues(string(op.Type), string(status)).Inc()
		observability.BulkOperationDuration.WithLabelValues(string(op.Type)).Observe(time.Since(start).Seconds())
	}

	if err := o.repo.MarkRunning(ctx, op.OpID); err != nil {
		slog.Error("failed to mark bulk operation running",
			slog.String("op_id", op.OpID), slog.String("error", err.Error()))
		return
	}

	cmd := exec.CommandContext(ctx, o.workerBin,
		"--op-id", op.OpID,
		"--type", string(op.Type),
		"--params", string(op.Params),
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		finish(models.BulkOpStatusFailed, "worker pipe error: "+err.Error())
		return
	}
	if err := cmd.Start(); err != nil {
		finish(models.BulkOpStatusFailed, "worker spawn error: "+err.Error())
		return
	}

	slog.Info("bulk operation worker started",
		slog.String("op_id", op.OpID),
		slog.String("type", string(op.Type)),
		slog.Int("pid", cmd.Process.Pid),
	)

	progress, total := 0, 0
	message := ""
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if m := progressRe.FindStringSubmatch(line); m != nil {
			progress, _ = strconv.Atoi(m[1])
			total, _ = strconv.Atoi(m[2])
			if err := o.repo.UpdateProgress(context.Background(), op.OpID, progress, total, message); err != nil {
				slog.Warn("failed to update bulk operation progress",
					slog.String("op_id", op.OpID), slog.String("error", err.Error()))
			}
			continue
		}
		if m := messageRe.FindStringSubmatch(line); m != nil {
			message = m[1]
			if err := o.repo.UpdateProgress(context.Background(), op.OpID, progress, total, message); err != nil {
				slog.Warn("failed to update bulk operation progress",
					slog.String("op_id", op.OpID), slog.String("error", err.Error()))
			}
		}
	}

	waitErr := cmd.Wait()
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		finish(models.BulkOpStatusFailed, fmt.Sprintf("timed out after %s", o.timeout))
	case waitErr != nil:
		finish(models.BulkOpStatusFailed, "worker failed: "+waitErr.Error())
	default:
		if message == "" {
			message = "완료"
		}
		finish(models.BulkOpStatusCompleted, message)
	}
}
