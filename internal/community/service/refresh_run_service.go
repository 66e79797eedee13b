package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"gorm.io/datatypes"
)

// RefreshRunService exposes batch job history to admins.
type RefreshRunService interface {
	GetRefreshRunByID(ctx context.Context, userID, id uint) (*dto.RefreshRunResponse, error)
	GetRefreshRuns(ctx context.Context, userID uint, kind entity.RunKind, limit int) ([]*dto.RefreshRunResponse, error)
}

// NewRefreshRunService creates a new refresh run service.
func NewRefreshRunService(runs repository.RefreshRunRepository, users repository.UserRepository, logger *logger.Logger) RefreshRunService {
	return &refreshRunService{
		runs:   runs,
		users:  users,
		logger: logger,
	}
}

type refreshRunService struct {
	runs   repository.RefreshRunRepository
	users  repository.UserRepository
	logger *logger.Logger
}

func (s *refreshRunService) GetRefreshRunByID(ctx context.Context, userID, id uint) (*dto.RefreshRunResponse, error) {
	if _, err := requireAdmin(ctx, s.users, userID); err != nil {
		return nil, err
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "refresh run", id)
	}
	return mapToRefreshRunResponse(run), nil
}

func (s *refreshRunService) GetRefreshRuns(ctx context.Context, userID uint, kind entity.RunKind, limit int) ([]*dto.RefreshRunResponse, error) {
	if _, err := requireAdmin(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if kind != "" && kind != entity.RunKindPriceRefresh && kind != entity.RunKindHoldingsSync {
		return nil, apperror.Validation("unknown run kind %q", kind)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := s.runs.FindAll(ctx, kind, limit)
	if err != nil {
		s.logger.Error("Failed to get refresh runs", logger.ErrorField(err))
		return nil, err
	}

	responses := make([]*dto.RefreshRunResponse, 0, len(runs))
	for i := range runs {
		responses = append(responses, mapToRefreshRunResponse(&runs[i]))
	}
	return responses, nil
}

func mapToRefreshRunResponse(run *entity.RefreshRun) *dto.RefreshRunResponse {
	var duration int64
	if run.CompletedAt.Valid {
		duration = run.CompletedAt.Time.Sub(run.StartedAt).Milliseconds()
	}

	resp := &dto.RefreshRunResponse{
		ID:           run.ID,
		Kind:         string(run.Kind),
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		TriggeredBy:  run.TriggeredBy,
		StartedAt:    run.StartedAt,
		Duration:     duration,
		ErrorMessage: run.ErrorMessage.String,
	}
	if len(run.Output) > 0 {
		resp.Output = json.RawMessage(run.Output)
	}
	return resp
}

// runRecorder persists the lifecycle of one RefreshRun.
type runRecorder struct {
	runs   repository.RefreshRunRepository
	logger *logger.Logger
	now    func() time.Time
}

func (r runRecorder) start(ctx context.Context, kind entity.RunKind, trigger entity.RunTrigger, triggeredBy *uint) (*entity.RefreshRun, error) {
	run := &entity.RefreshRun{
		Kind:        kind,
		Trigger:     trigger,
		Status:      entity.StatusRunning,
		TriggeredBy: triggeredBy,
		StartedAt:   r.now().UTC(),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		r.logger.Error("Failed to create refresh run", logger.ErrorField(err), logger.Field("kind", kind))
		return nil, err
	}
	return run, nil
}

// finish stores output and the final status. A non-nil runErr marks the run failed.
func (r runRecorder) finish(ctx context.Context, run *entity.RefreshRun, output interface{}, runErr error) {
	run.Status = entity.StatusCompleted
	run.CompletedAt = sql.NullTime{Time: r.now().UTC(), Valid: true}
	if runErr != nil {
		run.Status = entity.StatusFailed
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	}
	if output != nil {
		if raw, err := json.Marshal(output); err == nil {
			run.Output = datatypes.JSON(raw)
		}
	}

	// the batch may have been cancelled; the record must still be written
	if err := r.runs.Update(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Error("Failed to update refresh run", logger.ErrorField(err), logger.UintField("run_id", run.ID))
	}
}
