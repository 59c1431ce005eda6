package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
	"github.com/taskhub/taskmanager-api/internal/pkg/metrics"
)

const (
	// DefaultRecentLimit is used when Recent is called with a non-positive limit.
	DefaultRecentLimit = 5
	// MaxRecentLimit caps the number of tasks Recent returns.
	MaxRecentLimit = 50

	upcomingWindow = 7 * 24 * time.Hour
)

// TaskService implements the task use cases on top of a TaskRepository.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log, now: time.Now}
}

// Create validates in and stores a new task owned by p.
func (s *TaskService) Create(ctx context.Context, p domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Create")
	defer span.End()

	ownerID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, domain.ErrInvalidDate
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	status := in.Status
	if status == "" {
		status = domain.TaskUpcoming
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.now().UTC()
	task, err := s.repo.Create(ctx, &domain.Task{
		Title:       title,
		Description: in.Description,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Status:      status,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Status)).Inc()
	s.log.Debug().Str("task_id", task.ID).Str("user_id", ownerID).Msg("task created")
	return task, nil
}

// List returns every task owned by p.
func (s *TaskService) List(ctx context.Context, p domain.Principal) ([]domain.Task, error) {
	ownerID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, ownerID)
}

// Get returns one task owned by p. A task owned by someone else is reported
// as not found.
func (s *TaskService) Get(ctx context.Context, p domain.Principal, taskID string) (*domain.Task, error) {
	ownerID, id, err := parseOwned(p, taskID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, ownerID, id)
}

// Update applies patch to a task owned by p.
func (s *TaskService) Update(ctx context.Context, p domain.Principal, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Update")
	defer span.End()

	ownerID, id, err := parseOwned(p, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		patch.Title = &title
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if patch.StartDate != nil {
		start := patch.StartDate.UTC()
		patch.StartDate = &start
	}
	if patch.EndDate != nil {
		end := patch.EndDate.UTC()
		patch.EndDate = &end
	}
	// Only checked when both ends are in the same request; a one-sided patch
	// is trusted against the stored value.
	if patch.StartDate != nil && patch.EndDate != nil && patch.EndDate.Before(*patch.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	if patch.Empty() {
		return s.repo.FindOne(ctx, ownerID, id)
	}

	task, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", task.ID))
	return task, nil
}

// Delete removes a task owned by p.
func (s *TaskService) Delete(ctx context.Context, p domain.Principal, taskID string) error {
	ownerID, id, err := parseOwned(p, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	metrics.TasksDeletedTotal.Inc()
	s.log.Debug().Str("task_id", id).Str("user_id", ownerID).Msg("task deleted")
	return nil
}

// ByDateRange returns p's tasks that start on or after start and end on or
// before end.
func (s *TaskService) ByDateRange(ctx context.Context, p domain.Principal, start, end time.Time) ([]domain.Task, error) {
	ownerID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, domain.ErrInvalidDate
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.repo.FindByDateRange(ctx, ownerID, start.UTC(), end.UTC())
}

// ByStatus returns p's tasks in the given status.
func (s *TaskService) ByStatus(ctx context.Context, p domain.Principal, status string) ([]domain.Task, error) {
	ownerID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}
	st := domain.TaskStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.FindByStatus(ctx, ownerID, st)
}

// Recent returns p's most recently updated tasks.
func (s *TaskService) Recent(ctx context.Context, p domain.Principal, limit int) ([]domain.Task, error) {
	ownerID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return s.repo.FindRecent(ctx, ownerID, limit)
}

// Statistics aggregates p's tasks. The counts run concurrently and are not
// taken from a single snapshot.
func (s *TaskService) Statistics(ctx context.Context, p domain.Principal) (*domain.TaskStatistics, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Statistics")
	defer span.End()

	ownerID, err := domain.ParseID(p.UserID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.TaskStatisticsDuration.Observe(time.Since(start).Seconds()) }()

	now := s.now().UTC()
	var stats domain.TaskStatistics

	queries := []struct {
		dst    *int64
		filter ports.TaskCountFilter
	}{
		{&stats.Total, ports.TaskCountFilter{}},
		{&stats.Completed, ports.TaskCountFilter{Status: domain.TaskCompleted}},
		{&stats.Started, ports.TaskCountFilter{Status: domain.TaskStarted}},
		{&stats.Upcoming, ports.TaskCountFilter{
			Status:  domain.TaskUpcoming,
			EndFrom: now,
			EndTo:   now.Add(upcomingWindow),
		}},
		{&stats.Overdue, ports.TaskCountFilter{
			ExcludeStatus: domain.TaskCompleted,
			EndBefore:     now,
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			n, err := s.repo.Count(gctx, ownerID, q.filter)
			if err != nil {
				return err
			}
			*q.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count tasks")
		return nil, fmt.Errorf("task statistics: %w", err)
	}

	stats.CompletionRate = domain.CompletionRate(stats.Completed, stats.Total)
	return &stats, nil
}

func parseOwned(p domain.Principal, taskID string) (ownerID, id string, err error) {
	if ownerID, err = domain.ParseID(p.UserID); err != nil {
		return "", "", err
	}
	if id, err = domain.ParseID(taskID); err != nil {
		return "", "", err
	}
	return ownerID, id, nil
}
