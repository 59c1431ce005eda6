package ports

import (
	"context"
	"time"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

// CreateTaskInput is the DTO passed from the transport layer to TaskService.
type CreateTaskInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      domain.TaskStatus // optional, defaults to upcoming
}

// TaskService defines the task use cases. The owner of every operation is
// the principal, never a client-supplied id.
type TaskService interface {
	Create(ctx context.Context, p domain.Principal, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, p domain.Principal) ([]domain.Task, error)
	Get(ctx context.Context, p domain.Principal, taskID string) (*domain.Task, error)
	Update(ctx context.Context, p domain.Principal, taskID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, p domain.Principal, taskID string) error
	ByDateRange(ctx context.Context, p domain.Principal, start, end time.Time) ([]domain.Task, error)
	ByStatus(ctx context.Context, p domain.Principal, status string) ([]domain.Task, error)
	Recent(ctx context.Context, p domain.Principal, limit int) ([]domain.Task, error)
	Statistics(ctx context.Context, p domain.Principal) (*domain.TaskStatistics, error)
}
