package ports

import (
	"context"
	"time"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

// TaskCountFilter narrows a count over one owner's tasks. Zero values are
// ignored.
type TaskCountFilter struct {
	Status        domain.TaskStatus // status == Status
	ExcludeStatus domain.TaskStatus // status != ExcludeStatus
	EndFrom       time.Time         // endDate >= EndFrom
	EndTo         time.Time         // endDate <= EndTo
	EndBefore     time.Time         // endDate <  EndBefore
}

// TaskRepository persists tasks. Every operation is scoped to an owner; a
// task id never resolves across owners.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindAll(ctx context.Context, ownerID string) ([]domain.Task, error)
	FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
	// FindByDateRange returns tasks with startDate >= start and endDate <= end,
	// ordered by startDate ascending.
	FindByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]domain.Task, error)
	// FindByStatus returns tasks in status, ordered by startDate ascending.
	FindByStatus(ctx context.Context, ownerID string, status domain.TaskStatus) ([]domain.Task, error)
	// FindRecent returns up to limit tasks, most recently updated first.
	FindRecent(ctx context.Context, ownerID string, limit int) ([]domain.Task, error)
	Count(ctx context.Context, ownerID string, filter TaskCountFilter) (int64, error)
}
