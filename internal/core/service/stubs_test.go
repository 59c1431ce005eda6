package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	copy := cloneUser(user)
	copy.ID = primitive.NewObjectID().Hex()
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// stubTokens encodes the principal in clear text; enough to check wiring.
type stubTokens struct{}

func (stubTokens) Issue(subjectID, email, role string) (string, error) {
	return strings.Join([]string{subjectID, email, role}, "|"), nil
}

func (stubTokens) Verify(raw string) (*domain.Principal, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Principal{UserID: parts[0], Email: parts[1], Role: parts[2]}, nil
}

type stubTaskRepo struct {
	mu    sync.Mutex
	tasks []*domain.Task
	// countErr, when set, is returned by Count.
	countErr error
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneTask(task)
	copy.ID = primitive.NewObjectID().Hex()
	r.tasks = append(r.tasks, copy)
	return cloneTask(copy), nil
}

func (r *stubTaskRepo) find(ownerID, taskID string) *domain.Task {
	for _, t := range r.tasks {
		if t.ID == taskID && t.UserID == ownerID {
			return t
		}
	}
	return nil
}

func (r *stubTaskRepo) filter(ownerID string, keep func(*domain.Task) bool) []domain.Task {
	out := []domain.Task{}
	for _, t := range r.tasks {
		if t.UserID == ownerID && keep(t) {
			out = append(out, *t)
		}
	}
	return out
}

func (r *stubTaskRepo) FindAll(_ context.Context, ownerID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(ownerID, func(*domain.Task) bool { return true }), nil
}

func (r *stubTaskRepo) FindOne(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.find(ownerID, taskID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Update(_ context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.find(ownerID, taskID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.StartDate != nil {
		t.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		t.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, ownerID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == taskID && t.UserID == ownerID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (r *stubTaskRepo) FindByDateRange(_ context.Context, ownerID string, start, end time.Time) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(ownerID, func(t *domain.Task) bool {
		return !t.StartDate.Before(start) && !t.EndDate.After(end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *stubTaskRepo) FindByStatus(_ context.Context, ownerID string, status domain.TaskStatus) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(ownerID, func(t *domain.Task) bool { return t.Status == status }), nil
}

func (r *stubTaskRepo) FindRecent(_ context.Context, ownerID string, limit int) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(ownerID, func(*domain.Task) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubTaskRepo) Count(_ context.Context, ownerID string, f ports.TaskCountFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	matches := r.filter(ownerID, func(t *domain.Task) bool {
		switch {
		case f.Status != "" && t.Status != f.Status,
			f.ExcludeStatus != "" && t.Status == f.ExcludeStatus,
			!f.EndFrom.IsZero() && t.EndDate.Before(f.EndFrom),
			!f.EndTo.IsZero() && t.EndDate.After(f.EndTo),
			!f.EndBefore.IsZero() && !t.EndDate.Before(f.EndBefore):
			return false
		}
		return true
	})
	return int64(len(matches)), nil
}

func principalFor(id string) domain.Principal {
	return domain.Principal{UserID: id, Email: fmt.Sprintf("%s@example.com", id[:6]), Role: domain.RoleUser}
}
