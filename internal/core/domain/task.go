package domain

import (
	"errors"
	"time"
)

// TaskStatus represents where a task is in its lifecycle.
type TaskStatus string

const (
	TaskUpcoming  TaskStatus = "upcoming"
	TaskStarted   TaskStatus = "started"
	TaskCompleted TaskStatus = "completed"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidDateRange = errors.New("end date cannot be before start date")
	ErrInvalidStatus    = errors.New("status must be one of: upcoming, started, completed")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidDate      = errors.New("invalid date")
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskUpcoming, TaskStarted, TaskCompleted:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Status      TaskStatus `json:"status"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPatch carries the fields of a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *TaskStatus
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil && p.EndDate == nil && p.Status == nil
}

// TaskStatistics is the per-owner aggregate returned by the stats endpoint.
type TaskStatistics struct {
	Total          int64   `json:"total"`
	Upcoming       int64   `json:"upcoming"`
	Completed      int64   `json:"completed"`
	Started        int64   `json:"started"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// CompletionRate returns completed/total as a percentage, or 0 for no tasks.
func CompletionRate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
