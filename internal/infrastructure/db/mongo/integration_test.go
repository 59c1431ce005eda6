package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

// testDatabase connects to MONGO_URI_TEST and returns a throwaway database
// that is dropped when the test ends.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI_TEST")
	if uri == "" {
		t.Skip("MONGO_URI_TEST not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("taskmanager_test_%d", time.Now().UnixNano())
	client, db, err := Connect(ctx, Config{URI: uri, Database: name})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestUserRepository_Integration(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes returned error: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	u := &domain.User{FirstName: "A", LastName: "B", Email: "a@b.co", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	created, err := users.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Role != domain.RoleUser {
		t.Fatalf("expected default role, got %s", created.Role)
	}

	if _, err := users.Create(ctx, u); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	if err := users.UpdatePasswordHash(ctx, created.ID, "hash2"); err != nil {
		t.Fatalf("UpdatePasswordHash returned error: %v", err)
	}
	got, err := users.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.PasswordHash != "hash2" {
		t.Fatalf("expected updated hash, got %s", got.PasswordHash)
	}

	if _, err := users.FindByEmail(ctx, "missing@b.co"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := users.UpdatePasswordHash(ctx, primitive.NewObjectID().Hex(), "x"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTaskRepository_Integration(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	if err := tasks.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes returned error: %v", err)
	}

	ownerA := primitive.NewObjectID().Hex()
	ownerB := primitive.NewObjectID().Hex()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	created, err := tasks.Create(ctx, &domain.Task{
		Title:     "Write report",
		StartDate: start,
		EndDate:   end,
		Status:    domain.TaskUpcoming,
		UserID:    ownerA,
		CreatedAt: start,
		UpdatedAt: start,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := tasks.FindOne(ctx, ownerB, created.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound across owners, got %v", err)
	}

	status := domain.TaskCompleted
	updated, err := tasks.Update(ctx, ownerA, created.ID, domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != domain.TaskCompleted || updated.Title != "Write report" || !updated.EndDate.Equal(end) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	inRange, err := tasks.FindByDateRange(ctx, ownerA, start, end)
	if err != nil || len(inRange) != 1 {
		t.Fatalf("FindByDateRange: got %d tasks, err %v", len(inRange), err)
	}

	n, err := tasks.Count(ctx, ownerA, ports.TaskCountFilter{Status: domain.TaskCompleted})
	if err != nil || n != 1 {
		t.Fatalf("Count: got %d, err %v", n, err)
	}

	if err := tasks.Delete(ctx, ownerA, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := tasks.Delete(ctx, ownerA, created.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}
