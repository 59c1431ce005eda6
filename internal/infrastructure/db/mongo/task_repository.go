package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), now: time.Now}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	StartDate   time.Time          `bson:"startDate"`
	EndDate     time.Time          `bson:"endDate"`
	Status      string             `bson:"status"`
	UserID      primitive.ObjectID `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (t *mongoTask) toDomain() domain.Task {
	return domain.Task{
		ID:          t.ID.Hex(),
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate.UTC(),
		EndDate:     t.EndDate.UTC(),
		Status:      domain.TaskStatus(t.Status),
		UserID:      t.UserID.Hex(),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

// objectIDs converts an owner id and an optional task id. Malformed ids are
// reported as domain.ErrInvalidID.
func objectIDs(ownerID, taskID string) (owner, task primitive.ObjectID, err error) {
	if owner, err = primitive.ObjectIDFromHex(ownerID); err != nil {
		return owner, task, domain.ErrInvalidID
	}
	if taskID == "" {
		return owner, task, nil
	}
	if task, err = primitive.ObjectIDFromHex(taskID); err != nil {
		return owner, task, domain.ErrInvalidID
	}
	return owner, task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	owner, _, err := objectIDs(task.UserID, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Status:      string(task.Status),
		UserID:      owner,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

func (r *TaskRepository) FindAll(ctx context.Context, ownerID string) ([]domain.Task, error) {
	owner, _, err := objectIDs(ownerID, "")
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"userId": owner}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	owner, id, err := objectIDs(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "userId": owner}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	task := doc.toDomain()
	return &task, nil
}

// Update sets only the fields present in patch and returns the task as
// stored after the update.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	owner, id, err := objectIDs(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": r.now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTask
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": owner},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	owner, id, err := objectIDs(ownerID, taskID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": owner})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) FindByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]domain.Task, error) {
	owner, _, err := objectIDs(ownerID, "")
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"userId":    owner,
		"startDate": bson.M{"$gte": start},
		"endDate":   bson.M{"$lte": end},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))
}

func (r *TaskRepository) FindByStatus(ctx context.Context, ownerID string, status domain.TaskStatus) ([]domain.Task, error) {
	owner, _, err := objectIDs(ownerID, "")
	if err != nil {
		return nil, err
	}
	filter := bson.M{"userId": owner, "status": string(status)}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))
}

func (r *TaskRepository) FindRecent(ctx context.Context, ownerID string, limit int) ([]domain.Task, error) {
	owner, _, err := objectIDs(ownerID, "")
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"userId": owner}, opts)
}

func (r *TaskRepository) Count(ctx context.Context, ownerID string, f ports.TaskCountFilter) (int64, error) {
	owner, _, err := objectIDs(ownerID, "")
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, countFilter(owner, f))
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func countFilter(owner primitive.ObjectID, f ports.TaskCountFilter) bson.M {
	filter := bson.M{"userId": owner}

	switch {
	case f.Status != "":
		filter["status"] = string(f.Status)
	case f.ExcludeStatus != "":
		filter["status"] = bson.M{"$ne": string(f.ExcludeStatus)}
	}

	end := bson.M{}
	if !f.EndFrom.IsZero() {
		end["$gte"] = f.EndFrom
	}
	if !f.EndTo.IsZero() {
		end["$lte"] = f.EndTo
	}
	if !f.EndBefore.IsZero() {
		end["$lt"] = f.EndBefore
	}
	if len(end) > 0 {
		filter["endDate"] = end
	}
	return filter
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

// EnsureIndexes creates the owner-scoped indexes on the tasks collection.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startDate", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
