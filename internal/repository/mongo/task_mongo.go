package mongo

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// Values reported for fields missing from a stored task document.
const (
	MissingTaskID     int64 = -1
	MissingTaskName         = "none"
	MissingTaskStatus       = false
)

// TaskMongo is a MongoDB implementation of repository.TaskRepository.
// Tasks are addressed by their "id" field, not by the document _id.
type TaskMongo struct {
	coll    Collection
	timeout time.Duration
}

var _ repository.TaskRepository = (*TaskMongo)(nil)

// NewTaskMongo clears coll and seeds it with the three fixture tasks.
// Any failure while doing so is reported as repository.ErrConnection and no
// repository is returned.
func NewTaskMongo(ctx context.Context, coll Collection, timeout time.Duration) (*TaskMongo, error) {
	if coll == nil {
		return nil, errors.Join(repository.ErrConnection, errors.New("nil tasks collection"))
	}
	r := &TaskMongo{coll: coll, timeout: normalizeTimeout(timeout)}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return nil, errors.Join(repository.ErrConnection, err)
	}
	fixtures := []model.Task{
		{ID: 1, Name: "My first task", Status: false},
		{ID: 2, Name: "My second task", Status: false},
		{ID: 3, Name: "My third task", Status: false},
	}
	docs := make([]any, 0, len(fixtures))
	for _, t := range fixtures {
		docs = append(docs, taskDocument(t))
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return nil, errors.Join(repository.ErrConnection, err)
	}
	return r, nil
}

// List returns every task document in storage order.
func (r *TaskMongo) List(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Join(repository.ErrTransport, err)
	}
	defer cur.Close(ctx)

	tasks := make([]model.Task, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Join(repository.ErrTransport, err)
		}
		tasks = append(tasks, taskFromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Join(repository.ErrTransport, err)
	}
	return tasks, nil
}

// Add inserts one task document.
func (r *TaskMongo) Add(ctx context.Context, task model.Task) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, taskDocument(task)); err != nil {
		return errors.Join(repository.ErrTransport, err)
	}
	return nil
}

// FindByID returns the first task whose "id" field equals id.
func (r *TaskMongo) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc bson.M
	err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Join(repository.ErrTransport, err)
	}
	t := taskFromDocument(doc)
	return &t, nil
}

// Toggle negates the stored status server-side and returns the updated task.
func (r *TaskMongo) Toggle(ctx context.Context, id int64) (*model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$not", Value: bson.A{"$status"}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "id", Value: id}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Join(repository.ErrTransport, err)
	}
	t := taskFromDocument(doc)
	return &t, nil
}

func taskDocument(t model.Task) bson.D {
	return bson.D{
		{Key: "id", Value: t.ID},
		{Key: "name", Value: t.Name},
		{Key: "status", Value: t.Status},
	}
}

// taskFromDocument maps a stored document onto a Task. Missing or mistyped
// fields take the Missing* values so callers can spot malformed records.
func taskFromDocument(doc bson.M) model.Task {
	t := model.Task{ID: MissingTaskID, Name: MissingTaskName, Status: MissingTaskStatus}
	if id, ok := asInt64(doc["id"]); ok {
		t.ID = id
	}
	if name, ok := doc["name"].(string); ok {
		t.Name = name
	}
	if status, ok := doc["status"].(bool); ok {
		t.Status = status
	}
	return t
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}
