package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// EventMongo is an append-only payment log stored in MongoDB.
type EventMongo struct {
	coll    Collection
	timeout time.Duration
}

var _ repository.EventRepository = (*EventMongo)(nil)

// NewEventMongo clears coll; the log starts empty on every construction.
func NewEventMongo(ctx context.Context, coll Collection, timeout time.Duration) (*EventMongo, error) {
	if coll == nil {
		return nil, errors.Join(repository.ErrConnection, errors.New("nil events collection"))
	}
	r := &EventMongo{coll: coll, timeout: normalizeTimeout(timeout)}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return nil, errors.Join(repository.ErrConnection, err)
	}
	return r, nil
}

// AddEvent appends one payment event document.
func (r *EventMongo) AddEvent(ctx context.Context, e model.PaymentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := bson.D{
		{Key: "customer_id", Value: e.CustomerID},
		{Key: "plan_id", Value: e.PlanID},
		{Key: "amount", Value: e.Amount},
		{Key: "timestamp", Value: e.Timestamp},
		{Key: "status", Value: e.Status},
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errors.Join(repository.ErrTransport, err)
	}
	return nil
}

// List returns every logged event in storage order.
func (r *EventMongo) List(ctx context.Context) ([]model.PaymentEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Join(repository.ErrTransport, err)
	}
	events := make([]model.PaymentEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, errors.Join(repository.ErrTransport, err)
	}
	return events, nil
}

// Add is unsupported; events are appended with AddEvent.
func (r *EventMongo) Add(context.Context, model.PaymentEvent) error {
	return repository.ErrUnsupported
}

// FindByID is unsupported; events carry no identity.
func (r *EventMongo) FindByID(context.Context, int64) (*model.PaymentEvent, error) {
	return nil, repository.ErrUnsupported
}
