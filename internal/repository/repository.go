package repository

import (
	"context"
	"errors"

	"taskapi/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, mongo, postgres) inside this directory.

var (
	// ErrConnection reports a backend that could not be reached while it was constructed.
	// A backend constructor returning it yields no usable instance.
	ErrConnection = errors.New("repository: backend unreachable")
	// ErrTransport reports a query that failed mid-operation. The backend stays usable.
	ErrTransport = errors.New("repository: transport failure")
	// ErrReferentialIntegrity reports a row referencing a missing parent row.
	ErrReferentialIntegrity = errors.New("repository: referential integrity violation")
	// ErrDuplicate reports a caller-assigned identity that is already taken.
	ErrDuplicate = errors.New("repository: duplicate identity")
	// ErrUnsupported is returned by contract methods a backend does not offer.
	ErrUnsupported = errors.New("repository: operation not supported")
)

// Repository is the data access contract shared by every backend.
// Strictly persistence operations; business rules live in the service layer.
type Repository[T any] interface {
	// List returns every stored entity in backend-native order.
	List(ctx context.Context) ([]T, error)

	// Add stores one entity. Identities assigned by the backend are not reported back.
	Add(ctx context.Context, item T) error

	// FindByID returns the entity with the given identity.
	// A missing entity yields (nil, nil); errors are reserved for backend failures.
	FindByID(ctx context.Context, id int64) (*T, error)
}

// TaskRepository stores tasks.
type TaskRepository interface {
	Repository[model.Task]

	// Toggle flips the status of the task with the given id and persists it.
	// It returns the updated task, or (nil, nil) when no such task exists.
	Toggle(ctx context.Context, id int64) (*model.Task, error)
}

// CustomerRepository stores customers.
type CustomerRepository interface {
	Repository[model.Customer]
}

// PlanRepository stores subscription plans.
type PlanRepository interface {
	Repository[model.SubscriptionPlan]
}

// SubscriptionRepository stores subscriptions. Add is unsupported; rows are created by Subscribe.
type SubscriptionRepository interface {
	Repository[model.Subscription]

	// Subscribe creates an active subscription of customerID to planID.
	// Unknown customers or plans yield ErrReferentialIntegrity.
	Subscribe(ctx context.Context, customerID, planID int64) (*model.Subscription, error)
}

// EventRepository is an append-only payment log. Add and FindByID are unsupported.
type EventRepository interface {
	Repository[model.PaymentEvent]

	// AddEvent appends one payment event.
	AddEvent(ctx context.Context, event model.PaymentEvent) error
}
