package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

const insertPlanSQL = `INSERT INTO subscriptionplans (id, name, price, billing_cycle) VALUES ($1, $2, $3, $4)`

// PlanPostgres serves subscription plans. Plans are reference data seeded by
// NewCustomerPostgres; constructing a PlanPostgres changes nothing.
type PlanPostgres struct {
	db      *sql.DB
	timeout time.Duration
}

var _ repository.PlanRepository = (*PlanPostgres)(nil)

// NewPlanPostgres creates a new PlanPostgres repository.
func NewPlanPostgres(db *sql.DB, timeout time.Duration) (*PlanPostgres, error) {
	if db == nil {
		return nil, errors.Join(repository.ErrConnection, errors.New("nil database handle"))
	}
	return &PlanPostgres{db: db, timeout: normalizeTimeout(timeout)}, nil
}

// List returns all plans.
func (r *PlanPostgres) List(ctx context.Context) ([]model.SubscriptionPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT id, name, price, billing_cycle FROM subscriptionplans ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := make([]model.SubscriptionPlan, 0)
	for rows.Next() {
		var p model.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.BillingCycle); err != nil {
			return nil, classify(err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

// Add inserts a plan with its caller-assigned id.
func (r *PlanPostgres) Add(ctx context.Context, p model.SubscriptionPlan) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, insertPlanSQL, p.ID, p.Name, p.Price, p.BillingCycle); err != nil {
		return classify(err)
	}
	return nil
}

// FindByID fetches a single plan by its ID.
func (r *PlanPostgres) FindByID(ctx context.Context, id int64) (*model.SubscriptionPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT id, name, price, billing_cycle FROM subscriptionplans WHERE id = $1`
	var p model.SubscriptionPlan
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price, &p.BillingCycle); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &p, nil
}
