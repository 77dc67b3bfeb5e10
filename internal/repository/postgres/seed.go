package postgres

import (
	"context"
	"database/sql"
	"time"

	"taskapi/internal/model"
)

// DefaultTimeout bounds every query when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// FixtureCustomers are inserted by the shared reset.
func FixtureCustomers() []model.Customer {
	return []model.Customer{
		{ID: 1, Name: "alfa", Email: "sample1@gmail.com"},
		{ID: 2, Name: "beta", Email: "sample2@gmail.com"},
		{ID: 3, Name: "gama", Email: "sample3@gmail.com"},
	}
}

// FixturePlans are inserted by the shared reset.
func FixturePlans() []model.SubscriptionPlan {
	return []model.SubscriptionPlan{
		{ID: 1, Name: "simple", Price: 20, BillingCycle: "monthly"},
		{ID: 2, Name: "ultra", Price: 40, BillingCycle: "yearly"},
	}
}

// resetAndSeed empties all three tables and inserts the fixture customers and
// plans in a single transaction. Subscriptions go first because they reference
// both other tables.
func resetAndSeed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM subscriptions`,
		`DELETE FROM customers`,
		`DELETE FROM subscriptionplans`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}

	for _, c := range FixtureCustomers() {
		if _, err := tx.ExecContext(ctx, insertCustomerSQL, c.ID, c.Name, c.Email); err != nil {
			return err
		}
	}
	for _, p := range FixturePlans() {
		if _, err := tx.ExecContext(ctx, insertPlanSQL, p.ID, p.Name, p.Price, p.BillingCycle); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func normalizeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
