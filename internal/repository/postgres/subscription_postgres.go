package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

const subscriptionColumns = `id, customer_id, plan_id, start_date, end_date, status`

// SubscriptionPostgres is a PostgreSQL implementation of repository.SubscriptionRepository.
type SubscriptionPostgres struct {
	db      *sql.DB
	timeout time.Duration
	now     func() time.Time
}

var _ repository.SubscriptionRepository = (*SubscriptionPostgres)(nil)

// NewSubscriptionPostgres empties the subscriptions table, leaving customers
// and plans untouched.
func NewSubscriptionPostgres(ctx context.Context, db *sql.DB, timeout time.Duration) (*SubscriptionPostgres, error) {
	if db == nil {
		return nil, errors.Join(repository.ErrConnection, errors.New("nil database handle"))
	}
	r := &SubscriptionPostgres{db: db, timeout: normalizeTimeout(timeout), now: time.Now}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return nil, errors.Join(repository.ErrConnection, err)
	}
	return r, nil
}

// Subscribe inserts an active subscription that starts and ends now.
func (r *SubscriptionPostgres) Subscribe(ctx context.Context, customerID, planID int64) (*model.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
		INSERT INTO subscriptions (customer_id, plan_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + subscriptionColumns

	now := r.now().UTC()
	s, err := scanSubscription(r.db.QueryRowContext(ctx, q, customerID, planID, now, now, true))
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

// List returns all subscriptions.
func (r *SubscriptionPostgres) List(ctx context.Context) ([]model.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := make([]model.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, classify(err)
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

// FindByID fetches a single subscription by its ID.
func (r *SubscriptionPostgres) FindByID(ctx context.Context, id int64) (*model.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	s, err := scanSubscription(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return s, nil
}

// Add is unsupported; subscriptions are created with Subscribe.
func (r *SubscriptionPostgres) Add(context.Context, model.Subscription) error {
	return repository.ErrUnsupported
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*model.Subscription, error) {
	var (
		s          model.Subscription
		start, end sql.NullTime
		status     sql.NullBool
	)
	if err := row.Scan(&s.ID, &s.CustomerID, &s.PlanID, &start, &end, &status); err != nil {
		return nil, err
	}
	s.StartDate = start.Time
	s.EndDate = end.Time
	s.Status = status.Bool
	return &s, nil
}
