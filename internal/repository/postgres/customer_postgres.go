package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

const insertCustomerSQL = `INSERT INTO customers (id, name, email) VALUES ($1, $2, $3)`

// CustomerPostgres is a PostgreSQL implementation of repository.CustomerRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CustomerPostgres struct {
	db      *sql.DB
	timeout time.Duration
}

var _ repository.CustomerRepository = (*CustomerPostgres)(nil)

// NewCustomerPostgres resets customers, plans and subscriptions to the fixture
// set before returning. A failed reset is reported as repository.ErrConnection.
func NewCustomerPostgres(ctx context.Context, db *sql.DB, timeout time.Duration) (*CustomerPostgres, error) {
	if db == nil {
		return nil, errors.Join(repository.ErrConnection, errors.New("nil database handle"))
	}
	r := &CustomerPostgres{db: db, timeout: normalizeTimeout(timeout)}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := resetAndSeed(ctx, db); err != nil {
		return nil, errors.Join(repository.ErrConnection, err)
	}
	return r, nil
}

// List returns all customers.
func (r *CustomerPostgres) List(ctx context.Context) ([]model.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT id, name, email FROM customers ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := make([]model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, classify(err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

// Add inserts a customer with its caller-assigned id.
func (r *CustomerPostgres) Add(ctx context.Context, c model.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, insertCustomerSQL, c.ID, c.Name, c.Email); err != nil {
		return classify(err)
	}
	return nil
}

// FindByID fetches a single customer by its ID.
func (r *CustomerPostgres) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT id, name, email FROM customers WHERE id = $1`
	var c model.Customer
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &c, nil
}
