package postgres

import (
	"regexp"

	"github.com/DATA-DOG/go-sqlmock"
)

// expectSeed registers the statements issued by the shared reset.
func expectSeed(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM subscriptions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM customers").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM subscriptionplans").WillReturnResult(sqlmock.NewResult(0, 2))
	for _, c := range FixtureCustomers() {
		mock.ExpectExec(regexp.QuoteMeta(insertCustomerSQL)).
			WithArgs(c.ID, c.Name, c.Email).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for _, p := range FixturePlans() {
		mock.ExpectExec(regexp.QuoteMeta(insertPlanSQL)).
			WithArgs(p.ID, p.Name, p.Price, p.BillingCycle).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}
