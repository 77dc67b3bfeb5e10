package model

import "time"

// Customer is a billable account holder.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubscriptionPlan is the fixed reference data a customer subscribes to.
type SubscriptionPlan struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	BillingCycle string  `json:"billing_cycle"`
}

// Subscription links one customer to one plan. ID is assigned by the database.
type Subscription struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	PlanID     int64     `json:"plan_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     bool      `json:"status"`
}

// PaymentEvent is one entry of the append-only payment log.
type PaymentEvent struct {
	CustomerID int64     `json:"customer_id" bson:"customer_id"`
	PlanID     int64     `json:"plan_id" bson:"plan_id"`
	Amount     float64   `json:"amount" bson:"amount"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	Status     bool      `json:"status" bson:"status"`
}
