package handler

import (
	"github.com/gofiber/fiber/v2"

	"taskapi/internal/service"
)

// Deps are the collaborators RegisterRoutes wires into the handlers.
type Deps struct {
	Tasks   service.TaskService
	Billing service.BillingService
	Checks  []Check
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(d.Checks...))
	app.Get("/healthz", LivenessProbe())

	app.Get("/tasks", ListTasks(d.Tasks))
	app.Post("/tasks", AddTask(d.Tasks))
	app.Get("/tasks/:id", GetTask(d.Tasks))
	app.Post("/tasks/:id", ToggleTask(d.Tasks))

	app.Get("/customers", ListCustomers(d.Billing))
	app.Post("/customers", AddCustomer(d.Billing))
	app.Get("/customers/:id", GetCustomer(d.Billing))

	app.Get("/plans", ListPlans(d.Billing))
	app.Get("/plans/:id", GetPlan(d.Billing))

	app.Get("/subscriptions", ListSubscriptions(d.Billing))
	app.Post("/subscriptions", Subscribe(d.Billing))
	app.Get("/subscriptions/:id", GetSubscription(d.Billing))

	app.Get("/payments", ListPayments(d.Billing))
	app.Post("/payments/simulate", SimulatePayment(d.Billing))
	app.Get("/payments/receipts/:id", GetReceipt(d.Billing))
}
