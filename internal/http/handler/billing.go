package handler

import (
	"github.com/gofiber/fiber/v2"

	"taskapi/internal/model"
	"taskapi/internal/service"
)

type subscribeRequest struct {
	CustomerID int64 `json:"customer_id" query:"customer_id"`
	PlanID     int64 `json:"plan_id" query:"plan_id"`
}

type paymentRequest struct {
	CustomerID int64   `json:"customer_id" query:"customer_id"`
	PlanID     int64   `json:"plan_id" query:"plan_id"`
	Amount     float64 `json:"amount" query:"amount"`
}

// ListCustomers godoc
// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {object} map[string][]model.Customer
// @Router /customers [get]
func ListCustomers(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customers, err := svc.ListCustomers(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"customers": customers})
	}
}

// AddCustomer godoc
// @Summary Add a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body model.Customer true "customer"
// @Success 201 {object} map[string][]model.Customer
// @Failure 409 {object} errorPayload
// @Router /customers [post]
func AddCustomer(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customer model.Customer
		if err := c.BodyParser(&customer); err != nil {
			return invalidBody(c)
		}
		customers, err := svc.AddCustomer(c.UserContext(), customer)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"customers": customers})
	}
}

func GetCustomer(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		customer, err := svc.GetCustomer(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"customer": customer})
	}
}

func ListPlans(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plans, err := svc.ListPlans(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"plans": plans})
	}
}

func GetPlan(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		plan, err := svc.GetPlan(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"plan": plan})
	}
}

// Subscribe godoc
// @Summary Subscribe a customer to a plan
// @Tags subscriptions
// @Produce json
// @Param customer_id query int true "customer id"
// @Param plan_id query int true "plan id"
// @Success 201 {object} service.SubscribeResult
// @Failure 422 {object} errorPayload
// @Router /subscriptions [post]
func Subscribe(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req subscribeRequest
		if err := bindParams(c, &req); err != nil {
			return invalidBody(c)
		}
		res, err := svc.Subscribe(c.UserContext(), req.CustomerID, req.PlanID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func ListSubscriptions(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subs, err := svc.ListSubscriptions(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"subscriptions": subs})
	}
}

func GetSubscription(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		sub, err := svc.GetSubscription(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"subscription": sub})
	}
}

// SimulatePayment godoc
// @Summary Record a successful payment
// @Tags payments
// @Produce json
// @Param customer_id query int true "customer id"
// @Param plan_id query int true "plan id"
// @Param amount query number true "amount"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /payments/simulate [post]
func SimulatePayment(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req paymentRequest
		if err := bindParams(c, &req); err != nil {
			return invalidBody(c)
		}
		res, err := svc.SimulatePayment(c.UserContext(), req.CustomerID, req.PlanID, req.Amount)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "payment successful",
			"payment": res,
		})
	}
}

func ListPayments(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		events, err := svc.ListPayments(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"payments": events})
	}
}

// GetReceipt streams a stored payment receipt.
func GetReceipt(svc service.BillingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.GetReceipt(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEApplicationJSON
		}
		c.Set(fiber.HeaderContentType, ct)
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, int(info.Size))
	}
}
