package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskapi/internal/model"
	"taskapi/internal/repository"
	"taskapi/internal/storage"
)

const receiptPrefix = "receipts"

// SubscribeResult carries the new subscription and the table it landed in.
type SubscribeResult struct {
	Subscription  *model.Subscription  `json:"subscription"`
	Subscriptions []model.Subscription `json:"subscriptions"`
}

// PaymentResult is the outcome of a simulated payment. Receipt fields are
// empty when receipt storage is disabled.
type PaymentResult struct {
	Event      model.PaymentEvent `json:"event"`
	ReceiptID  string             `json:"receipt_id,omitempty"`
	ReceiptURL string             `json:"receipt_url,omitempty"`
}

// BillingService defines the customer, plan, subscription and payment use cases.
type BillingService interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	// AddCustomer stores a customer and returns the updated list.
	AddCustomer(ctx context.Context, c model.Customer) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)

	ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*model.SubscriptionPlan, error)

	// Subscribe creates an active subscription. Unknown customers or plans
	// surface as repository.ErrReferentialIntegrity.
	Subscribe(ctx context.Context, customerID, planID int64) (*SubscribeResult, error)
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*model.Subscription, error)

	// SimulatePayment logs a successful payment stamped with the current time.
	// With receipt storage configured, a JSON receipt is written first and
	// removed again if the event cannot be logged.
	SimulatePayment(ctx context.Context, customerID, planID int64, amount float64) (*PaymentResult, error)
	ListPayments(ctx context.Context) ([]model.PaymentEvent, error)
	// GetReceipt streams a stored receipt. The caller closes the reader.
	GetReceipt(ctx context.Context, receiptID string) (io.ReadCloser, storage.ObjectInfo, error)
}

// BillingOption customizes a BillingService.
type BillingOption func(*billingService)

// WithReceipts enables payment receipts in store, presigned for expiry.
func WithReceipts(store storage.Storage, expiry time.Duration) BillingOption {
	return func(s *billingService) {
		s.store = store
		s.presignExpiry = expiry
	}
}

// WithLogger sets the logger used for failures that do not fail the call.
func WithLogger(log *slog.Logger) BillingOption {
	return func(s *billingService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the payment timestamp source.
func WithClock(now func() time.Time) BillingOption {
	return func(s *billingService) {
		if now != nil {
			s.now = now
		}
	}
}

type billingService struct {
	customers     repository.CustomerRepository
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	events        repository.EventRepository

	store         storage.Storage
	presignExpiry time.Duration
	log           *slog.Logger
	now           func() time.Time
}

// NewBillingService constructs a BillingService.
func NewBillingService(
	customers repository.CustomerRepository,
	plans repository.PlanRepository,
	subscriptions repository.SubscriptionRepository,
	events repository.EventRepository,
	opts ...BillingOption,
) BillingService {
	s := &billingService{
		customers:     customers,
		plans:         plans,
		subscriptions: subscriptions,
		events:        events,
		presignExpiry: 15 * time.Minute,
		log:           slog.New(slog.DiscardHandler),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *billingService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers.List(ctx)
}

func (s *billingService) AddCustomer(ctx context.Context, c model.Customer) ([]model.Customer, error) {
	if err := validID(c.ID); err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return nil, ErrNameRequired
	}
	if c.Email == "" {
		return nil, ErrEmailRequired
	}
	if err := s.customers.Add(ctx, c); err != nil {
		return nil, err
	}
	all, err := s.customers.List(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "customer_list_after_add_failed", "customer_id", c.ID, "error", err.Error())
		return []model.Customer{c}, nil
	}
	return all, nil
}

func (s *billingService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("customer")
	}
	return c, nil
}

func (s *billingService) ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	return s.plans.List(ctx)
}

func (s *billingService) GetPlan(ctx context.Context, id int64) (*model.SubscriptionPlan, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	p, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("plan")
	}
	return p, nil
}

func (s *billingService) Subscribe(ctx context.Context, customerID, planID int64) (*SubscribeResult, error) {
	if err := validID(customerID); err != nil {
		return nil, fmt.Errorf("customer_id: %w", err)
	}
	if err := validID(planID); err != nil {
		return nil, fmt.Errorf("plan_id: %w", err)
	}
	sub, err := s.subscriptions.Subscribe(ctx, customerID, planID)
	if err != nil {
		return nil, err
	}
	all, err := s.subscriptions.List(ctx)
	if err != nil {
		// The subscription is committed; report it rather than invite a duplicate.
		s.log.WarnContext(ctx, "subscription_list_after_subscribe_failed", "subscription_id", sub.ID, "error", err.Error())
		all = []model.Subscription{*sub}
	}
	return &SubscribeResult{Subscription: sub, Subscriptions: all}, nil
}

func (s *billingService) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	return s.subscriptions.List(ctx)
}

func (s *billingService) GetSubscription(ctx context.Context, id int64) (*model.Subscription, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, notFound("subscription")
	}
	return sub, nil
}

func (s *billingService) SimulatePayment(ctx context.Context, customerID, planID int64, amount float64) (*PaymentResult, error) {
	if err := validID(customerID); err != nil {
		return nil, fmt.Errorf("customer_id: %w", err)
	}
	if err := validID(planID); err != nil {
		return nil, fmt.Errorf("plan_id: %w", err)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	event := model.PaymentEvent{
		CustomerID: customerID,
		PlanID:     planID,
		Amount:     amount,
		Timestamp:  s.now().UTC().Truncate(time.Millisecond),
		Status:     true,
	}
	res := &PaymentResult{Event: event}

	var key string
	if s.store != nil {
		res.ReceiptID = uuid.New().String()
		key = receiptKey(res.ReceiptID)
		if err := s.putReceipt(ctx, key, res.ReceiptID, event); err != nil {
			return nil, fmt.Errorf("store receipt: %w", err)
		}
	}

	if err := s.events.AddEvent(ctx, event); err != nil {
		if key != "" {
			if delErr := s.store.Delete(ctx, key); delErr != nil {
				return nil, fmt.Errorf("log payment failed: %w; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("log payment failed: %w", err)
	}

	if key != "" {
		u, err := s.store.PresignGet(ctx, key, s.presignExpiry)
		if err != nil {
			// The payment is already logged; the receipt stays reachable through GetReceipt.
			s.log.WarnContext(ctx, "receipt_presign_failed", "receipt_id", res.ReceiptID, "error", err.Error())
		} else {
			res.ReceiptURL = u
		}
	}
	return res, nil
}

func (s *billingService) ListPayments(ctx context.Context) ([]model.PaymentEvent, error) {
	return s.events.List(ctx)
}

func (s *billingService) GetReceipt(ctx context.Context, receiptID string) (io.ReadCloser, storage.ObjectInfo, error) {
	if s.store == nil {
		return nil, storage.ObjectInfo{}, ErrReceiptsDisabled
	}
	id, err := uuid.Parse(receiptID)
	if err != nil {
		return nil, storage.ObjectInfo{}, ErrInvalidID
	}
	rc, info, err := s.store.Get(ctx, receiptKey(id.String()))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, notFound("receipt")
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}

type receipt struct {
	ReceiptID string `json:"receipt_id"`
	model.PaymentEvent
}

func (s *billingService) putReceipt(ctx context.Context, key, id string, event model.PaymentEvent) error {
	body, err := json.Marshal(receipt{ReceiptID: id, PaymentEvent: event})
	if err != nil {
		return err
	}
	_, err = s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"customer-id": strconv.FormatInt(event.CustomerID, 10),
			"plan-id":     strconv.FormatInt(event.PlanID, 10),
		},
	})
	return err
}

func receiptKey(id string) string {
	return path.Join(receiptPrefix, id+".json")
}
