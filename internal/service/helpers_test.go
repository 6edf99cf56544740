package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/auth"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/email"
	"storefront/internal/model"
	"storefront/internal/repository"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	testUser  = &auth.User{ID: "user-1", Email: "ada@example.com", Name: "Ada Lovelace"}
	otherUser = &auth.User{ID: "user-2", Email: "bob@example.com", Name: "Bob"}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: dec("49"),
		ShippingFee:           dec("2.95"),
		TaxRate:               decimal.Zero,
		MinimumOrder:          dec("0.30"),
		DiscountPercents:      map[string]decimal.Decimal{"SAVE10": dec("10")},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := client.InitDB("sqlite://file::memory:")
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func items(pairs ...int64) []dto.Item {
	out := make([]dto.Item, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dto.Item{ID: pairs[i], Quantity: int(pairs[i+1])})
	}
	return out
}

type fakePayments struct {
	mu sync.Mutex

	created   []*client.PaymentIntentRequest
	updates   map[string][]*client.PaymentIntentUpdate
	cancelled []string
	sessions  []*client.CheckoutSessionRequest

	createErr  error
	updateErr  error
	sessionErr error
	seq        int
}

func newFakePayments() *fakePayments {
	return &fakePayments{updates: map[string][]*client.PaymentIntentUpdate{}}
}

func (f *fakePayments) CreatePaymentIntent(_ context.Context, req *client.PaymentIntentRequest) (*client.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	f.created = append(f.created, req)
	id := fmt.Sprintf("pi_%d", f.seq)
	return &client.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       req.Amount,
		Status:       "requires_payment_method",
		Metadata:     req.Metadata,
	}, nil
}

func (f *fakePayments) UpdatePaymentIntent(_ context.Context, id string, req *client.PaymentIntentUpdate) (*client.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates[id] = append(f.updates[id], req)
	return &client.PaymentIntent{ID: id, Amount: req.Amount}, nil
}

func (f *fakePayments) CancelPaymentIntent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakePayments) CreateCheckoutSession(_ context.Context, req *client.CheckoutSessionRequest) (*client.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.seq++
	f.sessions = append(f.sessions, req)
	id := fmt.Sprintf("cs_%d", f.seq)
	return &client.CheckoutSession{ID: id, URL: "https://checkout.example.com/" + id, Metadata: req.Metadata}, nil
}

func (f *fakePayments) ConstructEvent([]byte, string) (*client.Event, error) {
	return nil, errors.New("not used")
}

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type failingCreateRepo struct {
	repository.OrderRepository
}

func (failingCreateRepo) Create(context.Context, *gorm.DB, *model.Order) error {
	return errors.New("insert failed")
}

func nopLogger() *zap.Logger { return zap.NewNop() }
