//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

// =============================
// In-memory store shared by all mock repositories
// =============================

// memStore keeps values, not pointers, so callers never mutate stored rows in place.
type memStore struct {
	mu        sync.Mutex
	customers map[string]model.Customer
	methods   map[string]model.PaymentMethod
	plans     map[string]model.Plan
	products  map[string]model.Product
	subs      map[string]model.Subscription
	payments  map[string]model.Payment
	receipts  map[string]model.Receipt
	balances  map[string]model.CreditBalance
	logs      []model.ActivityLog
}

func newMemStore() *memStore {
	return &memStore{
		customers: map[string]model.Customer{},
		methods:   map[string]model.PaymentMethod{},
		plans:     map[string]model.Plan{},
		products:  map[string]model.Product{},
		subs:      map[string]model.Subscription{},
		payments:  map[string]model.Payment{},
		receipts:  map[string]model.Receipt{},
		balances:  map[string]model.CreditBalance{},
	}
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memStore{
		customers: copyMap(s.customers),
		methods:   copyMap(s.methods),
		plans:     copyMap(s.plans),
		products:  copyMap(s.products),
		subs:      copyMap(s.subs),
		payments:  copyMap(s.payments),
		receipts:  copyMap(s.receipts),
		balances:  copyMap(s.balances),
		logs:      append([]model.ActivityLog(nil), s.logs...),
	}
}

func (s *memStore) restore(snap *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers, s.methods, s.plans, s.products = snap.customers, snap.methods, snap.plans, snap.products
	s.subs, s.payments, s.receipts, s.balances = snap.subs, snap.payments, snap.receipts, snap.balances
	s.logs = snap.logs
}

func (s *memStore) activityTypes(customerID string) []model.ActivityType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ActivityType
	for _, l := range s.logs {
		if l.CustomerID == customerID {
			out = append(out, l.Type)
		}
	}
	return out
}

func (s *memStore) counts() (payments, receipts, logs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments), len(s.receipts), len(s.logs)
}

// =============================
// Repositories
// =============================

// ---- Customers ----

type MockCustomerRepo struct {
	s *memStore

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error)
}

var _ repository.CustomerRepository = (*MockCustomerRepo)(nil)

func (r *MockCustomerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *MockCustomerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.customers[id]; ok {
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockCustomerRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.ExternalCustomerID == externalID {
			cp := c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Payment methods ----

type MockPaymentMethodRepo struct{ s *memStore }

var _ repository.PaymentMethodRepository = (*MockPaymentMethodRepo)(nil)

func (r *MockPaymentMethodRepo) Save(ctx context.Context, tx repository.Tx, pm *model.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.methods[pm.ID] = *pm
	return nil
}

func (r *MockPaymentMethodRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if pm, ok := r.s.methods[id]; ok {
		return &pm, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentMethodRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.PaymentMethod
	for _, pm := range r.s.methods {
		if pm.CustomerID == customerID {
			cp := pm
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Plans / products ----

type MockPlanRepo struct{ s *memStore }

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plans[p.ID] = *p
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.plans[id]; ok {
		return &p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Plan
	for _, p := range r.s.plans {
		if p.Active {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	return out, nil
}

type MockProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*MockProductRepo)(nil)

func (r *MockProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r *MockProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		return &p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockProductRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Subscriptions ----

type MockSubscriptionRepo struct {
	s *memStore

	SaveFunc func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	// LockedReads counts FindByID calls made with a non-nil tx.
	LockedReads int
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, sub)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.subs[sub.ID] = *sub
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tx != nil {
		r.LockedReads++
	}
	if sub, ok := r.s.subs[id]; ok {
		return &sub, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) FindActiveByCustomer(ctx context.Context, tx repository.Tx, customerID string) (*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subs {
		if sub.CustomerID == customerID && sub.CanRenew() {
			cp := sub
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) ListDueForBilling(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Subscription
	for _, sub := range r.s.subs {
		if sub.DueForBilling(now) {
			cp := sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, sub := range r.s.subs {
		out[sub.Status]++
	}
	return out, nil
}

// ---- Payments / receipts ----

type MockPaymentRepo struct {
	s *memStore

	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[id]; ok {
		return &p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.s.payments {
		if p.CustomerID == customerID {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, p := range r.s.payments {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

type MockReceiptRepo struct {
	s *memStore

	CreateFunc func(ctx context.Context, tx repository.Tx, r *model.Receipt) error
}

var _ repository.ReceiptRepository = (*MockReceiptRepo)(nil)

func (r *MockReceiptRepo) Create(ctx context.Context, tx repository.Tx, rc *model.Receipt) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, rc)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.receipts {
		if existing.PaymentID == rc.PaymentID || existing.ReceiptNumber == rc.ReceiptNumber {
			return domain.ErrAlreadyExists
		}
	}
	r.s.receipts[rc.ID] = *rc
	return nil
}

func (r *MockReceiptRepo) find(match func(model.Receipt) bool) (*model.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rc := range r.s.receipts {
		if match(rc) {
			cp := rc
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockReceiptRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Receipt, error) {
	return r.find(func(rc model.Receipt) bool { return rc.ID == id })
}

func (r *MockReceiptRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Receipt, error) {
	return r.find(func(rc model.Receipt) bool { return rc.ReceiptNumber == number })
}

func (r *MockReceiptRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Receipt, error) {
	return r.find(func(rc model.Receipt) bool { return rc.PaymentID == paymentID })
}

func (r *MockReceiptRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Receipt
	for _, rc := range r.s.receipts {
		if p, ok := r.s.payments[rc.PaymentID]; ok && p.CustomerID == customerID {
			cp := rc
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Credits / activity ----

type MockCreditBalanceRepo struct {
	s *memStore

	UpsertFunc func(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error
	AddFunc    func(ctx context.Context, tx repository.Tx, externalID string, credits int64, at time.Time) (*model.CreditBalance, error)
}

var _ repository.CreditBalanceRepository = (*MockCreditBalanceRepo)(nil)

func (r *MockCreditBalanceRepo) Find(ctx context.Context, tx repository.Tx, externalID string) (*model.CreditBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.balances[externalID]; ok {
		return &b, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockCreditBalanceRepo) Upsert(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, b)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.balances[b.ExternalCustomerID] = *b
	return nil
}

func (r *MockCreditBalanceRepo) Add(ctx context.Context, tx repository.Tx, externalID string, credits int64, at time.Time) (*model.CreditBalance, error) {
	if r.AddFunc != nil {
		return r.AddFunc(ctx, tx, externalID, credits, at)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.s.balances[externalID]
	b.ExternalCustomerID = externalID
	b.Remaining += credits
	b.UpdatedAt = at
	r.s.balances[externalID] = b
	return &b, nil
}

type MockActivityLogRepo struct {
	s *memStore

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.ActivityLog) error
}

var _ repository.ActivityLogRepository = (*MockActivityLogRepo)(nil)

func (r *MockActivityLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.ActivityLog) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, e)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, *e)
	return nil
}

func (r *MockActivityLogRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string, limit int) ([]*model.ActivityLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.ActivityLog
	for i := len(r.s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.logs[i].CustomerID == customerID {
			cp := r.s.logs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	mu    sync.Mutex
	Calls []adapter.ChargeRequest

	CreateChargeFunc func(ctx context.Context, req adapter.ChargeRequest) (adapter.ChargeConfirmation, error)
	ReceiptURLFunc   func(ctx context.Context, c adapter.ChargeConfirmation) (string, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, req adapter.ChargeRequest) (adapter.ChargeConfirmation, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	if m.CreateChargeFunc != nil {
		return m.CreateChargeFunc(ctx, req)
	}
	id := "pi_" + uuid.NewString()
	return adapter.ChargeConfirmation{ID: id, Status: adapter.ChargeStatusSucceeded, LatestChargeID: "ch_" + id}, nil
}

func (m *MockPaymentGateway) IsSuccessful(c adapter.ChargeConfirmation) bool {
	return c.Status == adapter.ChargeStatusSucceeded
}

func (m *MockPaymentGateway) ReceiptURL(ctx context.Context, c adapter.ChargeConfirmation) (string, error) {
	if m.ReceiptURLFunc != nil {
		return m.ReceiptURLFunc(ctx, c)
	}
	return "https://pay.example.test/receipts/" + c.ID, nil
}

func (m *MockPaymentGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ---- In-memory Locker (implements adapter.Locker) ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrLockNotAcquired
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

func (l *MockLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

type fakeTx struct{}

// newRollbackTxManager passes a non-nil tx and restores the store when fn fails,
// which is what a real database transaction would do.
func newRollbackTxManager(s *memStore) *MockTxManager {
	return &MockTxManager{
		WithTxFunc: func(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
			snap := s.snapshot()
			if err := fn(ctx, fakeTx{}); err != nil {
				s.restore(snap)
				return err
			}
			return nil
		},
	}
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Fixtures
// =============================

const (
	custID      = "cust-1"
	custExtID   = "ext-cust-1"
	visaID      = "card-visa-1"
	planID      = "plan-monthly"
	subID       = "sub-1"
	smsBundleID = "sms-500"
	addonID     = "addon-1"
)

func ptr[T any](v T) *T { return &v }

func billingDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store    *memStore
	customer *MockCustomerRepo
	methods  *MockPaymentMethodRepo
	plans    *MockPlanRepo
	products *MockProductRepo
	subs     *MockSubscriptionRepo
	payments *MockPaymentRepo
	receipts *MockReceiptRepo
	credits  *MockCreditBalanceRepo
	logs     *MockActivityLogRepo
	gateway  *MockPaymentGateway
	tm       *MockTxManager
}

// newFixture seeds customer C with a saved Visa, a MONTHLY plan billed next on
// 2025-01-15, a 500-credit SMS bundle and an add-on without credits.
func newFixture() *fixture {
	s := newMemStore()
	f := &fixture{
		store:    s,
		customer: &MockCustomerRepo{s: s},
		methods:  &MockPaymentMethodRepo{s: s},
		plans:    &MockPlanRepo{s: s},
		products: &MockProductRepo{s: s},
		subs:     &MockSubscriptionRepo{s: s},
		payments: &MockPaymentRepo{s: s},
		receipts: &MockReceiptRepo{s: s},
		credits:  &MockCreditBalanceRepo{s: s},
		logs:     &MockActivityLogRepo{s: s},
		gateway:  &MockPaymentGateway{},
		tm:       newRollbackTxManager(s),
	}

	next := billingDay(2025, time.January, 15)
	s.customers[custID] = model.Customer{ID: custID, Email: "billing@acme.test", CompanyName: "Acme ApS", ExternalCustomerID: custExtID}
	s.methods[visaID] = model.PaymentMethod{
		ID: visaID, CustomerID: custID, Type: "card", Brand: "Visa", Last4: "4242",
		ExpMonth: 12, ExpYear: 2030, ProcessorMethodID: "pm_saved_visa", Status: model.PaymentMethodStatusActive,
	}
	s.plans[planID] = model.Plan{ID: planID, Name: "Basic", Period: model.PeriodMonthly, PriceCents: 9900, Currency: "DKK", Active: true}
	s.subs[subID] = model.Subscription{
		ID: subID, CustomerID: custID, PlanID: planID, Status: model.SubscriptionStatusActive,
		StartDate: billingDay(2024, time.December, 15), NextBillingDate: &next, AnchorPolicy: model.AnchorAnniversary,
	}
	s.products[smsBundleID] = model.Product{ID: smsBundleID, Type: model.ProductTypeSMS, Name: "500 SMS", PriceCents: 5000, Currency: "DKK", SMSCount: ptr(500)}
	s.products[addonID] = model.Product{ID: addonID, Type: model.ProductTypeSubscription, Name: "Priority support", PriceCents: 2500, Currency: "DKK"}
	return f
}
