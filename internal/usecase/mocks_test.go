package usecase_test

import (
	"context"
	"io"
	"testing"
	"time"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"
	"printshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type txManagerMock struct {
	mock.Mock
	repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.repos)
}

type txReposMock struct {
	orders    repo.OrderRepository
	stores    repo.StoreRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposMock) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposMock) Stores() repo.StoreRepository       { return r.stores }
func (r *txReposMock) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

func newTx(orders *orderRepoMock, stores *storeRepoMock, audits *auditRepoMock) *txManagerMock {
	tx := &txManagerMock{repos: &txReposMock{orders: orders, stores: stores, auditLogs: audits}}
	tx.On("WithinTx", mock.Anything).Return()
	return tx
}

// =====================
// Repository mocks
// =====================

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *orderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ListByUser(ctx context.Context, userID string, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, f)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) ListByStore(ctx context.Context, storeID string, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, storeID, f)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *orderRepoMock) SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error {
	return m.Called(ctx, orderID, gatewayOrderID).Error(0)
}

func (m *orderRepoMock) UpdatePaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string, u repo.PaymentUpdate) error {
	return m.Called(ctx, gatewayOrderID, u).Error(0)
}

func (m *orderRepoMock) MarkPdfDeleted(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

type storeRepoMock struct{ mock.Mock }

func (m *storeRepoMock) Create(ctx context.Context, store *model.Store) error {
	return m.Called(ctx, store).Error(0)
}

func (m *storeRepoMock) FindByID(ctx context.Context, storeID string) (model.Store, error) {
	args := m.Called(ctx, storeID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *storeRepoMock) FindByIDs(ctx context.Context, storeIDs []string) ([]model.Store, error) {
	args := m.Called(ctx, storeIDs)
	list, _ := args.Get(0).([]model.Store)
	return list, args.Error(1)
}

func (m *storeRepoMock) FindActiveByOwner(ctx context.Context, ownerID string) (model.Store, error) {
	args := m.Called(ctx, ownerID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *storeRepoMock) List(ctx context.Context, f repo.StoreListFilter) ([]model.Store, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Store)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *storeRepoMock) UpdateStatus(ctx context.Context, storeID string, status model.StoreStatus) error {
	return m.Called(ctx, storeID, status).Error(0)
}

func (m *storeRepoMock) SetGatewayAccount(ctx context.Context, storeID string, accountID string, kyc model.KYCStatus) error {
	return m.Called(ctx, storeID, accountID, kyc).Error(0)
}

func (m *storeRepoMock) UpdateKYCByGatewayAccount(ctx context.Context, accountID string, u repo.KYCUpdate) error {
	return m.Called(ctx, accountID, u).Error(0)
}

func (m *storeRepoMock) UpdateProfile(ctx context.Context, storeID string, u repo.StoreProfileUpdate) error {
	return m.Called(ctx, storeID, u).Error(0)
}

func (m *storeRepoMock) UpdatePricing(ctx context.Context, storeID string, blackWhite, color *decimal.Decimal) error {
	return m.Called(ctx, storeID, blackWhite, color).Error(0)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID string) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByIDs(ctx context.Context, userIDs []string) ([]model.User, error) {
	args := m.Called(ctx, userIDs)
	list, _ := args.Get(0).([]model.User)
	return list, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.AuditLog)
	return list, args.Error(1)
}

type eventRepoMock struct{ mock.Mock }

func (m *eventRepoMock) Create(ctx context.Context, event *model.WebhookEvent) error {
	return m.Called(ctx, event).Error(0)
}

// =====================
// Port mocks
// =====================

type blobStoreMock struct{ mock.Mock }

func (m *blobStoreMock) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *blobStoreMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *blobStoreMock) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// ページ数は固定値を返す
type pageCounterStub struct {
	pages int
	err   error
}

func (p pageCounterStub) CountPages(r io.ReadSeeker) (int, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return 0, err
	}
	return p.pages, p.err
}

type gatewayMock struct{ mock.Mock }

func (m *gatewayMock) KeyID() string { return "rzp_test_key" }

func (m *gatewayMock) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, receipt string, notes map[string]string) (usecase.GatewayOrder, error) {
	args := m.Called(ctx, amount, currency, receipt, notes)
	o, _ := args.Get(0).(usecase.GatewayOrder)
	return o, args.Error(1)
}

func (m *gatewayMock) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	args := m.Called(ctx, paymentID)
	res, _ := args.Get(0).(map[string]interface{})
	return res, args.Error(1)
}

func (m *gatewayMock) CreateTransfers(ctx context.Context, paymentID string, transfers []usecase.Transfer) (map[string]interface{}, error) {
	args := m.Called(ctx, paymentID, transfers)
	res, _ := args.Get(0).(map[string]interface{})
	return res, args.Error(1)
}

func (m *gatewayMock) CreateSubAccount(ctx context.Context, req usecase.SubAccountRequest) (usecase.SubAccount, error) {
	args := m.Called(ctx, req)
	a, _ := args.Get(0).(usecase.SubAccount)
	return a, args.Error(1)
}

func (m *gatewayMock) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

func (m *gatewayMock) VerifyWebhookSignature(body []byte, signature string) bool {
	return m.Called(body, signature).Bool(0)
}

type dedupeMock struct{ mock.Mock }

func (m *dedupeMock) Seen(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *dedupeMock) Mark(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

// =====================
// helpers
// =====================

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertKind(t *testing.T, err error, kind usecase.ErrorKind) {
	t.Helper()
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok, "expected *AppError, got %T (%v)", err, err)
	assert.Equal(t, kind, ae.Kind, ae.Message)
}

var (
	userID   = model.UserIDPrefix + "11111111-1111-4111-8111-111111111111"
	ownerID  = model.UserIDPrefix + "22222222-2222-4222-8222-222222222222"
	adminID  = model.UserIDPrefix + "33333333-3333-4333-8333-333333333333"
	storeID  = model.StoreIDPrefix + "44444444-4444-4444-8444-444444444444"
	orderID  = model.OrderIDPrefix + "55555555-5555-4555-8555-555555555555"
	customer = usecase.Actor{UserID: userID, Role: model.RoleUser}
	owner    = usecase.Actor{UserID: ownerID, Role: model.RoleUser}
	admin    = usecase.Actor{UserID: adminID, Role: model.RoleAdmin}
)
