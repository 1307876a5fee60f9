package usecase_test

import (
	"context"
	"errors"
	"testing"

	"printshop/internal/domain/model"
	"printshop/internal/metrics"
	repo "printshop/internal/repository"
	"printshop/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type webhookFixture struct {
	gw      *gatewayMock
	orders  *orderRepoMock
	stores  *storeRepoMock
	events  *eventRepoMock
	dedupe  *dedupeMock
	metrics *metrics.Metrics
	uc      *usecase.WebhookUsecase
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		gw:      &gatewayMock{},
		orders:  &orderRepoMock{},
		stores:  &storeRepoMock{},
		events:  &eventRepoMock{},
		dedupe:  &dedupeMock{},
		metrics: metrics.New(),
	}
	f.gw.On("VerifyWebhookSignature", mock.Anything, "valid").Return(true)
	f.gw.On("VerifyWebhookSignature", mock.Anything, mock.Anything).Return(false)
	f.events.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.uc = usecase.NewWebhookUsecase(f.gw, f.orders, f.stores, f.events, f.dedupe, f.metrics)
	return f
}

const capturedBody = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_Rz1","status":"captured"}}}}`

func TestWebhookUsecase_RejectsBadSignature(t *testing.T) {
	f := newWebhookFixture()

	for _, sig := range []string{"", "forged"} {
		_, err := f.uc.Handle(context.Background(), usecase.WebhookInput{Body: []byte(capturedBody), Signature: sig})
		assertKind(t, err, usecase.KindValidation)
	}
	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "UpdatePaymentByGatewayOrderID", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues("unknown", "rejected")))
}

func TestWebhookUsecase_MalformedPayload(t *testing.T) {
	f := newWebhookFixture()

	_, err := f.uc.Handle(context.Background(), usecase.WebhookInput{Body: []byte(`{"payload":{}}`), Signature: "valid"})
	assertKind(t, err, usecase.KindValidation)

	_, err = f.uc.Handle(context.Background(), usecase.WebhookInput{Body: []byte(`not json`), Signature: "valid"})
	assertKind(t, err, usecase.KindValidation)
}

func TestWebhookUsecase_PaymentCapturedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	update := repo.PaymentUpdate{Status: model.PaymentStatusPaid, GatewayPaymentID: strPtr("pay_1")}
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz1", update).Return(nil).Twice()

	//イベントIDなしの再送は同じ値を2回書くだけ
	for i := 0; i < 2; i++ {
		res, err := f.uc.Handle(ctx, usecase.WebhookInput{Body: []byte(capturedBody), Signature: "valid"})
		require.NoError(t, err)
		assert.Equal(t, "payment.captured", res.Event)
		assert.False(t, res.Duplicate)
	}

	f.orders.AssertExpectations(t)
	f.events.AssertNumberOfCalls(t, "Create", 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues("payment.captured", "applied")))
}

func TestWebhookUsecase_DuplicateDeliverySkipped(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	f.dedupe.On("Seen", ctx, "evt_1").Return(false, nil).Once()
	f.dedupe.On("Mark", ctx, "evt_1").Return(nil).Once()
	f.dedupe.On("Seen", ctx, "evt_1").Return(true, nil).Once()
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz1", mock.Anything).Return(nil).Once()
	in := usecase.WebhookInput{Body: []byte(capturedBody), Signature: "valid", EventID: "evt_1"}

	first, err := f.uc.Handle(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := f.uc.Handle(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	f.orders.AssertExpectations(t)
	f.dedupe.AssertExpectations(t)
	f.events.AssertNumberOfCalls(t, "Create", 1)
	f.events.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(e *model.WebhookEvent) bool {
		return e.Event == "payment.captured" && e.GatewayEventID != nil && *e.GatewayEventID == "evt_1"
	}))
}

func TestWebhookUsecase_DedupeFailureStillProcesses(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	f.dedupe.On("Seen", ctx, "evt_2").Return(false, errors.New("redis down"))
	f.dedupe.On("Mark", ctx, "evt_2").Return(errors.New("redis down"))
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz1", mock.Anything).Return(nil).Once()

	res, err := f.uc.Handle(ctx, usecase.WebhookInput{Body: []byte(capturedBody), Signature: "valid", EventID: "evt_2"})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	f.orders.AssertExpectations(t)
}

func TestWebhookUsecase_FailedDeliveryIsNotMarked(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	f.dedupe.On("Seen", ctx, "evt_3").Return(false, nil).Twice()
	f.dedupe.On("Mark", ctx, "evt_3").Return(nil).Once()
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz1", mock.Anything).Return(errors.New("connection reset")).Once()
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz1", mock.Anything).Return(nil).Once()
	in := usecase.WebhookInput{Body: []byte(capturedBody), Signature: "valid", EventID: "evt_3"}

	//1回目は反映に失敗するので再配送を受け付ける
	first, err := f.uc.Handle(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	f.dedupe.AssertNotCalled(t, "Mark", ctx, "evt_3")

	second, err := f.uc.Handle(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.Duplicate)

	f.orders.AssertExpectations(t)
	f.dedupe.AssertExpectations(t)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues("payment.captured", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues("payment.captured", "applied")))
}

func TestWebhookUsecase_PaymentFailedKeepsOrderStatus(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	body := `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_2","order_id":"order_Rz2","error_code":"BAD_REQUEST_ERROR","error_description":"Card declined"}}}}`
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz2", repo.PaymentUpdate{
		Status:           model.PaymentStatusFailed,
		GatewayPaymentID: strPtr("pay_2"),
		FailureReason:    strPtr("Card declined"),
	}).Return(nil).Once()

	_, err := f.uc.Handle(ctx, usecase.WebhookInput{Body: []byte(body), Signature: "valid"})
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_OrderPaid(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	body := `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_Rz3","status":"paid"}}}}`
	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz3", repo.PaymentUpdate{Status: model.PaymentStatusPaid}).Return(nil).Once()

	_, err := f.uc.Handle(ctx, usecase.WebhookInput{Body: []byte(body), Signature: "valid"})
	require.NoError(t, err)
	f.orders.AssertExpectations(t)
}

func TestWebhookUsecase_KYCEvents(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	f.stores.On("UpdateKYCByGatewayAccount", ctx, "acc_1", repo.KYCUpdate{Status: model.KYCStatusApproved}).Return(nil).Once()
	f.stores.On("UpdateKYCByGatewayAccount", ctx, "acc_2", repo.KYCUpdate{
		Status:        model.KYCStatusRejected,
		FailureReason: strPtr("PAN mismatch"),
	}).Return(nil).Once()

	_, err := f.uc.Handle(ctx, usecase.WebhookInput{
		Body:      []byte(`{"event":"account.kyc.verification.completed","payload":{"account":{"entity":{"id":"acc_1"}}}}`),
		Signature: "valid",
	})
	require.NoError(t, err)

	_, err = f.uc.Handle(ctx, usecase.WebhookInput{
		Body:      []byte(`{"event":"account.kyc.verification.failed","payload":{"account":{"entity":{"id":"acc_2","kyc":{"reason":"PAN mismatch"}}}}}`),
		Signature: "valid",
	})
	require.NoError(t, err)

	f.stores.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "UpdatePaymentByGatewayOrderID", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_HandlerFailuresAreAcknowledged(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture()

	f.orders.On("UpdatePaymentByGatewayOrderID", ctx, "order_Rz1", mock.Anything).Return(repo.ErrNotFound)

	res, err := f.uc.Handle(ctx, usecase.WebhookInput{Body: []byte(capturedBody), Signature: "valid"})
	require.NoError(t, err)
	assert.Equal(t, "payment.captured", res.Event)

	//参照IDが無いイベントも受領扱い
	_, err = f.uc.Handle(ctx, usecase.WebhookInput{Body: []byte(`{"event":"payment.captured","payload":{}}`), Signature: "valid"})
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues("payment.captured", "failed")))
}

func TestWebhookUsecase_UnknownEventIgnored(t *testing.T) {
	f := newWebhookFixture()

	res, err := f.uc.Handle(context.Background(), usecase.WebhookInput{Body: []byte(`{"event":"refund.created","payload":{}}`), Signature: "valid"})
	require.NoError(t, err)
	assert.Equal(t, "refund.created", res.Event)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookEvents.WithLabelValues("refund.created", "ignored")))
}
