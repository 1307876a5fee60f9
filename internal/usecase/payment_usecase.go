package usecase

import (
	"context"
	"strings"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "INR"

type PaymentUsecase struct {
	orders  repo.OrderRepository
	gateway PaymentGateway
}

func NewPaymentUsecase(orders repo.OrderRepository, gateway PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{orders: orders, gateway: gateway}
}

type CreatePaymentOrderInput struct {
	OrderID  string
	Currency string
}

type PaymentOrderOutput struct {
	OrderID        string          `json:"order_id"`
	GatewayOrderID string          `json:"razorpay_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountSubunits int64           `json:"amount_subunits"`
	Currency       string          `json:"currency"`
	Receipt        string          `json:"receipt"`
	KeyID          string          `json:"key_id"`
}

type VerifyPaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

type PaymentVerificationOutput struct {
	Verified         bool   `json:"verified"`
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
}

type TransferInput struct {
	PaymentID string
	Transfers []Transfer
}

// 決済ゲートウェイに注文を作る。金額は注文の最終価格から決める
func (u *PaymentUsecase) CreateGatewayOrder(ctx context.Context, actor Actor, in CreatePaymentOrderInput) (PaymentOrderOutput, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return PaymentOrderOutput{}, Validation("Validation failed: order_id is required", FieldError{Field: "order_id", Message: "order_id is required"})
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	order, err := u.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return PaymentOrderOutput{}, fromRepoError(err, "Order not found")
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return PaymentOrderOutput{}, Forbidden("You can only pay for your own orders")
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return PaymentOrderOutput{}, Conflict("Order is already paid")
	}
	if !order.FinalPrice.IsPositive() {
		return PaymentOrderOutput{}, Validation("Order has nothing to pay")
	}

	gwOrder, err := u.gateway.CreateOrder(ctx, order.FinalPrice, currency, order.ID, map[string]string{
		"order_id": order.ID,
		"store_id": order.StoreID,
	})
	if err != nil {
		return PaymentOrderOutput{}, GatewayFailure(err)
	}

	if err := u.orders.SetGatewayOrderID(ctx, order.ID, gwOrder.ID); err != nil {
		return PaymentOrderOutput{}, fromRepoError(err, "Order not found")
	}

	log.Info().Str("order_id", order.ID).Str("razorpay_order_id", gwOrder.ID).Msg("gateway order created")

	return PaymentOrderOutput{
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.ID,
		Amount:         order.FinalPrice,
		AmountSubunits: gwOrder.Amount,
		Currency:       gwOrder.Currency,
		Receipt:        gwOrder.Receipt,
		KeyID:          u.gateway.KeyID(),
	}, nil
}

// チェックアウト後の署名検証。正しければ支払い済みにする
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (PaymentVerificationOutput, error) {
	if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.Signature == "" {
		return PaymentVerificationOutput{}, Validation("Payment verification failed: missing fields")
	}
	if !u.gateway.VerifyPaymentSignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature) {
		log.Warn().Str("razorpay_order_id", in.GatewayOrderID).Msg("payment signature mismatch")
		return PaymentVerificationOutput{}, Validation("Payment verification failed")
	}

	paymentID := in.GatewayPaymentID
	err := u.orders.UpdatePaymentByGatewayOrderID(ctx, in.GatewayOrderID, repo.PaymentUpdate{
		Status:           model.PaymentStatusPaid,
		GatewayPaymentID: &paymentID,
	})
	if err != nil {
		return PaymentVerificationOutput{}, fromRepoError(err, "Order not found for this payment")
	}

	return PaymentVerificationOutput{
		Verified:         true,
		GatewayOrderID:   in.GatewayOrderID,
		GatewayPaymentID: in.GatewayPaymentID,
	}, nil
}

// 店舗サブアカウントへの分配（管理者のみ）
func (u *PaymentUsecase) CreateTransfers(ctx context.Context, actor Actor, in TransferInput) (map[string]interface{}, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("Admin access required")
	}

	var fields []FieldError
	if strings.TrimSpace(in.PaymentID) == "" {
		fields = append(fields, FieldError{Field: "payment_id", Message: "payment_id is required"})
	}
	if len(in.Transfers) == 0 {
		fields = append(fields, FieldError{Field: "transfers", Message: "transfers must not be empty"})
	}
	for i := range in.Transfers {
		t := &in.Transfers[i]
		if t.Account == "" {
			fields = append(fields, FieldError{Field: "transfers.account", Message: "transfers.account is required"})
		}
		if !t.Amount.IsPositive() {
			fields = append(fields, FieldError{Field: "transfers.amount", Message: "transfers.amount must be greater than 0"})
		}
		if t.Currency == "" {
			t.Currency = defaultCurrency
		}
	}
	if len(fields) > 0 {
		return nil, ValidationFields(fields)
	}

	res, err := u.gateway.CreateTransfers(ctx, in.PaymentID, in.Transfers)
	if err != nil {
		return nil, GatewayFailure(err)
	}
	return res, nil
}

// ゲートウェイ側の支払い情報（管理者のみ）
func (u *PaymentUsecase) GetPayment(ctx context.Context, actor Actor, paymentID string) (map[string]interface{}, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("Admin access required")
	}
	if strings.TrimSpace(paymentID) == "" {
		return nil, Validation("payment id is required")
	}
	res, err := u.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, GatewayFailure(err)
	}
	return res, nil
}
