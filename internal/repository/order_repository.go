package repository

import (
	"context"

	"printshop/internal/domain/model"
)

// 一覧の絞り込み（論理削除済みは常に除外）
type OrderListFilter struct {
	Status model.OrderStatus
	Skip   int
	Take   int
}

// 決済結果の反映
type PaymentUpdate struct {
	Status           model.PaymentStatus
	GatewayPaymentID *string
	FailureReason    *string
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	//論理削除済みは見つからない扱い
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error)

	//新しい順。totalは絞り込み後の件数
	ListByUser(ctx context.Context, userID string, f OrderListFilter) ([]model.Order, int64, error)
	ListByStore(ctx context.Context, storeID string, f OrderListFilter) ([]model.Order, int64, error)

	//無条件の上書き（遷移チェックはしない）
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error
	//failed は paid の注文には反映しない
	UpdatePaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string, u PaymentUpdate) error

	//pdf_key=NULL, status=completed, is_deleted=true を1回のUPDATEで
	MarkPdfDeleted(ctx context.Context, orderID string) error
}
