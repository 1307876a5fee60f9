package repository

import (
	"context"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return translateError(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", orderID, false).
		First(&o).Error
	if err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUser(ctx context.Context, userID string, f repo.OrderListFilter) ([]model.Order, int64, error) {
	return r.list(ctx, "user_id = ?", userID, f)
}

func (r *OrderGormRepository) ListByStore(ctx context.Context, storeID string, f repo.OrderListFilter) ([]model.Order, int64, error) {
	return r.list(ctx, "store_id = ?", storeID, f)
}

func (r *OrderGormRepository) list(ctx context.Context, cond string, arg string, f repo.OrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where(cond, arg).
		Where("is_deleted = ?", false)

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, translateError(err)
	}

	items := []model.Order{}
	if err := page(q.Order("created_at desc"), f.Skip, f.Take).Find(&items).Error; err != nil {
		return []model.Order{}, 0, translateError(err)
	}
	return items, total, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	return affected(res)
}

func (r *OrderGormRepository) SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("gateway_order_id", gatewayOrderID)
	return affected(res)
}

// Webhookの再送でも同じ値を入れるだけなので冪等
func (r *OrderGormRepository) UpdatePaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string, u repo.PaymentUpdate) error {
	fields := map[string]interface{}{
		"payment_status": u.Status,
	}
	if u.GatewayPaymentID != nil {
		fields["gateway_payment_id"] = *u.GatewayPaymentID
	}
	if u.FailureReason != nil {
		fields["payment_failure_reason"] = *u.FailureReason
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("gateway_order_id = ?", gatewayOrderID)
	if u.Status != model.PaymentStatusFailed {
		return affected(q.Updates(fields))
	}

	//paid のあとに届いた古い試行の failed では戻さない
	res := q.Where("payment_status <> ?", model.PaymentStatusPaid).Updates(fields)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Count(&n).Error; err != nil {
		return translateError(err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) MarkPdfDeleted(ctx context.Context, orderID string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"pdf_key":    gorm.Expr("NULL"),
			"status":     model.OrderStatusCompleted,
			"is_deleted": true,
		})
	return affected(res)
}
