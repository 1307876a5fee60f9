package repository

import (
	"context"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StoreGormRepository struct {
	db *gorm.DB
}

func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

func (r *StoreGormRepository) Create(ctx context.Context, store *model.Store) error {
	return translateError(r.db.WithContext(ctx).Create(store).Error)
}

func (r *StoreGormRepository) FindByID(ctx context.Context, storeID string) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", storeID, false).
		First(&s).Error
	if err != nil {
		return model.Store{}, translateError(err)
	}
	return s, nil
}

func (r *StoreGormRepository) FindByIDs(ctx context.Context, storeIDs []string) ([]model.Store, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var stores []model.Store
	if err := r.db.WithContext(ctx).Where("id IN ?", storeIDs).Find(&stores).Error; err != nil {
		return nil, translateError(err)
	}
	return stores, nil
}

func (r *StoreGormRepository) FindActiveByOwner(ctx context.Context, ownerID string) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, false).
		First(&s).Error
	if err != nil {
		return model.Store{}, translateError(err)
	}
	return s, nil
}

func (r *StoreGormRepository) List(ctx context.Context, f repo.StoreListFilter) ([]model.Store, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Store{}).Where("is_deleted = ?", false)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Store{}, 0, translateError(err)
	}

	order := "created_at desc"
	if f.OldestFirst {
		order = "created_at asc"
	}

	items := []model.Store{}
	if err := page(q.Order(order), f.Skip, f.Take).Find(&items).Error; err != nil {
		return []model.Store{}, 0, translateError(err)
	}
	return items, total, nil
}

func (r *StoreGormRepository) UpdateStatus(ctx context.Context, storeID string, status model.StoreStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", storeID).
		Update("status", status)
	return affected(res)
}

func (r *StoreGormRepository) SetGatewayAccount(ctx context.Context, storeID string, accountID string, kyc model.KYCStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]interface{}{
			"gateway_account_id": accountID,
			"kyc_status":         kyc,
		})
	return affected(res)
}

func (r *StoreGormRepository) UpdateKYCByGatewayAccount(ctx context.Context, accountID string, u repo.KYCUpdate) error {
	fields := map[string]interface{}{
		"kyc_status": u.Status,
	}
	if u.FailureReason != nil {
		fields["kyc_failure_reason"] = *u.FailureReason
	}

	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("gateway_account_id = ?", accountID).
		Updates(fields)
	return affected(res)
}

func (r *StoreGormRepository) UpdateProfile(ctx context.Context, storeID string, u repo.StoreProfileUpdate) error {
	fields := map[string]interface{}{}
	if u.StoreName != nil {
		fields["store_name"] = *u.StoreName
	}
	if u.ShopAddress != nil {
		fields["shop_address"] = *u.ShopAddress
	}
	if u.SupportPhone != nil {
		fields["support_phone"] = *u.SupportPhone
	}
	if u.BillingAddress != nil {
		fields["billing_address"] = *u.BillingAddress
	}
	if len(fields) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ? AND is_deleted = ?", storeID, false).
		Updates(fields)
	return affected(res)
}

func (r *StoreGormRepository) UpdatePricing(ctx context.Context, storeID string, blackWhite, color *decimal.Decimal) error {
	fields := map[string]interface{}{}
	if blackWhite != nil {
		fields["black_white_price"] = decimal.NewNullDecimal(*blackWhite)
	}
	if color != nil {
		fields["color_price"] = decimal.NewNullDecimal(*color)
	}
	if len(fields) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ? AND is_deleted = ?", storeID, false).
		Updates(fields)
	return affected(res)
}
