package repository

import (
	"context"

	"printshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

type StoreListFilter struct {
	Status model.StoreStatus
	Skip   int
	Take   int
	//trueなら古い順（承認待ちキュー用）
	OldestFirst bool
}

// プロフィール更新（nilは変更しない）
type StoreProfileUpdate struct {
	StoreName      *string
	ShopAddress    *string
	SupportPhone   *string
	BillingAddress *string
}

type KYCUpdate struct {
	Status        model.KYCStatus
	FailureReason *string
}

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	FindByID(ctx context.Context, storeID string) (model.Store, error)
	//注文一覧の表示用。削除済みの店舗も返す
	FindByIDs(ctx context.Context, storeIDs []string) ([]model.Store, error)
	//オーナーの有効な店舗（1人1店舗）
	FindActiveByOwner(ctx context.Context, ownerID string) (model.Store, error)
	List(ctx context.Context, f StoreListFilter) ([]model.Store, int64, error)

	UpdateStatus(ctx context.Context, storeID string, status model.StoreStatus) error
	SetGatewayAccount(ctx context.Context, storeID string, accountID string, kyc model.KYCStatus) error
	UpdateKYCByGatewayAccount(ctx context.Context, accountID string, u KYCUpdate) error
	UpdateProfile(ctx context.Context, storeID string, u StoreProfileUpdate) error
	UpdatePricing(ctx context.Context, storeID string, blackWhite, color *decimal.Decimal) error
}
