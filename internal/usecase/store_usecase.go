package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type StoreUsecase struct {
	tx      repo.TransactionManager
	stores  repo.StoreRepository
	blobs   BlobStore
	gateway PaymentGateway
	now     func() time.Time
}

func NewStoreUsecase(
	tx repo.TransactionManager,
	stores repo.StoreRepository,
	blobs BlobStore,
	gateway PaymentGateway,
) *StoreUsecase {
	return &StoreUsecase{
		tx:      tx,
		stores:  stores,
		blobs:   blobs,
		gateway: gateway,
		now:     time.Now,
	}
}

type RegisterStoreInput struct {
	StoreName         string
	BusinessName      string
	BusinessType      model.BusinessType
	GSTNumber         string
	ShopAddress       string
	BillingAddress    string
	KYCAddress        string
	SupportPhone      string
	OwnerName         string
	PANNumber         string
	BankAccountNumber string
	IFSCCode          string
	ContactEmail      string
	ContactPhone      string

	ProfileImage *UploadedFile
	PANDocument  *UploadedFile
	AddressProof *UploadedFile
	BankProof    *UploadedFile
}

type UpdateStoreInput struct {
	StoreName      *string
	ShopAddress    *string
	SupportPhone   *string
	BillingAddress *string
}

type UpdatePricingInput struct {
	BlackWhitePrice *decimal.Decimal
	ColorPrice      *decimal.Decimal
}

type ListStoresInput struct {
	Status string
	Skip   int
	Take   int
}

type StoreListOutput struct {
	Items []model.Store `json:"items"`
	Total int64         `json:"total"`
	Skip  int           `json:"skip"`
	Take  int           `json:"take"`
}

// 公開一覧の1件。KYC・口座・連絡先は含めない
type PublicStore struct {
	ID              string              `json:"id"`
	StoreName       string              `json:"store_name"`
	BusinessName    string              `json:"business_name"`
	BusinessType    model.BusinessType  `json:"business_type"`
	ShopAddress     string              `json:"shop_address"`
	SupportPhone    *string             `json:"support_phone,omitempty"`
	BlackWhitePrice decimal.NullDecimal `json:"black_white_price"`
	ColorPrice      decimal.NullDecimal `json:"color_price"`
	Status          model.StoreStatus   `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
}

func ToPublicStore(s model.Store) PublicStore {
	return PublicStore{
		ID:              s.ID,
		StoreName:       s.StoreName,
		BusinessName:    s.BusinessName,
		BusinessType:    s.BusinessType,
		ShopAddress:     s.ShopAddress,
		SupportPhone:    s.SupportPhone,
		BlackWhitePrice: s.BlackWhitePrice,
		ColorPrice:      s.ColorPrice,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt,
	}
}

type PublicStoreListOutput struct {
	Items []PublicStore `json:"items"`
	Total int64         `json:"total"`
	Skip  int           `json:"skip"`
	Take  int           `json:"take"`
}

var errStoreExists = Conflict("User already has a registered store")

// 店舗登録: 行を先に作り、サブアカウント作成は失敗しても登録は成功扱い
func (u *StoreUsecase) Register(ctx context.Context, actor Actor, in RegisterStoreInput) (model.Store, error) {
	if actor.UserID == "" {
		return model.Store{}, Unauthorized("Authentication required")
	}
	if err := validateRegisterStore(&in); err != nil {
		return model.Store{}, err
	}

	//アップロード前に弾く
	if _, err := u.stores.FindActiveByOwner(ctx, actor.UserID); err == nil {
		return model.Store{}, errStoreExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, fromRepoError(err, "Store not found")
	}

	store := model.Store{
		ID:                model.NewID(model.StoreIDPrefix),
		OwnerID:           actor.UserID,
		StoreName:         in.StoreName,
		BusinessName:      in.BusinessName,
		BusinessType:      in.BusinessType,
		GSTNumber:         optional(in.GSTNumber),
		ShopAddress:       in.ShopAddress,
		BillingAddress:    in.BillingAddress,
		KYCAddress:        in.KYCAddress,
		SupportPhone:      optional(in.SupportPhone),
		OwnerName:         in.OwnerName,
		PANNumber:         in.PANNumber,
		BankAccountNumber: in.BankAccountNumber,
		IFSCCode:          in.IFSCCode,
		ContactEmail:      in.ContactEmail,
		ContactPhone:      in.ContactPhone,
		Status:            model.StoreStatusPendingApproval,
		KYCStatus:         model.KYCStatusPending,
	}

	uploaded, err := u.uploadDocuments(ctx, &store, in)
	if err != nil {
		u.removeBlobs(ctx, uploaded)
		return model.Store{}, err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Stores().FindActiveByOwner(ctx, actor.UserID); err == nil {
			return errStoreExists
		} else if !errors.Is(err, repo.ErrNotFound) {
			return fromRepoError(err, "Store not found")
		}
		if err := r.Stores().Create(ctx, &store); err != nil {
			return fromRepoError(err, "Owner not found")
		}
		return nil
	})
	if err != nil {
		u.removeBlobs(ctx, uploaded)
		return model.Store{}, err
	}

	log.Info().Str("store_id", store.ID).Str("owner_id", actor.UserID).Msg("store registered")

	u.provisionSubAccount(ctx, &store)
	return store, nil
}

// サブアカウント作成（失敗はログだけ）
func (u *StoreUsecase) provisionSubAccount(ctx context.Context, store *model.Store) {
	acct, err := u.gateway.CreateSubAccount(ctx, SubAccountRequest{
		ReferenceID:        store.ID,
		Name:               store.OwnerName,
		Email:              store.ContactEmail,
		Phone:              store.ContactPhone,
		LegalBusinessName:  store.BusinessName,
		BusinessType:       string(store.BusinessType),
		CustomerFacingName: store.StoreName,
		GSTNumber:          deref(store.GSTNumber),
		PANNumber:          store.PANNumber,
		KYCAddress:         store.KYCAddress,
		ShopAddress:        store.ShopAddress,
		BankAccountName:    store.OwnerName,
		IFSCCode:           store.IFSCCode,
		AccountNumber:      store.BankAccountNumber,
	})
	if err != nil {
		log.Warn().Err(err).Str("store_id", store.ID).Msg("sub-account creation failed, store kept with pending kyc")
		return
	}

	if err := u.stores.SetGatewayAccount(ctx, store.ID, acct.AccountID, acct.KYCStatus); err != nil {
		log.Error().Err(err).Str("store_id", store.ID).Str("account_id", acct.AccountID).Msg("failed to save sub-account id")
		return
	}
	id := acct.AccountID
	store.GatewayAccountID = &id
	store.KYCStatus = acct.KYCStatus
}

// 管理者承認（KYC状態は見ない）
func (u *StoreUsecase) Approve(ctx context.Context, actor Actor, storeID string) (model.Store, error) {
	if !actor.IsAdmin() {
		return model.Store{}, Forbidden("Admin access required")
	}

	var approved model.Store
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Stores().FindByID(ctx, storeID)
		if err != nil {
			return fromRepoError(err, "Store not found")
		}
		if err := r.Stores().UpdateStatus(ctx, s.ID, model.StoreStatusApproved); err != nil {
			return fromRepoError(err, "Store not found")
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionApproveStore,
			ResourceType: model.AuditResourceStore,
			ResourceID:   s.ID,
			Before:       statusJSON(string(s.Status)),
			After:        statusJSON(string(model.StoreStatusApproved)),
			CreatedAt:    u.now(),
		}); err != nil {
			return fromRepoError(err, "Store not found")
		}
		s.Status = model.StoreStatusApproved
		approved = s
		return nil
	})
	if err != nil {
		return model.Store{}, err
	}

	log.Info().Str("store_id", approved.ID).Str("admin_id", actor.UserID).Msg("store approved")
	return approved, nil
}

// 承認待ち（古い順）
func (u *StoreUsecase) ListPending(ctx context.Context, actor Actor, in ListStoresInput) (StoreListOutput, error) {
	if !actor.IsAdmin() {
		return StoreListOutput{}, Forbidden("Admin access required")
	}
	in.Status = string(model.StoreStatusPendingApproval)
	f, err := toStoreListFilter(in)
	if err != nil {
		return StoreListOutput{}, err
	}
	f.OldestFirst = true
	return u.list(ctx, f)
}

// 公開の店舗一覧。未認証でも見えるのでapproved以外は出さない
func (u *StoreUsecase) ListApproved(ctx context.Context, in ListStoresInput) (PublicStoreListOutput, error) {
	if in.Status != "" && in.Status != string(model.StoreStatusApproved) {
		return PublicStoreListOutput{}, Validation(
			"Validation failed: only approved stores are listed",
			FieldError{Field: "status", Message: "status must be approved"},
		)
	}
	in.Status = string(model.StoreStatusApproved)
	f, err := toStoreListFilter(in)
	if err != nil {
		return PublicStoreListOutput{}, err
	}
	out, err := u.list(ctx, f)
	if err != nil {
		return PublicStoreListOutput{}, err
	}

	items := make([]PublicStore, 0, len(out.Items))
	for _, s := range out.Items {
		items = append(items, ToPublicStore(s))
	}
	return PublicStoreListOutput{Items: items, Total: out.Total, Skip: out.Skip, Take: out.Take}, nil
}

func (u *StoreUsecase) GetMine(ctx context.Context, actor Actor) (model.Store, error) {
	s, err := u.stores.FindActiveByOwner(ctx, actor.UserID)
	if err != nil {
		return model.Store{}, fromRepoError(err, "Store not found")
	}
	return s, nil
}

func (u *StoreUsecase) UpdateProfile(ctx context.Context, actor Actor, storeID string, in UpdateStoreInput) (model.Store, error) {
	var fields []FieldError
	if in.StoreName != nil {
		*in.StoreName = strings.TrimSpace(*in.StoreName)
		if *in.StoreName == "" {
			fields = append(fields, FieldError{Field: "store_name", Message: "store_name must not be empty"})
		}
	}
	if in.ShopAddress != nil && strings.TrimSpace(*in.ShopAddress) == "" {
		fields = append(fields, FieldError{Field: "shop_address", Message: "shop_address must not be empty"})
	}
	if in.BillingAddress != nil && strings.TrimSpace(*in.BillingAddress) == "" {
		fields = append(fields, FieldError{Field: "billing_address", Message: "billing_address must not be empty"})
	}
	if len(fields) > 0 {
		return model.Store{}, ValidationFields(fields)
	}

	if _, err := u.editableStore(ctx, actor, storeID); err != nil {
		return model.Store{}, err
	}
	if err := u.stores.UpdateProfile(ctx, storeID, repo.StoreProfileUpdate{
		StoreName:      in.StoreName,
		ShopAddress:    in.ShopAddress,
		SupportPhone:   in.SupportPhone,
		BillingAddress: in.BillingAddress,
	}); err != nil {
		return model.Store{}, fromRepoError(err, "Store not found")
	}
	return u.reload(ctx, storeID)
}

// ページ単価の設定（0以上）
func (u *StoreUsecase) UpdatePricing(ctx context.Context, actor Actor, storeID string, in UpdatePricingInput) (model.Store, error) {
	var fields []FieldError
	if in.BlackWhitePrice == nil && in.ColorPrice == nil {
		fields = append(fields, FieldError{Field: "pricing", Message: "black_white_price or color_price is required"})
	}
	if in.BlackWhitePrice != nil && in.BlackWhitePrice.IsNegative() {
		fields = append(fields, FieldError{Field: "black_white_price", Message: "black_white_price must be greater than or equal to 0"})
	}
	if in.ColorPrice != nil && in.ColorPrice.IsNegative() {
		fields = append(fields, FieldError{Field: "color_price", Message: "color_price must be greater than or equal to 0"})
	}
	if len(fields) > 0 {
		return model.Store{}, ValidationFields(fields)
	}

	if _, err := u.editableStore(ctx, actor, storeID); err != nil {
		return model.Store{}, err
	}
	if err := u.stores.UpdatePricing(ctx, storeID, in.BlackWhitePrice, in.ColorPrice); err != nil {
		return model.Store{}, fromRepoError(err, "Store not found")
	}
	return u.reload(ctx, storeID)
}

func (u *StoreUsecase) editableStore(ctx context.Context, actor Actor, storeID string) (model.Store, error) {
	s, err := u.stores.FindByID(ctx, storeID)
	if err != nil {
		return model.Store{}, fromRepoError(err, "Store not found")
	}
	if !actor.IsAdmin() && s.OwnerID != actor.UserID {
		return model.Store{}, Forbidden("Only the store owner can update this store")
	}
	return s, nil
}

func (u *StoreUsecase) reload(ctx context.Context, storeID string) (model.Store, error) {
	s, err := u.stores.FindByID(ctx, storeID)
	if err != nil {
		return model.Store{}, fromRepoError(err, "Store not found")
	}
	return s, nil
}

func (u *StoreUsecase) list(ctx context.Context, f repo.StoreListFilter) (StoreListOutput, error) {
	stores, total, err := u.stores.List(ctx, f)
	if err != nil {
		return StoreListOutput{}, fromRepoError(err, "Stores not found")
	}
	if stores == nil {
		stores = []model.Store{}
	}
	return StoreListOutput{Items: stores, Total: total, Skip: f.Skip, Take: f.Take}, nil
}

// KYC書類をアップロードしてキーを店舗に入れる。アップロード済みのキーを返す
func (u *StoreUsecase) uploadDocuments(ctx context.Context, store *model.Store, in RegisterStoreInput) ([]string, error) {
	docs := []struct {
		file   *UploadedFile
		prefix string
		dst    **string
	}{
		{in.ProfileImage, "store-images", &store.ProfileImageKey},
		{in.PANDocument, "kyc-documents/pan", &store.PANDocumentKey},
		{in.AddressProof, "kyc-documents/address", &store.AddressProofKey},
		{in.BankProof, "kyc-documents/bank", &store.BankProofKey},
	}

	var uploaded []string
	for _, d := range docs {
		if d.file == nil || d.file.Body == nil {
			continue
		}
		key := fmt.Sprintf("%s/%s_%d_%s", d.prefix, store.ID, u.now().UnixNano(), sanitizeFileName(d.file.Name))
		if err := u.blobs.Put(ctx, key, d.file.Body, d.file.Size, d.file.ContentType); err != nil {
			return uploaded, Internal(fmt.Errorf("upload %s: %w", d.prefix, err))
		}
		k := key
		*d.dst = &k
		uploaded = append(uploaded, key)
	}
	return uploaded, nil
}

func (u *StoreUsecase) removeBlobs(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := u.blobs.Delete(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("failed to remove uploaded document")
		}
	}
}

func validateRegisterStore(in *RegisterStoreInput) error {
	var fields []FieldError

	required := []struct {
		field string
		value *string
	}{
		{"store_name", &in.StoreName},
		{"business_name", &in.BusinessName},
		{"shop_address", &in.ShopAddress},
		{"kyc_address", &in.KYCAddress},
		{"owner_name", &in.OwnerName},
		{"pan_number", &in.PANNumber},
		{"bank_account_number", &in.BankAccountNumber},
		{"ifsc_code", &in.IFSCCode},
		{"contact_email", &in.ContactEmail},
		{"contact_phone", &in.ContactPhone},
	}
	for _, r := range required {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			fields = append(fields, FieldError{Field: r.field, Message: r.field + " is required"})
		}
	}

	in.PANNumber = strings.ToUpper(in.PANNumber)
	in.IFSCCode = strings.ToUpper(in.IFSCCode)
	in.GSTNumber = strings.ToUpper(strings.TrimSpace(in.GSTNumber))
	in.BillingAddress = strings.TrimSpace(in.BillingAddress)
	if in.BillingAddress == "" {
		in.BillingAddress = in.ShopAddress
	}

	switch in.BusinessType {
	case "":
		in.BusinessType = model.BusinessTypeIndividual
	case model.BusinessTypeIndividual, model.BusinessTypePartnership, model.BusinessTypeCorporation,
		model.BusinessTypeLLC, model.BusinessTypeOther:
	default:
		fields = append(fields, FieldError{Field: "business_type", Message: "business_type must be one of individual, partnership, corporation, llc, other"})
	}

	if len(fields) > 0 {
		return ValidationFields(fields)
	}
	return nil
}

func toStoreListFilter(in ListStoresInput) (repo.StoreListFilter, error) {
	var fields []FieldError

	status := model.StoreStatus(in.Status)
	if !status.Valid() {
		fields = append(fields, FieldError{Field: "status", Message: "status must be one of pending_approval, approved"})
	}
	if in.Skip < 0 {
		fields = append(fields, FieldError{Field: "skip", Message: "skip must be greater than or equal to 0"})
	}
	if in.Take < 1 || in.Take > MaxTake {
		fields = append(fields, FieldError{Field: "take", Message: "take must be between 1 and 100"})
	}
	if len(fields) > 0 {
		return repo.StoreListFilter{}, ValidationFields(fields)
	}
	return repo.StoreListFilter{Status: status, Skip: in.Skip, Take: in.Take}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
