package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"printshop/internal/domain/model"
	"printshop/internal/pricing"
	repo "printshop/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DefaultTake = 20 // 一覧の既定件数
	MaxTake     = 100
)

var (
	maxDiscount     = decimal.NewFromInt(100)
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	stores    repo.StoreRepository
	users     repo.UserRepository
	blobs     BlobStore
	pages     PageCounter
	signedTTL time.Duration
	now       func() time.Time
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	stores repo.StoreRepository,
	users repo.UserRepository,
	blobs BlobStore,
	pages PageCounter,
	signedTTL time.Duration,
) *OrderUsecase {
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &OrderUsecase{
		tx:        tx,
		orders:    orders,
		stores:    stores,
		users:     users,
		blobs:     blobs,
		pages:     pages,
		signedTTL: signedTTL,
		now:       time.Now,
	}
}

type CreateOrderInput struct {
	StoreID       string
	ColorMode     model.ColorMode
	PageRange     string
	PaymentStatus model.PaymentStatus
	PaymentMethod model.PaymentMethod
	Discount      decimal.Decimal
	File          *UploadedFile
}

type ListOrdersInput struct {
	Status string
	Skip   int
	Take   int
}

type OrderOutput struct {
	model.Order
	PDFSignedURL *string `json:"pdf_signed_url"`
	//店舗側の一覧だけ
	Customer *OrderCustomer `json:"customer,omitempty"`
	//利用者側の一覧だけ
	Store *OrderStore `json:"store,omitempty"`
}

// 注文者の連絡先
type OrderCustomer struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
}

type OrderStore struct {
	ID              string  `json:"id"`
	StoreName       string  `json:"store_name"`
	ProfileImageURL *string `json:"profile_image_url"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Skip  int           `json:"skip"`
	Take  int           `json:"take"`
}

// 注文作成: 店舗確認 → ページ数 → 価格 → PDF保存 → 登録
func (u *OrderUsecase) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (OrderOutput, error) {
	if actor.UserID == "" {
		return OrderOutput{}, Unauthorized("Authentication required")
	}
	if err := validateCreateOrder(&in); err != nil {
		return OrderOutput{}, err
	}

	store, err := u.stores.FindByID(ctx, in.StoreID)
	if err != nil {
		return OrderOutput{}, fromRepoError(err, "Store not found")
	}

	//PDFの総ページ数
	total, err := u.pages.CountPages(in.File.Body)
	if err != nil {
		return OrderOutput{}, Validation("Unable to read PDF file", FieldError{Field: "pdf", Message: "pdf must be a readable PDF document"})
	}
	if _, err := in.File.Body.Seek(0, io.SeekStart); err != nil {
		return OrderOutput{}, Internal(fmt.Errorf("rewind pdf: %w", err))
	}

	selected := pricing.CountPages(in.PageRange, total)
	if selected == 0 {
		return OrderOutput{}, Validation(
			"Page range selects no pages",
			FieldError{Field: "page_range", Message: fmt.Sprintf("page_range must select at least one page of %d", total)},
		)
	}

	rate := pricing.RateFor(in.ColorMode, store.BlackWhitePrice, store.ColorPrice)
	quote := pricing.Compute(selected, rate, in.Discount)

	key := fmt.Sprintf("pdfs/%d_%s", u.now().UnixNano(), sanitizeFileName(in.File.Name))
	if err := u.blobs.Put(ctx, key, in.File.Body, in.File.Size, "application/pdf"); err != nil {
		return OrderOutput{}, Internal(fmt.Errorf("upload pdf: %w", err))
	}

	order := model.Order{
		ID:            model.NewID(model.OrderIDPrefix),
		UserID:        actor.UserID,
		StoreID:       store.ID,
		PDFKey:        &key,
		PageCount:     quote.Pages,
		ColorMode:     in.ColorMode,
		PageRange:     in.PageRange,
		Status:        model.OrderStatusPending,
		Price:         quote.Price,
		Discount:      quote.Discount,
		FinalPrice:    quote.FinalPrice,
		PaymentStatus: in.PaymentStatus,
		PaymentMethod: in.PaymentMethod,
	}
	if err := u.orders.Create(ctx, &order); err != nil {
		//登録できなければアップロード済みPDFを消す
		if derr := u.blobs.Delete(ctx, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("failed to remove orphaned pdf")
		}
		return OrderOutput{}, fromRepoError(err, "Store not found")
	}

	log.Info().Str("order_id", order.ID).Str("store_id", store.ID).Int("pages", quote.Pages).
		Str("final_price", quote.FinalPrice.String()).Msg("order created")

	return u.withSignedURL(ctx, order), nil
}

// 自分の注文一覧
func (u *OrderUsecase) ListUserOrders(ctx context.Context, actor Actor, in ListOrdersInput) (OrderListOutput, error) {
	if actor.UserID == "" {
		return OrderListOutput{}, Unauthorized("Authentication required")
	}
	f, err := toOrderListFilter(in)
	if err != nil {
		return OrderListOutput{}, err
	}

	orders, total, err := u.orders.ListByUser(ctx, actor.UserID, f)
	if err != nil {
		return OrderListOutput{}, fromRepoError(err, "Orders not found")
	}
	out := u.toListOutput(ctx, orders, total, f)
	u.attachStores(ctx, out.Items)
	return out, nil
}

// 店舗の注文一覧（オーナーか管理者）
func (u *OrderUsecase) ListShopOrders(ctx context.Context, actor Actor, storeID string, in ListOrdersInput) (OrderListOutput, error) {
	f, err := toOrderListFilter(in)
	if err != nil {
		return OrderListOutput{}, err
	}

	store, err := u.stores.FindByID(ctx, storeID)
	if err != nil {
		return OrderListOutput{}, fromRepoError(err, "Store not found")
	}
	if !actor.IsAdmin() && store.OwnerID != actor.UserID {
		return OrderListOutput{}, Forbidden("You do not have access to this store's orders")
	}

	orders, total, err := u.orders.ListByStore(ctx, store.ID, f)
	if err != nil {
		return OrderListOutput{}, fromRepoError(err, "Orders not found")
	}
	out := u.toListOutput(ctx, orders, total, f)
	u.attachCustomers(ctx, out.Items)
	return out, nil
}

// 注文詳細（注文者・店舗オーナー・管理者）
func (u *OrderUsecase) GetOrder(ctx context.Context, actor Actor, orderID string) (OrderOutput, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, fromRepoError(err, "Order not found")
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		if _, err := u.ownedStore(ctx, actor, order.StoreID); err != nil {
			return OrderOutput{}, err
		}
	}
	return u.withSignedURL(ctx, order), nil
}

// ステータス更新（遷移チェックなしの上書き）
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID string, status model.OrderStatus) (OrderOutput, error) {
	if !status.Valid() {
		return OrderOutput{}, Validation(
			"Invalid order status",
			FieldError{Field: "status", Message: "status must be one of pending, processing, completed, cancelled"},
		)
	}

	var updated model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return fromRepoError(err, "Order not found")
		}
		if !actor.IsAdmin() {
			store, err := r.Stores().FindByID(ctx, o.StoreID)
			if err != nil {
				return fromRepoError(err, "Store not found")
			}
			if store.OwnerID != actor.UserID {
				return Forbidden("Only the store owner can update this order")
			}
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, o.ID, status); err != nil {
			return fromRepoError(err, "Order not found")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			Before:       statusJSON(string(before)),
			After:        statusJSON(string(status)),
			CreatedAt:    u.now(),
		}); err != nil {
			return fromRepoError(err, "Order not found")
		}

		o.Status = status
		updated = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return OrderOutput{Order: updated}, nil
}

// PDF削除: ストレージ削除は失敗しても続行し、注文は完了＋論理削除にする
func (u *OrderUsecase) DeletePdf(ctx context.Context, actor Actor, orderID string) error {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return fromRepoError(err, "Order not found")
	}
	if !actor.IsAdmin() {
		if _, err := u.ownedStore(ctx, actor, order.StoreID); err != nil {
			return err
		}
	}

	if order.PDFKey != nil {
		if err := u.blobs.Delete(ctx, *order.PDFKey); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID).Str("key", *order.PDFKey).Msg("pdf delete failed, continuing")
		}
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().MarkPdfDeleted(ctx, order.ID); err != nil {
			return fromRepoError(err, "Order not found")
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionDeleteOrderPDF,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			Before:       statusJSON(string(order.Status)),
			After:        statusJSON(string(model.OrderStatusCompleted)),
			CreatedAt:    u.now(),
		}); err != nil {
			return fromRepoError(err, "Order not found")
		}
		return nil
	})
}

func (u *OrderUsecase) ownedStore(ctx context.Context, actor Actor, storeID string) (model.Store, error) {
	store, err := u.stores.FindByID(ctx, storeID)
	if err != nil {
		return model.Store{}, fromRepoError(err, "Store not found")
	}
	if store.OwnerID != actor.UserID {
		return model.Store{}, Forbidden("You do not have access to this order")
	}
	return store, nil
}

// 署名付きURLを付ける。失敗してもnilのまま返す
func (u *OrderUsecase) withSignedURL(ctx context.Context, o model.Order) OrderOutput {
	out := OrderOutput{Order: o}
	if o.PDFKey == nil {
		return out
	}
	url, err := u.blobs.SignedURL(ctx, *o.PDFKey, u.signedTTL)
	if err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("signed url failed")
		return out
	}
	out.PDFSignedURL = &url
	return out
}

func (u *OrderUsecase) toListOutput(ctx context.Context, orders []model.Order, total int64, f repo.OrderListFilter) OrderListOutput {
	items := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items = append(items, u.withSignedURL(ctx, o))
	}
	return OrderListOutput{Items: items, Total: total, Skip: f.Skip, Take: f.Take}
}

// 一覧に注文者の概要を付ける。取得に失敗したら付けずに返す
func (u *OrderUsecase) attachCustomers(ctx context.Context, items []OrderOutput) {
	if len(items) == 0 {
		return
	}
	ids := uniqueIDs(items, func(o OrderOutput) string { return o.UserID })
	users, err := u.users.FindByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("users", len(ids)).Msg("order customer lookup failed")
		return
	}
	byID := make(map[string]*OrderCustomer, len(users))
	for _, usr := range users {
		byID[usr.ID] = &OrderCustomer{
			ID:           usr.ID,
			FirstName:    usr.FirstName,
			LastName:     usr.LastName,
			Email:        usr.Email,
			MobileNumber: usr.MobileNumber,
		}
	}
	for i := range items {
		items[i].Customer = byID[items[i].UserID]
	}
}

// 一覧に店舗の概要を付ける。画像は署名付きURL
func (u *OrderUsecase) attachStores(ctx context.Context, items []OrderOutput) {
	if len(items) == 0 {
		return
	}
	ids := uniqueIDs(items, func(o OrderOutput) string { return o.StoreID })
	stores, err := u.stores.FindByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("stores", len(ids)).Msg("order store lookup failed")
		return
	}
	byID := make(map[string]*OrderStore, len(stores))
	for _, st := range stores {
		summary := &OrderStore{ID: st.ID, StoreName: st.StoreName}
		if st.ProfileImageKey != nil {
			if url, err := u.blobs.SignedURL(ctx, *st.ProfileImageKey, u.signedTTL); err == nil {
				summary.ProfileImageURL = &url
			} else {
				log.Warn().Err(err).Str("store_id", st.ID).Msg("store image signed url failed")
			}
		}
		byID[st.ID] = summary
	}
	for i := range items {
		items[i].Store = byID[items[i].StoreID]
	}
}

func uniqueIDs(items []OrderOutput, key func(OrderOutput) string) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		id := key(it)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func validateCreateOrder(in *CreateOrderInput) error {
	var fields []FieldError

	if in.File == nil || in.File.Body == nil {
		fields = append(fields, FieldError{Field: "pdf", Message: "pdf file is required"})
	}
	if !model.HasIDPrefix(in.StoreID, model.StoreIDPrefix) {
		fields = append(fields, FieldError{Field: "store_id", Message: "store_id must be a valid store id"})
	}
	if !in.ColorMode.Valid() {
		fields = append(fields, FieldError{Field: "color_mode", Message: "color_mode must be one of color, black_white"})
	}
	in.PageRange = strings.TrimSpace(in.PageRange)
	if in.PageRange == "" {
		in.PageRange = pricing.AllPages
	}

	//既定値
	if in.PaymentStatus == "" {
		in.PaymentStatus = model.PaymentStatusPending
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentMethodOnline
	}
	if !in.PaymentStatus.Valid() {
		fields = append(fields, FieldError{Field: "payment_status", Message: "payment_status must be one of pending, paid, failed"})
	}
	if !in.PaymentMethod.Valid() {
		fields = append(fields, FieldError{Field: "payment_method", Message: "payment_method must be one of online, offline"})
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(maxDiscount) {
		fields = append(fields, FieldError{Field: "discount", Message: "discount must be between 0 and 100"})
	}

	if len(fields) > 0 {
		return ValidationFields(fields)
	}
	return nil
}

func toOrderListFilter(in ListOrdersInput) (repo.OrderListFilter, error) {
	var fields []FieldError

	status := model.OrderStatus(in.Status)
	if in.Status != "" && !status.Valid() {
		fields = append(fields, FieldError{Field: "status", Message: "status must be one of pending, processing, completed, cancelled"})
	}
	if in.Skip < 0 {
		fields = append(fields, FieldError{Field: "skip", Message: "skip must be greater than or equal to 0"})
	}
	if in.Take < 1 || in.Take > MaxTake {
		fields = append(fields, FieldError{Field: "take", Message: "take must be between 1 and 100"})
	}
	if len(fields) > 0 {
		return repo.OrderListFilter{}, ValidationFields(fields)
	}
	return repo.OrderListFilter{Status: status, Skip: in.Skip, Take: in.Take}, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		return "document.pdf"
	}
	return name
}

func statusJSON(status string) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{"status": status})
	return datatypes.JSON(b)
}
