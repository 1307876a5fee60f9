package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"printshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 操作するユーザー（JWTから）
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// アップロードされたファイル
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// オブジェクトストレージ（S3）
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PDFのページ数
type PageCounter interface {
	CountPages(r io.ReadSeeker) (int, error)
}

// Webhookの配送IDで重複を弾く。Markは反映が終わってから呼ぶ
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// 決済ゲートウェイの注文
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// 店舗サブアカウントへの分配
type Transfer struct {
	Account  string          `json:"account"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type SubAccountRequest struct {
	ReferenceID        string
	Name               string
	Email              string
	Phone              string
	LegalBusinessName  string
	BusinessType       string
	CustomerFacingName string
	GSTNumber          string
	PANNumber          string
	KYCAddress         string
	ShopAddress        string
	BankAccountName    string
	IFSCCode           string
	AccountNumber      string
}

type SubAccount struct {
	AccountID string
	KYCStatus model.KYCStatus
}

type PaymentGateway interface {
	KeyID() string
	//amountは通貨単位（内部で最小単位に変換）
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, receipt string, notes map[string]string) (GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
	CreateTransfers(ctx context.Context, paymentID string, transfers []Transfer) (map[string]interface{}, error)
	CreateSubAccount(ctx context.Context, req SubAccountRequest) (SubAccount, error)

	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

// ゲートウェイ呼び出しの失敗
type GatewayError struct {
	Op      string
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %s: %s", e.Op, e.Code, e.Message)
}
