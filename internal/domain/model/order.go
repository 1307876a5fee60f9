package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 印刷の進行状況
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// 支払い状況（印刷の進行とは別軸）
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodOnline  PaymentMethod = "online"
	PaymentMethodOffline PaymentMethod = "offline"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodOnline || m == PaymentMethodOffline
}

type ColorMode string

const (
	ColorModeColor      ColorMode = "color"
	ColorModeBlackWhite ColorMode = "black_white"
)

func (m ColorMode) Valid() bool {
	return m == ColorModeColor || m == ColorModeBlackWhite
}

// 印刷注文
// FinalPrice = max(0, Price - Discount)
type Order struct {
	ID        string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID    string  `gorm:"type:varchar(64);not null;index" json:"user_id"`
	StoreID   string  `gorm:"type:varchar(64);not null;index" json:"store_id"`
	PDFKey    *string `gorm:"column:pdf_key;type:varchar(512)" json:"-"`
	PageCount int     `gorm:"not null;default:0" json:"page_count"`

	ColorMode ColorMode   `gorm:"type:varchar(20);not null" json:"color_mode"`
	PageRange string      `gorm:"type:varchar(255);not null;default:'all'" json:"page_range"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index;default:'pending'" json:"status"`

	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Discount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	FinalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"final_price"`

	PaymentStatus        PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentMethod        PaymentMethod `gorm:"type:varchar(20);not null;default:'online'" json:"payment_method"`
	GatewayOrderID       *string       `gorm:"column:gateway_order_id;type:varchar(64);index" json:"razorpay_order_id,omitempty"`
	GatewayPaymentID     *string       `gorm:"column:gateway_payment_id;type:varchar(64)" json:"razorpay_payment_id,omitempty"`
	PaymentFailureReason *string       `gorm:"type:text" json:"payment_failure_reason,omitempty"`

	//論理削除（PDF削除と同時に立つ）
	IsDeleted bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
