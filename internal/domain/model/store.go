package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 店舗の承認状態（管理者が決める）
type StoreStatus string

const (
	StoreStatusPendingApproval StoreStatus = "pending_approval"
	StoreStatusApproved        StoreStatus = "approved"
)

func (s StoreStatus) Valid() bool {
	return s == StoreStatusPendingApproval || s == StoreStatusApproved
}

// KYC状態（決済側が決める）。StoreStatusとは独立。
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

type BusinessType string

const (
	BusinessTypeIndividual  BusinessType = "individual"
	BusinessTypePartnership BusinessType = "partnership"
	BusinessTypeCorporation BusinessType = "corporation"
	BusinessTypeLLC         BusinessType = "llc"
	BusinessTypeOther       BusinessType = "other"
)

type Store struct {
	ID              string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OwnerID         string       `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	StoreName       string       `gorm:"type:varchar(100);not null" json:"store_name"`
	ProfileImageKey *string      `gorm:"type:varchar(512)" json:"-"`
	BusinessName    string       `gorm:"type:varchar(255);not null" json:"business_name"`
	BusinessType    BusinessType `gorm:"type:varchar(20);not null" json:"business_type"`
	GSTNumber       *string      `gorm:"column:gst_number;type:varchar(15)" json:"gst_number,omitempty"`

	ShopAddress    string  `gorm:"type:text;not null" json:"shop_address"`
	BillingAddress string  `gorm:"type:text;not null" json:"billing_address"`
	KYCAddress     string  `gorm:"column:kyc_address;type:text;not null" json:"kyc_address"`
	SupportPhone   *string `gorm:"type:varchar(20)" json:"support_phone,omitempty"`

	//KYC情報
	OwnerName         string `gorm:"type:varchar(100);not null" json:"owner_name"`
	PANNumber         string `gorm:"column:pan_number;type:varchar(10);not null" json:"pan_number"`
	BankAccountNumber string `gorm:"type:varchar(18);not null" json:"bank_account_number"`
	IFSCCode          string `gorm:"column:ifsc_code;type:varchar(11);not null" json:"ifsc_code"`
	ContactEmail      string `gorm:"type:varchar(255);not null" json:"contact_email"`
	ContactPhone      string `gorm:"type:varchar(20);not null" json:"contact_phone"`

	//KYC書類（ストレージのキー）
	PANDocumentKey  *string `gorm:"column:pan_document_key;type:varchar(512)" json:"-"`
	AddressProofKey *string `gorm:"type:varchar(512)" json:"-"`
	BankProofKey    *string `gorm:"type:varchar(512)" json:"-"`

	//ページ単価（未設定は0扱い）
	BlackWhitePrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"black_white_price"`
	ColorPrice      decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"color_price"`

	Status           StoreStatus `gorm:"type:varchar(30);not null;index;default:'pending_approval'" json:"status"`
	KYCStatus        KYCStatus   `gorm:"column:kyc_status;type:varchar(20);not null;default:'pending'" json:"kyc_status"`
	KYCFailureReason *string     `gorm:"column:kyc_failure_reason;type:text" json:"kyc_failure_reason,omitempty"`
	GatewayAccountID *string     `gorm:"column:gateway_account_id;type:varchar(64);index" json:"razorpay_account_id,omitempty"`

	IsDeleted bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
