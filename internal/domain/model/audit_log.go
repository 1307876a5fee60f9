package model

import (
	"time"

	"gorm.io/datatypes"
)

// 店舗承認、注文ステータス更新など。
type AuditAction string

const (
	//店舗を承認した操作。
	AuditActionApproveStore AuditAction = "APPROVE_STORE"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//注文PDFを削除した操作。
	AuditActionDeleteOrderPDF AuditAction = "DELETE_ORDER_PDF"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceStore AuditResourceType = "store"
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ（管理者・店舗オーナー操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID string `gorm:"type:varchar(64);not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（store / order）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	Before datatypes.JSON `json:"before"`
	After  datatypes.JSON `json:"after"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
