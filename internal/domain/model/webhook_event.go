package model

import (
	"time"

	"gorm.io/datatypes"
)

// 受信した決済Webhookの記録（追記のみ）
type WebhookEvent struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Event          string         `gorm:"type:varchar(100);not null;index" json:"event"`
	GatewayEventID *string        `gorm:"column:gateway_event_id;type:varchar(100);index" json:"gateway_event_id,omitempty"`
	Payload        datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
