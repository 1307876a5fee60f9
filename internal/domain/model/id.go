package model

import (
	"strings"

	"github.com/google/uuid"
)

// IDの接頭辞
const (
	UserIDPrefix  = "USR_"
	StoreIDPrefix = "SHP_"
	OrderIDPrefix = "ORD_"
)

// 接頭辞付きのIDを作る（例: ORD_xxxxxxxx-...）
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// 接頭辞とUUID部分が正しいか
func HasIDPrefix(id string, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(id, prefix))
	return err == nil
}
