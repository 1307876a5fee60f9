package repository

import (
	"context"

	"printshop/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (model.User, error)
	//まとめて取得。見つからないIDは結果に含めない
	FindByIDs(ctx context.Context, userIDs []string) ([]model.User, error)
	// プロフィール更新
	Update(ctx context.Context, user *model.User) error
}
