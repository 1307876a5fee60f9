package repository

import (
	"context"

	"printshop/internal/domain/model"
)

type WebhookEventRepository interface {
	Create(ctx context.Context, event *model.WebhookEvent) error
}
