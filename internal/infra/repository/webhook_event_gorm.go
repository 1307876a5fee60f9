package repository

import (
	"context"

	"printshop/internal/domain/model"

	"gorm.io/gorm"
)

type WebhookEventGormRepository struct {
	db *gorm.DB
}

func NewWebhookEventGormRepository(db *gorm.DB) *WebhookEventGormRepository {
	return &WebhookEventGormRepository{db: db}
}

func (r *WebhookEventGormRepository) Create(ctx context.Context, event *model.WebhookEvent) error {
	return translateError(r.db.WithContext(ctx).Create(event).Error)
}
