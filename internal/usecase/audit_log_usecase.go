package usecase

import (
	"context"
	"time"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"
)

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// クエリ文字列そのまま（空は条件なし）
type ListAuditLogsInput struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, actor Actor, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("Admin access required")
	}

	f := repo.AuditLogFilter{
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.ActorUserID != "" {
		f.ActorUserID = &in.ActorUserID
	}
	if in.ResourceID != "" {
		f.ResourceID = &in.ResourceID
	}

	var fields []FieldError
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		switch a {
		case model.AuditActionApproveStore, model.AuditActionUpdateOrderStatus, model.AuditActionDeleteOrderPDF:
			f.Action = &a
		default:
			fields = append(fields, FieldError{Field: "action", Message: "action is not a known audit action"})
		}
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		switch rt {
		case model.AuditResourceStore, model.AuditResourceOrder:
			f.ResourceType = &rt
		default:
			fields = append(fields, FieldError{Field: "resource_type", Message: "resource_type must be one of store, order"})
		}
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		fields = append(fields, FieldError{Field: "from", Message: "from must be before to"})
	}
	if len(fields) > 0 {
		return nil, ValidationFields(fields)
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, fromRepoError(err, "Audit logs not found")
	}
	return logs, nil
}
