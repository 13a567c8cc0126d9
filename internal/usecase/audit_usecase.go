package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// AuditUsecase は監査ログの読み取り（管理画面用）。
type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

// DI
func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

type ListAuditLogsInput struct {
	ActorStaffID *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

func (u *AuditUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid paging")
	}
	if in.ActorStaffID != nil && *in.ActorStaffID <= 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid actor_staff_id")
	}
	if in.ResourceID != nil && *in.ResourceID <= 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid resource_id")
	}

	f := repo.AuditLogFilter{
		ActorStaffID: in.ActorStaffID,
		ResourceID:   in.ResourceID,
		CreatedFrom:  in.CreatedFrom,
		CreatedTo:    in.CreatedTo,
		Limit:        in.Limit,
		Offset:       in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		f.ResourceType = &rt
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
