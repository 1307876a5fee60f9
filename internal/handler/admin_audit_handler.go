package handler

import (
	"net/http"
	"time"

	"printshop/internal/config"
	"printshop/internal/middleware"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuditHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditLogUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	// /admin 配下は「JWT必須 + admin限定」
	admin := g.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/audit-logs", h.list)
}

// from/to は RFC3339
func (h *AdminAuditHandler) list(c echo.Context) error {
	in := usecase.ListAuditLogsInput{
		ActorUserID:  c.QueryParam("actor_user_id"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Limit:        50,
	}

	var from, to time.Time
	err := echo.QueryParamsBinder(c).
		Int("limit", &in.Limit).
		Int("offset", &in.Offset).
		Time("from", &from, time.RFC3339).
		Time("to", &to, time.RFC3339).
		BindError()
	if err != nil {
		return writeError(c, usecase.Validation("Invalid query parameters"))
	}
	if !from.IsZero() {
		in.From = &from
	}
	if !to.IsZero() {
		in.To = &to
	}

	logs, err := h.uc.List(c.Request().Context(), middleware.ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Audit logs retrieved successfully", logs)
}
