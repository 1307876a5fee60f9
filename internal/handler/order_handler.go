package handler

import (
	"net/http"
	"strings"

	"printshop/internal/config"
	"printshop/internal/domain/model"
	"printshop/internal/middleware"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// multipart（pdfファイル＋フィールド）
type OrderCreateRequest struct {
	StoreID       string `form:"storeId" validate:"required,storeid"`
	ColorMode     string `form:"colorMode" validate:"required,oneof=color black_white"`
	PageRange     string `form:"pageRange" validate:"omitempty,pagerange"`
	PaymentStatus string `form:"paymentStatus" validate:"omitempty,oneof=pending paid failed"`
	PaymentMethod string `form:"paymentMethod" validate:"omitempty,oneof=online offline"`
	Discount      string `form:"discount" validate:"omitempty,numeric"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	o := g.Group("/orders")
	o.Use(middleware.AuthJWT(cfg))

	o.POST("/create", h.create, echomw.BodyLimit(orderCreateBodyLimit))
	o.GET("/user", h.listMine)
	o.GET("/shop/:storeId", h.listShop)
	o.GET("/:id", h.detail)
	o.PATCH("/:id/status", h.updateStatus, echomw.BodyLimit(jsonBodyLimit))
	o.DELETE("/:id/pdf", h.deletePdf)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}

	var files uploads
	defer files.Close()
	pdf, err := files.open(c, "pdf", pdfUpload, true)
	if err != nil {
		return writeError(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	discount := decimal.Zero
	if strings.TrimSpace(req.Discount) != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(req.Discount))
		if err != nil {
			return writeError(c, usecase.Validation("Validation failed: discount must be a number",
				usecase.FieldError{Field: "discount", Message: "discount must be a number"}))
		}
		discount = d
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), middleware.ActorFrom(c), usecase.CreateOrderInput{
		StoreID:       req.StoreID,
		ColorMode:     model.ColorMode(req.ColorMode),
		PageRange:     req.PageRange,
		PaymentStatus: model.PaymentStatus(req.PaymentStatus),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Discount:      discount,
		File:          pdf,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "Order created successfully", out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	in, err := bindListOrders(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListUserOrders(c.Request().Context(), middleware.ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Orders retrieved successfully", out)
}

func (h *OrderHandler) listShop(c echo.Context) error {
	in, err := bindListOrders(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListShopOrders(c.Request().Context(), middleware.ActorFrom(c), c.Param("storeId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Orders retrieved successfully", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.uc.GetOrder(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Order retrieved successfully", out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Order status updated successfully", out)
}

func (h *OrderHandler) deletePdf(c echo.Context) error {
	if err := h.uc.DeletePdf(c.Request().Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "PDF deleted successfully", nil)
}

// status, skip, take（既定 skip=0 take=20）
func bindListOrders(c echo.Context) (usecase.ListOrdersInput, error) {
	in := usecase.ListOrdersInput{Take: usecase.DefaultTake}
	if err := bindPaging(c, &in.Skip, &in.Take); err != nil {
		return in, err
	}
	in.Status = c.QueryParam("status")
	return in, nil
}

func bindPaging(c echo.Context, skip, take *int) error {
	err := echo.QueryParamsBinder(c).
		Int("skip", skip).
		Int("take", take).
		BindError()
	if err != nil {
		return usecase.ValidationFields([]usecase.FieldError{
			{Field: "skip", Message: "skip and take must be integers"},
		})
	}
	return nil
}
