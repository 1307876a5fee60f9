package handler

import (
	"io"
	"net/http"

	"printshop/internal/config"
	"printshop/internal/middleware"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
)

const (
	headerWebhookSignature = "X-Razorpay-Signature"
	headerWebhookEventID   = "X-Razorpay-Event-Id"
	maxWebhookBody         = 1 * mb
)

type PaymentHandler struct {
	payments *usecase.PaymentUsecase
	webhooks *usecase.WebhookUsecase
}

func NewPaymentHandler(payments *usecase.PaymentUsecase, webhooks *usecase.WebhookUsecase) *PaymentHandler {
	return &PaymentHandler{payments: payments, webhooks: webhooks}
}

type CreatePaymentOrderRequest struct {
	OrderID  string `json:"order_id" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature        string `json:"razorpay_signature" validate:"required"`
}

type TransferItemRequest struct {
	Account  string          `json:"account" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"omitempty,len=3"`
}

type TransferRequest struct {
	PaymentID string                `json:"payment_id" validate:"required"`
	Transfers []TransferItemRequest `json:"transfers" validate:"required,min=1,dive"`
}

func (h *PaymentHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	p := g.Group("/payments", echomw.BodyLimit(jsonBodyLimit))

	//署名で認証する
	p.POST("/webhook", h.webhook)

	auth := middleware.AuthJWT(cfg)
	admin := middleware.AdminRoleGuard()

	p.POST("/orders", h.createOrder, auth)
	p.POST("/verify-payment", h.verify, auth)
	p.POST("/transfers", h.transfers, auth, admin)
	p.GET("/:paymentId", h.fetch, auth, admin)
}

func (h *PaymentHandler) createOrder(c echo.Context) error {
	var req CreatePaymentOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.payments.CreateGatewayOrder(c.Request().Context(), middleware.ActorFrom(c), usecase.CreatePaymentOrderInput{
		OrderID:  req.OrderID,
		Currency: req.Currency,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "Payment order created successfully", out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.payments.VerifyPayment(c.Request().Context(), usecase.VerifyPaymentInput{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Payment verified successfully", out)
}

func (h *PaymentHandler) transfers(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	in := usecase.TransferInput{PaymentID: req.PaymentID}
	for _, t := range req.Transfers {
		in.Transfers = append(in.Transfers, usecase.Transfer{Account: t.Account, Amount: t.Amount, Currency: t.Currency})
	}

	out, err := h.payments.CreateTransfers(c.Request().Context(), middleware.ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Transfers created successfully", out)
}

func (h *PaymentHandler) fetch(c echo.Context) error {
	out, err := h.payments.GetPayment(c.Request().Context(), middleware.ActorFrom(c), c.Param("paymentId"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Payment retrieved successfully", out)
}

// 生のボディで署名を検証する（Bindしない）
func (h *PaymentHandler) webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return writeError(c, usecase.Validation("Unable to read webhook body"))
	}
	if len(body) > maxWebhookBody {
		return writeError(c, usecase.Validation("Webhook body too large"))
	}

	out, err := h.webhooks.Handle(c.Request().Context(), usecase.WebhookInput{
		Body:      body,
		Signature: c.Request().Header.Get(headerWebhookSignature),
		EventID:   c.Request().Header.Get(headerWebhookEventID),
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Webhook processed", out)
}
