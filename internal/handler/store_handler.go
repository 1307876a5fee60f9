package handler

import (
	"net/http"

	"printshop/internal/config"
	"printshop/internal/domain/model"
	"printshop/internal/middleware"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
)

type StoreHandler struct {
	uc *usecase.StoreUsecase
}

func NewStoreHandler(uc *usecase.StoreUsecase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

// multipart（KYC書類つき）
type StoreRegisterRequest struct {
	StoreName         string `form:"storeName" validate:"required,min=3,max=100,storename"`
	BusinessName      string `form:"businessName" validate:"omitempty,min=3,max=100,storename"`
	BusinessType      string `form:"businessType" validate:"required,oneof=individual partnership corporation llc other"`
	GSTNumber         string `form:"gstNumber" validate:"omitempty,gst"`
	ShopAddress       string `form:"shopAddress" validate:"required,min=10,max=500"`
	BillingAddress    string `form:"billingAddress" validate:"required,min=10,max=500"`
	KYCAddress        string `form:"kycAddress" validate:"required,min=10,max=500"`
	SupportPhone      string `form:"supportPhone" validate:"omitempty,inmobile"`
	OwnerName         string `form:"ownerName" validate:"required,min=2,max=100,personname"`
	PAN               string `form:"pan" validate:"required,pan"`
	BankAccountNumber string `form:"bankAccountNumber" validate:"required,bankacct"`
	IFSC              string `form:"ifsc" validate:"required,ifsc"`
	ContactEmail      string `form:"contactEmail" validate:"required,email"`
	ContactPhone      string `form:"contactPhone" validate:"required,inmobile"`
}

type StoreUpdateRequest struct {
	StoreName      *string `json:"store_name" validate:"omitempty,min=3,max=100,storename"`
	ShopAddress    *string `json:"shop_address" validate:"omitempty,min=10,max=500"`
	SupportPhone   *string `json:"support_phone" validate:"omitempty,inmobile"`
	BillingAddress *string `json:"billing_address" validate:"omitempty,min=10,max=500"`
}

type StorePricingRequest struct {
	BlackWhitePrice *decimal.Decimal `json:"black_white_price"`
	ColorPrice      *decimal.Decimal `json:"color_price"`
}

func (h *StoreHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	s := g.Group("/stores")

	//公開
	s.GET("/all-approved", h.listApproved)

	auth := middleware.AuthJWT(cfg)
	admin := middleware.AdminRoleGuard()
	jsonBody := echomw.BodyLimit(jsonBodyLimit)

	//画像1枚 + KYC書類3枚
	s.POST("/register", h.register, echomw.BodyLimit(storeRegisterBodyLimit), auth)
	s.GET("/me", h.mine, auth)
	s.PATCH("/:id", h.updateProfile, jsonBody, auth)
	s.PATCH("/:id/pricing", h.updatePricing, jsonBody, auth)

	s.GET("/pending", h.listPending, auth, admin)
	s.POST("/:id/approve", h.approve, jsonBody, auth, admin)
}

func (h *StoreHandler) register(c echo.Context) error {
	var req StoreRegisterRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	var files uploads
	defer files.Close()
	in := usecase.RegisterStoreInput{
		StoreName:         req.StoreName,
		BusinessName:      req.BusinessName,
		BusinessType:      model.BusinessType(req.BusinessType),
		GSTNumber:         req.GSTNumber,
		ShopAddress:       req.ShopAddress,
		BillingAddress:    req.BillingAddress,
		KYCAddress:        req.KYCAddress,
		SupportPhone:      req.SupportPhone,
		OwnerName:         req.OwnerName,
		PANNumber:         req.PAN,
		BankAccountNumber: req.BankAccountNumber,
		IFSCCode:          req.IFSC,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
	}
	if in.BusinessName == "" {
		in.BusinessName = req.StoreName
	}

	var err error
	if in.ProfileImage, err = files.open(c, "profileImage", imageUpload, false); err != nil {
		return writeError(c, err)
	}
	if in.PANDocument, err = files.open(c, "panDocument", kycUpload, false); err != nil {
		return writeError(c, err)
	}
	if in.AddressProof, err = files.open(c, "addressProof", kycUpload, false); err != nil {
		return writeError(c, err)
	}
	if in.BankProof, err = files.open(c, "bankProof", kycUpload, false); err != nil {
		return writeError(c, err)
	}

	store, err := h.uc.Register(c.Request().Context(), middleware.ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "Store registered successfully", store)
}

func (h *StoreHandler) approve(c echo.Context) error {
	store, err := h.uc.Approve(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Store approved successfully", store)
}

func (h *StoreHandler) listPending(c echo.Context) error {
	in := usecase.ListStoresInput{Take: usecase.DefaultTake}
	if err := bindPaging(c, &in.Skip, &in.Take); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListPending(c.Request().Context(), middleware.ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Pending stores retrieved successfully", out)
}

func (h *StoreHandler) listApproved(c echo.Context) error {
	in := usecase.ListStoresInput{Take: usecase.DefaultTake, Status: c.QueryParam("status")}
	if err := bindPaging(c, &in.Skip, &in.Take); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListApproved(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Stores retrieved successfully", out)
}

func (h *StoreHandler) mine(c echo.Context) error {
	store, err := h.uc.GetMine(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Store retrieved successfully", store)
}

func (h *StoreHandler) updateProfile(c echo.Context) error {
	var req StoreUpdateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	store, err := h.uc.UpdateProfile(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), usecase.UpdateStoreInput{
		StoreName:      req.StoreName,
		ShopAddress:    req.ShopAddress,
		SupportPhone:   req.SupportPhone,
		BillingAddress: req.BillingAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Store updated successfully", store)
}

func (h *StoreHandler) updatePricing(c echo.Context) error {
	var req StorePricingRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}

	store, err := h.uc.UpdatePricing(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), usecase.UpdatePricingInput{
		BlackWhitePrice: req.BlackWhitePrice,
		ColorPrice:      req.ColorPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Store pricing updated successfully", store)
}
