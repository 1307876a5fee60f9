package handler

import (
	"net/http"

	"printshop/internal/config"
	"printshop/internal/middleware"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

type UpdateProfileRequest struct {
	Email        *string `json:"email" validate:"omitempty,email"`
	FirstName    *string `json:"first_name" validate:"omitempty,min=2,max=50,personname"`
	LastName     *string `json:"last_name" validate:"omitempty,min=2,max=50,personname"`
	MobileNumber *string `json:"mobile_number" validate:"omitempty,inmobile"`
}

func (h *UserHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	u := g.Group("/users/me", middleware.AuthJWT(cfg))
	u.GET("", h.profile)
	u.PATCH("", h.updateProfile, echomw.BodyLimit(jsonBodyLimit))
	u.POST("/profile-image", h.uploadImage, echomw.BodyLimit(profileImageBodyLimit))
}

func (h *UserHandler) profile(c echo.Context) error {
	out, err := h.uc.GetProfile(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Profile retrieved successfully", out)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), middleware.ActorFrom(c), usecase.UpdateProfileInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Profile updated successfully", out)
}

func (h *UserHandler) uploadImage(c echo.Context) error {
	var files uploads
	defer files.Close()

	img, err := files.open(c, "profileImage", imageUpload, true)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateProfileImage(c.Request().Context(), middleware.ActorFrom(c), img)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Profile image updated successfully", out)
}
