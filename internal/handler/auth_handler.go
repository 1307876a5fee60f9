package handler

import (
	"net/http"

	"printshop/internal/config"
	"printshop/internal/middleware"
	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type SignupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,strongpassword"`
	FirstName    string `json:"first_name" validate:"required,min=2,max=50,personname"`
	LastName     string `json:"last_name" validate:"required,min=2,max=50,personname"`
	MobileNumber string `json:"mobile_number" validate:"required,inmobile"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	a := g.Group("/auth", echomw.BodyLimit(jsonBodyLimit))
	a.POST("/signup", h.signup)
	a.POST("/login", h.login)
	a.GET("/me", h.me, middleware.AuthJWT(cfg))
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	user, err := h.uc.Signup(c.Request().Context(), usecase.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.Validation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Login successful", out)
}

func (h *AuthHandler) me(c echo.Context) error {
	user, err := h.uc.Me(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "User retrieved successfully", user)
}
