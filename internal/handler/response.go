package handler

import (
	"errors"
	"net/http"

	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// 成功レスポンスの共通形
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 失敗レスポンスの共通形（detailは本番以外だけ）
type ErrorResponse struct {
	Status           string                 `json:"status"`
	Message          string                 `json:"message"`
	Data             interface{}            `json:"data"`
	ValidationErrors []usecase.FieldError   `json:"validationErrors,omitempty"`
	Code             string                 `json:"code,omitempty"`
	Details          map[string]interface{} `json:"details,omitempty"`
	Detail           string                 `json:"detail,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, SuccessResponse{Status: "success", Message: message, Data: data})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	ae, ok := usecase.AsAppError(err)
	if !ok {
		ae = usecase.Internal(err)
	}

	status := ae.Status()
	body := ErrorResponse{
		Status:           "error",
		Message:          ae.Message,
		ValidationErrors: ae.Fields,
		Code:             ae.Code,
		Details:          ae.Details,
	}
	if c.Echo().Debug && ae.Err != nil {
		body.Detail = ae.Err.Error()
	}

	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("kind", string(ae.Kind)).Str("path", c.Path()).Msg("request failed")

	return c.JSON(status, body)
}

// echoのHTTPErrorHandler（ルートなし・405・サイズ超過も同じ形にする）
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		body := ErrorResponse{Status: "error", Message: msg}
		if c.Echo().Debug && he.Internal != nil {
			body.Detail = he.Internal.Error()
		}
		if werr := c.JSON(he.Code, body); werr != nil {
			log.Error().Err(werr).Msg("failed to write error response")
		}
		return
	}

	if werr := writeError(c, err); werr != nil {
		log.Error().Err(werr).Msg("failed to write error response")
	}
}
