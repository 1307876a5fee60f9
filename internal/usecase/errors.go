package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	repo "printshop/internal/repository"
)

// エラーの種類（閉じた集合）。HTTPステータスはここから決まる。
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindGateway      ErrorKind = "gateway"
	KindDatabase     ErrorKind = "database"
	KindInternal     ErrorKind = "internal"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	//決済ゲートウェイ由来のとき
	Code    string
	Details map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFound/Conflict も 400 で返す（既存クライアントとの互換）
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindNotFound, KindConflict, KindDatabase:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// フィールドエラーからまとめたメッセージを作る
func ValidationFields(fields []FieldError) *AppError {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return Validation("Validation failed: "+strings.Join(msgs, ", "), fields...)
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func Database(message string, err error) *AppError {
	return &AppError{Kind: KindDatabase, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// ゲートウェイのエラーをそのまま包む
func GatewayFailure(err error) *AppError {
	ae := &AppError{Kind: KindGateway, Message: "Payment gateway error", Err: err}
	var ge *GatewayError
	if errors.As(err, &ge) {
		ae.Code = ge.Code
		ae.Details = ge.Details
		if ge.Message != "" {
			ae.Message = "Payment gateway error: " + ge.Message
		}
	}
	return ae
}

// repositoryのエラーをAppErrorに変換する
func fromRepoError(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NotFound(notFoundMessage)
	case errors.Is(err, repo.ErrDuplicate):
		return Conflict("A record with this value already exists")
	case errors.Is(err, repo.ErrForeignKey):
		return Database("Related record not found", err)
	case errors.Is(err, repo.ErrInvalidID):
		return Database("Invalid identifier", err)
	default:
		return Internal(err)
	}
}
