// Package validator はリクエストの形式チェック。
//
// go-playground/validator のタグで検証し、失敗は usecase.ValidationFields にまとめる。
// echo.Validator を満たすので c.Validate(req) から呼べる。
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"printshop/internal/domain/model"
	"printshop/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

var (
	panPattern       = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern      = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	gstPattern       = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	mobilePattern    = regexp.MustCompile(`^[6-9]\d{9}$`)
	bankAcctPattern  = regexp.MustCompile(`^[0-9]{9,18}$`)
	personPattern    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	storeNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_&.]+$`)
	pageRangePattern = regexp.MustCompile(`^(all|\d+(?:-\d+)?(?:,\d+(?:-\d+)?)*)$`)
)

// タグ名 → 失敗時のメッセージ
var customMessages = map[string]string{
	"storeid":        "%s must be a valid store id (SHP_<uuid>)",
	"pagerange":      `%s must be "all" or a valid range (e.g. "1-5", "1,3,5", "1-3,5-7")`,
	"pan":            "%s must be a valid PAN number",
	"ifsc":           "%s must be a valid IFSC code",
	"gst":            "%s must be a valid GST number",
	"inmobile":       "%s must be a valid 10-digit mobile number",
	"bankacct":       "%s must be a valid bank account number (9-18 digits)",
	"personname":     "%s can only contain letters and spaces",
	"storename":      "%s can only contain letters, numbers, spaces, hyphens, underscores, dots and ampersands",
	"strongpassword": "%s must contain at least one uppercase letter, one lowercase letter, one number and one special character",
	"email":          "%s must be a valid email address",
}

type RequestValidator struct {
	v *playground.Validate
}

func New() *RequestValidator {
	v := playground.New()

	//エラーのフィールド名はjson/formのタグ名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "form", "query", "param"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	mustRegister(v, "storeid", func(s string) bool { return model.HasIDPrefix(s, model.StoreIDPrefix) })
	mustRegister(v, "pagerange", pageRangePattern.MatchString)
	mustRegister(v, "pan", panPattern.MatchString)
	mustRegister(v, "ifsc", ifscPattern.MatchString)
	mustRegister(v, "gst", gstPattern.MatchString)
	mustRegister(v, "inmobile", mobilePattern.MatchString)
	mustRegister(v, "bankacct", bankAcctPattern.MatchString)
	mustRegister(v, "personname", personPattern.MatchString)
	mustRegister(v, "storename", storeNamePattern.MatchString)
	mustRegister(v, "strongpassword", isStrongPassword)

	return &RequestValidator{v: v}
}

func mustRegister(v *playground.Validate, tag string, fn func(string) bool) {
	err := v.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("validator: register %s: %v", tag, err))
	}
}

// echo.Validator
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ves playground.ValidationErrors
	if !errors.As(err, &ves) {
		return usecase.Internal(err)
	}

	fields := make([]usecase.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, usecase.FieldError{Field: fieldName(fe), Message: message(fe)})
	}
	return usecase.ValidationFields(fields)
}

// ネストしたフィールドは transfers[0].amount のようにする
func fieldName(fe playground.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe playground.FieldError) string {
	name := fieldName(fe)
	if tmpl, ok := customMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, name)
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s cannot exceed %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

func isStrongPassword(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	return lower && upper && digit && special
}
