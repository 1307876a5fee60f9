package middleware

import (
	"errors"
	"net/http"
	"strings"

	"printshop/internal/config"
	"printshop/internal/domain/model"
	"printshop/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string
	CtxUserRoleKey = "user_role" // model.Role
)

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Authentication required"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid authorization header"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid authorization header"))
			}

			//JWTをパースして検証する（exp も見る）
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token"))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token"))
			}

			//subはUSR_<uuid>
			userID, _ := claims["sub"].(string)
			if !model.HasIDPrefix(userID, model.UserIDPrefix) {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token"))
			}

			role := model.Role(stringClaim(claims, "role"))
			if role != model.RoleUser && role != model.RoleAdmin {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)

			return next(c)
		}
	}
}

// ハンドラーから操作ユーザーを取り出す
func ActorFrom(c echo.Context) usecase.Actor {
	id, _ := c.Get(CtxUserIDKey).(string)
	role, _ := c.Get(CtxUserRoleKey).(model.Role)
	return usecase.Actor{UserID: id, Role: role}
}

type errorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Status: "error", Message: msg, Data: nil}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
