package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printshop/internal/config"
	"printshop/internal/domain/model"
	repo "printshop/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type UserDTO struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	MobileNumber    string     `json:"mobile_number"`
	Role            model.Role `json:"role"`
	ProfileImageURL *string    `json:"profile_image_url"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SignupInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	MobileNumber string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthTokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type LoginResult struct {
	User  UserDTO      `json:"user"`
	Token AuthTokenDTO `json:"token"`
}

type AuthUsecase struct {
	cfg   config.Config
	users repo.UserRepository
	now   func() time.Time
}

func NewAuthUsecase(cfg config.Config, users repo.UserRepository) *AuthUsecase {
	return &AuthUsecase{cfg: cfg, users: users, now: time.Now}
}

func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (UserDTO, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	var fields []FieldError
	if in.Email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "email is required"})
	}
	if len(in.Password) < minPasswordLen {
		fields = append(fields, FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)})
	}
	if in.FirstName == "" {
		fields = append(fields, FieldError{Field: "first_name", Message: "first_name is required"})
	}
	if in.LastName == "" {
		fields = append(fields, FieldError{Field: "last_name", Message: "last_name is required"})
	}
	if len(fields) > 0 {
		return UserDTO{}, ValidationFields(fields)
	}

	//email重複
	if _, err := u.users.FindByEmail(ctx, in.Email); err == nil {
		return UserDTO{}, Conflict("Email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, fromRepoError(err, "User not found")
	}

	//パスワードは必ずハッシュ化して保存
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, Internal(err)
	}

	user := model.User{
		ID:           model.NewID(model.UserIDPrefix),
		Email:        in.Email,
		PasswordHash: string(pwHash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		Role:         model.RoleUser,
	}
	if err := u.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return UserDTO{}, Conflict("Email already registered")
		}
		return UserDTO{}, fromRepoError(err, "User not found")
	}

	log.Info().Str("user_id", user.ID).Msg("user signed up")
	return toUserDTO(user, nil), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, Validation("Email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginResult{}, Unauthorized("Invalid email or password")
		}
		return LoginResult{}, fromRepoError(err, "User not found")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResult{}, Unauthorized("Invalid email or password")
	}

	token, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return LoginResult{}, Internal(err)
	}

	return LoginResult{
		User: toUserDTO(user, nil),
		Token: AuthTokenDTO{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, actor Actor) (UserDTO, error) {
	if actor.UserID == "" {
		return UserDTO{}, Unauthorized("Authentication required")
	}
	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserDTO{}, Unauthorized("User no longer exists")
		}
		return UserDTO{}, fromRepoError(err, "User not found")
	}
	return toUserDTO(user, nil), nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user model.User) (string, int, error) {
	now := u.now()
	ttl := u.cfg.JWTTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int(ttl.Seconds()), nil
}

func toUserDTO(user model.User, imageURL *string) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		MobileNumber:    user.MobileNumber,
		Role:            user.Role,
		ProfileImageURL: imageURL,
		CreatedAt:       user.CreatedAt,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
