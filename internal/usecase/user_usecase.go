package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"

	"github.com/rs/zerolog/log"
)

type UserUsecase struct {
	users     repo.UserRepository
	blobs     BlobStore
	signedTTL time.Duration
	now       func() time.Time
}

func NewUserUsecase(users repo.UserRepository, blobs BlobStore, signedTTL time.Duration) *UserUsecase {
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &UserUsecase{users: users, blobs: blobs, signedTTL: signedTTL, now: time.Now}
}

// nilは変更しない
type UpdateProfileInput struct {
	Email        *string
	FirstName    *string
	LastName     *string
	MobileNumber *string
}

func (u *UserUsecase) GetProfile(ctx context.Context, actor Actor) (UserDTO, error) {
	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return UserDTO{}, fromRepoError(err, "User not found")
	}
	return toUserDTO(user, u.imageURL(ctx, user)), nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, actor Actor, in UpdateProfileInput) (UserDTO, error) {
	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return UserDTO{}, fromRepoError(err, "User not found")
	}

	var fields []FieldError
	if in.FirstName != nil {
		if v := strings.TrimSpace(*in.FirstName); v != "" {
			user.FirstName = v
		} else {
			fields = append(fields, FieldError{Field: "first_name", Message: "first_name must not be empty"})
		}
	}
	if in.LastName != nil {
		if v := strings.TrimSpace(*in.LastName); v != "" {
			user.LastName = v
		} else {
			fields = append(fields, FieldError{Field: "last_name", Message: "last_name must not be empty"})
		}
	}
	if in.MobileNumber != nil {
		user.MobileNumber = strings.TrimSpace(*in.MobileNumber)
	}
	if len(fields) > 0 {
		return UserDTO{}, ValidationFields(fields)
	}

	//メール変更は重複チェック
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return UserDTO{}, Validation("Validation failed: email must not be empty", FieldError{Field: "email", Message: "email must not be empty"})
		}
		if email != user.Email {
			other, err := u.users.FindByEmail(ctx, email)
			if err == nil && other.ID != user.ID {
				return UserDTO{}, Conflict("Email already registered")
			}
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return UserDTO{}, fromRepoError(err, "User not found")
			}
			user.Email = email
		}
	}

	if err := u.users.Update(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return UserDTO{}, Conflict("Email already registered")
		}
		return UserDTO{}, fromRepoError(err, "User not found")
	}
	return toUserDTO(user, u.imageURL(ctx, user)), nil
}

// プロフィール画像の差し替え。古い画像は消す（失敗はログだけ）
func (u *UserUsecase) UpdateProfileImage(ctx context.Context, actor Actor, file *UploadedFile) (UserDTO, error) {
	if file == nil || file.Body == nil {
		return UserDTO{}, Validation("Validation failed: profileImage is required", FieldError{Field: "profileImage", Message: "profileImage is required"})
	}

	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return UserDTO{}, fromRepoError(err, "User not found")
	}

	key := fmt.Sprintf("profile-images/%s_%d_%s", user.ID, u.now().UnixNano(), sanitizeFileName(file.Name))
	if err := u.blobs.Put(ctx, key, file.Body, file.Size, file.ContentType); err != nil {
		return UserDTO{}, Internal(fmt.Errorf("upload profile image: %w", err))
	}

	old := user.ProfileImageKey
	user.ProfileImageKey = &key
	if err := u.users.Update(ctx, &user); err != nil {
		if derr := u.blobs.Delete(ctx, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("failed to remove orphaned profile image")
		}
		return UserDTO{}, fromRepoError(err, "User not found")
	}

	if old != nil && *old != key {
		if err := u.blobs.Delete(ctx, *old); err != nil {
			log.Warn().Err(err).Str("key", *old).Msg("failed to remove previous profile image")
		}
	}
	return toUserDTO(user, u.imageURL(ctx, user)), nil
}

func (u *UserUsecase) imageURL(ctx context.Context, user model.User) *string {
	if user.ProfileImageKey == nil {
		return nil
	}
	url, err := u.blobs.SignedURL(ctx, *user.ProfileImageKey, u.signedTTL)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("signed url failed")
		return nil
	}
	return &url
}
