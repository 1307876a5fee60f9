package repository

import "errors"

// DB層のエラーはここに寄せる（usecaseはGORM/pgxを知らない）
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrForeignKey = errors.New("related record not found")
	ErrInvalidID  = errors.New("invalid identifier")
)
