package repository

import (
	"errors"
	"fmt"

	repo "printshop/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GORM / Postgres のエラーを repository のエラーに寄せる
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repo.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", repo.ErrForeignKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", repo.ErrDuplicate, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", repo.ErrForeignKey, pgErr.ConstraintName)
		case pgerrcode.InvalidTextRepresentation:
			return fmt.Errorf("%w: %s", repo.ErrInvalidID, pgErr.Message)
		}
	}
	return err
}

// UPDATEの結果。0件は対象なし
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// skip/takeの最低限の補正
func page(q *gorm.DB, skip, take int) *gorm.DB {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 || take > 100 {
		take = 20
	}
	return q.Offset(skip).Limit(take)
}
