package repository

import (
	"errors"
	"testing"

	repo "printshop/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), repo.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), repo.ErrDuplicate)

	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"}
	err := translateError(unique)
	assert.ErrorIs(t, err, repo.ErrDuplicate)
	assert.Contains(t, err.Error(), "idx_users_email")

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	assert.ErrorIs(t, translateError(fk), repo.ErrForeignKey)

	badID := &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation, Message: "invalid input syntax for type uuid"}
	assert.ErrorIs(t, translateError(badID), repo.ErrInvalidID)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}
