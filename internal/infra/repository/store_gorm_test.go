package repository_test

import (
	"context"
	"testing"
	"time"

	"printshop/internal/domain/model"
	infraRepo "printshop/internal/infra/repository"
	repo "printshop/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestStoreGormRepository_FindActiveByOwner(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewStoreGormRepository(newTestDB(t))

	s := newStore("USR_owner", time.Now())
	require.NoError(t, r.Create(ctx, s))

	got, err := r.FindActiveByOwner(ctx, "USR_owner")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.False(t, got.BlackWhitePrice.Valid)

	_, err = r.FindActiveByOwner(ctx, "USR_nobody")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestStoreGormRepository_FindByIDs_IncludesDeleted(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewStoreGormRepository(newTestDB(t))

	live := newStore("USR_1", time.Now())
	gone := newStore("USR_2", time.Now())
	gone.IsDeleted = true
	require.NoError(t, r.Create(ctx, live))
	require.NoError(t, r.Create(ctx, gone))

	got, err := r.FindByIDs(ctx, []string{live.ID, gone.ID, "STR_missing"})
	require.NoError(t, err)
	ids := []string{}
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{live.ID, gone.ID}, ids)

	got, err = r.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreGormRepository_List_PendingOldestFirst(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewStoreGormRepository(newTestDB(t))

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	older := newStore("USR_1", base)
	newer := newStore("USR_2", base.Add(time.Hour))
	approved := newStore("USR_3", base.Add(2*time.Hour))
	approved.Status = model.StoreStatusApproved
	for _, s := range []*model.Store{newer, older, approved} {
		require.NoError(t, r.Create(ctx, s))
	}

	items, total, err := r.List(ctx, repo.StoreListFilter{Status: model.StoreStatusPendingApproval, Take: 10, OldestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, older.ID, items[0].ID)
	assert.Equal(t, newer.ID, items[1].ID)

	items, total, err = r.List(ctx, repo.StoreListFilter{Status: model.StoreStatusApproved, Take: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, approved.ID, items[0].ID)
}

func TestStoreGormRepository_UpdateKYCByGatewayAccount(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewStoreGormRepository(newTestDB(t))

	s := newStore("USR_owner", time.Now())
	require.NoError(t, r.Create(ctx, s))
	require.NoError(t, r.SetGatewayAccount(ctx, s.ID, "acc_123", model.KYCStatusPending))

	reason := "PAN mismatch"
	require.NoError(t, r.UpdateKYCByGatewayAccount(ctx, "acc_123", repo.KYCUpdate{Status: model.KYCStatusRejected, FailureReason: &reason}))

	got, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusRejected, got.KYCStatus)
	require.NotNil(t, got.KYCFailureReason)
	assert.Equal(t, reason, *got.KYCFailureReason)
	//承認状態は独立
	assert.Equal(t, model.StoreStatusPendingApproval, got.Status)

	err = r.UpdateKYCByGatewayAccount(ctx, "acc_unknown", repo.KYCUpdate{Status: model.KYCStatusApproved})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestStoreGormRepository_UpdatePricingAndProfile(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewStoreGormRepository(newTestDB(t))

	s := newStore("USR_owner", time.Now())
	require.NoError(t, r.Create(ctx, s))

	color := decimal.NewFromInt(10)
	require.NoError(t, r.UpdatePricing(ctx, s.ID, nil, &color))

	name := "Quick Prints & Co."
	require.NoError(t, r.UpdateProfile(ctx, s.ID, repo.StoreProfileUpdate{StoreName: &name}))

	got, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.BlackWhitePrice.Valid)
	require.True(t, got.ColorPrice.Valid)
	assert.True(t, color.Equal(got.ColorPrice.Decimal))
	assert.Equal(t, name, got.StoreName)
}

func TestTxManagerGorm_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	tm := infraRepo.NewTxManagerGorm(gormDB)
	stores := infraRepo.NewStoreGormRepository(gormDB)

	s := newStore("USR_owner", time.Now())
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Stores().Create(ctx, s); err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  "USR_admin",
			Action:       model.AuditActionApproveStore,
			ResourceType: model.AuditResourceStore,
			ResourceID:   s.ID,
			After:        datatypes.JSON(`{"status":"approved"}`),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = stores.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	logs, err := infraRepo.NewAuditLogGormRepository(gormDB).List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
