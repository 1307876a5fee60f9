package repository_test

import (
	"fmt"
	"testing"
	"time"

	"printshop/internal/domain/model"
	"printshop/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// テストごとに別のインメモリDB
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gormDB
}

func strPtr(s string) *string { return &s }

func newOrder(userID, storeID string, createdAt time.Time) *model.Order {
	return &model.Order{
		ID:            model.NewID(model.OrderIDPrefix),
		UserID:        userID,
		StoreID:       storeID,
		PDFKey:        strPtr("pdfs/1_doc.pdf"),
		PageCount:     4,
		ColorMode:     model.ColorModeColor,
		PageRange:     "1-3,5",
		Status:        model.OrderStatusPending,
		Price:         decimal.NewFromInt(40),
		Discount:      decimal.Zero,
		FinalPrice:    decimal.NewFromInt(40),
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodOnline,
		CreatedAt:     createdAt,
	}
}

func newStore(ownerID string, createdAt time.Time) *model.Store {
	return &model.Store{
		ID:                model.NewID(model.StoreIDPrefix),
		OwnerID:           ownerID,
		StoreName:         "Quick Prints",
		BusinessName:      "Quick Prints LLP",
		BusinessType:      model.BusinessTypePartnership,
		ShopAddress:       "12 MG Road, Bengaluru",
		BillingAddress:    "12 MG Road, Bengaluru",
		KYCAddress:        "12 MG Road, Bengaluru",
		OwnerName:         "Asha Rao",
		PANNumber:         "ABCDE1234F",
		BankAccountNumber: "123456789012",
		IFSCCode:          "HDFC0001234",
		ContactEmail:      "owner@example.com",
		ContactPhone:      "9876543210",
		Status:            model.StoreStatusPendingApproval,
		KYCStatus:         model.KYCStatusPending,
		CreatedAt:         createdAt,
	}
}
