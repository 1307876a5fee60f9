package pricing_test

import (
	"testing"

	"printshop/internal/domain/model"
	"printshop/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePages(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		total int
		want  []int
	}{
		{"all", "all", 4, []int{1, 2, 3, 4}},
		{"all with spaces", "  all ", 2, []int{1, 2}},
		{"single pages", "3,1", 5, []int{1, 3}},
		{"range and single", "1-3,5", 10, []int{1, 2, 3, 5}},
		{"reversed range is swapped", "5-2", 10, []int{2, 3, 4, 5}},
		{"overlap deduplicated", "1-3,2-4,3", 10, []int{1, 2, 3, 4}},
		{"out of bounds dropped", "0,11,4", 10, []int{4}},
		{"range clamped to total", "8-20", 10, []int{8, 9, 10}},
		{"range fully outside", "20-30", 10, []int{}},
		{"malformed tokens ignored", "a,2,-,3-,x-y,4", 10, []int{2, 4}},
		{"spaces around tokens", " 1 , 2 - 3 , 4", 10, []int{1, 4}},
		{"empty expression", "", 10, []int{}},
		{"zero total", "all", 0, []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pricing.ParsePages(tc.expr, tc.total))
		})
	}
}

func TestParsePages_SortedUniqueInBounds(t *testing.T) {
	exprs := []string{"9,1,5-3,2,2,100,7-7", "10-1", "all", "3-3,3,3"}
	total := 9

	for _, expr := range exprs {
		pages := pricing.ParsePages(expr, total)
		for i, p := range pages {
			assert.GreaterOrEqual(t, p, 1)
			assert.LessOrEqual(t, p, total)
			if i > 0 {
				assert.Less(t, pages[i-1], p, "expr=%q", expr)
			}
		}
	}
}

func TestCountPages(t *testing.T) {
	assert.Equal(t, 4, pricing.CountPages("1-3,5", 10))
	assert.Equal(t, 10, pricing.CountPages("all", 10))
	assert.Equal(t, 0, pricing.CountPages("garbage", 10))
}

func TestRateFor(t *testing.T) {
	bw := decimal.NewNullDecimal(decimal.NewFromInt(2))
	color := decimal.NewNullDecimal(decimal.NewFromInt(10))

	assert.True(t, decimal.NewFromInt(10).Equal(pricing.RateFor(model.ColorModeColor, bw, color)))
	assert.True(t, decimal.NewFromInt(2).Equal(pricing.RateFor(model.ColorModeBlackWhite, bw, color)))

	//未設定は0
	assert.True(t, pricing.RateFor(model.ColorModeColor, bw, decimal.NullDecimal{}).IsZero())
}

func TestCompute(t *testing.T) {
	rate := decimal.NewFromInt(10)

	q := pricing.Compute(4, rate, decimal.Zero)
	assert.True(t, decimal.NewFromInt(40).Equal(q.Price))
	assert.True(t, decimal.NewFromInt(40).Equal(q.FinalPrice))

	q = pricing.Compute(4, rate, decimal.NewFromInt(15))
	assert.True(t, decimal.NewFromInt(40).Equal(q.Price))
	assert.True(t, decimal.NewFromInt(25).Equal(q.FinalPrice))

	//割引が価格を超えても0で止まる
	q = pricing.Compute(1, rate, decimal.NewFromInt(50))
	assert.True(t, q.FinalPrice.IsZero())

	q = pricing.Compute(3, decimal.RequireFromString("1.25"), decimal.Zero)
	assert.True(t, decimal.RequireFromString("3.75").Equal(q.FinalPrice))
}

func TestColorShopQuote(t *testing.T) {
	store := model.Store{
		BlackWhitePrice: decimal.NewNullDecimal(decimal.NewFromInt(2)),
		ColorPrice:      decimal.NewNullDecimal(decimal.NewFromInt(10)),
	}

	pages := pricing.CountPages("1-3,5", 10)
	q := pricing.Compute(pages, pricing.RateFor(model.ColorModeColor, store.BlackWhitePrice, store.ColorPrice), decimal.Zero)

	assert.Equal(t, 4, q.Pages)
	assert.True(t, decimal.NewFromInt(40).Equal(q.Price))
}

func TestToSubunits(t *testing.T) {
	assert.Equal(t, int64(4000), pricing.ToSubunits(decimal.NewFromInt(40)))
	assert.Equal(t, int64(375), pricing.ToSubunits(decimal.RequireFromString("3.75")))
	assert.Equal(t, int64(101), pricing.ToSubunits(decimal.RequireFromString("1.005")))
}
