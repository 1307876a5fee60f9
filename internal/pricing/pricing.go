// Package pricing は印刷注文の価格計算。
// ページ範囲の解釈と、単価・割引から最終価格を出すだけの純粋関数。
package pricing

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"printshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 全ページ指定
const AllPages = "all"

var (
	singlePage = regexp.MustCompile(`^\d+$`)
	pageSpan   = regexp.MustCompile(`^(\d+)-(\d+)$`)

	hundred = decimal.NewFromInt(100)
)

// ParsePages はページ範囲式を 1..total の昇順・重複なしのページ番号にする。
// 範囲外のページは落とし、逆順の範囲は入れ替え、解釈できないトークンは黙って無視する。
func ParsePages(expr string, total int) []int {
	if total <= 0 {
		return []int{}
	}

	expr = strings.TrimSpace(expr)
	if expr == AllPages {
		pages := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	seen := make(map[int]struct{})
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)

		if singlePage.MatchString(tok) {
			p, err := strconv.Atoi(tok)
			if err != nil {
				continue
			}
			if p >= 1 && p <= total {
				seen[p] = struct{}{}
			}
			continue
		}

		m := pageSpan.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		if start > end {
			start, end = end, start
		}
		//[1,total]に切り詰める
		if start < 1 {
			start = 1
		}
		if end > total {
			end = total
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// 選択されたページ数
func CountPages(expr string, total int) int {
	return len(ParsePages(expr, total))
}

// 色モードに応じたページ単価。未設定は0。
func RateFor(mode model.ColorMode, blackWhite, color decimal.NullDecimal) decimal.Decimal {
	rate := blackWhite
	if mode == model.ColorModeColor {
		rate = color
	}
	if !rate.Valid {
		return decimal.Zero
	}
	return rate.Decimal
}

type Quote struct {
	Pages      int
	Rate       decimal.Decimal
	Price      decimal.Decimal
	Discount   decimal.Decimal
	FinalPrice decimal.Decimal
}

// Compute は price = pages * rate, final = max(0, price - discount)。
// discount は通貨額そのもの（率ではない）。
func Compute(pages int, rate, discount decimal.Decimal) Quote {
	if pages < 0 {
		pages = 0
	}
	price := rate.Mul(decimal.NewFromInt(int64(pages)))
	final := price.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Quote{
		Pages:      pages,
		Rate:       rate,
		Price:      price,
		Discount:   discount,
		FinalPrice: final,
	}
}

// 最小通貨単位（パイサ）に変換する
func ToSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
