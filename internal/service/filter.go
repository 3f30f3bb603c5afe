package service

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Client-supplied decimals are accepted only within these bounds; anything
// outside is treated like an unparsable value.
const (
	maxDecimalLen      = 32
	maxDecimalExponent = 20
)

type filterParam func(url.Values, *models.ItemFilter)

var itemFilterParams = []filterParam{
	queryParam,
	categoryParam,
	priceParam("min_price", func(f *models.ItemFilter, d decimal.Decimal) { f.MinPrice = &d }),
	priceParam("max_price", func(f *models.ItemFilter, d decimal.Decimal) { f.MaxPrice = &d }),
}

// ParseItemFilter builds the listing filter from query parameters. Each
// parameter is applied in turn and skipped when absent, empty or unparsable.
func ParseItemFilter(v url.Values) models.ItemFilter {
	var f models.ItemFilter
	for _, p := range itemFilterParams {
		p(v, &f)
	}
	return f
}

func queryParam(v url.Values, f *models.ItemFilter) {
	if q := v.Get("q"); q != "" {
		f.Query = models.FoldCase(q)
	}
}

func categoryParam(v url.Values, f *models.ItemFilter) {
	if c := strings.TrimSpace(v.Get("category")); c != "" {
		f.CategorySlug = c
	}
}

func priceParam(name string, set func(*models.ItemFilter, decimal.Decimal)) filterParam {
	return func(v url.Values, f *models.ItemFilter) {
		raw := strings.TrimSpace(v.Get(name))
		if raw == "" {
			return
		}
		d, ok := parseDecimal(raw)
		if !ok {
			return
		}
		set(f, d)
	}
}

func parseDecimal(raw string) (decimal.Decimal, bool) {
	if len(raw) > maxDecimalLen {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !exponentInRange(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

func exponentInRange(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -maxDecimalExponent && e <= maxDecimalExponent
}
