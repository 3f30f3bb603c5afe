package service

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestParseItemFilter(t *testing.T) {
	t.Parallel()

	dec := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	decEq := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

	tests := []struct {
		name  string
		query string
		want  models.ItemFilter
	}{
		{"empty", "", models.ItemFilter{}},
		{"blank values are absent", "q=&category=&min_price=&max_price=", models.ItemFilter{}},
		{"query is case folded", "q=RunNER", models.ItemFilter{Query: "runner"}},
		{"unicode query", "q=%C3%9CBER", models.ItemFilter{Query: "über"}},
		{"query keeps spaces", "q=+Caf%C3%89+", models.ItemFilter{Query: " café "}},
		{"category kept verbatim", "category=shoes", models.ItemFilter{CategorySlug: "shoes"}},
		{"price bounds", "min_price=10&max_price=20.5", models.ItemFilter{MinPrice: dec("10"), MaxPrice: dec("20.5")}},
		{"unparsable min dropped", "min_price=abc&max_price=20", models.ItemFilter{MaxPrice: dec("20")}},
		{"unparsable max dropped", "min_price=1&max_price=1,5", models.ItemFilter{MinPrice: dec("1")}},
		{"huge exponent dropped", "min_price=1e999999999&max_price=5", models.ItemFilter{MaxPrice: dec("5")}},
		{"tiny exponent dropped", "min_price=1&max_price=1e-999999999", models.ItemFilter{MinPrice: dec("1")}},
		{"overlong value dropped", "min_price=" + strings.Repeat("9", 40), models.ItemFilter{}},
		{"exponent within bounds", "max_price=1e3", models.ItemFilter{MaxPrice: dec("1000")}},
		{"everything", "q=boot&category=kids&min_price=0&max_price=99.99", models.ItemFilter{
			Query: "boot", CategorySlug: "kids", MinPrice: dec("0"), MaxPrice: dec("99.99"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got := ParseItemFilter(v)
			if diff := cmp.Diff(tt.want, got, decEq); diff != "" {
				t.Errorf("ParseItemFilter(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestUnparsableFilterEqualsOmitted(t *testing.T) {
	t.Parallel()

	withBad, _ := url.ParseQuery("min_price=abc&category=shoes")
	without, _ := url.ParseQuery("category=shoes")
	if diff := cmp.Diff(ParseItemFilter(without), ParseItemFilter(withBad)); diff != "" {
		t.Errorf("filters differ:\n%s", diff)
	}
	if !ParseItemFilter(url.Values{"min_price": {"NaN?"}}).IsZero() {
		t.Error("an unparsable bound alone should produce a zero filter")
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size             int
		wantFrom, wantLimit, p int
	}{
		{0, 0, 0, 10, 1},
		{1, 20, 0, 20, 1},
		{3, 20, 40, 20, 3},
		{2, 1000, 10, 10, 2},
		{-4, 5, 0, 5, 1},
	}
	for _, tt := range tests {
		from, limit, page := Paginate(tt.page, tt.size)
		if from != tt.wantFrom || limit != tt.wantLimit || page != tt.p {
			t.Errorf("Paginate(%d,%d) = %d,%d,%d; want %d,%d,%d",
				tt.page, tt.size, from, limit, page, tt.wantFrom, tt.wantLimit, tt.p)
		}
	}
}
