package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestExpenseValidate(t *testing.T) {
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	good := Expense{
		Owner:      "+5491100000000",
		Category:   "Comida",
		Amount:     decimal.RequireFromString("300"),
		RecordedAt: now,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be storable, got %v", err)
	}

	bads := []struct {
		e    Expense
		want error
	}{
		{Expense{Category: "c", Amount: decimal.NewFromInt(1), RecordedAt: now}, ErrEmptyOwner},
		{Expense{Owner: "o", Category: " ", Amount: decimal.NewFromInt(1), RecordedAt: now}, ErrEmptyCategory},
		{Expense{Owner: "o", Category: "c", Amount: decimal.NewFromInt(-1), RecordedAt: now}, ErrInvalidAmount},
		{Expense{Owner: "o", Category: "c", Amount: decimal.RequireFromString("100000000"), RecordedAt: now}, ErrInvalidAmount},
		{Expense{Owner: "o", Category: "c", Amount: decimal.NewFromInt(1)}, nil},
		{Expense{Owner: "o", Category: strings.Repeat("a", MaxCategoryLen+1), Amount: decimal.NewFromInt(1), RecordedAt: now}, ErrCategoryLong},
	}
	for i, tc := range bads {
		err := tc.e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestValidateCategoryCountsCharacters(t *testing.T) {
	// 100 two-byte characters fit even though they take 200 bytes.
	if err := ValidateCategory(strings.Repeat("ñ", MaxCategoryLen)); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateCategory(strings.Repeat("ñ", MaxCategoryLen+1)); !errors.Is(err, ErrCategoryLong) {
		t.Fatalf("expected ErrCategoryLong, got %v", err)
	}
	if err := ValidateCategory("  "); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestDateRangeBoundsAndContains(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	r, err := NewDateRange(time.Date(2024, 7, 1, 15, 0, 0, 0, loc), time.Date(2024, 7, 29, 8, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	from, until := r.Bounds()
	if !from.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, loc)) || !until.Equal(time.Date(2024, 7, 30, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected bounds %v %v", from, until)
	}
	if !r.Contains(time.Date(2024, 7, 29, 23, 59, 59, 0, loc)) {
		t.Fatalf("last second of end day should be contained")
	}
	if r.Contains(time.Date(2024, 7, 30, 0, 0, 0, 0, loc)) {
		t.Fatalf("day after end should not be contained")
	}
	if got := r.Label(); got != "01/07 al 29/07" {
		t.Fatalf("label = %q", got)
	}

	if _, err := NewDateRange(time.Date(2024, 7, 2, 0, 0, 0, 0, loc), time.Date(2024, 7, 1, 0, 0, 0, 0, loc)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	d := decimal.RequireFromString
	res := Summarize([]Expense{
		{Category: "Comida", Amount: d("100.50")},
		{Category: "Transporte", Amount: d("50")},
		{Category: "Comida", Amount: d("0.25")},
	})
	if res.Count != 3 {
		t.Fatalf("count = %d", res.Count)
	}
	if !res.Total.Equal(d("150.75")) {
		t.Fatalf("total = %s", res.Total)
	}
	if len(res.PerCategory) != 2 || res.PerCategory[0].Name != "Comida" {
		t.Fatalf("unexpected categories: %+v", res.PerCategory)
	}
	if !categoryTotal(res, "Comida").Equal(d("100.75")) {
		t.Fatalf("comida = %s", categoryTotal(res, "Comida"))
	}

	empty := Summarize(nil)
	if empty.Count != 0 || !empty.Total.IsZero() || len(empty.PerCategory) != 0 {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}
}

func categoryTotal(r SummaryResult, name string) decimal.Decimal {
	for _, c := range r.PerCategory {
		if c.Name == name {
			return c.Amount
		}
	}
	return decimal.Zero
}
