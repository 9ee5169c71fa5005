package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type (
	// Expense is a single ledger record owned by one sender.
	Expense struct {
		ID         int64
		Owner      string // normalized phone / sender id
		Category   string // title-cased display form
		Amount     decimal.Decimal
		RecordedAt time.Time
		SourceText string
	}

	// DateRange is an inclusive pair of calendar days.
	DateRange struct {
		Start time.Time
		End   time.Time
	}
)

var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrNotFound      = errors.New("expense not found")
	ErrUnauthorized  = errors.New("sender not authorized")
	ErrStoreFailure  = errors.New("ledger store failure")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyOwner    = errors.New("empty owner")
	ErrCategoryLong  = errors.New("category too long")
)

// MaxCategoryLen is the longest category accepted, in characters.
const MaxCategoryLen = 100

// ValidateCategory checks that name is non-blank and at most MaxCategoryLen
// characters long.
func ValidateCategory(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyCategory
	}
	if n := utf8.RuneCountInString(name); n > MaxCategoryLen {
		return fmt.Errorf("%w: %d characters, max %d", ErrCategoryLong, n, MaxCategoryLen)
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Owner) == "" {
		return ErrEmptyOwner
	}
	if err := ValidateCategory(e.Category); err != nil {
		return err
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if e.RecordedAt.IsZero() {
		return errors.New("recorded_at cannot be zero")
	}
	return nil
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NewDateRange returns the inclusive range [start, end] as calendar days.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.Start.After(r.End) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Contains reports whether t falls on one of the range's days.
func (r DateRange) Contains(t time.Time) bool {
	from, until := r.Bounds()
	t = t.In(from.Location())
	return !t.Before(from) && t.Before(until)
}

// Bounds returns the half-open instant interval [from, until) covered by the range.
func (r DateRange) Bounds() (from, until time.Time) {
	return r.Start, r.End.AddDate(0, 0, 1)
}

// Label renders the range as "dd/mm al dd/mm".
func (r DateRange) Label() string {
	return r.Start.Format("02/01") + " al " + r.End.Format("02/01")
}
