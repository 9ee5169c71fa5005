package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// SummaryResult aggregates the expenses of one period. Derived, never stored.
type SummaryResult struct {
	Total       decimal.Decimal
	PerCategory []CategoryAmount // first-seen order
	Count       int
}

// Summarize totals expenses overall and per category.
func Summarize(expenses []Expense) SummaryResult {
	res := SummaryResult{Total: decimal.Zero}
	index := make(map[string]int)
	for _, e := range expenses {
		res.Total = res.Total.Add(e.Amount)
		res.Count++
		i, ok := index[e.Category]
		if !ok {
			index[e.Category] = len(res.PerCategory)
			res.PerCategory = append(res.PerCategory, CategoryAmount{Name: e.Category, Amount: e.Amount})
			continue
		}
		res.PerCategory[i].Amount = res.PerCategory[i].Amount.Add(e.Amount)
	}
	return res
}
