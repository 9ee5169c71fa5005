// Package intent classifies raw chat messages into a fixed set of commands.
package intent

import "github.com/shopspring/decimal"

// Intent is the classified meaning of a message. The set of variants is closed.
type Intent interface {
	// Name identifies the variant in logs.
	Name() string
	isIntent()
}

type (
	// RegisterExpense records a new expense.
	RegisterExpense struct {
		Category   string
		Amount     decimal.Decimal
		SourceText string
	}

	// DeleteByID removes one expense by its id.
	DeleteByID struct {
		ID int64
	}

	// DeleteLast removes the newest expense.
	DeleteLast struct{}

	// ListRecent lists the newest expenses.
	ListRecent struct {
		Limit int
	}

	// Summarize aggregates a period. Phrase is resolved at dispatch time.
	Summarize struct {
		Phrase string
	}

	// Help asks for the usage message.
	Help struct{}

	// Unrecognized is anything else.
	Unrecognized struct{}
)

func (RegisterExpense) Name() string { return "register_expense" }
func (DeleteByID) Name() string      { return "delete_by_id" }
func (DeleteLast) Name() string      { return "delete_last" }
func (ListRecent) Name() string      { return "list_recent" }
func (Summarize) Name() string       { return "summarize" }
func (Help) Name() string            { return "help" }
func (Unrecognized) Name() string    { return "unrecognized" }

func (RegisterExpense) isIntent() {}
func (DeleteByID) isIntent()      {}
func (DeleteLast) isIntent()      {}
func (ListRecent) isIntent()      {}
func (Summarize) isIntent()       {}
func (Help) isIntent()            {}
func (Unrecognized) isIntent()    {}
