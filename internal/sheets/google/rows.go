package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
)

const dateLayout = "02/01/2006 15:04"

// buildRow lays out one expense as ID, date, owner, category, amount.
func buildRow(e core.Expense, loc *time.Location) []any {
	return []any{
		e.ID,
		e.RecordedAt.In(loc).Format(dateLayout),
		e.Owner,
		e.Category,
		core.FormatAmount(e.Amount),
	}
}

// findRowByID returns the zero-based row index whose first cell is id, or -1.
func findRowByID(values [][]any, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil && v == id {
			return i
		}
	}
	return -1
}

func sheetIDByTitle(props []*gsheet.SheetProperties, title string) (int64, error) {
	for _, p := range props {
		if p != nil && p.Title == title {
			return p.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", title)
}

func rowRef(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:E%d", sheet, row+1, row+1)
}
