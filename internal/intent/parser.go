package intent

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gastos/internal/core"
)

// RecentLimit is how many expenses a list command returns.
const RecentLimit = 5

const summaryPrefix = "resumen"

var (
	deleteByIDPattern = regexp.MustCompile(`^(eliminar|borrar)\s+(\d+)$`)
	deleteLastPattern = regexp.MustCompile(`^(eliminar|borrar)\s+(ultimo|último)$`)
	// Non-greedy category so a trailing number is never absorbed into it.
	expensePattern = regexp.MustCompile(`^(.+?)\s+(\d+(\.\d+)?)$`)

	listCommands = map[string]bool{"mis gastos": true, "gastos": true, "ver gastos": true}
	helpCommands = map[string]bool{"ayuda": true, "help": true, "?": true}
)

// Parse maps raw text to an Intent. It never fails: anything that matches no
// rule is Unrecognized. Rules are tried in order and the first match wins.
func Parse(text string) Intent {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	if strings.HasPrefix(lower, summaryPrefix) {
		return Summarize{Phrase: strings.TrimSpace(lower[len(summaryPrefix):])}
	}

	if m := deleteByIDPattern.FindStringSubmatch(lower); m != nil {
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return Unrecognized{}
		}
		return DeleteByID{ID: id}
	}

	if deleteLastPattern.MatchString(lower) {
		return DeleteLast{}
	}

	if listCommands[lower] {
		return ListRecent{Limit: RecentLimit}
	}

	if helpCommands[lower] {
		return Help{}
	}

	if m := expensePattern.FindStringSubmatch(raw); m != nil {
		amount, err := core.ParseAmount(m[2])
		if err != nil {
			return Unrecognized{}
		}
		return RegisterExpense{
			Category:   NormalizeCategory(m[1]),
			Amount:     amount,
			SourceText: raw,
		}
	}

	return Unrecognized{}
}

// NormalizeCategory collapses inner whitespace and title-cases each word.
func NormalizeCategory(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Spanish).String(s)
}
