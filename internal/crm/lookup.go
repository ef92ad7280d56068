package crm

import (
	"strconv"
	"strings"
)

// Match is the result of a flexible lookup. Position is the 1-based display
// index of Row among the listed records.
type Match struct {
	Row       Row
	Position  int
	Ambiguous []int
}

// Lookup resolves a user reference to a row. A purely numeric query is a
// 1-based display index; anything else is a case-insensitive substring of the
// row's values, first match wins. Other matching positions are reported in
// Ambiguous.
func Lookup(rows []Row, query string) (Match, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Match{}, false
	}
	if n, err := strconv.Atoi(q); err == nil && isDigits(q) {
		if n < 1 || n > len(rows) || rows[n-1].Empty() {
			return Match{}, false
		}
		return Match{Row: rows[n-1], Position: n}, true
	}

	needle := strings.ToLower(q)
	var m Match
	found := false
	for i, r := range rows {
		if r.Empty() {
			continue
		}
		if !strings.Contains(strings.ToLower(strings.Join(r.Values, " ")), needle) {
			continue
		}
		if !found {
			m = Match{Row: r, Position: i + 1}
			found = true
			continue
		}
		m.Ambiguous = append(m.Ambiguous, i+1)
	}
	return m, found
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// SheetRow converts a 1-based display index into the sheet row number,
// skipping the header.
func SheetRow(position int) int { return position + 1 }
