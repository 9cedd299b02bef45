// ABOUTME: Helpers for reading scalar cells out of raw sheet rows
// ABOUTME: Tolerates missing columns and the Sheets API's loose value typing
package sheets

import (
	"fmt"
	"strings"
	"time"
)

// Str returns the cell at column i as a string, or "" when absent.
func Str(row []any, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(row[i])
}

// Time parses a cell as a timestamp. The legacy sheet mixes RFC3339 with
// spreadsheet-style date formats, so several layouts are tried.
func Time(row []any, i int) time.Time {
	s := Str(row, i)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"1/2/2006 15:04:05",
		"1/2/2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ColLetter converts a 0-based column index to its A1-notation letter.
func ColLetter(i int) string {
	letter := ""
	for i >= 0 {
		letter = string(rune('A'+i%26)) + letter
		i = i/26 - 1
	}
	return letter
}

// RowRange builds an A1 range covering columns [0, width) of a 1-based row,
// e.g. RowRange("leads", 5, 8) -> "leads!A5:H5".
func RowRange(tab string, rowIndex, width int) string {
	return fmt.Sprintf("%s!A%d:%s%d", tab, rowIndex, ColLetter(width-1), rowIndex)
}

// CellRef builds an A1 reference to a single cell, e.g. "leads!F5".
func CellRef(tab string, rowIndex, col int) string {
	return fmt.Sprintf("%s!%s%d", tab, ColLetter(col), rowIndex)
}
