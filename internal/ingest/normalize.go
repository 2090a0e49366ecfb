package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseAmount converts a raw cell into a decimal amount. It strips
// currency symbols and thousands separators and preserves sign. Empty
// or non-numeric input yields zero: source rows frequently carry
// trailing blank cells and those are data, not errors.
func ParseAmount(raw string) decimal.Decimal {
	cleaned := amountCleaner.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// dateLayouts are tried in order. time.Parse validates the calendar, so
// day 32 fails the layout rather than wrapping.
var dateLayouts = []string{
	"02/01/2006", // DD/MM/YYYY
	"2006-01-02", // YYYY-MM-DD
	"02-01-2006", // DD-MM-YYYY
}

// ParseDate parses a raw cell into a calendar date. When no layout
// matches it returns fallback (the ingestion run's own timestamp) and
// false so the caller can count a warning instead of aborting the run.
func ParseDate(raw string, fallback time.Time) (time.Time, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return fallback, false
}

// ParseEnum matches raw against allowed values, case-insensitively and
// ignoring surrounding space. Unknown input yields fallback.
func ParseEnum(raw string, allowed []string, fallback string) string {
	cleaned := strings.TrimSpace(raw)
	for _, a := range allowed {
		if strings.EqualFold(cleaned, a) {
			return a
		}
	}
	return fallback
}

// CleanString collapses runs of whitespace, matching how the source
// exports are sanitized.
func CleanString(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
