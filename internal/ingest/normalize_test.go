package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want decimal.Decimal
	}{
		{"plain integer", "1000", decimal.NewFromInt(1000)},
		{"currency symbol and separators", "$1,234.50", decimal.RequireFromString("1234.50")},
		{"inner spaces", "$ 2 500", decimal.NewFromInt(2500)},
		{"negative", "-50", decimal.NewFromInt(-50)},
		{"negative with symbol", "-$1,250", decimal.NewFromInt(-1250)},
		{"empty", "", decimal.Zero},
		{"whitespace only", "   ", decimal.Zero},
		{"junk", "abc", decimal.Zero},
		{"mixed junk", "12x4", decimal.Zero},
		{"zero", "0", decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	// The same calendar date in every accepted layout.
	for _, raw := range []string{"15/03/2024", "2024-03-15", "15-03-2024"} {
		got, ok := ParseDate(raw, fallback)
		if !ok {
			t.Errorf("ParseDate(%q): expected success", raw)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseDateFallback(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []string{
		"",
		"not a date",
		"32/01/2024", // day out of range
		"15/13/2024", // month out of range
		"03/15/2024", // US ordering is not accepted
	}
	for _, raw := range tests {
		got, ok := ParseDate(raw, fallback)
		if ok {
			t.Errorf("ParseDate(%q): expected failure", raw)
		}
		if !got.Equal(fallback) {
			t.Errorf("ParseDate(%q) = %s, want fallback %s", raw, got, fallback)
		}
	}
}

func TestParseEnum(t *testing.T) {
	allowed := []string{"pagado", "parcial", "pendiente"}

	if got := ParseEnum("  PAGADO ", allowed, "pendiente"); got != "pagado" {
		t.Errorf("expected pagado, got %q", got)
	}
	if got := ParseEnum("unknown", allowed, "pendiente"); got != "pendiente" {
		t.Errorf("expected fallback pendiente, got %q", got)
	}
	if got := ParseEnum("", allowed, "pendiente"); got != "pendiente" {
		t.Errorf("expected fallback for empty input, got %q", got)
	}
}

func TestCleanString(t *testing.T) {
	if got := CleanString("  Juan   Pérez \t García "); got != "Juan Pérez García" {
		t.Errorf("unexpected cleaned string: %q", got)
	}
	if got := CleanString("   "); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
