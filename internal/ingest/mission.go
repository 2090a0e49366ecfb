// Package ingest turns raw tabular exports into typed domain records.
// A mission names the parsing and transformation ruleset for one source
// layout; the set of missions is closed and resolved once at job start.
package ingest

import (
	"fmt"

	"github.com/chronos-erp/flowledger/internal/domain"
)

// Mission selects the column layout and target record shape of a source
// export.
type Mission string

const (
	MissionBankLedger Mission = "bank_ledger"
	MissionSales      Mission = "sales"
	MissionClients    Mission = "clients"
	MissionInventory  Mission = "inventory"
)

// ParseMission validates a mission name. Unknown missions fail fast,
// before any parsing or write happens.
func ParseMission(s string) (Mission, error) {
	switch m := Mission(s); m {
	case MissionBankLedger, MissionSales, MissionClients, MissionInventory:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMission, s)
	}
}
