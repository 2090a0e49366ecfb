package ingest

import (
	"strings"

	"github.com/chronos-erp/flowledger/internal/domain"
)

// Section labels a column group inside a source grid.
type Section string

const (
	SectionIncome  Section = "income"
	SectionExpense Section = "expense"
	SectionMain    Section = "main"
)

// Row is one raw field tuple yielded by the parser. Index is the
// zero-based row position in the source grid, kept for traceability and
// natural keys.
type Row struct {
	Section Section
	Index   int
	Cells   []string
}

// columnGroup is one contiguous run of columns belonging to a section.
// A group starts yielding data on the row after its marker is seen.
type columnGroup struct {
	section Section
	start   int
	width   int
	marker  string
}

type gridLayout struct {
	groups []columnGroup
}

// bankExpenseOffset is where the expense group starts in the two-group
// bank sheets (income on the left, expense on the right).
const bankExpenseOffset = 5

var layouts = map[Mission]gridLayout{
	MissionBankLedger: {groups: []columnGroup{
		{section: SectionIncome, start: 0, width: 3, marker: "INGRESOS"},
		{section: SectionExpense, start: bankExpenseOffset, width: 3, marker: "GASTOS"},
	}},
	MissionSales: {groups: []columnGroup{
		{section: SectionMain, start: 0, width: 9, marker: "FECHA"},
	}},
	MissionClients: {groups: []columnGroup{
		{section: SectionMain, start: 0, width: 3, marker: "CLIENTE"},
	}},
	MissionInventory: {groups: []columnGroup{
		{section: SectionMain, start: 0, width: 4, marker: "PRODUCTO"},
	}},
}

// Parser splits a raw grid into labeled section rows for one mission.
// It never mutates its input and a fresh parse over the same grid is
// deterministic.
type Parser struct {
	mission Mission
	layout  gridLayout
}

// NewParser builds a parser for the mission's layout.
func NewParser(mission Mission) (*Parser, error) {
	layout, ok := layouts[mission]
	if !ok {
		_, err := ParseMission(string(mission))
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrUnsupportedMission
	}
	return &Parser{mission: mission, layout: layout}, nil
}

// Each walks the grid top to bottom and calls fn for every data tuple.
// Rows before a group's marker are preamble and skipped; blank rows are
// skipped without terminating the section.
func (p *Parser) Each(grid [][]string, fn func(Row) error) error {
	active := make(map[Section]bool, len(p.layout.groups))

	for rowIdx, row := range grid {
		header := false
		for _, g := range p.layout.groups {
			if !active[g.section] && groupHasMarker(row, g) {
				active[g.section] = true
				header = true
			}
		}
		if header {
			continue
		}

		for _, g := range p.layout.groups {
			if !active[g.section] {
				continue
			}

			cells := groupCells(row, g)
			if blankCells(cells) {
				continue
			}

			if err := fn(Row{Section: g.section, Index: rowIdx, Cells: cells}); err != nil {
				return err
			}
		}
	}

	return nil
}

// Parse collects every data tuple of the grid.
func (p *Parser) Parse(grid [][]string) ([]Row, error) {
	var rows []Row
	err := p.Each(grid, func(row Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func groupHasMarker(row []string, g columnGroup) bool {
	for c := g.start; c < g.start+g.width && c < len(row); c++ {
		cell := strings.ToUpper(strings.TrimSpace(row[c]))
		if cell != "" && strings.Contains(cell, g.marker) {
			return true
		}
	}
	return false
}

func groupCells(row []string, g columnGroup) []string {
	cells := make([]string, g.width)
	for i := 0; i < g.width; i++ {
		if c := g.start + i; c < len(row) {
			cells[i] = row[c]
		}
	}
	return cells
}

func blankCells(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
