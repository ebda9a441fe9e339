package balance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/guttosm/macropulse/internal/domain/errs"
	"github.com/guttosm/macropulse/internal/domain/models"
)

// tableColumns is the canonical output schema. Quarter boundaries are
// ordinals 1-4; materializing them as dates is a formatting concern
// outside this adapter.
var tableColumns = []string{"Parameter", "Amount ($M)", "Start_Quarter", "End_Quarter"}

var quarterNumerals = []string{"I", "II", "III", "IV"}

// Transform reshapes each year's wide quarterly sheet into long rows and
// concatenates them in ascending year order.
//
// Per year:
//   - quarter-label headers ("I квартал <year> г." .. "IV квартал
//     <year> г.") map to ordinals 1-4;
//   - columns are restricted to Parameter plus the quarter labels found
//     in this sheet; a year where fewer than two columns survive
//     contributes nothing rather than failing;
//   - trailing metadata text shows up as fully-blank rows, so the sheet
//     is truncated at the first row whose every cell is blank;
//   - remaining rows whose quarter cells are all blank are section
//     separators and are dropped;
//   - the rest melts column-major into (Parameter, Amount, ordinal).
func (a *Adapter) Transform(frames map[int]models.Sheet) (*models.Table, error) {
	t := models.NewTable(tableColumns...)
	if len(frames) == 0 {
		return t, nil
	}

	for _, year := range years(frames) {
		if err := meltYear(t, year, frames[year]); err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
	}
	return t, nil
}

// meltYear appends one year's long rows to t.
func meltYear(t *models.Table, year int, sheet models.Sheet) error {
	if len(sheet.Rows) == 0 {
		return nil
	}

	mapping := quarterMapping(year)

	keep := make([]int, 0, len(sheet.Columns))
	paramIdx := -1
	for i, col := range sheet.Columns {
		if col == "Parameter" {
			paramIdx = i
			keep = append(keep, i)
			continue
		}
		if _, ok := mapping[col]; ok {
			keep = append(keep, i)
		}
	}
	// No quarter data at all matched this year's labels: an empty
	// contribution, not a failure.
	if len(keep) < 2 || paramIdx == -1 {
		return nil
	}

	rows := truncateAtBlank(sheet.Rows, keep)

	for _, colIdx := range keep {
		if colIdx == paramIdx {
			continue
		}
		label := sheet.Columns[colIdx]
		quarter, ok := mapping[label]
		if !ok {
			return fmt.Errorf("%w: %q", errs.ErrUnmappedQuarterColumn, label)
		}
		for _, row := range rows {
			if blankQuarterCells(row, keep, paramIdx) {
				continue
			}
			cell := row[colIdx]
			if strings.TrimSpace(cell) == "" {
				continue
			}
			amount, err := parseAmount(cell)
			if err != nil {
				return errs.Schema(fmt.Sprintf("parameter %q, column %q: %v", row[paramIdx], label, err))
			}
			t.Append(row[paramIdx], amount, quarter, quarter)
		}
	}
	return nil
}

// quarterMapping builds the label→ordinal mapping for one year.
func quarterMapping(year int) map[string]int {
	m := make(map[string]int, len(quarterNumerals))
	for i, numeral := range quarterNumerals {
		m[fmt.Sprintf("%s квартал %d г.", numeral, year)] = i + 1
	}
	return m
}

// truncateAtBlank cuts rows at the first row whose every kept cell is
// blank; such a row marks the start of the trailing metadata block. If
// none exists the whole sheet is real data.
func truncateAtBlank(rows [][]string, keep []int) [][]string {
	for i, row := range rows {
		allBlank := true
		for _, idx := range keep {
			if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
				allBlank = false
				break
			}
		}
		if allBlank {
			return rows[:i]
		}
	}
	return rows
}

// blankQuarterCells reports whether every quarter cell of row is blank.
// Such rows are section separators, not data.
func blankQuarterCells(row []string, keep []int, paramIdx int) bool {
	for _, idx := range keep {
		if idx == paramIdx {
			continue
		}
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			return false
		}
	}
	return true
}

// parseAmount decodes one spreadsheet amount cell. Values may carry
// grouping spaces or a decimal comma.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
