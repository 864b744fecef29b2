package faresweep

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// Table is the assembled result of a sweep: records stable-sorted by
// (departure, airline) ascending. Departure timestamps compare
// lexicographically, which matches chronological order for the fixed-offset
// ISO-8601 strings the API returns.
//
// Price columns are one per currency seen in the records (price_eur,
// price_usd, ...); rows leave the other currencies' columns blank. A mix of
// currencies is expected, not an error, and so is an empty table.
type Table struct {
	records    []Record
	currencies []string
}

func NewTable(records []Record) *Table {
	sorted := append([]Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Departure != sorted[j].Departure {
			return sorted[i].Departure < sorted[j].Departure
		}
		return sorted[i].Airline < sorted[j].Airline
	})

	seen := map[string]bool{}
	var currencies []string
	for _, record := range sorted {
		ccy := strings.ToLower(record.Currency)
		if !seen[ccy] {
			seen[ccy] = true
			currencies = append(currencies, ccy)
		}
	}
	sort.Strings(currencies)

	return &Table{records: sorted, currencies: currencies}
}

func (t *Table) Len() int { return len(t.records) }

func (t *Table) Records() []Record { return t.records }

func (t *Table) Columns() []string {
	columns := []string{"airline", "departure", "t_from", "arrival", "t_to"}
	for _, ccy := range t.currencies {
		columns = append(columns, "price_"+ccy)
	}
	return columns
}

// Row renders record i against Columns. Price cells for other currencies
// stay empty.
func (t *Table) Row(i int) []string {
	record := t.records[i]

	row := []string{record.Airline, record.Departure, record.TerminalFrom, record.Arrival, record.TerminalTo}
	for _, ccy := range t.currencies {
		if strings.ToLower(record.Currency) == ccy {
			row = append(row, record.Price.String())
		} else {
			row = append(row, "")
		}
	}
	return row
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for i := range t.records {
		if err := cw.Write(t.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) WriteJSON(w io.Writer) error {
	columns := t.Columns()

	rows := make([]map[string]string, 0, len(t.records))
	for i := range t.records {
		row := map[string]string{}
		for j, cell := range t.Row(i) {
			if cell != "" {
				row[columns[j]] = cell
			}
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// CheapestByCurrency picks the lowest-priced record per currency.
func (t *Table) CheapestByCurrency() map[string]Record {
	cheapest := map[string]Record{}
	for _, record := range t.records {
		ccy := strings.ToLower(record.Currency)
		best, ok := cheapest[ccy]
		if !ok || record.Price.LessThan(best.Price) {
			cheapest[ccy] = record
		}
	}
	return cheapest
}
