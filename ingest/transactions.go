/*
transactions.go - Transaction table interpretation

PURPOSE:
  Normalizes the transaction export into typed transactions. The first row
  is the column header; timestamp and amount columns are matched against
  the historical name variants. Rows whose timestamp or amount cannot be
  parsed are skipped individually.
*/
package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/attribution"
)

// Historical column name variants, matched case-insensitively.
var (
	timestampColumns = []string{"date", "fecha", "fecha_hora", "datetime", "timestamp", "created_at"}
	amountColumns    = []string{"qt_price_local", "monto", "amount", "importe"}
	categoryColumns  = []string{"category", "categoria", "actividad"}
)

var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// Transactions interprets a raw table as the transaction source. A missing
// timestamp or amount column is fatal; unparsable rows are dropped.
func Transactions(t *Table) ([]attribution.Transaction, error) {
	if len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	header := t.Rows[0]

	tsCol := findColumn(header, timestampColumns)
	if tsCol < 0 {
		return nil, ErrTimestampColumnMissing
	}
	amountCol := findColumn(header, amountColumns)
	if amountCol < 0 {
		return nil, ErrAmountColumnMissing
	}
	categoryCol := findColumn(header, categoryColumns) // optional

	var txs []attribution.Transaction
	for _, row := range t.Rows[1:] {
		at, ok := parseTimestamp(cell(row, tsCol))
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(normalizeAmount(cell(row, amountCol)))
		if err != nil {
			continue
		}

		tx := attribution.Transaction{At: at, Amount: amount}
		if categoryCol >= 0 {
			tx.Category = cell(row, categoryCol)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, f := range timestampFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeAmount strips currency sigils and thousands separators that show
// up in hand-exported sheets.
func normalizeAmount(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
