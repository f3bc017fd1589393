// Package seed loads a transaction export into the backend: BUY/SELL rows are
// consolidated per user and symbol into holdings, then each user's portfolio
// totals are recomputed.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules/holdings"
)

// DefaultUsers maps portfolio names in the export to user ids
var DefaultUsers = map[string]int64{
	"Francisco": 1,
	"Jaime":     2,
	"Adela":     3,
}

var cryptoMarkers = []string{"BTC", "ETH", "USDT", "BNB"}

// Transaction kinds
const (
	Buy  = "BUY"
	Sell = "SELL"
)

// Transaction is one row of the export
type Transaction struct {
	Portfolio string
	Symbol    string
	Name      string
	Kind      string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Timestamp string
}

// Position is the consolidated result for one user and symbol
type Position struct {
	UserID    int64
	Symbol    string
	Name      string
	Quantity  decimal.Decimal
	TotalCost decimal.Decimal
	FirstSeen string
}

var requiredColumns = []string{"Id", "Portfolio", "Symbol", "Name", "Transaction", "Quantity", "Price", "Timestamp"}

// ParseCSV reads transactions from a CSV export with a header row.
// Rows with an empty Id are blank and skipped. A price or quantity that does
// not parse counts as zero.
func ParseCSV(r io.Reader) ([]Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Transaction
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if field(rec, "Id") == "" {
			continue
		}
		out = append(out, Transaction{
			Portfolio: field(rec, "Portfolio"),
			Symbol:    field(rec, "Symbol"),
			Name:      field(rec, "Name"),
			Kind:      strings.ToUpper(field(rec, "Transaction")),
			Quantity:  parseDecimal(field(rec, "Quantity")),
			Price:     parseDecimal(field(rec, "Price")),
			Timestamp: field(rec, "Timestamp"),
		})
	}
	return out, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Consolidate folds transactions into positions, in order of first appearance.
// A BUY adds quantity and cost; a SELL only reduces quantity so the average
// purchase price is kept. Portfolios missing from users are ignored.
func Consolidate(txs []Transaction, users map[string]int64) []Position {
	type key struct {
		userID int64
		symbol string
	}

	var order []key
	byKey := make(map[key]*Position)

	for _, tx := range txs {
		userID, ok := users[tx.Portfolio]
		if !ok {
			continue
		}
		k := key{userID, tx.Symbol}
		p, ok := byKey[k]
		if !ok {
			p = &Position{
				UserID:    userID,
				Symbol:    tx.Symbol,
				Name:      tx.Name,
				FirstSeen: tx.Timestamp,
			}
			byKey[k] = p
			order = append(order, k)
		}

		switch tx.Kind {
		case Buy:
			p.Quantity = p.Quantity.Add(tx.Quantity)
			p.TotalCost = p.TotalCost.Add(tx.Quantity.Mul(tx.Price))
		case Sell:
			p.Quantity = p.Quantity.Sub(tx.Quantity)
		}
	}

	out := make([]Position, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

// Open reports whether the position still holds units
func (p Position) Open() bool {
	return p.Quantity.IsPositive()
}

// PurchasePrice is the average cost per unit bought
func (p Position) PurchasePrice() decimal.Decimal {
	if !p.Open() {
		return decimal.Zero
	}
	return p.TotalCost.Div(p.Quantity)
}

// Holding converts an open position into a holding priced at its average cost
func (p Position) Holding() holdings.Input {
	price := p.PurchasePrice()
	return holdings.Input{
		Symbol:        p.Symbol,
		Name:          p.Name,
		Quantity:      p.Quantity,
		Value:         p.Quantity.Mul(price),
		PurchasePrice: &price,
		PurchaseDate:  purchaseDate(p.FirstSeen),
		Type:          string(AssetType(p.Symbol)),
	}
}

// AssetType classifies a symbol as crypto when it names a known coin
func AssetType(symbol string) domain.AssetType {
	upper := strings.ToUpper(symbol)
	for _, marker := range cryptoMarkers {
		if strings.Contains(upper, marker) {
			return domain.AssetCrypto
		}
	}
	return domain.AssetStock
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// purchaseDate reduces a transaction timestamp to YYYY-MM-DD, or "" when unparseable
func purchaseDate(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
