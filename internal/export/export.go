// Package export renders calculation results for spreadsheets and for sharing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

const summarySeparator = "--- SUMMARY ---"

// WriteCSV writes the headline figures followed by the breakdown lines, in order.
func WriteCSV(w io.Writer, res pricing.Result) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Item", "Value"},
		{"Selling Price", Amount(res.SellingPrice)},
		{"Net Profit", Amount(res.NetProfit)},
		{summarySeparator, ""},
	}
	for _, line := range res.Breakdown {
		rows = append(rows, []string{line.Label, Amount(line.Value)})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv export: %w", err)
	}
	return nil
}

// WriteCSVFile writes the CSV export to path.
func WriteCSVFile(path string, res pricing.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv export: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, res); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv export: %w", err)
	}
	return nil
}

// Amount formats a currency amount as a plain decimal with at most two fraction digits.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// Grouped formats a whole currency amount with dot thousand separators, e.g. 85.000.
func Grouped(v float64) string {
	return humanize.FormatFloat("#.###,", v)
}

// Summary is the short text a seller pastes into a chat.
func Summary(productName string, res pricing.Result) string {
	var b strings.Builder
	b.WriteString("Shopee Pricing Calc\n")
	fmt.Fprintf(&b, "Product: %s\n", productName)
	fmt.Fprintf(&b, "Selling price: %s\n", Grouped(res.SellingPrice))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Net profit: %s\n", Grouped(res.NetProfit))
	fmt.Fprintf(&b, "Margin: %.2f%%", res.NetMargin*100)
	return b.String()
}

// FileName returns the download name for a product's CSV export.
func FileName(productName string) string {
	name := sanitizeFilename(productName)
	if name == "" {
		name = "product"
	}
	return name + "_calculation.csv"
}

func sanitizeFilename(name string) string {
	trimmed := strings.TrimSpace(strings.ToLower(name))
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	prevDash := false
	for _, r := range trimmed {
		isAlphaNum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlphaNum {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 40 {
		out = strings.Trim(out[:40], "-")
	}
	return out
}
