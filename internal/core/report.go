package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Report is a per-category income/expense breakdown over an inclusive
// date range. Categories without activity are absent from the maps.
type Report struct {
	Year         int
	Month        int // 0 for yearly and custom-range reports
	Start        Date
	End          Date
	Income       map[string]decimal.Decimal
	Expense      map[string]decimal.Decimal
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetSavings   decimal.Decimal
}

// MonthRange returns the first and last calendar day of a month.
func MonthRange(year, month int) (Date, Date, error) {
	if err := validateYear(year); err != nil {
		return Date{}, Date{}, err
	}
	if month < 1 || month > 12 {
		return Date{}, Date{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidInput, month)
	}
	return FirstOfMonth(year, month), LastOfMonth(year, month), nil
}

// YearRange returns Jan 1 and Dec 31 of year.
func YearRange(year int) (Date, Date, error) {
	if err := validateYear(year); err != nil {
		return Date{}, Date{}, err
	}
	return NewDate(year, 1, 1), NewDate(year, 12, 31), nil
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d out of range 1-9999", ErrInvalidInput, year)
	}
	return nil
}

// Aggregate reduces the entries that fall in [start, end] into a report.
// Entries outside the range are ignored so callers may pass a superset.
func Aggregate(txs []Transaction, start, end Date) Report {
	r := Report{
		Start:        start,
		End:          end,
		Income:       make(map[string]decimal.Decimal),
		Expense:      make(map[string]decimal.Decimal),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range txs {
		if !t.Date.Within(start, end) {
			continue
		}
		switch t.Type {
		case Income:
			r.Income[t.Category] = r.Income[t.Category].Add(t.Amount)
			r.TotalIncome = r.TotalIncome.Add(t.Amount)
		case Expense:
			r.Expense[t.Category] = r.Expense[t.Category].Add(t.Amount)
			r.TotalExpense = r.TotalExpense.Add(t.Amount)
		}
	}
	r.NetSavings = r.TotalIncome.Sub(r.TotalExpense)
	return r
}

// NetFlow is Σincome − Σexpense over the entries in [start, end].
func NetFlow(txs []Transaction, start, end Date) decimal.Decimal {
	return Aggregate(txs, start, end).NetSavings
}
