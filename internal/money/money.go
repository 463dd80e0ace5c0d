// Package money holds the limits of amounts stored as NUMERIC(10,2).
package money

import "github.com/shopspring/decimal"

// Max is the largest amount a NUMERIC(10,2) column accepts.
var Max = decimal.RequireFromString("99999999.99")

// Fits reports whether d can be stored at two decimal places without
// overflowing the column.
func Fits(d decimal.Decimal) bool {
	return d.Round(2).Abs().LessThanOrEqual(Max)
}
