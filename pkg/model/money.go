package model

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to two decimal places, half away from
// zero. Every balance arithmetic step in the ledger passes through this so
// balances never accumulate sub-cent residue.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
