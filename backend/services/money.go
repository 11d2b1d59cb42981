// ABOUTME: GBP money helpers shared by the costing calculators
// ABOUTME: Rounds to pence with shopspring/decimal so totals equal their components

package services

import "github.com/shopspring/decimal"

// VATRate is the UK standard rate of VAT
var VATRate = decimal.NewFromFloat(0.20)

// pounds converts a float amount to a decimal rounded to pence
func pounds(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// percentOf returns amount × rate rounded to pence
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// sum adds amounts exactly
func sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
