package services

import (
	"github.com/shopspring/decimal"
)

// currencyPlaces is the precision totals are rounded to.
const currencyPlaces = 2

func lineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

func toAmount(d decimal.Decimal) float64 {
	return d.Round(currencyPlaces).InexactFloat64()
}
