// Package currency converts bid amounts between ISO 4217 currency codes
// using a rate table snapshot. Lookup order: direct rate, inverse rate, USD
// pivot. An unresolvable pair degrades to returning the amount unconverted;
// conversion never errors.
package currency

import (
	"github.com/shopspring/decimal"

	"openrtb-auction/internal/domain"
)

type Converter struct {
	data *domain.CurrencyConversionData
}

func NewConverter(data *domain.CurrencyConversionData) *Converter {
	return &Converter{data: data}
}

// Convert converts amount from one currency to another. When from == to the
// amount is returned unchanged with no rate lookup.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	if from == to {
		return amount
	}

	conversions := c.data.Conversions

	if rate, ok := conversions[from][to]; ok && rate != 0 {
		return mul(amount, decimal.NewFromFloat(rate))
	}

	if rate, ok := conversions[to][from]; ok && rate != 0 {
		return mul(amount, decimal.NewFromInt(1).Div(decimal.NewFromFloat(rate)))
	}

	sourceRate, sourceOK := c.usdRate(from)
	targetRate, targetOK := c.usdRate(to)
	if sourceOK && targetOK {
		return mul(amount, targetRate.Div(sourceRate))
	}

	return amount
}

// usdRate resolves a currency's rate against USD: identity for USD itself,
// then the direct USD->currency quote, then the reciprocal of currency->USD.
func (c *Converter) usdRate(code string) (decimal.Decimal, bool) {
	if code == "USD" {
		return decimal.NewFromInt(1), true
	}

	conversions := c.data.Conversions
	if rate, ok := conversions["USD"][code]; ok && rate != 0 {
		return decimal.NewFromFloat(rate), true
	}
	if rate, ok := conversions[code]["USD"]; ok && rate != 0 {
		return decimal.NewFromInt(1).Div(decimal.NewFromFloat(rate)), true
	}

	return decimal.Decimal{}, false
}

func mul(amount float64, rate decimal.Decimal) float64 {
	return decimal.NewFromFloat(amount).Mul(rate).InexactFloat64()
}
