package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateMap maps a currency code to its rate against the home currency.
type RateMap map[string]decimal.Decimal

// Lookup returns the rate for code and whether it is known.
func (m RateMap) Lookup(code string) (decimal.Decimal, bool) {
	r, ok := m[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Clone returns an independent copy of the map.
func (m RateMap) Clone() RateMap {
	out := make(RateMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NormalizeRates uppercases codes, drops invalid or non-positive rates and
// rebases the rest onto home. Sources quote every rate against their own base
// (NBP uses PLN), so when in carries a rate for home each entry is divided by
// it. Home always ends up exactly 1.
func NormalizeRates(in map[string]decimal.Decimal, home string) RateMap {
	home = strings.ToUpper(strings.TrimSpace(home))
	out := make(RateMap, len(in)+1)
	for code, rate := range in {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !ValidCurrencyCode(code) || !rate.IsPositive() {
			continue
		}
		out[code] = rate
	}
	if base, ok := out[home]; ok && !base.Equal(decimal.NewFromInt(1)) {
		for code, rate := range out {
			out[code] = rate.Div(base)
		}
	}
	out[home] = decimal.NewFromInt(1)
	return out
}

// RateMapFromRecords builds a RateMap from stored exchange-rate records.
func RateMapFromRecords(records []ExchangeRate, home string) RateMap {
	in := make(map[string]decimal.Decimal, len(records))
	for _, r := range records {
		in[r.Currency] = r.Rate
	}
	return NormalizeRates(in, home)
}
