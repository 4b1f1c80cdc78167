package domain

import (
	"github.com/aquabill/aquabill/internal/money"
	"github.com/shopspring/decimal"
)

// ComputeBaseAmount prices a billing period's consumption for a category.
// Pure and deterministic: no I/O, safe to re-run during corrections. Every
// slice is rounded half-up to 2 decimals before summing so the base amount
// matches the invoice-level rounding.
func ComputeBaseAmount(category Category, consumption decimal.Decimal, cfg TariffConfig) (decimal.Decimal, error) {
	if consumption.Sign() < 0 {
		consumption = decimal.Zero
	}

	switch category {
	case CategoryPublicFountain:
		return money.Round2(consumption.Mul(cfg.UnitRate)), nil

	case CategoryDomestic:
		return tieredAmount(consumption, cfg)

	case CategoryMunicipal:
		if cfg.UseTiers {
			return tieredAmount(consumption, cfg)
		}
		amount := money.Round2(cfg.AvailabilityFee)
		amount = amount.Add(money.Round2(consumption.Mul(cfg.UnitRate)))
		return amount, nil

	case CategoryCommercial, CategoryIndustrial, CategoryPublic:
		overage := consumption.Sub(cfg.MinimumConsumption)
		if overage.Sign() < 0 {
			overage = decimal.Zero
		}
		amount := money.Round2(cfg.BaseFee)
		amount = amount.Add(money.Round2(overage.Mul(cfg.OverageRate)))
		return amount, nil

	default:
		return decimal.Zero, ErrUnsupportedCategory
	}
}

// tieredAmount bills the availability fee plus each tier's own slice of the
// consumption. Tiers contribute independently: tier N covers only the units
// between its min and max, never re-billing lower tiers.
func tieredAmount(consumption decimal.Decimal, cfg TariffConfig) (decimal.Decimal, error) {
	if err := cfg.Validate(); err != nil {
		return decimal.Zero, err
	}

	amount := money.Round2(cfg.AvailabilityFee)

	amount = amount.Add(tierSlice(consumption, cfg.Tier1Min, cfg.Tier1Max, cfg.Tier1Rate))
	amount = amount.Add(tierSlice(consumption, cfg.Tier2Min, cfg.Tier2Max, cfg.Tier2Rate))

	// Top tier is open-ended.
	if consumption.GreaterThan(cfg.Tier3Min) {
		units := consumption.Sub(cfg.Tier3Min)
		amount = amount.Add(money.Round2(units.Mul(cfg.Tier3Rate)))
	}

	return amount, nil
}

func tierSlice(consumption, min, max, rate decimal.Decimal) decimal.Decimal {
	upper := decimal.Min(consumption, max)
	units := upper.Sub(min)
	if units.Sign() <= 0 {
		return decimal.Zero
	}
	return money.Round2(units.Mul(rate))
}
