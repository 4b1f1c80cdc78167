package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func domesticConfig() TariffConfig {
	return TariffConfig{
		Category:        CategoryDomestic,
		AvailabilityFee: dec("50"),
		Tier1Min:        dec("0"),
		Tier1Max:        dec("10"),
		Tier1Rate:       dec("10"),
		Tier2Min:        dec("10"),
		Tier2Max:        dec("20"),
		Tier2Rate:       dec("20"),
		Tier3Min:        dec("20"),
		Tier3Rate:       dec("30"),
	}
}

func TestDomesticTieredScenario(t *testing.T) {
	// Tiers [0-10]@10, [10-20]@20, [20+]@30, fee 50, consumption 25:
	// 50 + 10x10 + 10x20 + 5x30 = 500.
	amount, err := ComputeBaseAmount(CategoryDomestic, dec("25"), domesticConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("500")) {
		t.Fatalf("expected 500, got %s", amount)
	}
}

func TestDomesticLowConsumptionOnlyTier1(t *testing.T) {
	amount, err := ComputeBaseAmount(CategoryDomestic, dec("7"), domesticConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("120")) {
		t.Fatalf("expected 120, got %s", amount)
	}
}

func TestDomesticZeroConsumptionPaysAvailabilityFee(t *testing.T) {
	amount, err := ComputeBaseAmount(CategoryDomestic, dec("0"), domesticConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("50")) {
		t.Fatalf("expected availability fee 50, got %s", amount)
	}
}

func TestPublicFountainFlatRate(t *testing.T) {
	cfg := TariffConfig{Category: CategoryPublicFountain, UnitRate: dec("7.5")}
	amount, err := ComputeBaseAmount(CategoryPublicFountain, dec("12"), cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("90")) {
		t.Fatalf("expected 90, got %s", amount)
	}
}

func TestMunicipalFlatWhenTiersDisabled(t *testing.T) {
	cfg := domesticConfig()
	cfg.Category = CategoryMunicipal
	cfg.UseTiers = false
	cfg.UnitRate = dec("15")

	amount, err := ComputeBaseAmount(CategoryMunicipal, dec("10"), cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("200")) {
		t.Fatalf("expected 50 + 10x15 = 200, got %s", amount)
	}
}

func TestMunicipalTieredWhenEnabled(t *testing.T) {
	cfg := domesticConfig()
	cfg.Category = CategoryMunicipal
	cfg.UseTiers = true

	amount, err := ComputeBaseAmount(CategoryMunicipal, dec("25"), cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("500")) {
		t.Fatalf("expected 500, got %s", amount)
	}
}

func TestCommercialBaseFeePlusOverage(t *testing.T) {
	cfg := TariffConfig{
		Category:           CategoryCommercial,
		BaseFee:            dec("300"),
		MinimumConsumption: dec("25"),
		OverageRate:        dec("45"),
	}

	// Below the minimum only the base fee applies.
	amount, err := ComputeBaseAmount(CategoryCommercial, dec("20"), cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("300")) {
		t.Fatalf("expected 300, got %s", amount)
	}

	amount, err = ComputeBaseAmount(CategoryIndustrial, dec("30"), cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("525")) {
		t.Fatalf("expected 300 + 5x45 = 525, got %s", amount)
	}
}

func TestUnsupportedCategoryRejected(t *testing.T) {
	_, err := ComputeBaseAmount(Category("GHOST"), dec("1"), TariffConfig{})
	if !errors.Is(err, ErrUnsupportedCategory) {
		t.Fatalf("expected unsupported category, got %v", err)
	}
}

func TestTierValidationRejectsGaps(t *testing.T) {
	cfg := domesticConfig()
	cfg.Tier2Min = dec("12") // gap between 10 and 12

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTierConfig) {
		t.Fatalf("expected invalid tier config, got %v", err)
	}
	if _, err := ComputeBaseAmount(CategoryDomestic, dec("25"), cfg); !errors.Is(err, ErrInvalidTierConfig) {
		t.Fatalf("expected tier config error from calculator, got %v", err)
	}
}

func TestTariffMonotonicity(t *testing.T) {
	cfg := domesticConfig()
	previous := decimal.Zero
	for c := 0; c <= 40; c++ {
		amount, err := ComputeBaseAmount(CategoryDomestic, decimal.NewFromInt(int64(c)), cfg)
		if err != nil {
			t.Fatalf("compute at %d: %v", c, err)
		}
		if amount.LessThan(previous) {
			t.Fatalf("base amount decreased at consumption %d: %s < %s", c, amount, previous)
		}
		previous = amount
	}
}

func TestRoundingHalfUpPerSlice(t *testing.T) {
	cfg := TariffConfig{Category: CategoryPublicFountain, UnitRate: dec("0.335")}
	amount, err := ComputeBaseAmount(CategoryPublicFountain, dec("1"), cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !amount.Equal(dec("0.34")) {
		t.Fatalf("expected half-up rounding to 0.34, got %s", amount)
	}
}
