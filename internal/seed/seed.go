package seed

import (
	"context"
	"errors"

	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoDistrictCode   = "DST-DEMO"
	demoCustomerCode   = "C0001"
	demoConnectionCode = "CON0001"
)

// EnsureDemoDistrict seeds a full tariff catalog plus one customer and
// connection so a fresh install can bill readings immediately. Idempotent:
// an already seeded database is left untouched.
func EnsureDemoDistrict(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tariffs int64
		if err := tx.Model(&tariffdomain.TariffConfig{}).Count(&tariffs).Error; err != nil {
			return err
		}
		if tariffs > 0 {
			return nil
		}

		districtID := node.Generate()
		for _, cfg := range demoTariffs(node, districtID) {
			if err := tx.Create(&cfg).Error; err != nil {
				return err
			}
		}

		customer := custdomain.Customer{
			ID:              node.Generate(),
			Code:            demoCustomerCode,
			Name:            "Demo Customer",
			AvailableCredit: dec("200"),
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		connection := conndomain.Connection{
			ID:             node.Generate(),
			Code:           demoConnectionCode,
			CustomerID:     customer.ID,
			DistrictID:     districtID,
			Category:       tariffdomain.CategoryDomestic,
			InitialReading: 0,
			Status:         conndomain.StatusActive,
		}
		return tx.Create(&connection).Error
	})
}

// demoTariffs covers every category with the standard published rates.
func demoTariffs(node *snowflake.Node, districtID snowflake.ID) []tariffdomain.TariffConfig {
	tiered := tariffdomain.TariffConfig{
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

	domestic := tiered
	domestic.ID = node.Generate()
	domestic.DistrictID = districtID
	domestic.Category = tariffdomain.CategoryDomestic

	municipal := tiered
	municipal.ID = node.Generate()
	municipal.DistrictID = districtID
	municipal.Category = tariffdomain.CategoryMunicipal
	municipal.UseTiers = true

	fountain := tariffdomain.TariffConfig{
		ID:         node.Generate(),
		DistrictID: districtID,
		Category:   tariffdomain.CategoryPublicFountain,
		UnitRate:   dec("7.5"),
	}

	flatRate := func(category tariffdomain.Category, baseFee, minimum, overage string) tariffdomain.TariffConfig {
		return tariffdomain.TariffConfig{
			ID:                 node.Generate(),
			DistrictID:         districtID,
			Category:           category,
			BaseFee:            dec(baseFee),
			MinimumConsumption: dec(minimum),
			OverageRate:        dec(overage),
		}
	}

	return []tariffdomain.TariffConfig{
		domestic,
		municipal,
		fountain,
		flatRate(tariffdomain.CategoryCommercial, "300", "15", "45"),
		flatRate(tariffdomain.CategoryIndustrial, "500", "25", "60"),
		flatRate(tariffdomain.CategoryPublic, "250", "15", "40"),
	}
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}
