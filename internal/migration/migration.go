package migration

import (
	"errors"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	invdomain "github.com/aquabill/aquabill/internal/invoice/domain"
	paydomain "github.com/aquabill/aquabill/internal/payment/domain"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/aquabill/aquabill/internal/sequence"
	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"gorm.io/gorm"
)

// RunMigrations creates or upgrades every billing table on startup so the
// service is usable out of the box against a fresh database.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&custdomain.Customer{},
		&custdomain.CreditEntry{},
		&conndomain.Connection{},
		&tariffdomain.TariffConfig{},
		&readingdomain.Reading{},
		&invdomain.Invoice{},
		&paydomain.Payment{},
		&sequence.SequenceCounter{},
		&auditdomain.AuditRecord{},
	)
}
