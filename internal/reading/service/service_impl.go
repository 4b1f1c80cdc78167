package service

import (
	"context"
	"fmt"
	"time"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	"github.com/aquabill/aquabill/internal/clock"
	"github.com/aquabill/aquabill/internal/config"
	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	"github.com/aquabill/aquabill/internal/geo"
	invdomain "github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/aquabill/aquabill/internal/metrics"
	"github.com/aquabill/aquabill/internal/money"
	"github.com/aquabill/aquabill/internal/notification"
	paydomain "github.com/aquabill/aquabill/internal/payment/domain"
	"github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/aquabill/aquabill/internal/sequence"
	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Billing *config.BillingConfigHolder

	Geo      *geo.Validator
	Sequence *sequence.Service

	Readings    domain.Repository
	Connections conndomain.Repository
	Customers   custdomain.Repository
	Tariffs     tariffdomain.Repository
	Invoices    invdomain.Repository
	Payments    paydomain.Repository

	Audit    auditdomain.Service
	Metrics  *metrics.Metrics
	Notifier notification.Dispatcher
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	billing *config.BillingConfigHolder

	geo      *geo.Validator
	sequence *sequence.Service

	readings    domain.Repository
	connections conndomain.Repository
	customers   custdomain.Repository
	tariffs     tariffdomain.Repository
	invoices    invdomain.Repository
	payments    paydomain.Repository

	audit    auditdomain.Service
	metrics  *metrics.Metrics
	notifier notification.Dispatcher
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reading.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		billing:     p.Billing,
		geo:         p.Geo,
		sequence:    p.Sequence,
		readings:    p.Readings,
		connections: p.Connections,
		customers:   p.Customers,
		tariffs:     p.Tariffs,
		invoices:    p.Invoices,
		payments:    p.Payments,
		audit:       p.Audit,
		metrics:     p.Metrics,
		notifier:    p.Notifier,
	}
}

// Submit runs the full billing transaction for one meter reading: geofence
// check, consumption derivation, tariff pricing, tax, automatic credit
// application and invoice issuance, all in one database transaction.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.BillingResult, error) {
	connectionID, err := snowflake.ParseString(req.ConnectionID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.CurrentValue < 0 {
		return nil, domain.ErrInvalidValue
	}

	cfg := s.billing.Get()
	readAt := req.ReadAt
	if readAt.IsZero() {
		readAt = s.clock.Now()
	}

	var result domain.BillingResult
	var abnormal *notification.Notification

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		connection, err := s.connections.FindByID(ctx, tx, connectionID)
		if err != nil {
			return err
		}
		if connection.Status != conndomain.StatusActive {
			return conndomain.ErrInactive
		}

		var registered *geo.Point
		if lat, lon, ok := connection.RegisteredLocation(); ok {
			registered = &geo.Point{Lat: lat, Lon: lon}
		}
		point, err := s.geo.Check(req.Latitude, req.Longitude, registered, cfg.MaxDriftMeters)
		if err != nil {
			return err
		}

		customer, err := s.customers.FindForUpdate(ctx, tx, connection.CustomerID)
		if err != nil {
			return err
		}

		latest, err := s.readings.LatestForConnection(ctx, tx, connectionID)
		if err != nil {
			return err
		}
		previousValue := connection.InitialReading
		if latest != nil {
			previousValue = latest.CurrentValue
			if !readAt.After(latest.ReadAt) {
				return domain.ErrOutOfOrderReading
			}
		}
		if req.CurrentValue < previousValue {
			return domain.ErrNonMonotonicReading
		}
		consumption := req.CurrentValue - previousValue

		code, err := s.sequence.NextCode(ctx, tx, sequence.CounterReading, sequence.PrefixReading, cfg.ReadingCodePad)
		if err != nil {
			return err
		}

		reading := &domain.Reading{
			ID:            s.genID.Generate(),
			Code:          code,
			ConnectionID:  connection.ID,
			CustomerID:    customer.ID,
			PreviousValue: previousValue,
			CurrentValue:  req.CurrentValue,
			Consumption:   consumption,
			Latitude:      point.Lat,
			Longitude:     point.Lon,
			Notes:         req.Notes,
			PhotoRef:      req.PhotoRef,
			ReadAt:        readAt,
			RecordedBy:    req.RecordedBy,
			Version:       1,
		}
		if err := s.readings.Insert(ctx, tx, reading); err != nil {
			return err
		}

		tariff, err := s.tariffs.FindByDistrictAndCategory(ctx, tx, connection.DistrictID, connection.Category)
		if err != nil {
			return err
		}
		base, err := tariffdomain.ComputeBaseAmount(connection.Category, decimal.NewFromFloat(consumption), *tariff)
		if err != nil {
			return err
		}
		tax := money.Round2(base.Mul(decimal.NewFromFloat(cfg.TaxRate)))
		total := base.Add(tax)

		creditUsed := decimal.Min(total, customer.AvailableCredit)
		if creditUsed.Sign() < 0 {
			creditUsed = decimal.Zero
		}
		remaining := money.Round2(total.Sub(creditUsed))

		invoiceCode, err := s.sequence.NextCode(ctx, tx, sequence.CounterInvoice, sequence.PrefixInvoice, cfg.InvoiceCodePad)
		if err != nil {
			return err
		}
		invoice := &invdomain.Invoice{
			ID:            s.genID.Generate(),
			Code:          invoiceCode,
			ReadingID:     reading.ID,
			CustomerID:    customer.ID,
			ConnectionID:  connection.ID,
			BaseAmount:    base,
			TaxAmount:     tax,
			TotalAmount:   total,
			CreditApplied: creditUsed,
			RemainingDebt: remaining,
			Status:        invdomain.StatusForRemaining(remaining),
		}
		if err := invoice.CheckConsistency(); err != nil {
			return err
		}
		if err := s.invoices.Insert(ctx, tx, invoice); err != nil {
			return err
		}

		var payment *paydomain.Payment
		if creditUsed.Sign() > 0 {
			if err := s.customers.ConsumeCredit(ctx, tx, customer, creditUsed, custdomain.CreditSourceInvoice, invoice.ID, s.genID.Generate()); err != nil {
				return err
			}
			payment = &paydomain.Payment{
				ID:         s.genID.Generate(),
				InvoiceID:  invoice.ID,
				CustomerID: customer.ID,
				Amount:     creditUsed,
				Method:     paydomain.MethodCreditBalance,
				Note:       paydomain.NoteAutomaticCredit,
			}
			if err := s.payments.Insert(ctx, tx, payment); err != nil {
				return err
			}
		}

		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     "reading.submitted",
			TargetType: "reading",
			TargetID:   reading.ID.String(),
			ActorID:    req.RecordedBy,
			After:      readingSnapshot(reading),
		}); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     "invoice.issued",
			TargetType: "invoice",
			TargetID:   invoice.ID.String(),
			ActorID:    req.RecordedBy,
			After:      invoiceSnapshot(invoice),
		}); err != nil {
			return err
		}

		abnormal, err = s.detectAbnormal(ctx, tx, reading, cfg)
		if err != nil {
			return err
		}

		result = domain.BillingResult{Reading: reading, Invoice: invoice, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReadingsSubmitted.Inc()
	s.metrics.InvoicesIssued.Inc()
	if result.Payment != nil {
		s.metrics.CreditApplied.Add(result.Payment.Amount.InexactFloat64())
	}
	if abnormal != nil {
		s.metrics.AbnormalAlerts.Inc()
		s.dispatch(*abnormal)
	}

	s.log.Info("reading billed",
		zap.String("reading_code", result.Reading.Code),
		zap.String("invoice_code", result.Invoice.Code),
		zap.Float64("consumption", result.Reading.Consumption),
		zap.String("total", result.Invoice.TotalAmount.String()),
		zap.String("status", string(result.Invoice.Status)),
	)
	return &result, nil
}

// Correct amends a reading's current value and resettles its invoice and
// credit. The reading keeps its identity, code and invoice; only the
// amounts move.
func (s *Service) Correct(ctx context.Context, req domain.CorrectRequest) (*domain.BillingResult, error) {
	readingID, err := snowflake.ParseString(req.ReadingID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.CurrentValue < 0 {
		return nil, domain.ErrInvalidValue
	}

	cfg := s.billing.Get()

	var result domain.BillingResult
	var returned, extra decimal.Decimal

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reading, err := s.readings.FindForUpdate(ctx, tx, readingID)
		if err != nil {
			return err
		}
		if req.CurrentValue < reading.PreviousValue {
			return domain.ErrNonMonotonicReading
		}

		connection, err := s.connections.FindByID(ctx, tx, reading.ConnectionID)
		if err != nil {
			return err
		}
		customer, err := s.customers.FindForUpdate(ctx, tx, reading.CustomerID)
		if err != nil {
			return err
		}
		invoice, err := s.invoices.FindByReadingForUpdate(ctx, tx, reading.ID)
		if err != nil {
			return err
		}
		payment, err := s.payments.FindCreditPayment(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}

		// The payment is the authoritative record of credit actually
		// collected; the invoice column is a fallback for older rows.
		prevUsed := invoice.CreditApplied
		if payment != nil {
			prevUsed = payment.Amount
		}

		readingBefore := readingSnapshot(reading)
		invoiceBefore := invoiceSnapshot(invoice)

		consumption := req.CurrentValue - reading.PreviousValue
		tariff, err := s.tariffs.FindByDistrictAndCategory(ctx, tx, connection.DistrictID, connection.Category)
		if err != nil {
			return err
		}
		base, err := tariffdomain.ComputeBaseAmount(connection.Category, decimal.NewFromFloat(consumption), *tariff)
		if err != nil {
			return err
		}
		tax := money.Round2(base.Mul(decimal.NewFromFloat(cfg.TaxRate)))
		total := base.Add(tax)

		rec := reconcileCredit(total, prevUsed, customer.AvailableCredit)
		if rec.Returned.Sign() > 0 {
			if err := s.customers.ReturnCredit(ctx, tx, customer, rec.Returned, custdomain.CreditSourceCorrection, invoice.ID, s.genID.Generate()); err != nil {
				return err
			}
		}
		if rec.ExtraConsumed.Sign() > 0 {
			if err := s.customers.ConsumeCredit(ctx, tx, customer, rec.ExtraConsumed, custdomain.CreditSourceCorrection, invoice.ID, s.genID.Generate()); err != nil {
				return err
			}
		}

		expectedVersion := reading.Version
		reading.CurrentValue = req.CurrentValue
		reading.Consumption = consumption
		if req.Notes != "" {
			reading.Notes = req.Notes
		}
		if err := s.readings.UpdateAmended(ctx, tx, reading, expectedVersion); err != nil {
			return err
		}

		invoice.BaseAmount = base
		invoice.TaxAmount = tax
		invoice.TotalAmount = total
		invoice.CreditApplied = rec.CreditUsed
		invoice.RemainingDebt = rec.Remaining
		invoice.Status = invdomain.StatusForRemaining(rec.Remaining)
		if err := invoice.CheckConsistency(); err != nil {
			return err
		}
		if err := s.invoices.UpdateAmounts(ctx, tx, invoice); err != nil {
			return err
		}

		switch {
		case rec.CreditUsed.Sign() > 0 && payment == nil:
			payment = &paydomain.Payment{
				ID:         s.genID.Generate(),
				InvoiceID:  invoice.ID,
				CustomerID: customer.ID,
				Amount:     rec.CreditUsed,
				Method:     paydomain.MethodCreditBalance,
				Note:       paydomain.NoteAutomaticCredit,
			}
			if err := s.payments.Insert(ctx, tx, payment); err != nil {
				return err
			}
		case rec.CreditUsed.Sign() > 0:
			payment.Amount = rec.CreditUsed
			if err := s.payments.UpdateAmount(ctx, tx, payment); err != nil {
				return err
			}
		case payment != nil:
			if err := s.payments.Delete(ctx, tx, payment.ID); err != nil {
				return err
			}
			payment = nil
		}

		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     "reading.corrected",
			TargetType: "reading",
			TargetID:   reading.ID.String(),
			ActorID:    req.ActorID,
			Before:     readingBefore,
			After:      readingSnapshot(reading),
		}); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     "invoice.resettled",
			TargetType: "invoice",
			TargetID:   invoice.ID.String(),
			ActorID:    req.ActorID,
			Before:     invoiceBefore,
			After:      invoiceSnapshot(invoice),
		}); err != nil {
			return err
		}

		returned, extra = rec.Returned, rec.ExtraConsumed
		result = domain.BillingResult{Reading: reading, Invoice: invoice, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReadingsCorrected.Inc()
	if returned.Sign() > 0 {
		s.metrics.CreditReturned.Add(returned.InexactFloat64())
	}
	if extra.Sign() > 0 {
		s.metrics.CreditApplied.Add(extra.InexactFloat64())
	}

	s.log.Info("reading corrected",
		zap.String("reading_code", result.Reading.Code),
		zap.String("total", result.Invoice.TotalAmount.String()),
		zap.String("credit_returned", returned.String()),
		zap.String("credit_consumed", extra.String()),
		zap.String("status", string(result.Invoice.Status)),
	)
	return &result, nil
}

// Reverse cancels a reading entirely: applied credit goes back to the
// customer, the invoice and its payments are removed, and the reading is
// deleted so the connection's value chain rewinds to the prior reading.
// Only the latest reading of a connection can be reversed.
func (s *Service) Reverse(ctx context.Context, rawID string) error {
	readingID, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.ErrInvalidID
	}

	var refunded decimal.Decimal

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reading, err := s.readings.FindForUpdate(ctx, tx, readingID)
		if err != nil {
			return err
		}
		latest, err := s.readings.LatestForConnection(ctx, tx, reading.ConnectionID)
		if err != nil {
			return err
		}
		if latest == nil || latest.ID != reading.ID {
			return domain.ErrNotLatestReading
		}

		customer, err := s.customers.FindForUpdate(ctx, tx, reading.CustomerID)
		if err != nil {
			return err
		}
		invoice, err := s.invoices.FindByReadingForUpdate(ctx, tx, reading.ID)
		if err != nil {
			return err
		}
		payment, err := s.payments.FindCreditPayment(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}

		refund := invoice.CreditApplied
		if payment != nil {
			refund = payment.Amount
		}
		if refund.Sign() > 0 {
			if err := s.customers.ReturnCredit(ctx, tx, customer, refund, custdomain.CreditSourceReversal, invoice.ID, s.genID.Generate()); err != nil {
				return err
			}
		}

		if err := s.payments.DeleteByInvoice(ctx, tx, invoice.ID); err != nil {
			return err
		}
		if err := s.invoices.Delete(ctx, tx, invoice.ID); err != nil {
			return err
		}
		if err := s.readings.Delete(ctx, tx, reading.ID); err != nil {
			return err
		}

		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     "reading.reversed",
			TargetType: "reading",
			TargetID:   reading.ID.String(),
			Before:     readingSnapshot(reading),
		}); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     "invoice.cancelled",
			TargetType: "invoice",
			TargetID:   invoice.ID.String(),
			Before:     invoiceSnapshot(invoice),
		}); err != nil {
			return err
		}

		refunded = refund
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.ReadingsReversed.Inc()
	if refunded.Sign() > 0 {
		s.metrics.CreditReturned.Add(refunded.InexactFloat64())
	}

	s.log.Info("reading reversed",
		zap.String("reading_id", readingID.String()),
		zap.String("credit_refunded", refunded.String()),
	)
	return nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*domain.Reading, error) {
	readingID, err := snowflake.ParseString(rawID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.readings.FindByID(ctx, s.db, readingID)
}

// detectAbnormal compares the new consumption against the connection's
// trailing average. Returns the notification to dispatch after commit, or
// nil when the consumption is unremarkable or there is no history.
func (s *Service) detectAbnormal(ctx context.Context, tx *gorm.DB, reading *domain.Reading, cfg config.BillingConfig) (*notification.Notification, error) {
	since := reading.ReadAt.AddDate(0, -cfg.LookbackMonths, 0)
	avg, err := s.readings.AverageConsumption(ctx, tx, reading.ConnectionID, since, reading.ID)
	if err != nil {
		return nil, err
	}
	if avg <= 0 || reading.Consumption <= avg*cfg.AbnormalMultiplier {
		return nil, nil
	}
	return &notification.Notification{
		Kind:     notification.KindAbnormalConsumption,
		Severity: notification.SeverityWarning,
		Message: fmt.Sprintf("consumption %.2f m3 exceeds %.1fx the trailing average %.2f m3",
			reading.Consumption, cfg.AbnormalMultiplier, avg),
		TargetType: "reading",
		TargetID:   reading.ID.String(),
		TargetUser: reading.RecordedBy,
	}, nil
}

// dispatch delivers the notification off the request path. Delivery failures
// are logged and swallowed: billing already committed.
func (s *Service) dispatch(n notification.Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("notification delivery failed",
				zap.String("kind", string(n.Kind)), zap.Error(err))
		}
	}()
}

func readingSnapshot(r *domain.Reading) map[string]any {
	return map[string]any{
		"code":           r.Code,
		"connection_id":  r.ConnectionID.String(),
		"previous_value": r.PreviousValue,
		"current_value":  r.CurrentValue,
		"consumption":    r.Consumption,
		"read_at":        r.ReadAt,
		"version":        r.Version,
	}
}

func invoiceSnapshot(i *invdomain.Invoice) map[string]any {
	return map[string]any{
		"code":           i.Code,
		"base_amount":    i.BaseAmount.String(),
		"tax_amount":     i.TaxAmount.String(),
		"total_amount":   i.TotalAmount.String(),
		"credit_applied": i.CreditApplied.String(),
		"remaining_debt": i.RemainingDebt.String(),
		"status":         string(i.Status),
	}
}
