package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	auditrepo "github.com/aquabill/aquabill/internal/audit/repository"
	auditservice "github.com/aquabill/aquabill/internal/audit/service"
	"github.com/aquabill/aquabill/internal/clock"
	"github.com/aquabill/aquabill/internal/config"
	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	connrepo "github.com/aquabill/aquabill/internal/connection/repository"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	custrepo "github.com/aquabill/aquabill/internal/customer/repository"
	"github.com/aquabill/aquabill/internal/geo"
	invdomain "github.com/aquabill/aquabill/internal/invoice/domain"
	invrepo "github.com/aquabill/aquabill/internal/invoice/repository"
	"github.com/aquabill/aquabill/internal/metrics"
	"github.com/aquabill/aquabill/internal/migration"
	"github.com/aquabill/aquabill/internal/notification"
	paydomain "github.com/aquabill/aquabill/internal/payment/domain"
	payrepo "github.com/aquabill/aquabill/internal/payment/repository"
	readingrepo "github.com/aquabill/aquabill/internal/reading/repository"
	readingservice "github.com/aquabill/aquabill/internal/reading/service"
	"github.com/aquabill/aquabill/internal/sequence"
	"github.com/aquabill/aquabill/internal/storage"
	tariffrepo "github.com/aquabill/aquabill/internal/tariff/repository"
	"github.com/aquabill/aquabill/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	if err := migration.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	log := zap.NewNop()
	m := metrics.New()
	cfg := config.Config{HTTPAddr: ":0", EvidenceDir: t.TempDir()}

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Repo: auditrepo.Provide(),
	})

	readingSvc := readingservice.NewService(readingservice.Params{
		DB:      db,
		Log:     log,
		Clock:   clock.NewSystemClock(),
		GenID:   node,
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),

		Geo:      geo.NewValidator(log),
		Sequence: sequence.NewService(sequence.ServiceParam{Log: log}),

		Readings:    readingrepo.Provide(),
		Connections: connrepo.Provide(),
		Customers:   custrepo.Provide(),
		Tariffs:     tariffrepo.Provide(),
		Invoices:    invrepo.Provide(),
		Payments:    payrepo.Provide(),

		Audit:    auditSvc,
		Metrics:  m,
		Notifier: notification.NewLogDispatcher(log),
	})

	evidence, err := storage.NewLocalStore(cfg, log)
	if err != nil {
		t.Fatalf("evidence store: %v", err)
	}

	engine := NewEngine(log, m)
	NewServer(ServerParams{
		Gin:   engine,
		Cfg:   cfg,
		DB:    db,
		GenID: node,

		ReadingSvc: readingSvc,
		AuditSvc:   auditSvc,
		Evidence:   evidence,

		Customers:   custrepo.Provide(),
		Connections: connrepo.Provide(),
		Tariffs:     tariffrepo.Provide(),

		InvoiceStore:    repository.ProvideStore[invdomain.Invoice](db),
		CustomerStore:   repository.ProvideStore[custdomain.Customer](db),
		ConnectionStore: repository.ProvideStore[conndomain.Connection](db),
	})

	return &testServer{engine: engine, db: db}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v (body %s)", err, w.Body.String())
	}
}

// seedBillingFixtures provisions a customer, tariff and connection through
// the public API, returning the connection ID.
func seedBillingFixtures(t *testing.T, ts *testServer, credit string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/v1/customers", gin.H{
		"code": "C0001", "name": "Amelia Tembo", "available_credit": credit,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create customer: status %d body %s", w.Code, w.Body.String())
	}
	var customer struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &customer)

	districtID := "7001"
	w = ts.do(t, http.MethodPost, "/v1/tariffs", gin.H{
		"district_id":      districtID,
		"category":         "DOMESTIC",
		"availability_fee": "50",
		"tier1_min":        "0",
		"tier1_max":        "10",
		"tier1_rate":       "10",
		"tier2_min":        "10",
		"tier2_max":        "20",
		"tier2_rate":       "20",
		"tier3_min":        "20",
		"tier3_rate":       "30",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create tariff: status %d body %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/v1/connections", gin.H{
		"code":            "CON0001",
		"customer_id":     customer.ID,
		"district_id":     districtID,
		"category":        "DOMESTIC",
		"initial_reading": 100,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create connection: status %d body %s", w.Code, w.Body.String())
	}
	var connection struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &connection)
	return connection.ID
}

func TestBillingFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	connectionID := seedBillingFixtures(t, ts, "200")

	w := ts.do(t, http.MethodPost, "/v1/readings", gin.H{
		"connection_id": connectionID,
		"current_value": 125,
		"latitude":      "-13.47",
		"longitude":     "27.90",
		"recorded_by":   "reader-07",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit reading: status %d body %s", w.Code, w.Body.String())
	}

	var result struct {
		Reading struct {
			ID   string `json:"id"`
			Code string `json:"code"`
		} `json:"reading"`
		Invoice struct {
			Code          string `json:"code"`
			TotalAmount   string `json:"total_amount"`
			RemainingDebt string `json:"remaining_debt"`
			Status        string `json:"status"`
		} `json:"invoice"`
	}
	decodeData(t, w, &result)

	if result.Reading.Code != "L001" {
		t.Fatalf("expected L001, got %s", result.Reading.Code)
	}
	if result.Invoice.Code != "INV000001" {
		t.Fatalf("expected INV000001, got %s", result.Invoice.Code)
	}
	if !mustDec(t, result.Invoice.TotalAmount).Equal(decimal.NewFromInt(560)) {
		t.Fatalf("expected total 560, got %s", result.Invoice.TotalAmount)
	}
	if result.Invoice.Status != string(invdomain.StatusPending) {
		t.Fatalf("expected PENDING, got %s", result.Invoice.Status)
	}

	// Correction settles the invoice and returns credit.
	w = ts.do(t, http.MethodPatch, "/v1/readings/"+result.Reading.ID, gin.H{
		"current_value": 110,
		"notes":         "misread dial",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("correct reading: status %d body %s", w.Code, w.Body.String())
	}
	var corrected struct {
		Invoice struct {
			TotalAmount string `json:"total_amount"`
			Status      string `json:"status"`
		} `json:"invoice"`
	}
	decodeData(t, w, &corrected)
	if !mustDec(t, corrected.Invoice.TotalAmount).Equal(decimal.NewFromInt(168)) {
		t.Fatalf("expected total 168, got %s", corrected.Invoice.TotalAmount)
	}
	if corrected.Invoice.Status != string(invdomain.StatusPaid) {
		t.Fatalf("expected PAID, got %s", corrected.Invoice.Status)
	}

	// The invoice shows up in the listing.
	w = ts.do(t, http.MethodGet, "/v1/invoices?status=paid", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list invoices: status %d body %s", w.Code, w.Body.String())
	}
	var invoices []json.RawMessage
	decodeData(t, w, &invoices)
	if len(invoices) != 1 {
		t.Fatalf("expected 1 paid invoice, got %d", len(invoices))
	}

	// Reversal wipes reading, invoice and payments.
	w = ts.do(t, http.MethodDelete, "/v1/readings/"+result.Reading.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reverse reading: status %d body %s", w.Code, w.Body.String())
	}
	w = ts.do(t, http.MethodGet, "/v1/readings/"+result.Reading.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after reversal, got %d", w.Code)
	}

	var payments int64
	ts.db.Model(&paydomain.Payment{}).Count(&payments)
	if payments != 0 {
		t.Fatalf("expected no payments after reversal, got %d", payments)
	}

	// Every operation left an audit trail.
	w = ts.do(t, http.MethodGet, "/v1/audit-logs?target_type=reading", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list audit logs: status %d body %s", w.Code, w.Body.String())
	}
	var records []auditdomain.AuditRecord
	decodeData(t, w, &records)
	if len(records) != 3 {
		t.Fatalf("expected submit, correct and reverse audit records, got %d", len(records))
	}
}

func TestSubmitReadingValidation(t *testing.T) {
	ts := newTestServer(t)
	connectionID := seedBillingFixtures(t, ts, "0")

	// Bad coordinate format.
	w := ts.do(t, http.MethodPost, "/v1/readings", gin.H{
		"connection_id": connectionID,
		"current_value": 125,
		"latitude":      "north-ish",
		"longitude":     "27.90",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad coordinate, got %d body %s", w.Code, w.Body.String())
	}

	// Value below the previous reading.
	w = ts.do(t, http.MethodPost, "/v1/readings", gin.H{
		"connection_id": connectionID,
		"current_value": 90,
		"latitude":      "-13.47",
		"longitude":     "27.90",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rollback value, got %d body %s", w.Code, w.Body.String())
	}

	// Unknown connection.
	w = ts.do(t, http.MethodPost, "/v1/readings", gin.H{
		"connection_id": "123456789",
		"current_value": 125,
		"latitude":      "-13.47",
		"longitude":     "27.90",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown connection, got %d body %s", w.Code, w.Body.String())
	}
}

func TestCreateTariffRejectsGappedTiers(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/tariffs", gin.H{
		"district_id":      "7002",
		"category":         "DOMESTIC",
		"availability_fee": "50",
		"tier1_min":        "0",
		"tier1_max":        "10",
		"tier1_rate":       "10",
		"tier2_min":        "12",
		"tier2_max":        "20",
		"tier2_rate":       "20",
		"tier3_min":        "20",
		"tier3_rate":       "30",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for gapped tiers, got %d body %s", w.Code, w.Body.String())
	}
}

func TestCreateCustomerDuplicateCodeConflicts(t *testing.T) {
	ts := newTestServer(t)

	body := gin.H{"code": "C0001", "name": "Amelia Tembo"}
	if w := ts.do(t, http.MethodPost, "/v1/customers", body); w.Code != http.StatusCreated {
		t.Fatalf("create customer: status %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/v1/customers", body); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate code, got %d", w.Code)
	}
}

func mustDec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", v, err)
	}
	return d
}

