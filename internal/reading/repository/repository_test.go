package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReadingDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()

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
	if err := db.AutoMigrate(&domain.Reading{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return db, node
}

func seedReading(t *testing.T, db *gorm.DB, node *snowflake.Node, readAt time.Time, current float64) *domain.Reading {
	t.Helper()
	reading := &domain.Reading{
		ID:            node.Generate(),
		Code:          fmt.Sprintf("L%d", node.Generate()),
		ConnectionID:  1,
		CustomerID:    1,
		PreviousValue: 100,
		CurrentValue:  current,
		Consumption:   current - 100,
		ReadAt:        readAt,
		RecordedBy:    "reader-07",
		Version:       1,
	}
	if err := Provide().Insert(context.Background(), db, reading); err != nil {
		t.Fatalf("insert reading: %v", err)
	}
	return reading
}

func TestUpdateAmendedRejectsStaleVersion(t *testing.T) {
	db, node := setupReadingDB(t)
	repo := Provide()
	ctx := context.Background()

	reading := seedReading(t, db, node, time.Now().UTC(), 125)

	reading.CurrentValue = 110
	reading.Consumption = 10
	if err := repo.UpdateAmended(ctx, db, reading, 1); err != nil {
		t.Fatalf("first amendment: %v", err)
	}
	if reading.Version != 2 {
		t.Fatalf("expected version 2, got %d", reading.Version)
	}

	// A writer still holding version 1 loses.
	err := repo.UpdateAmended(ctx, db, reading, 1)
	if !errors.Is(err, domain.ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

func TestLatestForConnectionOrdersByReadAt(t *testing.T) {
	db, node := setupReadingDB(t)
	repo := Provide()
	ctx := context.Background()

	now := time.Now().UTC()
	seedReading(t, db, node, now.Add(-2*time.Hour), 110)
	newest := seedReading(t, db, node, now, 125)

	latest, err := repo.LatestForConnection(ctx, db, 1)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ID != newest.ID {
		t.Fatalf("expected the newest reading, got %+v", latest)
	}

	latest, err = repo.LatestForConnection(ctx, db, 999)
	if err != nil {
		t.Fatalf("latest for empty connection: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil for unknown connection, got %+v", latest)
	}
}

func TestAverageConsumptionExcludesGivenReading(t *testing.T) {
	db, node := setupReadingDB(t)
	repo := Provide()
	ctx := context.Background()

	now := time.Now().UTC()
	seedReading(t, db, node, now.AddDate(0, -2, 0), 110)
	seedReading(t, db, node, now.AddDate(0, -1, 0), 130)
	spike := seedReading(t, db, node, now, 200)

	avg, err := repo.AverageConsumption(ctx, db, 1, now.AddDate(0, -3, 0), spike.ID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 20 {
		t.Fatalf("expected average 20, got %g", avg)
	}

	avg, err = repo.AverageConsumption(ctx, db, 999, now.AddDate(0, -3, 0), 0)
	if err != nil {
		t.Fatalf("average for empty connection: %v", err)
	}
	if avg != 0 {
		t.Fatalf("expected 0 for no history, got %g", avg)
	}
}
