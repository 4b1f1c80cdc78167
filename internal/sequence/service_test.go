package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceDB(t *testing.T) *gorm.DB {
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
	if err := db.AutoMigrate(&SequenceCounter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextCreatesCounterAtOne(t *testing.T) {
	db := setupSequenceDB(t)
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	seq, err := svc.Next(context.Background(), db, CounterReading)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if seq != 1 {
		t.Fatalf("expected first allocation to be 1, got %d", seq)
	}

	seq, err = svc.Next(context.Background(), db, CounterReading)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if seq != 2 {
		t.Fatalf("expected second allocation to be 2, got %d", seq)
	}
}

func TestNextCodePadding(t *testing.T) {
	db := setupSequenceDB(t)
	svc := NewService(ServiceParam{Log: zap.NewNop()})
	ctx := context.Background()

	code, err := svc.NextCode(ctx, db, CounterReading, PrefixReading, 3)
	if err != nil {
		t.Fatalf("next code: %v", err)
	}
	if code != "L001" {
		t.Fatalf("expected L001, got %s", code)
	}

	code, err = svc.NextCode(ctx, db, CounterInvoice, PrefixInvoice, 6)
	if err != nil {
		t.Fatalf("next code: %v", err)
	}
	if code != "INV000001" {
		t.Fatalf("expected INV000001, got %s", code)
	}
}

func TestNextConcurrentUnique(t *testing.T) {
	db := setupSequenceDB(t)
	svc := NewService(ServiceParam{Log: zap.NewNop()})
	ctx := context.Background()

	const callers = 50
	results := make(chan int64, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := svc.Next(ctx, db, CounterInvoice)
			if err != nil {
				errs <- err
				return
			}
			results <- seq
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent next: %v", err)
	}

	seen := make(map[int64]bool, callers)
	for seq := range results {
		if seen[seq] {
			t.Fatalf("duplicate sequence value %d", seq)
		}
		seen[seq] = true
	}
	if len(seen) != callers {
		t.Fatalf("expected %d distinct values, got %d", callers, len(seen))
	}
}
