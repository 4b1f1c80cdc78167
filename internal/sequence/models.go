package sequence

import "time"

// Counter names used by the billing engine.
const (
	CounterReading = "reading"
	CounterInvoice = "invoice"
)

// Code prefixes for human-readable identifiers.
const (
	PrefixReading = "L"
	PrefixInvoice = "INV"
)

// SequenceCounter is a named monotonically increasing counter. Seq only moves
// through the single conditional upsert in Service.Next.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;type:text"`
	Seq       int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
