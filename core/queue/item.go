package queue

import (
	"time"

	"gorm.io/datatypes"
)

// Operation is the kind of local mutation an item describes.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// Status is the delivery state of an item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Item is one pending local mutation awaiting outbound propagation.
type Item struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EntityType  string         `gorm:"size:50;not null;index" json:"entity_type"`
	EntityID    string         `gorm:"size:64;not null" json:"entity_id"`
	Operation   Operation      `gorm:"size:20;not null" json:"operation"`
	Payload     datatypes.JSON `json:"payload"`
	Status      Status         `gorm:"size:20;not null;index;default:pending" json:"status"`
	RetryCount  int            `gorm:"not null;default:0" json:"retry_count"`
	LastError   string         `gorm:"type:text" json:"last_error,omitempty"`
	ProcessedAt *time.Time     `json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName pins the table name independent of the naming strategy.
func (Item) TableName() string {
	return "sync_queue_items"
}

// Models returns the tables owned by this package, for migrations.
func Models() []any {
	return []any{&Item{}}
}

// RequiredColumns lists the columns the processor reads and writes.
func RequiredColumns() map[string][]string {
	return map[string][]string{
		"sync_queue_items": {
			"id", "entity_type", "entity_id", "operation", "payload", "status",
			"retry_count", "last_error", "processed_at",
		},
	}
}
