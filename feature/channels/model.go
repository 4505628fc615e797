package channels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channel-manager/core/channel"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrChannelNotFound is returned when a channel id does not exist.
var ErrChannelNotFound = errors.New("channel not found")

// Channel is one configured channel account.
type Channel struct {
	ID          uint                               `gorm:"primaryKey" json:"id"`
	Name        string                             `gorm:"size:50;not null;index" json:"name"`
	DisplayName string                             `gorm:"size:100" json:"display_name"`
	Credentials datatypes.JSONType[channel.Config] `json:"-"`
	Active      bool                               `gorm:"not null;default:true;index" json:"active"`
	CreatedAt   time.Time                          `json:"created_at"`
	UpdatedAt   time.Time                          `json:"updated_at"`
}

// TableName pins the table name independent of the naming strategy.
func (Channel) TableName() string {
	return "channels"
}

// Target returns the addressing used by the channel operations.
func (c Channel) Target() Target {
	return Target{ID: c.ID, Name: channel.NormalizeName(c.Name), Config: c.Credentials.Data()}
}

// Target identifies a channel account for one operation. ID may be zero for
// ad-hoc accounts that are not stored in the channels table.
type Target struct {
	ID     uint
	Name   string
	Config channel.Config
}

// Repository reads channel accounts.
type Repository interface {
	Get(ctx context.Context, id uint) (*Channel, error)
	ListActive(ctx context.Context) ([]Channel, error)
	Create(ctx context.Context, ch *Channel) error
}

// GormRepository implements Repository on a gorm database.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a repository backed by db.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Get(ctx context.Context, id uint) (*Channel, error) {
	var ch Channel
	err := r.db.WithContext(ctx).First(&ch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrChannelNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *GormRepository) ListActive(ctx context.Context) ([]Channel, error) {
	var out []Channel
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *GormRepository) Create(ctx context.Context, ch *Channel) error {
	return r.db.WithContext(ctx).Create(ch).Error
}

// Models returns the tables owned by this package, for migrations.
func Models() []any {
	return []any{&Channel{}}
}
