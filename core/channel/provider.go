package channel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"channel-manager/core/booking"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Provider is implemented once per external channel.
type Provider interface {
	// Name returns the registry key of the provider (e.g. "booking.com").
	Name() string

	// FetchBookings returns every booking the channel reports for the window.
	// Transport failures are returned as *TransportError.
	FetchBookings(ctx context.Context, window booking.DateRange) ([]booking.CanonicalBooking, error)

	// SyncAvailability pushes the number of sellable rooms for a room type and date.
	// It reports false instead of failing when the channel rejects the push.
	SyncAvailability(ctx context.Context, roomType string, date time.Time, available int) bool

	// SyncRates pushes the nightly rate for a room type and date.
	SyncRates(ctx context.Context, roomType string, date time.Time, rate decimal.Decimal) bool

	// UpdateBookingStatus pushes a canonical status change for an external booking.
	UpdateBookingStatus(ctx context.Context, externalBookingID string, status booking.Status) bool

	// Statuses exposes the provider's status table.
	Statuses() *StatusTable
}

// Factory builds a provider for one channel account.
type Factory func(cfg Config, doer Doer, logger *zap.Logger) Provider

// Registry maps channel names to provider factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering the same name twice replaces it.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[NormalizeName(name)] = f
}

// Has reports whether a provider is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[NormalizeName(name)]
	return ok
}

// Names returns the registered channel names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New validates cfg and builds the provider registered under name.
func (r *Registry) New(name string, cfg Config, doer Doer, logger *zap.Logger) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[NormalizeName(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return f(cfg, doer, logger.With(zap.String("channel", NormalizeName(name)))), nil
}

// NormalizeName lower-cases and trims a channel name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
