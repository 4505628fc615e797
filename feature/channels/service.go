package channels

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/channel"
	"channel-manager/core/reconcile"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
)

// Service implements the exposed channel operations.
type Service struct {
	registry *channel.Registry
	engine   *reconcile.Engine
	repo     Repository
	archive  *Archive
	settings channel.Settings
	doer     channel.Doer
	logger   *zap.Logger
	now      func() time.Time

	inflight singleflight.Group
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithArchive archives the raw payloads of every fetch.
func WithArchive(a *Archive) ServiceOption {
	return func(s *Service) { s.archive = a }
}

// WithDoer overrides the outbound HTTP client handed to providers.
func WithDoer(d channel.Doer) ServiceOption {
	return func(s *Service) { s.doer = d }
}

// NewService creates the channel service.
func NewService(registry *channel.Registry, engine *reconcile.Engine, repo Repository, settings channel.Settings, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.SyncWindowDays <= 0 {
		settings.SyncWindowDays = 30
	}
	s := &Service{
		registry: registry,
		engine:   engine,
		repo:     repo,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.doer == nil {
		s.doer = channel.NewHTTPClient(settings.Timeout)
	}
	return s
}

func (s *Service) provider(t Target) (channel.Provider, error) {
	return s.registry.New(t.Name, t.Config, s.doer, s.logger)
}

// SyncChannelBookings fetches the bookings of window from the channel and
// reconciles them. A fetch failure is returned as *reconcile.BatchFatalError
// together with the "error" run written for it.
func (s *Service) SyncChannelBookings(ctx context.Context, t Target, window booking.DateRange) (*booking.SyncRunLog, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	p, err := s.provider(t)
	if err != nil {
		return nil, err
	}

	return s.engine.Sync(ctx, t.ID, p.Name(), func(ctx context.Context) ([]booking.CanonicalBooking, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()

		bookings, err := p.FetchBookings(fetchCtx, window)
		if err != nil {
			return nil, err
		}
		if s.archive != nil {
			s.archive.Record(ctx, p.Name(), window, bookings)
		}
		return bookings, nil
	})
}

// SyncChannel syncs a stored channel. Concurrent calls for the same channel
// share a single run. The shared run is detached from the caller that
// started it and bounded by twice the provider timeout.
func (s *Service) SyncChannel(ctx context.Context, channelID uint, window booking.DateRange) (*booking.SyncRunLog, error) {
	v, err, shared := s.inflight.Do(strconv.FormatUint(uint64(channelID), 10), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*s.settings.Timeout)
		defer cancel()

		ch, err := s.repo.Get(runCtx, channelID)
		if err != nil {
			return nil, err
		}
		return s.SyncChannelBookings(runCtx, ch.Target(), window)
	})
	if shared {
		s.logger.Debug("Joined in-flight channel sync", zap.Uint("channel_id", channelID))
	}
	run, _ := v.(*booking.SyncRunLog)
	return run, err
}

// PushAvailability pushes a room count to one channel. The outcome is
// recorded as a run log; transport failures yield false.
func (s *Service) PushAvailability(ctx context.Context, t Target, roomType string, date time.Time, count int) bool {
	return s.push(ctx, t, booking.SyncTypeAvailability, func(ctx context.Context, p channel.Provider) bool {
		return p.SyncAvailability(ctx, roomType, date, count)
	})
}

// PushRates pushes a nightly rate to one channel.
func (s *Service) PushRates(ctx context.Context, t Target, roomType string, date time.Time, rate decimal.Decimal) bool {
	return s.push(ctx, t, booking.SyncTypeRates, func(ctx context.Context, p channel.Provider) bool {
		return p.SyncRates(ctx, roomType, date, rate)
	})
}

func (s *Service) push(ctx context.Context, t Target, syncType booking.SyncType, call func(context.Context, channel.Provider) bool) bool {
	p, err := s.provider(t)
	if err != nil {
		s.logger.Warn("Cannot push to channel", zap.String("channel", t.Name), zap.Error(err))
		return false
	}

	startedAt := s.now()
	pushCtx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	ok := call(pushCtx, p)
	cancel()

	if _, err := s.engine.RecordPush(ctx, t.ID, p.Name(), syncType, startedAt, ok); err != nil {
		s.logger.Error("Failed to record push", zap.String("channel", p.Name()), zap.Error(err))
	}
	return ok
}

// UpdateBookingStatus pushes a canonical status change for one external booking.
func (s *Service) UpdateBookingStatus(ctx context.Context, t Target, externalBookingID string, status booking.Status) (bool, error) {
	if !status.IsCanonical() {
		return false, fmt.Errorf("unknown booking status %q", status)
	}
	p, err := s.provider(t)
	if err != nil {
		return false, err
	}
	pushCtx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()
	return p.UpdateBookingStatus(pushCtx, externalBookingID, status), nil
}

// CreateChannel stores a new channel account after checking that a provider
// exists for it and that its credentials are complete.
func (s *Service) CreateChannel(ctx context.Context, name, displayName string, cfg channel.Config) (*Channel, error) {
	name = channel.NormalizeName(name)
	if !s.registry.Has(name) {
		return nil, fmt.Errorf("%w: %s", channel.ErrUnknownProvider, name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ch := &Channel{
		Name:        name,
		DisplayName: displayName,
		Credentials: datatypes.NewJSONType(cfg),
		Active:      true,
	}
	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return ch, nil
}

// Channel returns a stored channel.
func (s *Service) Channel(ctx context.Context, id uint) (*Channel, error) {
	return s.repo.Get(ctx, id)
}

// ActiveChannels returns every active stored channel.
func (s *Service) ActiveChannels(ctx context.Context) ([]Channel, error) {
	return s.repo.ListActive(ctx)
}

// ListRuns returns recent runs of a channel, newest first.
func (s *Service) ListRuns(ctx context.Context, channelName string, limit int) ([]booking.SyncRunLog, error) {
	return s.engine.ListRuns(ctx, channel.NormalizeName(channelName), limit)
}

// ListArchive lists archived fetch objects under prefix.
func (s *Service) ListArchive(ctx context.Context, prefix string) ([]string, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("payload archive is disabled")
	}
	return s.archive.List(ctx, prefix)
}

// SyncActive syncs every active channel for [today, today+SyncWindowDays].
// It returns the runs that completed; failures are logged per channel.
func (s *Service) SyncActive(ctx context.Context) ([]*booking.SyncRunLog, error) {
	chans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active channels: %w", err)
	}

	window := booking.NewDateRange(s.now(), s.settings.SyncWindowDays)
	runs := make([]*booking.SyncRunLog, 0, len(chans))
	for _, ch := range chans {
		run, err := s.SyncChannel(ctx, ch.ID, window)
		if err != nil {
			s.logger.Warn("Scheduled channel sync failed",
				zap.Uint("channel_id", ch.ID),
				zap.String("channel", ch.Name),
				zap.Error(err))
		}
		if run != nil {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// PushAvailabilityToActive pushes a room count to every active channel and
// returns how many accepted it.
func (s *Service) PushAvailabilityToActive(ctx context.Context, roomType string, date time.Time, count int) (int, error) {
	chans, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active channels: %w", err)
	}
	accepted := 0
	for _, ch := range chans {
		if s.PushAvailability(ctx, ch.Target(), roomType, date, count) {
			accepted++
		} else {
			s.logger.Warn("Channel rejected availability push",
				zap.String("channel", ch.Name),
				zap.String("room_type", roomType),
				zap.Int("available", count))
		}
	}
	return accepted, nil
}
