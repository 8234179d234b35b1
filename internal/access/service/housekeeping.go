package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/audit"
	"github.com/aussiebroadwan/squadgate/internal/access/metrics"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/robfig/cron/v3"
)

// DefaultHousekeepingSchedule runs the expiry sweep hourly.
const DefaultHousekeepingSchedule = "@every 1h"

// HousekeepingService persists EXPIRED for pending invitations whose window
// has closed. Reads already treat those rows as expired; the sweep only keeps
// stored status honest for listings and the pending-email index.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Schedule string
	Now      func() time.Time
	Audit    *audit.Recorder
	Metrics  *metrics.Metrics

	cron    *cron.Cron
	initial sync.WaitGroup
}

// NewHousekeepingService creates a sweep on schedule, a robfig/cron spec.
// An empty schedule uses DefaultHousekeepingSchedule.
func NewHousekeepingService(st store.Store, logger *slog.Logger, schedule string) *HousekeepingService {
	if schedule == "" {
		schedule = DefaultHousekeepingSchedule
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Schedule: schedule,
	}
}

// Start runs one sweep immediately and schedules the rest. It is non-blocking.
func (s *HousekeepingService) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.Schedule, s.run); err != nil {
		return fmt.Errorf("invalid housekeeping schedule %q: %w", s.Schedule, err)
	}
	s.cron = c

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.run()
	}()
	c.Start()
	s.Logger.Info("housekeeping service started", "schedule", s.Schedule)
	return nil
}

// Stop waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.Logger.Error("housekeeping sweep failed", "error", err)
	}
}

// Sweep marks every lazily expired pending invitation as expired and returns
// how many rows changed.
func (s *HousekeepingService) Sweep(ctx context.Context) (int64, error) {
	n, err := s.Store.Invitations().ExpirePendingInvitations(ctx, nowFunc(s.Now))
	if err != nil {
		return 0, err
	}

	s.Logger.Info("housekeeping sweep completed", "expired_invitations", n)
	if n > 0 {
		s.Metrics.InvitationsExpired(n)
		s.Audit.Record(ctx, audit.InvitationsExpired, audit.Fields{"count": strconv.FormatInt(n, 10)})
	}
	return n, nil
}
