package service

import (
	"context"
	"log/slog"
	"time"
)

// InviteSweeper deletes expired pending invites. *InviteService satisfies it.
type InviteSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// HousekeepingService periodically removes pending invites that expired
// longer ago than the retention window, so they do not pile up forever.
type HousekeepingService struct {
	sweeper  InviteSweeper
	logger   *slog.Logger
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(sweeper InviteSweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. It sweeps once immediately and then
// on every tick until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.logger.Info("housekeeping service started", "interval", s.interval)
}

// Stop shuts the worker down and waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("failed to delete expired invites", "error", err)
		return
	}
	s.logger.Info("housekeeping sweep completed", "expired_invites_deleted", n)
}
