// Package daemon runs the event loop of a lock session.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// LockSession is the running lock the loop drives.
type LockSession interface {
	Surface() domain.Surface
	Dispatch(ev domain.Event) (done bool)
	Refresh(settings domain.Settings) error
	Unlocked() bool
	Teardown(outcome domain.SessionOutcome)
}

// SettingsLoader re-reads settings from disk.
type SettingsLoader func() (domain.Settings, error)

// LoopConfig holds event loop configuration.
type LoopConfig struct {
	TimerInterval time.Duration // mini-game and warning ticks (default 1s)
}

// DefaultLoopConfig returns default loop configuration.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TimerInterval: time.Second,
	}
}

// Loop is the single dispatcher of a lock session.
// Surface input, timer ticks and settings reloads are applied one at a time
// in the order they arrive.
type Loop struct {
	config  LoopConfig
	lock    LockSession
	reloads <-chan domain.Settings
	loader  SettingsLoader
	logger  *zap.Logger
}

// NewLoop creates an event loop. reloads and loader may be nil.
func NewLoop(
	config LoopConfig,
	lock LockSession,
	reloads <-chan domain.Settings,
	loader SettingsLoader,
	logger *zap.Logger,
) *Loop {
	if config.TimerInterval <= 0 {
		config.TimerInterval = DefaultLoopConfig().TimerInterval
	}
	return &Loop{
		config:  config,
		lock:    lock,
		reloads: reloads,
		loader:  loader,
		logger:  logger,
	}
}

// Run dispatches events until the session unlocks, the surface closes, or
// ctx is canceled. The lock is torn down before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	outcome := domain.OutcomeAborted
	defer func() {
		l.lock.Teardown(outcome)
	}()

	events := l.lock.Surface().Events()
	reloads := l.reloads

	ticker := time.NewTicker(l.config.TimerInterval)
	defer ticker.Stop()

	l.logger.Debug("event loop started", zap.Duration("timer_interval", l.config.TimerInterval))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopping", zap.Error(ctx.Err()))
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				l.logger.Info("lock surface closed")
				return nil
			}
			if ev.Kind == domain.EventSettingsRequested {
				l.reloadFromDisk()
				continue
			}
			if l.lock.Dispatch(ev) {
				if l.lock.Unlocked() {
					outcome = domain.OutcomeUnlocked
				}
				return nil
			}

		case <-ticker.C:
			l.lock.Dispatch(domain.Event{Kind: domain.EventTick})

		case settings, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			l.refresh(settings)
		}
	}
}

// reloadFromDisk handles the settings button.
func (l *Loop) reloadFromDisk() {
	l.logger.Info("settings requested from lock surface")
	if l.loader == nil {
		return
	}
	settings, err := l.loader()
	if err != nil {
		l.logger.Warn("failed to reload settings", zap.Error(err))
		return
	}
	l.refresh(settings)
}

func (l *Loop) refresh(settings domain.Settings) {
	if err := l.lock.Refresh(settings); err != nil {
		l.logger.Warn("settings refresh failed, keeping current session", zap.Error(err))
	}
}
