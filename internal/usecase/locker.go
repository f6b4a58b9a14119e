package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/blur"
	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/game"
	"github.com/eliteGoblin/focusd/dwmlock/internal/policy"
)

// Confirmation prompt shown before locking.
const (
	ConfirmCaption = "dwmlock"
	ConfirmPrompt  = "Lock the screen now?"
)

// LockerConfig holds per-run options for the locker.
type LockerConfig struct {
	SkipConfirm     bool          // --yes
	AppVersion      string        // recorded in the journal
	WarningDuration time.Duration // zero selects the default
	Rand            game.RandFunc // nil selects crypto/rand
}

// Locker starts lock sessions and tears them down.
// Journal and registry are optional; a nil value disables that feature.
type Locker struct {
	platform       domain.Platform
	journal        domain.SessionJournal
	registry       domain.SessionRegistry
	processManager domain.ProcessManager
	clock          domain.Clock
	config         LockerConfig
	logger         *zap.Logger
}

// NewLocker creates a locker over the given platform collaborators.
func NewLocker(
	platform domain.Platform,
	journal domain.SessionJournal,
	registry domain.SessionRegistry,
	pm domain.ProcessManager,
	clock domain.Clock,
	config LockerConfig,
	logger *zap.Logger,
) *Locker {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Locker{
		platform:       platform,
		journal:        journal,
		registry:       registry,
		processManager: pm,
		clock:          clock,
		config:         config,
		logger:         logger,
	}
}

// Start runs the lock startup sequence: capture, blur, session, keyboard
// gate, lock surface, overlays. On failure everything acquired so far is
// released in reverse order and the error is returned.
func (l *Locker) Start(ctx context.Context, settings domain.Settings) (*ActiveLock, error) {
	if err := l.checkSingleInstance(); err != nil {
		return nil, err
	}

	if !l.config.SkipConfirm && l.platform.Prompter != nil {
		ok, err := l.platform.Prompter.Confirm(ConfirmCaption, ConfirmPrompt)
		if err != nil {
			return nil, fmt.Errorf("confirm lock: %w", err)
		}
		if !ok {
			l.logger.Info("lock declined at confirmation prompt")
			return nil, domain.ErrLockDeclined
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if settings.DismissNotificationsOnStartup {
		l.dismissNotifications()
	}

	frame, err := l.captureFrame(settings)
	if err != nil {
		return nil, err
	}

	session := NewSession(*frame, settings, SessionOptions{
		Clock:           l.clock,
		Rand:            l.config.Rand,
		WarningDuration: l.config.WarningDuration,
	})

	var unwind []func()
	rollback := func() {
		for i := len(unwind) - 1; i >= 0; i-- {
			unwind[i]()
		}
	}

	if err := l.platform.Gate.Install(); err != nil {
		return nil, fmt.Errorf("install keyboard gate: %w", err)
	}
	l.logger.Info("keyboard gate installed")
	unwind = append(unwind, func() {
		if err := l.platform.Gate.Uninstall(); err != nil {
			l.logger.Warn("failed to uninstall keyboard gate", zap.Error(err))
		}
	})

	surface, err := l.platform.Surfaces.Open(frame.Width, frame.Height, session)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("create lock surface: %w", err)
	}
	unwind = append(unwind, func() {
		surface.Release()
		if err := surface.Close(); err != nil {
			l.logger.Warn("failed to close lock surface", zap.Error(err))
		}
	})

	handles, err := l.spawnOverlays(settings)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("spawn overlays: %w", err)
	}
	session.SetOverlays(handles)

	surface.Refocus()
	surface.Invalidate()

	lock := &ActiveLock{
		locker:  l,
		session: session,
		surface: surface,
		record: domain.SessionRecord{
			PID:        l.currentPID(),
			StartedAt:  l.clock.Now(),
			AppVersion: l.config.AppVersion,
		},
	}
	l.recordStart(lock)

	l.logger.Info("screen locked",
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height),
		zap.Int("overlays", len(handles)),
		zap.Bool("blur", settings.BlurEnabled),
		zap.String("monitor_mode", string(settings.MonitorMode)))

	return lock, nil
}

// checkSingleInstance fails when another live process holds the lock.
// Stale registrations are ignored; registry errors never block locking.
func (l *Locker) checkSingleInstance() error {
	if l.registry == nil {
		return nil
	}
	entry, err := l.registry.Active()
	if err != nil {
		l.logger.Warn("failed to read session registry", zap.Error(err))
		return nil
	}
	if entry == nil || entry.PID == l.currentPID() {
		return nil
	}
	if l.processManager != nil && l.processManager.IsRunning(entry.PID) {
		return fmt.Errorf("pid %d: %w", entry.PID, domain.ErrAlreadyLocked)
	}
	l.logger.Info("ignoring stale session registration", zap.Int("pid", entry.PID))
	return nil
}

func (l *Locker) dismissNotifications() {
	if l.platform.Notifications == nil {
		return
	}
	n, err := l.platform.Notifications.Dismiss()
	if err != nil {
		l.logger.Warn("failed to dismiss notifications", zap.Error(err))
		return
	}
	if n > 0 {
		l.logger.Info("dismissed notifications", zap.Int("count", n))
	}
}

// captureFrame grabs the desktop and applies the privacy blur.
func (l *Locker) captureFrame(settings domain.Settings) (*domain.Frame, error) {
	frame, err := l.platform.Capturer.Capture()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	if !frame.Valid() {
		return nil, fmt.Errorf("capture screen: invalid frame")
	}
	if settings.BlurEnabled {
		blur.Frame(frame, max(settings.BlurRadius, 1))
	}
	return frame, nil
}

// spawnOverlays enumerates monitors fresh and blanks the targeted ones.
// Enumeration problems mean no overlays, not a failed lock.
func (l *Locker) spawnOverlays(settings domain.Settings) ([]domain.OverlayHandle, error) {
	if l.platform.Monitors == nil || l.platform.Overlays == nil {
		return nil, nil
	}
	monitors, err := l.platform.Monitors.Monitors()
	if err != nil {
		l.logger.Warn("failed to enumerate monitors", zap.Error(err))
		return nil, nil
	}
	if len(monitors) == 0 {
		l.logger.Warn("no monitors enumerated")
		return nil, nil
	}

	targets := policy.Targets(policy.FromSettings(settings), monitors)
	if len(targets) == 0 {
		return nil, nil
	}
	return l.platform.Overlays.Spawn(targets, settings.TextOnAllMonitors)
}

func (l *Locker) currentPID() int {
	if l.processManager == nil {
		return 0
	}
	return l.processManager.GetCurrentPID()
}

func (l *Locker) recordStart(lock *ActiveLock) {
	if l.registry != nil {
		entry := domain.RegistryEntry{
			PID:        lock.record.PID,
			StartedAt:  lock.record.StartedAt.Unix(),
			AppVersion: lock.record.AppVersion,
		}
		if err := l.registry.Register(entry); err != nil {
			l.logger.Warn("failed to register session", zap.Error(err))
		}
	}
	if l.journal != nil {
		id, err := l.journal.Begin(lock.record)
		if err != nil {
			l.logger.Warn("failed to journal session start", zap.Error(err))
			return
		}
		lock.record.ID = id
	}
}

// ActiveLock is a running lock session.
type ActiveLock struct {
	locker  *Locker
	session *Session
	surface domain.Surface
	record  domain.SessionRecord

	refreshMu    sync.Mutex
	teardownOnce sync.Once
}

// Session returns the session state.
func (a *ActiveLock) Session() *Session { return a.session }

// Surface returns the lock window.
func (a *ActiveLock) Surface() domain.Surface { return a.surface }

// Unlocked reports whether the correct password has been entered.
func (a *ActiveLock) Unlocked() bool { return a.session.Unlocked() }

// Dispatch applies one event and performs the side effects it calls for.
// It returns true when the lock should end.
func (a *ActiveLock) Dispatch(ev domain.Event) bool {
	logger := a.locker.logger

	switch ev.Kind {
	case domain.EventChar:
		failedBefore := a.session.Stats().FailedAttempts
		out := a.session.HandleChar(ev.Char)
		if failed := a.session.Stats().FailedAttempts; failed > failedBefore {
			logger.Warn("failed unlock attempt", zap.Int("failed_attempts", failed))
		}
		a.apply(out)
		return out.Has(OutcomeUnlock)

	case domain.EventPointerMove:
		out := a.session.HandlePointerMove()
		if out != OutcomeNone {
			logger.Debug("pointer moved while locked, warning armed")
		}
		a.apply(out)

	case domain.EventTick:
		a.apply(a.session.Tick())

	case domain.EventClosed:
		return true

	default:
		logger.Debug("event not handled by session", zap.Stringer("kind", ev.Kind))
	}
	return a.session.Unlocked()
}

func (a *ActiveLock) apply(out Outcome) {
	if out.Has(OutcomeRefocus) {
		a.surface.Refocus()
	}
	if out.Has(OutcomeRedraw) {
		a.surface.Invalidate()
	}
}

// Refresh applies new settings while locked: re-capture, re-blur, re-spawn
// overlays, then swap into the session. Old overlays go after the swap.
// On error the session keeps running with its previous state.
func (a *ActiveLock) Refresh(settings domain.Settings) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	l := a.locker
	if a.session.Unlocked() {
		return nil
	}

	frame, err := l.captureFrame(settings)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	handles, err := l.spawnOverlays(settings)
	if err != nil {
		return fmt.Errorf("refresh: spawn overlays: %w", err)
	}

	a.session.Replace(*frame, settings)
	old := a.session.SetOverlays(handles)
	if len(old) > 0 {
		l.platform.Overlays.Destroy(old)
	}

	a.surface.Refocus()
	a.surface.Invalidate()

	l.logger.Info("settings refreshed while locked",
		zap.Int("overlays", len(handles)),
		zap.String("monitor_mode", string(settings.MonitorMode)))
	return nil
}

// Teardown releases everything the session holds. It runs exactly once;
// later and concurrent calls return immediately.
func (a *ActiveLock) Teardown(outcome domain.SessionOutcome) {
	a.teardownOnce.Do(func() {
		a.refreshMu.Lock()
		defer a.refreshMu.Unlock()

		l := a.locker

		if handles := a.session.TakeOverlays(); len(handles) > 0 && l.platform.Overlays != nil {
			l.platform.Overlays.Destroy(handles)
		}
		a.surface.Release()
		if err := l.platform.Gate.Uninstall(); err != nil {
			l.logger.Warn("failed to uninstall keyboard gate", zap.Error(err))
		} else {
			l.logger.Info("keyboard gate uninstalled")
		}
		if err := a.surface.Close(); err != nil {
			l.logger.Warn("failed to close lock surface", zap.Error(err))
		}

		stats := a.session.Stats()
		stats.SwallowedChords = l.platform.Gate.Swallowed()
		a.record.SessionStats = stats
		a.record.EndedAt = l.clock.Now()
		a.record.Outcome = outcome

		if l.journal != nil && a.record.ID != 0 {
			if err := l.journal.Finish(a.record); err != nil {
				l.logger.Warn("failed to journal session end", zap.Error(err))
			}
		}
		if l.registry != nil {
			if err := l.registry.Clear(); err != nil {
				l.logger.Warn("failed to clear session registration", zap.Error(err))
			}
		}

		l.logger.Info("screen unlocked",
			zap.String("outcome", string(outcome)),
			zap.Duration("duration", a.record.EndedAt.Sub(a.record.StartedAt)),
			zap.Int("failed_attempts", stats.FailedAttempts),
			zap.Int("tamper_events", stats.TamperEvents),
			zap.Int("swallowed_chords", stats.SwallowedChords))
	})
}

// Record returns the journal record as of the last teardown or start.
func (a *ActiveLock) Record() domain.SessionRecord {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	return a.record
}
