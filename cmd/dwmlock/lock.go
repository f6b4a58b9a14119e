package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/config"
	"github.com/eliteGoblin/focusd/dwmlock/internal/daemon"
	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/infra"
	"github.com/eliteGoblin/focusd/dwmlock/internal/usecase"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the screen now",
	Long: `Captures and blurs the desktop, then shows the unlock panel until the
configured password is typed and Enter pressed.

Tab toggles the typing mini-game. Editing the settings file while locked
applies the change immediately.`,
	RunE: runLock,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a lock session is running",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent lock sessions",
	RunE:  runHistory,
}

var (
	skipConfirm  bool
	showSettings bool
	verbose      bool
	historyLimit int
)

func init() {
	lockCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Lock without the confirmation prompt")
	lockCmd.Flags().BoolVar(&showSettings, "settings", false, "Print the settings file and values before locking")
	lockCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to the console at debug level")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of sessions to show")
}

func runLock(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	logger := createLogger(paths, verbose)
	defer func() { _ = logger.Sync() }()

	settings := config.LoadOrDefault(paths.ConfigFile, logger)
	if showSettings || settings.OpenSettingsOnStartup {
		printSettings(cmd, paths.ConfigFile, settings)
	}

	platform, err := infra.NewPlatform(logger)
	if err != nil {
		return err
	}

	journal, registry := openStores(paths, logger)
	var sessionJournal domain.SessionJournal
	if journal != nil {
		defer journal.Close()
		sessionJournal = journal
	}

	locker := usecase.NewLocker(
		platform,
		sessionJournal,
		registry,
		infra.NewProcessManager(),
		domain.SystemClock{},
		usecase.LockerConfig{SkipConfirm: skipConfirm, AppVersion: Version},
		logger,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lock, err := locker.Start(ctx, settings)
	if errors.Is(err, domain.ErrLockDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Lock cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	var reloads <-chan domain.Settings
	watcher, err := config.NewWatcher(paths.ConfigFile, config.DefaultDebounce, logger)
	if err != nil {
		logger.Warn("settings hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Close()
		go watcher.Run(ctx)
		reloads = watcher.Updates()
	}

	loader := func() (domain.Settings, error) { return config.Load(paths.ConfigFile) }
	loop := daemon.NewLoop(daemon.DefaultLoopConfig(), lock, reloads, loader, logger)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	rec := lock.Record()
	fmt.Fprintf(cmd.OutOrStdout(), "Session %s after %s (%d failed attempts).\n",
		rec.Outcome, rec.EndedAt.Sub(rec.StartedAt).Round(time.Second), rec.FailedAttempts)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	journal, registry := openStores(paths, logger)
	if journal != nil {
		defer journal.Close()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n=== dwmlock Status ===")

	entry, err := registry.Active()
	if err != nil {
		return fmt.Errorf("read session registry: %w", err)
	}
	pm := infra.NewProcessManager()
	switch {
	case entry == nil:
		fmt.Fprintln(out, "Status: UNLOCKED")
	case !pm.IsRunning(entry.PID):
		fmt.Fprintf(out, "Status: UNLOCKED (stale registration for PID %d)\n", entry.PID)
	default:
		fmt.Fprintln(out, "Status: LOCKED")
		fmt.Fprintf(out, "PID: %d\n", entry.PID)
		fmt.Fprintf(out, "Locked for: %s\n", time.Since(time.Unix(entry.StartedAt, 0)).Round(time.Second))
		if entry.AppVersion != "" {
			fmt.Fprintf(out, "Version: %s\n", entry.AppVersion)
		}
	}

	if journal != nil {
		recent, err := journal.Recent(1)
		if err == nil && len(recent) > 0 && !recent[0].EndedAt.IsZero() {
			fmt.Fprintf(out, "Last session: %s at %s\n",
				recent[0].Outcome, recent[0].EndedAt.Format(time.RFC822))
		}
	}
	fmt.Fprintf(out, "Settings: %s\n", paths.ConfigFile)
	fmt.Fprintln(out, "======================")
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	journal, _ := openStores(paths, zap.NewNop())
	if journal == nil {
		return errors.New("session journal is unavailable")
	}
	defer journal.Close()

	records, err := journal.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No lock sessions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tOUTCOME\tFAILED\tTAMPER\tCHORDS\tGAME")
	for _, r := range records {
		duration := "running"
		outcome := "-"
		if !r.EndedAt.IsZero() {
			duration = r.EndedAt.Sub(r.StartedAt).Round(time.Second).String()
			outcome = string(r.Outcome)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d/%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), duration, outcome,
			r.FailedAttempts, r.TamperEvents, r.SwallowedChords, r.GameScore, r.GameMisses)
	}
	return tw.Flush()
}
