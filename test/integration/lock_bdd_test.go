//go:build integration

package integration

import (
	"context"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/config"
	"github.com/eliteGoblin/focusd/dwmlock/internal/daemon"
	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/infra"
	"github.com/eliteGoblin/focusd/dwmlock/internal/usecase"
	"github.com/eliteGoblin/focusd/dwmlock/test/fixtures"
)

const selfPID = 4100

var _ = Describe("Lock session", func() {
	var (
		tmpDir  string
		paths   config.Paths
		desktop *fixtures.FakeDesktop
		journal *infra.EncryptedJournal
		pm      *fixtures.FakeProcessManager
		logger  *zap.Logger
	)

	newLocker := func() *usecase.Locker {
		return usecase.NewLocker(
			desktop.Platform(),
			journal,
			journal,
			pm,
			domain.SystemClock{},
			usecase.LockerConfig{SkipConfirm: true, AppVersion: "test"},
			logger,
		)
	}

	runLoop := func(ctx context.Context, lock *usecase.ActiveLock, reloads <-chan domain.Settings) <-chan error {
		done := make(chan error, 1)
		loop := daemon.NewLoop(
			daemon.LoopConfig{TimerInterval: 20 * time.Millisecond},
			lock,
			reloads,
			func() (domain.Settings, error) { return config.Load(paths.ConfigFile) },
			logger,
		)
		go func() { done <- loop.Run(ctx) }()
		return done
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dwmlock-integration-*")
		Expect(err).NotTo(HaveOccurred())

		paths = config.PathsUnder(tmpDir)
		Expect(paths.EnsureDirs()).To(Succeed())

		key, err := infra.NewJournalKeyFile(paths).Ensure()
		Expect(err).NotTo(HaveOccurred())
		journal, err = infra.NewEncryptedJournal(paths.JournalFile, key)
		Expect(err).NotTo(HaveOccurred())

		desktop = fixtures.NewFakeDesktop(64, 48)
		desktop.AddMonitor(`\\.\DISPLAY2`, domain.Rect{Left: 64, Right: 128, Bottom: 48})
		desktop.AddMonitor(`\\.\DISPLAY3`, domain.Rect{Left: 128, Right: 192, Bottom: 48})

		pm = &fixtures.FakeProcessManager{PID: selfPID, Live: map[int]bool{selfPID: true}}
		logger = zap.NewNop()
	})

	AfterEach(func() {
		journal.Close()
		os.RemoveAll(tmpDir)
	})

	Describe("settings defaults", func() {
		Context("when no settings file exists", func() {
			It("should blank DISPLAY2 in custom mode", func() {
				s, err := config.Load(paths.ConfigFile)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.MonitorMode).To(Equal(domain.BlankingCustom))
				Expect(s.DisableMonitors).To(Equal([]string{"DISPLAY2"}))
				Expect(s.Password).To(Equal(config.DefaultPassword))
			})
		})
	})

	Describe("unlocking", func() {
		Context("when the wrong and then the right password are typed", func() {
			It("should unlock, restore everything and journal the session", func() {
				settings := config.Defaults()
				settings.Password = "hunter2"

				lock, err := newLocker().Start(context.Background(), settings)
				Expect(err).NotTo(HaveOccurred())
				Expect(desktop.LiveOverlays()).To(Equal([]string{`\\.\DISPLAY2`}))

				active, err := journal.Active()
				Expect(err).NotTo(HaveOccurred())
				Expect(active).NotTo(BeNil())
				Expect(active.PID).To(Equal(selfPID))

				done := runLoop(context.Background(), lock, nil)

				desktop.Surface.Type("hunter3\r")
				Eventually(func() int { return lock.Session().Stats().FailedAttempts }).Should(Equal(1))
				Expect(lock.Session().Snapshot().Warning).To(BeTrue())

				desktop.Surface.Type("hunter2\r")
				Eventually(done).Should(Receive(BeNil()))

				Expect(lock.Unlocked()).To(BeTrue())
				Expect(desktop.LiveOverlays()).To(BeEmpty())
				Expect(desktop.Surface.IsClosed()).To(BeTrue())
				Expect(desktop.Calls()).To(ContainElements("gate.uninstall", "surface.release", "surface.close"))

				records, err := journal.Recent(5)
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))
				Expect(records[0].Outcome).To(Equal(domain.OutcomeUnlocked))
				Expect(records[0].FailedAttempts).To(Equal(1))
				Expect(records[0].EndedAt).NotTo(BeZero())

				active, err = journal.Active()
				Expect(err).NotTo(HaveOccurred())
				Expect(active).To(BeNil())
			})
		})

		Context("when the process is interrupted", func() {
			It("should tear down and record an aborted session", func() {
				lock, err := newLocker().Start(context.Background(), config.Defaults())
				Expect(err).NotTo(HaveOccurred())

				ctx, cancel := context.WithCancel(context.Background())
				done := runLoop(ctx, lock, nil)
				cancel()

				Eventually(done).Should(Receive(MatchError(context.Canceled)))
				Expect(desktop.Surface.IsClosed()).To(BeTrue())

				records, err := journal.Recent(1)
				Expect(err).NotTo(HaveOccurred())
				Expect(records[0].Outcome).To(Equal(domain.OutcomeAborted))
			})
		})
	})

	Describe("monitor blanking", func() {
		DescribeTable("overlays per mode",
			func(mode domain.BlankingMode, names []string, want []string) {
				settings := config.Defaults()
				settings.MonitorMode = mode
				settings.DisableMonitors = names

				lock, err := newLocker().Start(context.Background(), settings)
				Expect(err).NotTo(HaveOccurred())
				defer lock.Teardown(domain.OutcomeAborted)

				Expect(desktop.LiveOverlays()).To(Equal(want))
			},
			Entry("custom DISPLAY2", domain.BlankingCustom, []string{"DISPLAY2"}, []string{`\\.\DISPLAY2`}),
			Entry("custom by number", domain.BlankingCustom, []string{"3"}, []string{`\\.\DISPLAY3`}),
			Entry("custom empty list", domain.BlankingCustom, []string{}, []string{}),
			Entry("all", domain.BlankingAll, nil, []string{`\\.\DISPLAY1`, `\\.\DISPLAY2`, `\\.\DISPLAY3`}),
			Entry("none", domain.BlankingNone, []string{"DISPLAY2"}, []string{}),
		)
	})

	Describe("settings refresh while locked", func() {
		It("should re-capture and re-spawn overlays when the file changes", func() {
			Expect(config.Save(paths.ConfigFile, config.Defaults())).To(Succeed())
			settings, err := config.Load(paths.ConfigFile)
			Expect(err).NotTo(HaveOccurred())

			lock, err := newLocker().Start(context.Background(), settings)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			watcher, err := config.NewWatcher(paths.ConfigFile, 20*time.Millisecond, logger)
			Expect(err).NotTo(HaveOccurred())
			defer watcher.Close()
			go watcher.Run(ctx)

			done := runLoop(ctx, lock, watcher.Updates())

			updated := config.Defaults()
			updated.MonitorMode = domain.BlankingAll
			updated.Password = "new-password"
			Expect(config.Save(paths.ConfigFile, updated)).To(Succeed())

			Eventually(desktop.LiveOverlays, 5*time.Second).Should(HaveLen(3))
			Expect(lock.Session().Settings().Password).To(Equal("new-password"))

			desktop.Surface.Type("new-password\r")
			Eventually(done).Should(Receive(BeNil()))
			Expect(desktop.LiveOverlays()).To(BeEmpty())
		})

		It("should reload from disk when the settings button is clicked", func() {
			lock, err := newLocker().Start(context.Background(), config.Defaults())
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := runLoop(ctx, lock, nil)

			none := config.Defaults()
			none.MonitorMode = domain.BlankingNone
			Expect(config.Save(paths.ConfigFile, none)).To(Succeed())

			desktop.Surface.Send(domain.Event{Kind: domain.EventSettingsRequested})
			Eventually(desktop.LiveOverlays).Should(BeEmpty())

			cancel()
			Eventually(done).Should(Receive())
		})
	})

	Describe("single instance", func() {
		It("should refuse to lock while another live session is registered", func() {
			Expect(journal.Register(domain.RegistryEntry{PID: 777, StartedAt: time.Now().Unix()})).To(Succeed())
			pm.Live[777] = true

			_, err := newLocker().Start(context.Background(), config.Defaults())
			Expect(err).To(MatchError(domain.ErrAlreadyLocked))
			Expect(desktop.Calls()).NotTo(ContainElement("capture"))
		})

		It("should ignore a stale registration", func() {
			Expect(journal.Register(domain.RegistryEntry{PID: 778})).To(Succeed())

			lock, err := newLocker().Start(context.Background(), config.Defaults())
			Expect(err).NotTo(HaveOccurred())
			lock.Teardown(domain.OutcomeAborted)
		})
	})

	Describe("persistence fallback", func() {
		It("should use the JSON registry for single-instance checks", func() {
			registry := infra.NewFileRegistry(paths.RegistryFile)
			locker := usecase.NewLocker(desktop.Platform(), nil, registry, pm, nil,
				usecase.LockerConfig{SkipConfirm: true}, logger)

			lock, err := locker.Start(context.Background(), config.Defaults())
			Expect(err).NotTo(HaveOccurred())

			entry, err := registry.Active()
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.PID).To(Equal(selfPID))

			lock.Teardown(domain.OutcomeUnlocked)
			Expect(paths.RegistryFile).NotTo(BeAnExistingFile())
		})
	})
})
