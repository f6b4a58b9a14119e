package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	assert.Equal(t, DefaultPassword, d.Password)
	assert.True(t, d.BlurEnabled)
	assert.Equal(t, 12, d.BlurRadius)
	assert.Equal(t, domain.BlankingCustom, d.MonitorMode)
	assert.Equal(t, []string{"DISPLAY2"}, d.DisableMonitors)
	assert.False(t, d.MinigameAutostart)
	assert.False(t, d.TextOnAllMonitors)
	assert.False(t, d.DismissNotificationsOnStartup)
	assert.False(t, d.OpenSettingsOnStartup)
	assert.NoError(t, Validate(d))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.Settings
		check func(t *testing.T, got domain.Settings)
	}{
		{
			name: "blank password falls back",
			in:   domain.Settings{Password: "   "},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, DefaultPassword, got.Password)
			},
		},
		{
			name: "password kept verbatim",
			in:   domain.Settings{Password: " spaced "},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, " spaced ", got.Password)
			},
		},
		{
			name: "zero radius defaults",
			in:   domain.Settings{BlurRadius: 0},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, DefaultBlurRadius, got.BlurRadius)
			},
		},
		{
			name: "oversized radius clamped",
			in:   domain.Settings{Password: "hunter2", BlurRadius: 300},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, MaxBlurRadius, got.BlurRadius)
				assert.Equal(t, "hunter2", got.Password)
			},
		},
		{
			name: "negative radius defaults",
			in:   domain.Settings{BlurRadius: -4},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, DefaultBlurRadius, got.BlurRadius)
			},
		},
		{
			name: "unknown mode is custom",
			in:   domain.Settings{Password: "hunter2", MonitorMode: "sideways", DisableMonitors: []string{"3"}},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, domain.BlankingCustom, got.MonitorMode)
				assert.Equal(t, []string{"DISPLAY3"}, got.DisableMonitors)
				assert.Equal(t, "hunter2", got.Password)
			},
		},
		{
			name: "mode normalized",
			in:   domain.Settings{MonitorMode: "ALL"},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, domain.BlankingAll, got.MonitorMode)
			},
		},
		{
			name: "empty mode is custom",
			in:   domain.Settings{},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, domain.BlankingCustom, got.MonitorMode)
			},
		},
		{
			name: "monitor names canonicalized and deduplicated",
			in:   domain.Settings{DisableMonitors: []string{"2", `\\.\DISPLAY2`, " ", "display3"}},
			check: func(t *testing.T, got domain.Settings) {
				assert.Equal(t, []string{"DISPLAY2", "DISPLAY3"}, got.DisableMonitors)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Resolve(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.MonitorMode = "sideways"
	s.BlurRadius = 1000

	err := Validate(s)

	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), KeyMonitorMode)
	assert.Contains(t, err.Error(), KeyBlurRadius)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
password = "hunter2"
blur_radius = 4
monitor_mode = "All"
minigame_autostart = true
`), 0600))

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "hunter2", s.Password)
	assert.Equal(t, 4, s.BlurRadius)
	assert.Equal(t, domain.BlankingAll, s.MonitorMode)
	assert.True(t, s.MinigameAutostart)
	assert.True(t, s.BlurEnabled, "absent keys keep defaults")
	assert.Equal(t, []string{"DISPLAY2"}, s.DisableMonitors)
}

func TestLoad_EmptyMonitorListStaysEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("disable_monitors = []\n"), 0600))

	s, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, s.DisableMonitors)
	assert.Equal(t, domain.BlankingCustom, s.MonitorMode)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
password: swordfish
blur_enabled: false
disable_monitors: ["3", "display1"]
text_on_all_monitors: true
`), 0600))

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "swordfish", s.Password)
	assert.False(t, s.BlurEnabled)
	assert.Equal(t, []string{"DISPLAY3", "DISPLAY1"}, s.DisableMonitors)
	assert.True(t, s.TextOnAllMonitors)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("password = [unclosed"), 0600))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "decode TOML")
}

func TestLoad_OutOfRangeFieldsKeepPassword(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		wantRadius int
		wantMode   domain.BlankingMode
	}{
		{
			name:       "radius too large",
			file:       "settings.toml",
			content:    "password = \"hunter2\"\nblur_radius = 300\n",
			wantRadius: MaxBlurRadius,
			wantMode:   domain.BlankingCustom,
		},
		{
			name:       "unknown mode",
			file:       "settings.toml",
			content:    "password = \"hunter2\"\nmonitor_mode = \"sideways\"\nblur_radius = 5\n",
			wantRadius: 5,
			wantMode:   domain.BlankingCustom,
		},
		{
			name:       "both in yaml",
			file:       "settings.yaml",
			content:    "password: hunter2\nblur_radius: 9000\nmonitor_mode: everything\n",
			wantRadius: MaxBlurRadius,
			wantMode:   domain.BlankingCustom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			s, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "hunter2", s.Password)
			assert.Equal(t, tt.wantRadius, s.BlurRadius)
			assert.Equal(t, tt.wantMode, s.MonitorMode)

			assert.Equal(t, "hunter2", LoadOrDefault(path, zap.NewNop()).Password)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("password: [unclosed"), 0600))

	s := LoadOrDefault(path, zap.NewNop())

	assert.Equal(t, Defaults(), s)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.toml", "settings.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := Defaults()
			want.Password = "p4ss"
			want.MonitorMode = domain.BlankingAll
			want.DisableMonitors = nil
			want.DismissNotificationsOnStartup = true

			require.NoError(t, Save(path, want))
			got, err := Load(path)

			require.NoError(t, err)
			assert.Equal(t, "p4ss", got.Password)
			assert.Equal(t, domain.BlankingAll, got.MonitorMode)
			assert.Empty(t, got.DisableMonitors, "cleared list is not replaced by the default")
			assert.True(t, got.DismissNotificationsOnStartup)

			_, err = os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestSet(t *testing.T) {
	s := Defaults()

	require.NoError(t, Set(&s, KeyPassword, "abc"))
	require.NoError(t, Set(&s, KeyBlurEnabled, "false"))
	require.NoError(t, Set(&s, KeyBlurRadius, "7"))
	require.NoError(t, Set(&s, KeyMonitorMode, "none"))
	require.NoError(t, Set(&s, KeyDisableMonitors, "1, 3,,"))
	require.NoError(t, Set(&s, KeyMinigameAutostart, "true"))
	require.NoError(t, Set(&s, KeyTextOnAllMonitors, "1"))
	require.NoError(t, Set(&s, KeyDismissNotifications, "t"))
	require.NoError(t, Set(&s, KeyOpenSettings, "true"))

	assert.Equal(t, domain.Settings{
		Password:                      "abc",
		BlurEnabled:                   false,
		BlurRadius:                    7,
		MonitorMode:                   domain.BlankingNone,
		DisableMonitors:               []string{"1", "3"},
		MinigameAutostart:             true,
		TextOnAllMonitors:             true,
		DismissNotificationsOnStartup: true,
		OpenSettingsOnStartup:         true,
	}, s)

	require.NoError(t, Set(&s, KeyDisableMonitors, ""))
	assert.Empty(t, s.DisableMonitors)
}

func TestSet_Errors(t *testing.T) {
	s := Defaults()
	assert.Error(t, Set(&s, KeyBlurEnabled, "maybe"))
	assert.Error(t, Set(&s, KeyBlurRadius, "wide"))
	assert.Error(t, Set(&s, KeyMonitorMode, "some"))
	assert.ErrorContains(t, Set(&s, "colour", "red"), "unknown setting")
	assert.Equal(t, Defaults(), s)
}

func TestDescribe_MasksPassword(t *testing.T) {
	pairs := Describe(Defaults())
	require.Len(t, pairs, len(Keys()))
	assert.Equal(t, [2]string{KeyPassword, "*******"}, pairs[0])
	for i, key := range Keys() {
		assert.Equal(t, key, pairs[i][0])
	}
}

func TestPathsUnder(t *testing.T) {
	p := PathsUnder("/cfg/dwmlock")
	assert.Equal(t, filepath.Join("/cfg/dwmlock", "settings.toml"), p.ConfigFile)
	assert.Equal(t, filepath.Join("/cfg/dwmlock", "data", "dwmlock.log"), p.LogFile)
	assert.Equal(t, filepath.Join("/cfg/dwmlock", "data", "journal.db"), p.JournalFile)
}

func TestDefaultPaths_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	p, err := DefaultPaths()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	assert.Equal(t, "/tmp/custom.yaml", p.ConfigFile)
}

func TestWatcher_DeliversChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, Save(path, Defaults()))

	w, err := NewWatcher(path, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	updated := Defaults()
	updated.Password = "changed"
	require.NoError(t, Save(path, updated))

	select {
	case s := <-w.Updates():
		assert.Equal(t, "changed", s.Password)
	case <-time.After(5 * time.Second):
		t.Fatal("no settings update delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-w.Updates()
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresRemovedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	custom := Defaults()
	custom.Password = "hunter2"
	require.NoError(t, Save(path, custom))

	w, err := NewWatcher(path, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.Rename(path, path+".bak"))

	select {
	case s := <-w.Updates():
		t.Fatalf("unexpected update after removal: password %q", s.Password)
	case <-time.After(300 * time.Millisecond):
	}

	custom.Password = "hunter3"
	require.NoError(t, Save(path, custom))

	select {
	case s := <-w.Updates():
		assert.Equal(t, "hunter3", s.Password)
	case <-time.After(5 * time.Second):
		t.Fatal("no settings update delivered")
	}
}
