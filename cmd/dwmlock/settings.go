package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eliteGoblin/focusd/dwmlock/internal/config"
	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/infra"
	"github.com/eliteGoblin/focusd/dwmlock/internal/policy"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List attached monitors and whether they are blanked",
	RunE:  runMonitors,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or edit settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Changes one setting and saves the file. A running lock session picks
the change up immediately.

disable_monitors takes a comma-separated list (e.g. "DISPLAY2,3"); an empty
value clears it.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

func printSettings(cmd *cobra.Command, path string, s domain.Settings) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Settings file: %s\n", path)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, kv := range config.Describe(s) {
		fmt.Fprintf(tw, "  %s\t%s\n", kv[0], kv[1])
	}
	_ = tw.Flush()
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	s, err := config.Load(paths.ConfigFile)
	if err != nil {
		return err
	}
	printSettings(cmd, paths.ConfigFile, s)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	s, err := config.Load(paths.ConfigFile)
	if err != nil {
		return err
	}
	if err := config.Set(&s, args[0], args[1]); err != nil {
		return err
	}
	if err := config.Validate(s); err != nil {
		return err
	}
	s = config.Resolve(s)
	if err := config.Save(paths.ConfigFile, s); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], paths.ConfigFile)
	return nil
}

func runSettingsPath(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigFile)
	return nil
}

func runMonitors(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	enum, err := infra.NewMonitorEnumerator()
	if err != nil {
		return err
	}
	monitors, err := enum.Monitors()
	if err != nil {
		return fmt.Errorf("enumerate monitors: %w", err)
	}

	s, err := config.Load(paths.ConfigFile)
	if err != nil {
		return err
	}
	blanked := make(map[string]bool)
	for _, m := range policy.Targets(policy.FromSettings(s), monitors) {
		blanked[m.Name] = true
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBOUNDS\tBLANKED")
	for _, m := range monitors {
		b := m.Bounds
		fmt.Fprintf(tw, "%s\t%dx%d at (%d,%d)\t%v\n",
			policy.Canonicalize(m.Name), b.Width(), b.Height(), b.Left, b.Top, blanked[m.Name])
	}
	fmt.Fprintf(tw, "\nmonitor_mode: %s\n", s.MonitorMode)
	return tw.Flush()
}
