package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/xrandrctl/internal/config"
	"github.com/gubarz/xrandrctl/internal/executor"
	"github.com/gubarz/xrandrctl/internal/model"
	"github.com/gubarz/xrandrctl/internal/ui"
	"github.com/gubarz/xrandrctl/internal/xrandr"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "xrandrctl",
	Short: "Inspect and change X11 display outputs through xrandr",
	Long: `Reads the verbose xrandr report into a screen/output/mode model
and turns changes back into xrandr invocations.

Without a subcommand the current configuration is shown.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current screen, outputs and modes",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var modeCmd = &cobra.Command{
	Use:   "mode OUTPUT MODE",
	Short: "Assign a mode to an output",
	Long: `Assigns one of the output's modes. MODE is a mode id (0x45),
a mode name (1920x1080) or "preferred".`,
	Args: cobra.ExactArgs(2),
	RunE: runMode,
}

var posCmd = &cobra.Command{
	Use:   "pos OUTPUT XxY",
	Short: "Place an output at an absolute position",
	Args:  cobra.ExactArgs(2),
	RunE:  runPos,
}

var placeCmd = &cobra.Command{
	Use:       "place OUTPUT RELATION OTHER",
	Short:     "Place an output relative to another output",
	Long:      `RELATION is one of left-of, right-of, above, below, same-as.`,
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"left-of", "right-of", "above", "below", "same-as"},
	RunE:      runPlace,
}

var autoCmd = &cobra.Command{
	Use:   "auto OUTPUT",
	Short: "Enable an output with its preferred mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOutputChange(args[0], func(ctx *xrandr.Context, out *model.Output) error {
			return ctx.Auto(out)
		})
	},
}

var offCmd = &cobra.Command{
	Use:   "off OUTPUT",
	Short: "Disable an output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOutputChange(args[0], func(ctx *xrandr.Context, out *model.Output) error {
			return ctx.Off(out)
		})
	},
}

var noPanningCmd = &cobra.Command{
	Use:   "no-panning OUTPUT",
	Short: "Disable panning on an output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOutputChange(args[0], func(ctx *xrandr.Context, out *model.Output) error {
			return ctx.NoPanning(out)
		})
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick [OUTPUT]",
	Short: "Choose a mode interactively and apply it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPick,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(showCmd, modeCmd, posCmd, placeCmd, autoCmd, offCmd, noPanningCmd, pickCmd)

	rootCmd.PersistentFlags().String("binary", "", "xrandr binary name or path")
	rootCmd.PersistentFlags().String("policy", "", "Update policy: deferred, immediate")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Print the xrandr command instead of running it")
	rootCmd.PersistentFlags().Bool("json", false, "Print the configuration as JSON (show only)")

	viper.BindPFlag("binary", rootCmd.PersistentFlags().Lookup("binary"))
	viper.BindPFlag("update_policy", rootCmd.PersistentFlags().Lookup("policy"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
	level, err := log.ParseLevel(config.GetLogLevel())
	if err != nil {
		level = log.WarnLevel
	}
	log.SetLevel(level)
}

// openContext resolves the binary and loads the current configuration.
// A dry run never applies anything, so it always defers.
func openContext(dryRun bool) (*xrandr.Context, *executor.CommandRunner, error) {
	binary, err := executor.ResolveBinary(config.GetBinary())
	if err != nil {
		return nil, nil, err
	}

	if dryRun {
		config.SetUpdatePolicy(xrandr.PolicyDeferred.String())
	}
	policy, err := xrandr.ParsePolicy(config.GetUpdatePolicy())
	if err != nil {
		return nil, nil, err
	}

	runner := executor.NewRunner(binary).WithLogger(log.Default())
	ctx, err := xrandr.New(runner, xrandr.WithPolicy(policy), xrandr.WithLogger(log.Default()))
	if err != nil {
		return nil, nil, fmt.Errorf("read display configuration: %w", err)
	}
	return ctx, runner, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, _, err := openContext(false)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		blob, err := json.MarshalIndent(ctx.Screen(), "", "  ")
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Println(string(blob))
		return nil
	}

	ui.RefreshStyles()
	fmt.Print(ui.RenderScreen(ctx.Screen()))
	return nil
}

func runMode(cmd *cobra.Command, args []string) error {
	return runOutputChange(args[0], func(ctx *xrandr.Context, out *model.Output) error {
		mode, err := resolveMode(out, args[1])
		if err != nil {
			return err
		}
		return ctx.SetMode(out, mode)
	})
}

func runPos(cmd *cobra.Command, args []string) error {
	x, y, err := parseXY(args[1])
	if err != nil {
		return err
	}
	return runOutputChange(args[0], func(ctx *xrandr.Context, out *model.Output) error {
		return ctx.SetPosition(out, x, y)
	})
}

func runPlace(cmd *cobra.Command, args []string) error {
	rel, err := xrandr.ParseRelation(args[1])
	if err != nil {
		return err
	}
	return runOutputChange(args[0], func(ctx *xrandr.Context, out *model.Output) error {
		other, err := lookupOutput(ctx, args[2])
		if err != nil {
			return err
		}
		return ctx.SetPositionRelative(out, rel, other)
	})
}

func runPick(cmd *cobra.Command, args []string) error {
	ctx, runner, err := openContext(dryRunFlag())
	if err != nil {
		return err
	}

	outputs := ctx.Screen().Outputs
	if len(args) > 0 {
		out, err := lookupOutput(ctx, args[0])
		if err != nil {
			return err
		}
		outputs = []*model.Output{out}
	}

	out, mode, err := ui.PickMode(outputs)
	if err != nil {
		return err
	}
	if mode == nil {
		return nil // cancelled
	}
	if err := ctx.SetMode(out, mode); err != nil {
		return err
	}
	return finish(ctx, runner)
}

// runOutputChange loads the configuration, applies change to the named
// output and commits (or prints, with --dry-run)
func runOutputChange(name string, change func(*xrandr.Context, *model.Output) error) error {
	ctx, runner, err := openContext(dryRunFlag())
	if err != nil {
		return err
	}
	out, err := lookupOutput(ctx, name)
	if err != nil {
		return err
	}
	if err := change(ctx, out); err != nil {
		return err
	}
	return finish(ctx, runner)
}

func finish(ctx *xrandr.Context, runner *executor.CommandRunner) error {
	if dryRunFlag() {
		fmt.Println(formatCommand(runner.Binary(), ctx.Pending()))
		return nil
	}
	if ctx.Policy() == xrandr.PolicyImmediate {
		return nil
	}
	if err := ctx.Commit(); err != nil {
		return fmt.Errorf("apply changes: %w", err)
	}
	return nil
}

func dryRunFlag() bool {
	dry, _ := rootCmd.PersistentFlags().GetBool("dry-run")
	return dry
}

func lookupOutput(ctx *xrandr.Context, name string) (*model.Output, error) {
	out := ctx.Screen().Output(name)
	if out == nil {
		var names []string
		for _, o := range ctx.Screen().Outputs {
			names = append(names, o.Name)
		}
		return nil, fmt.Errorf("unknown output %q (available: %s)", name, strings.Join(names, ", "))
	}
	return out, nil
}

// resolveMode finds a mode of out by id, by name or as "preferred"
func resolveMode(out *model.Output, sel string) (*model.Mode, error) {
	if sel == "preferred" {
		if m := out.PreferredMode(); m != nil {
			return m, nil
		}
		return nil, fmt.Errorf("output %s has no preferred mode", out.Name)
	}

	if hex, ok := strings.CutPrefix(strings.ToLower(sel), "0x"); ok {
		id, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid mode id %q: %w", sel, err)
		}
		if m := out.Mode(model.ModeID(id)); m != nil {
			return m, nil
		}
		return nil, fmt.Errorf("output %s has no mode %s", out.Name, sel)
	}

	for _, m := range out.Modes {
		if m.Name == sel {
			return m, nil
		}
	}
	return nil, fmt.Errorf("output %s has no mode %s", out.Name, sel)
}

// parseXY parses the "<x>x<y>" form xrandr uses for --pos
func parseXY(s string) (int, int, error) {
	xs, ys, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q: want <x>x<y>", s)
	}
	x, err := strconv.Atoi(xs)
	if err != nil || x < 0 {
		return 0, 0, fmt.Errorf("invalid position %q: bad x", s)
	}
	y, err := strconv.Atoi(ys)
	if err != nil || y < 0 {
		return 0, 0, fmt.Errorf("invalid position %q: bad y", s)
	}
	return x, y, nil
}

func formatCommand(binary string, pending [][]string) string {
	parts := []string{binary}
	for _, args := range pending {
		parts = append(parts, args...)
	}
	return strings.Join(parts, " ")
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
