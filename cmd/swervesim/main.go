// swervesim runs a simulated swerve module through the real controller and
// prints the heading step response.
package main

import (
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/rfitzg/swervekit/swerve"
	"github.com/rfitzg/swervekit/telemetry"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swervesim",
		Short: "simulate a swerve module step response",
		RunE:  runSimulation,
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "yaml config file (defaults built in)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "log every cycle")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	logger := golog.NewDevelopmentLogger("swervesim")
	dt := float64(cfg.PeriodMS) / 1000

	sim := &simModule{dt: dt, angleDeg: cfg.Module.InitialAngleDeg}
	settings := swerve.Settings{
		Name:              cfg.Module.Name,
		DriveRatio:        cfg.Module.DriveRatio,
		WheelRadiusMeters: cfg.Module.WheelRadiusM,
		AnglePosition:     positionPID{newPID(cfg.Gains.AnglePosition, dt, true)},
		AngleRate:         ratePID{newPID(cfg.Gains.AngleRate, dt, false)},
		DriveRate:         ratePID{newPID(cfg.Gains.DriveRate, dt, false)},
	}

	var sink telemetry.Sink = telemetry.NoopSink{}
	if verbose {
		sink = telemetry.LogSink{Logger: logger}
	}
	module, err := swerve.NewModule(settings, sim, sink, logger)
	if err != nil {
		return err
	}
	module.SetDesiredState(swerve.ModuleState{
		SpeedMetersPerSec: cfg.Desired.SpeedMPS,
		AngleDeg:          cfg.Desired.AngleDeg,
	})

	angles := make([]float64, 0, cfg.Cycles)
	speeds := make([]float64, 0, cfg.Cycles)
	for i := 0; i < cfg.Cycles; i++ {
		module.Tick(cmd.Context())
		sim.step()
		state := module.State()
		angles = append(angles, state.AngleDeg)
		speeds = append(speeds, state.SpeedMetersPerSec)
	}

	fmt.Println(asciigraph.Plot(angles,
		asciigraph.Height(12),
		asciigraph.Caption(fmt.Sprintf("heading (deg), target %.1f", cfg.Desired.AngleDeg))))
	fmt.Println()
	fmt.Println(asciigraph.Plot(speeds,
		asciigraph.Height(8),
		asciigraph.Caption(fmt.Sprintf("wheel speed (m/s), target %.2f", cfg.Desired.SpeedMPS))))

	final := module.State()
	pos := module.Position()
	fmt.Printf("\nafter %d cycles: heading %.2f deg, speed %.3f m/s, distance %.3f m\n",
		cfg.Cycles, final.AngleDeg, final.SpeedMetersPerSec, pos.DistanceMeters)
	return nil
}
