package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/morse-hw/morseclock/internal/config"
	"github.com/morse-hw/morseclock/internal/logger"
	"github.com/morse-hw/morseclock/internal/morse"
	"github.com/morse-hw/morseclock/internal/service/clock"
	"github.com/morse-hw/morseclock/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// baseDuration is the full duration of one blink.
	baseDuration time.Duration
	// pauseDuration is the pause between two renderings of the time.
	pauseDuration time.Duration
	// shortDuty and longDuty are the on-fractions of the two blink kinds.
	shortDuty float64
	longDuty  float64
	// format selects the clock face, 12h or 24h.
	format string
	// dropUser is the account to drop privileges to after device setup.
	dropUser string
	// logLevel sets the minimum log level.
	logLevel string

	// rootCmd represents the base command that blinks the time forever.
	rootCmd = &cobra.Command{
		Use:   "morseclock [led-sysfs-dir]",
		Short: "Blink the current time in Morse code on a sysfs LED.",
		Long: `Daemon that renders the current wall-clock time as Morse blinks on one LED
exposed under /sys/class/leds and repeats forever until interrupted.

Each cycle plays the hour digits, a silent break, then the two minute digits;
dot and dash lengths derive from the base duration and the two duty cycles.
On exit the LED's original brightness and trigger are restored.

Settings come from an optional YAML file overridden by flags; the LED sysfs
directory can be given as the argument or in the file. Driving sysfs usually
requires root: use --user to drop privileges once the device is open.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if err = applyFlagOverrides(cmd, cfg, args); err != nil {
				return err
			}

			if err = config.Validate(cfg); err != nil {
				return err
			}

			clockFormat, err := morse.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}

			return clock.Run(ctx, &clock.Options{
				DevicePath:    cfg.DevicePath,
				BaseDuration:  cfg.BaseDuration,
				PauseDuration: cfg.PauseDuration,
				ShortDuty:     cfg.ShortDuty,
				LongDuty:      cfg.LongDuty,
				Format:        clockFormat,
				User:          cfg.User,
			})
		},
	}
)

// applyFlagOverrides merges explicitly set flags and the positional device
// argument over the loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		cfg.DevicePath = args[0]
	}

	flags := cmd.Flags()

	if flags.Changed("base-duration") {
		cfg.BaseDuration = baseDuration
	}

	if flags.Changed("pause-duration") {
		cfg.PauseDuration = pauseDuration
	}

	if flags.Changed("short-duty") {
		duty, err := config.NewDutyCycle(shortDuty)
		if err != nil {
			return err
		}

		cfg.ShortDuty = duty
	}

	if flags.Changed("long-duty") {
		duty, err := config.NewDutyCycle(longDuty)
		if err != nil {
			return err
		}

		cfg.LongDuty = duty
	}

	if flags.Changed("format") {
		cfg.Format = format
	}

	if flags.Changed("user") {
		cfg.User = dropUser
	}

	return nil
}

// Execute runs the morseclock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().DurationVarP(&baseDuration, "base-duration", "b", config.DefaultBaseDuration,
		"full duration of one blink (on plus off phase)")
	rootCmd.Flags().DurationVarP(&pauseDuration, "pause-duration", "p", config.DefaultPauseDuration,
		"pause between two renderings of the time")
	rootCmd.Flags().Float64VarP(&shortDuty, "short-duty", "s", float64(config.DefaultShortDuty),
		"on-fraction of a short blink, in (0,1]")
	rootCmd.Flags().Float64VarP(&longDuty, "long-duty", "l", float64(config.DefaultLongDuty),
		"on-fraction of a long blink, in (0,1]")
	rootCmd.Flags().StringVarP(&format, "format", "f", config.DefaultFormat, "clock face, 12h or 24h")
	rootCmd.Flags().StringVarP(&dropUser, "user", "u", "", "user to drop privileges to")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "minimum log level")
}
