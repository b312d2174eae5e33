package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/morse-hw/morseclock/internal/config"
	"github.com/morse-hw/morseclock/internal/led"
	"github.com/morse-hw/morseclock/internal/logger"
	"github.com/morse-hw/morseclock/internal/morse"
	"github.com/morse-hw/morseclock/internal/service/privdrop"
)

// Options carries the fully resolved clock configuration into Run.
// The CLI layer merges config file and flags and validates before calling.
type Options struct {
	// DevicePath is the sysfs directory of the LED to drive.
	DevicePath string
	// BaseDuration is the combined on+off duration of one blink and the
	// length of the hour/minute break.
	BaseDuration time.Duration
	// PauseDuration is the pause between two renderings of the time.
	PauseDuration time.Duration
	// ShortDuty is the on-fraction of a short blink.
	ShortDuty config.DutyCycle
	// LongDuty is the on-fraction of a long blink.
	LongDuty config.DutyCycle
	// Format selects the clock face.
	Format morse.Format
	// User, when non-empty, is the account to drop privileges to after
	// the device files are open.
	User string
}

// maxPauseSlice bounds how long the inter-cycle pause may block shutdown.
const maxPauseSlice = 200 * time.Millisecond

// blinker is the device surface the scheduler drives. *led.Device satisfies
// it; tests substitute a recorder.
type blinker interface {
	Blink(onDuration, offDuration time.Duration) error
}

// timings holds every sleep interval of one cycle, derived once from the
// base duration and the two duty cycles.
type timings struct {
	base     time.Duration
	pause    time.Duration
	shortOn  time.Duration
	shortOff time.Duration
	longOn   time.Duration
	longOff  time.Duration
}

func newTimings(opts *Options) timings {
	return timings{
		base:     opts.BaseDuration,
		pause:    opts.PauseDuration,
		shortOn:  scale(opts.BaseDuration, float64(opts.ShortDuty)),
		shortOff: scale(opts.BaseDuration, 1-float64(opts.ShortDuty)),
		longOn:   scale(opts.BaseDuration, float64(opts.LongDuty)),
		longOff:  scale(opts.BaseDuration, 1-float64(opts.LongDuty)),
	}
}

func scale(d time.Duration, fraction float64) time.Duration {
	return time.Duration(float64(d) * fraction)
}

// runner replays encoded time sequences on the device until canceled.
type runner struct {
	device  blinker
	timings timings
	format  morse.Format
	// now supplies the wall clock, swappable in tests.
	now func() time.Time
}

// Run opens the LED, optionally drops privileges and blinks the current time
// forever. It returns nil once the context is canceled and the device has
// been restored; device write failures abort the loop and are returned.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "morseclock")

	device, err := led.Open(opts.DevicePath)
	if err != nil {
		return fmt.Errorf("acquire led: %w", err)
	}

	// Restoration must run on every exit path, including errors below.
	defer func() {
		if cerr := device.Close(); cerr != nil {
			logger.WarnKV(ctx, "Device restoration incomplete", "error", cerr)
			return
		}

		logger.Info(ctx, "Device state restored")
	}()

	if opts.User != "" {
		if err = privdrop.DropTo(opts.User); err != nil {
			return fmt.Errorf("drop privileges: %w", err)
		}

		logger.InfoKV(ctx, "Privileges dropped", "user", opts.User)
	}

	logger.InfoKV(ctx, "Driving LED",
		"device", device.Path(),
		"max_brightness", device.MaxBrightness(),
		"saved_trigger", device.SavedTrigger(),
		"base_duration", opts.BaseDuration.String(),
		"pause_duration", opts.PauseDuration.String())

	// Best effort: only reaches systemd when started from a notify unit.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	defer func() {
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	}()

	r := &runner{
		device:  device,
		timings: newTimings(opts),
		format:  opts.Format,
		now:     time.Now,
	}

	return r.run(ctx)
}

// run is the scheduler loop: sample the clock, play the symbol sequence,
// pause, repeat. Cancellation is polled before every symbol and between
// pause slices; a blink already in flight plays out whole.
func (r *runner) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			logger.Info(ctx, "Stopping")
			return nil
		}

		now := r.now()
		symbols := morse.Encode(now.Hour(), now.Minute(), r.format)

		logger.DebugKV(ctx, "Rendering time",
			"hour", now.Hour(), "minute", now.Minute(), "symbols", len(symbols))

		for _, symbol := range symbols {
			if ctx.Err() != nil {
				logger.Info(ctx, "Stopping")
				return nil
			}

			if err := r.play(ctx, symbol); err != nil {
				return fmt.Errorf("play %s: %w", symbol, err)
			}
		}

		if !r.pause(ctx) {
			logger.Info(ctx, "Stopping")
			return nil
		}
	}
}

// play executes a single symbol against the device.
func (r *runner) play(ctx context.Context, symbol morse.Symbol) error {
	switch symbol {
	case morse.Break:
		sleep(ctx, r.timings.base)
		return nil
	case morse.Short:
		return r.device.Blink(r.timings.shortOn, r.timings.shortOff)
	case morse.Long:
		return r.device.Blink(r.timings.longOn, r.timings.longOff)
	default:
		return fmt.Errorf("unknown symbol %d", symbol)
	}
}

// pause sleeps through the inter-cycle pause in bounded slices so an
// interrupt never waits longer than one slice. It reports false once the
// context is canceled.
func (r *runner) pause(ctx context.Context) bool {
	slice, repeats := pauseSlices(r.timings.pause)

	for i := 0; i < repeats; i++ {
		if ctx.Err() != nil {
			return false
		}

		if !sleep(ctx, slice) {
			return false
		}
	}

	return ctx.Err() == nil
}

// pauseSlices splits the target pause into equal slices of at most
// maxPauseSlice whose count divides the target evenly.
func pauseSlices(target time.Duration) (slice time.Duration, repeats int) {
	if target <= 0 {
		return 0, 0
	}

	if target <= maxPauseSlice {
		return target, 1
	}

	n := int(target / maxPauseSlice)
	slice = target / time.Duration(n)

	return slice, int(target / slice)
}

// sleep waits for the duration or until the context is canceled,
// whichever comes first. It reports whether the full duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
