package led

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable indicates a control file of the LED is missing, unreadable
// or holds something other than the expected number. It is only returned
// from Open; the hardware is considered misconfigured rather than busy.
var ErrUnavailable = errors.New("led device unavailable")

// noTrigger disables any kernel-driven blink pattern so brightness writes
// take full effect.
const noTrigger = "none"

// Device exclusively owns one sysfs LED for its lifetime. It keeps the
// brightness and trigger control files open so the process can keep driving
// the LED after dropping privileges, and restores the pre-existing
// brightness and trigger when closed.
type Device struct {
	// path is the sysfs directory of the LED, kept for error messages.
	path string
	// brightnessFile is the open brightness control, written via seek+write.
	brightnessFile *os.File
	// triggerFile is the open trigger control.
	triggerFile *os.File
	// maxBrightness is the value written by On.
	maxBrightness int
	// savedBrightness is the brightness found at Open time.
	savedBrightness int
	// savedTrigger is the trigger active at Open time,
	// empty when the LED had none.
	savedTrigger string
}

// Open acquires the LED at the given sysfs directory. It records the current
// brightness, the maximum brightness and the active trigger, then writes
// "none" to the trigger control so nothing competes with manual blinking.
// All failures wrap ErrUnavailable.
func Open(path string) (*Device, error) {
	var (
		brightnessPath = filepath.Join(path, "brightness")
		triggerPath    = filepath.Join(path, "trigger")
		maxPath        = filepath.Join(path, "max_brightness")
	)

	savedBrightness, err := readSysfsInt(brightnessPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	maxBrightness, err := readSysfsInt(maxPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	triggerContents, err := os.ReadFile(triggerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read trigger: %w", ErrUnavailable, err)
	}

	triggerFile, err := os.OpenFile(triggerPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open trigger: %w", ErrUnavailable, err)
	}

	if err = writeControl(triggerFile, noTrigger); err != nil {
		_ = triggerFile.Close()

		return nil, fmt.Errorf("%w: disarm trigger: %w", ErrUnavailable, err)
	}

	brightnessFile, err := os.OpenFile(brightnessPath, os.O_RDWR, 0)
	if err != nil {
		_ = triggerFile.Close()

		return nil, fmt.Errorf("%w: open brightness: %w", ErrUnavailable, err)
	}

	savedTrigger, _ := ParseTrigger(string(triggerContents))

	return &Device{
		path:            path,
		brightnessFile:  brightnessFile,
		triggerFile:     triggerFile,
		maxBrightness:   maxBrightness,
		savedBrightness: savedBrightness,
		savedTrigger:    savedTrigger,
	}, nil
}

// Path returns the sysfs directory the device was opened from.
func (d *Device) Path() string {
	return d.path
}

// MaxBrightness returns the hardware's maximum brightness level.
func (d *Device) MaxBrightness() int {
	return d.maxBrightness
}

// SavedTrigger returns the trigger that was active at Open time,
// or "" when the LED had none.
func (d *Device) SavedTrigger() string {
	return d.savedTrigger
}

// Set writes a raw brightness level.
func (d *Device) Set(value int) error {
	if err := writeControl(d.brightnessFile, strconv.Itoa(value)); err != nil {
		return fmt.Errorf("write brightness of %s: %w", d.path, err)
	}

	return nil
}

// On drives the LED at maximum brightness.
func (d *Device) On() error {
	return d.Set(d.maxBrightness)
}

// Off extinguishes the LED.
func (d *Device) Off() error {
	return d.Set(0)
}

// Blink illuminates the LED for onDuration and keeps it dark for
// offDuration. The calling goroutine sleeps for the full combined duration;
// an in-flight blink always plays out whole.
func (d *Device) Blink(onDuration, offDuration time.Duration) error {
	if err := d.On(); err != nil {
		return err
	}

	time.Sleep(onDuration)

	if err := d.Off(); err != nil {
		return err
	}

	time.Sleep(offDuration)

	return nil
}

// Close restores the brightness and trigger found at Open time and releases
// the control files. Restoration is attempted unconditionally and in full;
// the joined errors are reported for logging, as teardown happens when the
// process is already exiting.
func (d *Device) Close() error {
	var errs []error

	if err := d.Set(d.savedBrightness); err != nil {
		errs = append(errs, fmt.Errorf("restore brightness: %w", err))
	}

	if d.savedTrigger != "" {
		if err := writeControl(d.triggerFile, d.savedTrigger); err != nil {
			errs = append(errs, fmt.Errorf("restore trigger of %s: %w", d.path, err))
		}
	}

	if err := d.brightnessFile.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := d.triggerFile.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// writeControl rewrites an open sysfs attribute from the start.
// The kernel consumes each write as a whole value.
func writeControl(file *os.File, value string) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err := file.WriteString(value)

	return err
}

// readSysfsInt reads a numeric sysfs attribute such as brightness.
func readSysfsInt(path string) (int, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return value, nil
}
