package led

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeLED lays out a sysfs-like LED directory backed by plain files.
// Real sysfs parses every write as a whole value, so assertions on the
// fake read the leading token rather than the raw bytes.
func fakeLED(t *testing.T, brightness, maxBrightness, trigger string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte(brightness), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(maxBrightness), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trigger"), []byte(trigger), 0o644))

	return dir
}

func readControl(t *testing.T, dir, name string) string {
	t.Helper()

	contents, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	return string(contents)
}

// TestOpenCapturesState checks that acquisition snapshots the device and
// disarms the active trigger.
func TestOpenCapturesState(t *testing.T) {
	t.Parallel()

	dir := fakeLED(t, "120\n", "255\n", "none [usb-gadget] heartbeat\n")

	device, err := Open(dir)
	require.NoError(t, err)

	require.Equal(t, 255, device.MaxBrightness())
	require.Equal(t, "usb-gadget", device.SavedTrigger())
	require.Equal(t, dir, device.Path())

	// The trigger control was disarmed.
	require.True(t, strings.HasPrefix(readControl(t, dir, "trigger"), "none"))

	require.NoError(t, device.Close())
}

// TestOpenFailures covers missing and non-numeric control files.
func TestOpenFailures(t *testing.T) {
	t.Parallel()

	// Empty directory: nothing to read.
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrUnavailable)

	// Garbage where a number is expected.
	dir := fakeLED(t, "bright\n", "255\n", "[none]\n")
	_, err = Open(dir)
	require.ErrorIs(t, err, ErrUnavailable)

	// Missing trigger file.
	dir = fakeLED(t, "0\n", "255\n", "[none]\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "trigger")))
	_, err = Open(dir)
	require.ErrorIs(t, err, ErrUnavailable)
}

// TestOnOff drives the brightness control through its extremes.
func TestOnOff(t *testing.T) {
	t.Parallel()

	dir := fakeLED(t, "000\n", "255\n", "[none]\n")

	device, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, device.On())
	require.True(t, strings.HasPrefix(readControl(t, dir, "brightness"), "255"))

	require.NoError(t, device.Off())
	require.True(t, strings.HasPrefix(readControl(t, dir, "brightness"), "0"))

	require.NoError(t, device.Close())
}

// TestCloseRestoresState verifies the acquisition-time brightness and
// trigger come back regardless of how the LED was driven in between.
func TestCloseRestoresState(t *testing.T) {
	t.Parallel()

	dir := fakeLED(t, "120\n", "255\n", "none [usb-gadget] heartbeat\n")

	device, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, device.On())
	require.NoError(t, device.Off())
	require.NoError(t, device.Blink(time.Microsecond, time.Microsecond))

	require.NoError(t, device.Close())

	require.True(t, strings.HasPrefix(readControl(t, dir, "brightness"), "120"))
	require.True(t, strings.HasPrefix(readControl(t, dir, "trigger"), "usb-gadget"))
}

// TestCloseWithoutSavedTrigger leaves the trigger control untouched when the
// LED had none.
func TestCloseWithoutSavedTrigger(t *testing.T) {
	t.Parallel()

	dir := fakeLED(t, "0\n", "255\n", "[none] heartbeat\n")

	device, err := Open(dir)
	require.NoError(t, err)
	require.Empty(t, device.SavedTrigger())

	require.NoError(t, device.Close())
	require.True(t, strings.HasPrefix(readControl(t, dir, "trigger"), "none"))
}
