package clock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/morse-hw/morseclock/internal/morse"
)

// recordingBlinker captures every blink's on-duration and can fail or
// cancel a context after a fixed number of calls.
type recordingBlinker struct {
	onDurations []time.Duration
	failAfter   int
	failWith    error
	cancelAfter int
	cancel      context.CancelFunc
}

func (b *recordingBlinker) Blink(onDuration, _ time.Duration) error {
	b.onDurations = append(b.onDurations, onDuration)

	if b.failWith != nil && len(b.onDurations) >= b.failAfter {
		return b.failWith
	}

	if b.cancel != nil && len(b.onDurations) >= b.cancelAfter {
		b.cancel()
	}

	return nil
}

func testTimings() timings {
	return newTimings(&Options{
		BaseDuration:  8 * time.Millisecond,
		PauseDuration: 10 * time.Second,
		ShortDuty:     0.25,
		LongDuty:      0.75,
	})
}

// TestRunnerPlaysSequenceInOrder replays 13:05 on a 12-hour face and checks
// that every blink carries the duty-derived on-duration in emission order.
func TestRunnerPlaysSequenceInOrder(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm := testTimings()

	// 13:05 on a 12-hour face: "1" (.----), break, "05" (----- .....).
	device := &recordingBlinker{cancelAfter: 15, cancel: cancel}
	r := &runner{
		device:  device,
		timings: tm,
		format:  morse.Hour12,
		now: func() time.Time {
			return time.Date(2024, time.March, 1, 13, 5, 0, 0, time.UTC)
		},
	}

	require.NoError(t, r.run(ctx))

	want := []time.Duration{
		tm.shortOn, tm.longOn, tm.longOn, tm.longOn, tm.longOn,
		tm.longOn, tm.longOn, tm.longOn, tm.longOn, tm.longOn,
		tm.shortOn, tm.shortOn, tm.shortOn, tm.shortOn, tm.shortOn,
	}
	require.Equal(t, want, device.onDurations)
}

// TestRunnerPropagatesWriteFailure aborts the cycle on the first device error.
func TestRunnerPropagatesWriteFailure(t *testing.T) {
	t.Parallel()

	errWrite := errors.New("write brightness: device vanished")
	device := &recordingBlinker{failAfter: 3, failWith: errWrite}

	r := &runner{
		device:  device,
		timings: testTimings(),
		format:  morse.Hour24,
		now: func() time.Time {
			return time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)
		},
	}

	err := r.run(context.Background())
	require.ErrorIs(t, err, errWrite)
	require.Len(t, device.onDurations, 3)
}

// TestCancellationDuringPause ensures a cancel arriving mid-pause unblocks
// the loop well before the configured pause elapses.
func TestCancellationDuringPause(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &runner{
		device: &recordingBlinker{},
		timings: newTimings(&Options{
			BaseDuration:  time.Millisecond,
			PauseDuration: 10 * time.Second,
			ShortDuty:     0.5,
			LongDuty:      0.5,
		}),
		format: morse.Hour24,
		now:    func() time.Time { return time.Date(2024, time.March, 1, 1, 1, 0, 0, time.UTC) },
	}

	done := make(chan error, 1)
	go func() { done <- r.run(ctx) }()

	// Let the short symbol sequence finish and the pause begin.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(maxPauseSlice):
		t.Fatal("runner did not stop within one pause slice")
	}
}

// TestPauseSlices checks the even subdivision of the inter-cycle pause.
func TestPauseSlices(t *testing.T) {
	t.Parallel()

	cases := []struct {
		target  time.Duration
		slice   time.Duration
		repeats int
	}{
		{0, 0, 0},
		{100 * time.Millisecond, 100 * time.Millisecond, 1},
		{200 * time.Millisecond, 200 * time.Millisecond, 1},
		{time.Second, 200 * time.Millisecond, 5},
		{1100 * time.Millisecond, 220 * time.Millisecond, 5},
		{30 * time.Second, 200 * time.Millisecond, 150},
	}

	for _, tc := range cases {
		slice, repeats := pauseSlices(tc.target)
		require.Equal(t, tc.slice, slice, "target %s", tc.target)
		require.Equal(t, tc.repeats, repeats, "target %s", tc.target)
	}
}

// TestNewTimings derives pulse phases from the duty cycles.
func TestNewTimings(t *testing.T) {
	t.Parallel()

	tm := newTimings(&Options{
		BaseDuration:  100 * time.Millisecond,
		PauseDuration: time.Second,
		ShortDuty:     0.25,
		LongDuty:      0.75,
	})

	require.Equal(t, 25*time.Millisecond, tm.shortOn)
	require.Equal(t, 75*time.Millisecond, tm.shortOff)
	require.Equal(t, 75*time.Millisecond, tm.longOn)
	require.Equal(t, 25*time.Millisecond, tm.longOff)
	require.Equal(t, 100*time.Millisecond, tm.base)
	require.Equal(t, time.Second, tm.pause)
}

// TestRunRestoresDevice runs the full loop against a fake sysfs LED and
// verifies the device comes back in its pre-acquisition state.
func TestRunRestoresDevice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("120\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte("255\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trigger"), []byte("none [usb-gadget] heartbeat\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, &Options{
		DevicePath:    dir,
		BaseDuration:  time.Millisecond,
		PauseDuration: 5 * time.Millisecond,
		ShortDuty:     0.5,
		LongDuty:      0.5,
		Format:        morse.Hour24,
	})
	require.NoError(t, err)

	brightness, readErr := os.ReadFile(filepath.Join(dir, "brightness"))
	require.NoError(t, readErr)
	require.True(t, strings.HasPrefix(string(brightness), "120"))

	trigger, readErr := os.ReadFile(filepath.Join(dir, "trigger"))
	require.NoError(t, readErr)
	require.True(t, strings.HasPrefix(string(trigger), "usb-gadget"))
}

// TestRunRejectsMissingDevice surfaces acquisition failures to the caller.
func TestRunRejectsMissingDevice(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		DevicePath:    filepath.Join(t.TempDir(), "led0"),
		BaseDuration:  time.Millisecond,
		PauseDuration: 0,
		ShortDuty:     0.5,
		LongDuty:      0.5,
		Format:        morse.Hour24,
	})
	require.Error(t, err)
}
