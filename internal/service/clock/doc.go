// Package clock contains the scheduler that replays the current time as
// Morse blinks on the LED.
//
// Run owns the device for the whole loop: it acquires the LED, optionally
// drops privileges, announces readiness to systemd and then renders one
// hour/minute snapshot per cycle. Cancellation arrives through the context
// and is polled between symbols and between bounded pause slices, so the
// process exits promptly even in the middle of a long pause.
package clock
