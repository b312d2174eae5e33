// Package led drives a single LED through the Linux sysfs LED class
// (/sys/class/leds/<name>).
//
// Device owns the brightness and trigger control files of one LED for its
// whole lifetime: Open captures the pre-existing brightness and active
// trigger and disarms kernel blink patterns, Close puts everything back.
// ParseTrigger understands the bracketed-list format of the trigger file.
package led
