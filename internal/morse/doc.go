// Package morse turns an hour/minute pair into the ordered blink sequence
// the clock plays on the LED.
//
// Encode is a pure function: it materializes the full symbol slice (at most
// a few dozen elements) instead of streaming it, and repeated calls with the
// same inputs yield identical sequences.
package morse
