// Package config defines the clock daemon settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type holds the LED sysfs path, blink timings, duty cycles and
// the clock face format. DutyCycle enforces the (0, 1] range shared by the
// YAML decoder and the CLI flags.
package config
