// Package privdrop lowers process privileges to an unprivileged account
// once the sysfs control files are open. Writing to /sys/class/leds usually
// needs root, but the retained descriptors stay writable after the drop.
package privdrop
