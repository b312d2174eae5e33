package led

import "strings"

// ParseTrigger extracts the active trigger name from the contents of a sysfs
// trigger file, which lists every available trigger with the active one in
// brackets, e.g. "none [usb-gadget] heartbeat". The reported name is the
// bracketed token; "none", an unbracketed blob or any malformed input yield
// ok == false. Token characters are letters, digits and hyphens.
func ParseTrigger(contents string) (trigger string, ok bool) {
	start := strings.IndexByte(contents, '[')
	if start < 0 {
		return "", false
	}

	rest := contents[start+1:]

	end := 0
	for end < len(rest) && isTriggerChar(rest[end]) {
		end++
	}

	// The token must be non-empty and immediately closed.
	if end == 0 || end >= len(rest) || rest[end] != ']' {
		return "", false
	}

	if token := rest[:end]; token != "none" {
		return token, true
	}

	return "", false
}

func isTriggerChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c == '-':
		return true
	default:
		return false
	}
}
