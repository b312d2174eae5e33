package morse

import (
	"fmt"
	"strconv"
)

// Symbol is the atomic timing unit of an encoded time:
// a short blink, a long blink, or a silent break.
type Symbol uint8

const (
	// Short is a Morse dot: a brief on-pulse followed by its off-gap.
	Short Symbol = iota
	// Long is a Morse dash: a long on-pulse followed by its off-gap.
	Long
	// Break is a silent gap separating the hour group from the minute group.
	Break
)

// String returns a human-readable symbol name for logs and test output.
func (s Symbol) String() string {
	switch s {
	case Short:
		return "short"
	case Long:
		return "long"
	case Break:
		return "break"
	default:
		return fmt.Sprintf("symbol(%d)", uint8(s))
	}
}

// Format selects how the hour is rendered on the clock face.
type Format uint8

const (
	// Hour24 renders hours 0 through 23 as-is.
	Hour24 Format = iota
	// Hour12 reduces the hour to the 1..12 range, mapping 0 to 12.
	Hour12
)

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "12h":
		return Hour12, nil
	case "24h":
		return Hour24, nil
	default:
		return Hour24, fmt.Errorf("unknown clock format %q", s)
	}
}

// digitPatterns holds the International Morse encoding of the decimal
// digits, index 0 through 9. A dot is '.', a dash is '-'.
var digitPatterns = [10]string{
	"-----", // 0
	".----", // 1
	"..---", // 2
	"...--", // 3
	"....-", // 4
	".....", // 5
	"-....", // 6
	"--...", // 7
	"---..", // 8
	"----.", // 9
}

// Encode renders the provided time as an ordered symbol sequence: the hour
// digits, one Break, then the minute digits. The hour carries no leading
// zero while the minute is always two digits, matching a clock face.
// Spacing between blinks of the same group comes from each pulse's own
// off-phase, so no breaks are emitted inside a group and none trails the
// sequence. The result depends only on the arguments.
func Encode(hour, minute int, format Format) []Symbol {
	if format == Hour12 {
		// Maps 0 to 12 and 13..23 to 1..11.
		hour = (hour+11)%12 + 1
	}

	hourDigits := strconv.Itoa(hour)
	minuteDigits := fmt.Sprintf("%02d", minute)

	// Two digits of up to five elements per group plus the break.
	symbols := make([]Symbol, 0, len(hourDigits)*5+len(minuteDigits)*5+1)
	symbols = appendDigits(symbols, hourDigits)
	symbols = append(symbols, Break)
	symbols = appendDigits(symbols, minuteDigits)

	return symbols
}

// appendDigits expands each decimal digit of s into its Morse elements.
func appendDigits(symbols []Symbol, s string) []Symbol {
	for _, digit := range []byte(s) {
		for _, element := range []byte(digitPatterns[digit-'0']) {
			if element == '.' {
				symbols = append(symbols, Short)
			} else {
				symbols = append(symbols, Long)
			}
		}
	}

	return symbols
}
