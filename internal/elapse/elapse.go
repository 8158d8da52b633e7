package elapse

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a seconds count in the provider's pretty form: "<m>m <ss>s".
//
// Minutes are unbounded; seconds are zero-padded to two digits. Negative
// input is treated as zero.
//
// Example:
//
//	elapse.Format(225) // "3m 45s"
//	elapse.Format(7)   // "0m 07s"
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}

// Parse decodes a pretty duration back into seconds.
//
// Accepted forms are "<m>m <ss>s" and the minutes-omitted "<ss>s", with
// leading/trailing whitespace tolerated. Anything else decodes to 0; Parse
// never fails. This keeps malformed provider cells and malformed stored
// history from ever aborting a session.
func Parse(text string) int {
	fields := strings.Fields(text)
	switch len(fields) {
	case 1:
		s, ok := unit(fields[0], 's')
		if !ok {
			return 0
		}
		return s
	case 2:
		m, okM := unit(fields[0], 'm')
		s, okS := unit(fields[1], 's')
		if !okM || !okS {
			return 0
		}
		return m*60 + s
	default:
		return 0
	}
}

// unit strips a single trailing unit letter and parses the remainder as a
// non-negative integer.
func unit(token string, suffix byte) (int, bool) {
	if len(token) < 2 || token[len(token)-1] != suffix {
		return 0, false
	}
	n, err := strconv.Atoi(token[:len(token)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
