package estimate

import (
	"fmt"
	"strings"
)

// Bar rendering glyphs, chosen for terminals; the bar is advisory display
// only and never feeds back into loop control.
const (
	barLeft   = "|"
	barRight  = "|"
	barFilled = "█"
	barEmpty  = " "
)

// Percentage maps the current session state to a display percentage.
//
// All inputs are in seconds except pending, a check count. The effective
// elapsed time is the larger of wall-clock elapsed and the longest single
// check duration (a fresh poll may see a check that started before we did),
// clamped to the median estimate. The result is floor(100*effective/median),
// with two overriding rules:
//
//   - pending == 0 forces 100: nothing outstanding reads as done whatever
//     the history says;
//   - a computed 100 with checks still pending is clamped to 99.
//
// ok is false when median is zero (no usable history); callers render
// nothing in that case.
func Percentage(elapsed, longestElapsed, median, pending int) (pct int, ok bool) {
	if median <= 0 {
		return 0, false
	}

	effective := elapsed
	if longestElapsed > effective {
		effective = longestElapsed
	}
	if effective > median {
		effective = median
	}

	pct = 100 * effective / median
	if pending == 0 {
		pct = 100
	} else if pct >= 100 {
		pct = 99
	}
	return pct, true
}

// Render draws a fixed-width progress bar for a percentage, e.g.
//
//	|██████████          | 50 %
//
// with floor(pct*width/100) filled cells and the percentage right-padded
// to three digits. Out-of-range inputs are clamped so the bar width is
// stable no matter what the caller computed.
func Render(pct, width int) string {
	if width < 1 {
		width = 1
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := pct * width / 100
	var b strings.Builder
	b.WriteString(barLeft)
	b.WriteString(strings.Repeat(barFilled, filled))
	b.WriteString(strings.Repeat(barEmpty, width-filled))
	b.WriteString(barRight)
	fmt.Fprintf(&b, " %-3d%%", pct)
	return b.String()
}

// Line combines [Percentage] and [Render]. ok is false when there is
// nothing to show (no median history).
func Line(elapsed, longestElapsed, median, pending, width int) (string, bool) {
	pct, ok := Percentage(elapsed, longestElapsed, median, pending)
	if !ok {
		return "", false
	}
	return Render(pct, width), true
}
