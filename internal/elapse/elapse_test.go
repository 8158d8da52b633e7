package elapse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{"zero", 0, "0m 00s"},
		{"seconds only", 7, "0m 07s"},
		{"exact minute", 60, "1m 00s"},
		{"mixed", 225, "3m 45s"},
		{"large minutes", 6000, "100m 00s"},
		{"negative clamps to zero", -5, "0m 00s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.seconds))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"full form", "3m 45s", 225},
		{"zero", "0m 00s", 0},
		{"minutes omitted", "45s", 45},
		{"leading space", " 45s", 45},
		{"trailing space", "3m 45s ", 225},
		{"unpadded seconds", "2m 5s", 125},
		{"empty", "", 0},
		{"garbage", "soon", 0},
		{"minutes only", "3m", 0},
		{"wrong unit order", "45s 3m", 0},
		{"negative seconds", "-45s", 0},
		{"too many tokens", "1h 3m 45s", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

// TestParse_RoundTrip verifies parse(format(x)) == x across a range of values,
// including the zero-padding boundary on either side of a full minute.
func TestParse_RoundTrip(t *testing.T) {
	for x := 0; x <= 3700; x++ {
		if got := Parse(Format(x)); got != x {
			t.Fatalf("Parse(Format(%d)) = %d, want %d", x, got, x)
		}
	}
}
