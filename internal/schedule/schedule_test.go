package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSleep(t *testing.T) {
	const (
		fast = 10
		slow = 30
	)

	tests := []struct {
		name                          string
		elapsed, median, totalChecks  int
		fastPercent                   int
		want                          int
	}{
		{"steady state polls slow", 50, 100, 4, 85, slow},
		{"just below threshold polls slow", 84, 100, 4, 85, slow},
		{"at threshold polls fast", 85, 100, 4, 85, fast},
		{"beyond median polls fast", 200, 100, 4, 85, fast},
		{"no checks yet polls fast", 5, 100, 0, 85, fast},
		{"no history and no checks polls fast", 5, 0, 0, 85, fast},
		{"no history with checks polls slow", 500, 0, 4, 85, slow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextSleep(tt.elapsed, tt.median, tt.totalChecks, fast, slow, tt.fastPercent)
			assert.Equal(t, tt.want, got)
		})
	}
}
