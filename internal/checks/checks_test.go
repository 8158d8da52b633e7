package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Snapshot
	}{
		{
			name: "empty response",
			raw:  "",
			want: Snapshot{},
		},
		{
			name: "whitespace only",
			raw:  "\n\n",
			want: Snapshot{},
		},
		{
			name: "mixed states",
			raw: "build\tpass\t1m 10s\thttps://ci.example.com/1\n" +
				"lint\tfail\t0m 20s\thttps://ci.example.com/2\n" +
				"test\tpending\t2m 05s\thttps://ci.example.com/3\n",
			want: Snapshot{Total: 3, Pending: 1, Failed: 1, Passed: 1, LongestElapsed: 125},
		},
		{
			name: "case insensitive pass and fail",
			raw:  "a\tPASSED\t0m 10s\nb\tFailure\t0m 15s\n",
			want: Snapshot{Total: 2, Failed: 1, Passed: 1, LongestElapsed: 15},
		},
		{
			name: "pending matched exactly",
			raw:  "a\tPending\t0m 10s\n",
			want: Snapshot{Total: 1, LongestElapsed: 10},
		},
		{
			name: "extra states count toward total only",
			raw:  "a\tpass\t0m 10s\nb\tskipping\t0m 00s\nc\tcancelled\t0m 00s\n",
			want: Snapshot{Total: 3, Passed: 1, LongestElapsed: 10},
		},
		{
			name: "ten minutes beats nine",
			raw:  "a\tpass\t9m 59s\nb\tpass\t10m 00s\n",
			want: Snapshot{Total: 2, Passed: 2, LongestElapsed: 600},
		},
		{
			name: "malformed duration treated as zero",
			raw:  "a\tpass\tsoon\nb\tpass\t0m 30s\n",
			want: Snapshot{Total: 2, Passed: 2, LongestElapsed: 30},
		},
		{
			name: "missing duration column",
			raw:  "a\tpending\n",
			want: Snapshot{Total: 1, Pending: 1},
		},
		{
			name: "short rows ignored",
			raw:  "not a check row\na\tpass\t0m 05s\n",
			want: Snapshot{Total: 1, Passed: 1, LongestElapsed: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestSnapshot_Done(t *testing.T) {
	assert.False(t, Snapshot{}.Done(), "no checks reported yet")
	assert.False(t, Snapshot{Total: 2, Pending: 1, Passed: 1}.Done())
	assert.False(t, Snapshot{Total: 2, Failed: 1, Passed: 1}.Done())
	assert.True(t, Snapshot{Total: 2, Passed: 2}.Done())
	assert.True(t, Snapshot{Total: 2, Passed: 1}.Done(), "skipped checks do not block completion")
}
