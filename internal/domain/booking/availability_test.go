package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical ranges", day(1), day(5), day(1), day(5), true},
		{"partial overlap", day(1), day(5), day(3), day(8), true},
		{"contained range", day(1), day(10), day(3), day(5), true},
		{"disjoint ranges", day(1), day(3), day(5), day(8), false},
		{"same-day handoff does not overlap", day(1), day(5), day(5), day(8), false},
		{"handoff reversed", day(5), day(8), day(1), day(5), false},
		{"one day apart", day(1), day(4), day(5), day(8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}
