package paginationutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		items     []int
		limit     int
		want      []int
		truncated bool
	}{
		{"under limit", []int{1, 2}, 5, []int{1, 2}, false},
		{"exact", []int{1, 2}, 2, []int{1, 2}, false},
		{"over limit", []int{1, 2, 3}, 2, []int{1, 2}, true},
		{"zero limit", []int{1}, 0, []int{}, true},
		{"negative limit", []int{1}, -3, []int{}, true},
		{"empty", nil, 3, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, page := Truncate(tt.items, tt.limit)
			assert.Len(t, got, len(tt.want))
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, len(tt.items), page.Total)
			assert.Equal(t, len(got), page.Returned)
			assert.Equal(t, tt.truncated, page.Truncated)
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 10, Clamp(50, 10))
	assert.Equal(t, 5, Clamp(5, 10))
	assert.Equal(t, 50, Clamp(50, 0))
}
