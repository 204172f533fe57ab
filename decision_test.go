package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		topK    []string
		top2K   []string
		want    Decision
	}{
		{
			name:    "partition",
			current: []string{"D", "A", "C"},
			topK:    []string{"A", "B"},
			top2K:   []string{"A", "B", "C"},
			want:    Decision{Buy: []string{"A", "B"}, Sell: []string{"D"}, Hold: []string{"C"}},
		},
		{
			name:    "empty ranking sells everything",
			current: []string{"A", "B"},
			want:    Decision{Buy: []string{}, Sell: []string{"A", "B"}, Hold: []string{}},
		},
		{
			name:  "empty portfolio buys the top",
			topK:  []string{"A"},
			top2K: []string{"A", "B"},
			want:  Decision{Buy: []string{"A"}, Sell: []string{}, Hold: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.current, tt.topK, tt.top2K)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Decide(tt.current, tt.topK, tt.top2K), "decide must be idempotent")
		})
	}
}
