package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{name: "empty", in: nil, want: 0},
		{name: "single", in: []float64{4}, want: 4},
		{name: "odd", in: []float64{9, 1, 5}, want: 5},
		{name: "even averages middle pair", in: []float64{4, 1, 3, 2}, want: 2.5},
		{name: "negative", in: []float64{-3, -1, -2}, want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.in))
		})
	}

	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in, "Median must not reorder its input")
}

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		want   string
		wantOK bool
	}{
		{name: "empty", in: nil, want: "", wantOK: false},
		{name: "single", in: []string{"a"}, want: "a", wantOK: true},
		{name: "clear winner", in: []string{"b", "a", "b", "c"}, want: "b", wantOK: true},
		{name: "tie takes smallest", in: []string{"pear", "apple", "pear", "apple"}, want: "apple", wantOK: true},
		{name: "all distinct", in: []string{"z", "y", "x"}, want: "x", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mode(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mean, 1e-12)
	assert.InDelta(t, 2, std, 1e-12, "population standard deviation")

	mean, std = MeanStd(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)

	_, std = MeanStd([]float64{3, 3, 3})
	assert.Equal(t, 0.0, std)
}
