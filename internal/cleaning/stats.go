package cleaning

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the median of x, averaging the two middle values for an
// even count. It does not modify x. The median of an empty slice is 0.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n / 2
	if n%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}

// Mode returns the most frequent value of x. Ties go to the smallest value
// in byte order. ok is false when x is empty.
func Mode(x []string) (mode string, ok bool) {
	if len(x) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	best := -1
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode, true
}

// MeanStd returns the mean and population (ddof = 0) standard deviation of x
func MeanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(x, nil)
}
