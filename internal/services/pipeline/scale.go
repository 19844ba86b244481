package pipeline

// ScaleStats holds the bounds used to place metric values on a 0-1 scale.
type ScaleStats struct {
	Min   float64
	Max   float64
	Range float64
}

// ComputeScale derives the choropleth scale bounds for a value set.
// A degenerate set (all values equal) gets range 1 so normalization stays
// defined and every value lands on 0.
func ComputeScale(values []float64) ScaleStats {
	if len(values) == 0 {
		return ScaleStats{Range: 1}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	r := max - min
	if r == 0 {
		r = 1
	}
	return ScaleStats{Min: min, Max: max, Range: r}
}

// Normalize places v on the scale's 0-1 range.
func (s ScaleStats) Normalize(v float64) float64 {
	return (v - s.Min) / s.Range
}
