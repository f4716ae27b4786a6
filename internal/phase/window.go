package phase

// trailing returns the trailing window of up to size samples ending at index
// i (inclusive), clamped at the start of the series. All rolling features
// share this so the growing-window behaviour at the trace start lives in
// exactly one place. The returned slice aliases x and must not be mutated.
func trailing(x []float64, i, size int) []float64 {
	lo := i - size + 1
	if lo < 0 {
		lo = 0
	}
	return x[lo : i+1]
}

// diffs returns the first differences of the window, or nil for windows
// shorter than two samples.
func diffs(window []float64) []float64 {
	if len(window) < 2 {
		return nil
	}
	d := make([]float64, len(window)-1)
	for i := 1; i < len(window); i++ {
		d[i-1] = window[i] - window[i-1]
	}
	return d
}
