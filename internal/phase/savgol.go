package phase

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Smooth applies a Savitzky-Golay filter to the raw power sequence: at each
// index a degree-order polynomial is fitted over the window centered there
// and evaluated at the center point. The two trace ends are handled with
// nearest-value padding so the output keeps the input length and sharp
// transitions are not lagged the way a moving average would lag them.
//
// The raw slice is never modified. Fails if the window is longer than the
// trace or incompatible with the polynomial order.
func Smooth(raw []float64, window, order int) ([]float64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty power trace")
	}
	if window%2 == 0 || window < 1 {
		return nil, fmt.Errorf("smoothing window must be odd, got %d", window)
	}
	if order >= window {
		return nil, fmt.Errorf("polynomial order %d must be less than window %d", order, window)
	}
	if window > len(raw) {
		return nil, fmt.Errorf("smoothing window %d exceeds trace length %d", window, len(raw))
	}

	weights, err := savgolWeights(window, order)
	if err != nil {
		return nil, err
	}

	half := window / 2
	padded := padNearest(raw, half)

	smoothed := make([]float64, len(raw))
	for i := range raw {
		var sum float64
		for k, w := range weights {
			sum += w * padded[i+k]
		}
		smoothed[i] = sum
	}
	return smoothed, nil
}

// savgolWeights computes the convolution weights that evaluate the
// least-squares polynomial fit at the window center. With the Vandermonde
// design matrix A over offsets -half..half, the fitted coefficients are
// beta = (AᵀA)⁻¹Aᵀy and the center value is beta₀, so the weight vector is
// w = A (AᵀA)⁻¹ e₀. Solving happens once; smoothing is then a convolution.
func savgolWeights(window, order int) ([]float64, error) {
	half := window / 2

	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		for j := 0; j <= order; j++ {
			a.Set(i, j, math.Pow(x, float64(j)))
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	e0 := mat.NewVecDense(order+1, nil)
	e0.SetVec(0, 1)

	var z mat.VecDense
	if err := z.SolveVec(&ata, e0); err != nil {
		return nil, fmt.Errorf("savgol design matrix is singular for window %d order %d: %w", window, order, err)
	}

	var w mat.VecDense
	w.MulVec(a, &z)

	weights := make([]float64, window)
	for i := range weights {
		weights[i] = w.AtVec(i)
	}
	return weights, nil
}

// padNearest extends the series by half samples on each side using the
// nearest edge value, matching scipy's mode="nearest".
func padNearest(x []float64, half int) []float64 {
	padded := make([]float64, 0, len(x)+2*half)
	for i := 0; i < half; i++ {
		padded = append(padded, x[0])
	}
	padded = append(padded, x...)
	for i := 0; i < half; i++ {
		padded = append(padded, x[len(x)-1])
	}
	return padded
}

// NoiseReduction reports the percentage drop in mean absolute
// first-difference between the raw and smoothed traces. Used for the
// progress log only; a negative value means smoothing added noise.
func NoiseReduction(raw, smoothed []float64) float64 {
	before := meanAbsDiff(raw)
	after := meanAbsDiff(smoothed)
	if before == 0 {
		return 0
	}
	return (before - after) / before * 100
}

func meanAbsDiff(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += math.Abs(x[i] - x[i-1])
	}
	return sum / float64(len(x)-1)
}
