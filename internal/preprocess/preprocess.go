// Package preprocess implements the optional VictoriaMetrics-style value
// transforms that run before the value XOR codec: counter-delta (replacing
// successive values with their differences) and decimal scaling (multiplying
// by a power of ten so fractional values round-trip as integers, which XOR
// compresses far better than arbitrary mantissas).
//
// Both transforms are reversible and applied/reversed in a fixed order:
// encode applies counter-delta then scaling; decode unscales then reverses
// the counter-delta running sum.
package preprocess

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gorilla-ts/codec/errs"
	"github.com/gorilla-ts/codec/internal/pool"
)

// AutoScaleDecimals requests automatic scale-decimals detection (spec
// "auto"), capped at 6.
const AutoScaleDecimals = -1

// MaxAutoScaleDecimals bounds the decimal digits auto-detection will choose,
// limiting float precision loss from the 10^n multiply-and-round step.
const MaxAutoScaleDecimals = 6

// MaxScaleDecimals bounds the explicit scale_decimals a caller may request,
// per the documented domain {auto} | 0..9.
const MaxScaleDecimals = 9

// ValidateScaleDecimals reports whether n is a legal scale_decimals value:
// AutoScaleDecimals, or an explicit integer in [0, MaxScaleDecimals]. Any
// other value (negative sentinels other than AutoScaleDecimals, or anything
// above 9) would overflow the wire header's unsigned scale_decimals field
// or drive 10^n to an unusable magnitude, so it is rejected rather than
// silently clamped.
func ValidateScaleDecimals(n int) error {
	if n == AutoScaleDecimals {
		return nil
	}
	if n < 0 || n > MaxScaleDecimals {
		return fmt.Errorf("%w: scale_decimals must be auto or in [0, %d], got %d", errs.ErrInvalidInput, MaxScaleDecimals, n)
	}

	return nil
}

// Options configures the preprocessor. The zero value disables it entirely.
type Options struct {
	// Enabled is the victoria_metrics master switch; when false the other
	// fields are ignored and Transform/Reverse are no-ops.
	Enabled bool
	// IsCounter requests the counter-delta transform.
	IsCounter bool
	// ScaleDecimals is AutoScaleDecimals, or an explicit value in [0, 9].
	ScaleDecimals int
}

// Transform applies the configured transforms to values (in place on a
// freshly pooled slice; the input slice is left untouched) and returns the
// transformed values along with the scale actually used (resolved from
// AutoScaleDecimals if requested). The caller must invoke the returned
// cleanup function once done with the result. Returns errs.ErrInvalidInput
// if opts.ScaleDecimals is outside its documented domain.
func Transform(values []float64, opts Options) (transformed []float64, scale int, cleanup func(), err error) {
	if !opts.Enabled || len(values) == 0 {
		return values, 0, func() {}, nil
	}

	if err := ValidateScaleDecimals(opts.ScaleDecimals); err != nil {
		return nil, 0, func() {}, err
	}

	out, release := pool.GetFloat64Slice(len(values))
	copy(out, values)

	if opts.IsCounter {
		applyCounterDelta(out)
	}

	scale = opts.ScaleDecimals
	if scale == AutoScaleDecimals {
		scale = detectScale(out)
	}
	if scale > 0 {
		applyScale(out, scale)
	}

	return out, scale, release, nil
}

// Reverse undoes Transform: unscale by 10^-scale, then reverse the
// counter-delta running sum if isCounter was set. It operates on a pooled
// copy and returns a cleanup function for it.
func Reverse(values []float64, isCounter bool, scale int) (restored []float64, cleanup func()) {
	if !isCounter && scale == 0 {
		return values, func() {}
	}

	out, release := pool.GetFloat64Slice(len(values))
	copy(out, values)

	if scale > 0 {
		applyUnscale(out, scale)
	}
	if isCounter {
		reverseCounterDelta(out)
	}

	return out, release
}

// applyCounterDelta replaces [v0, v1, v2, ...] with [v0, v1-v0, v2-v1, ...].
func applyCounterDelta(values []float64) {
	for i := len(values) - 1; i > 0; i-- {
		values[i] -= values[i-1]
	}
}

// reverseCounterDelta restores the running sum: [v0, d1, d2, ...] ->
// [v0, v0+d1, v0+d1+d2, ...].
func reverseCounterDelta(values []float64) {
	for i := 1; i < len(values); i++ {
		values[i] += values[i-1]
	}
}

// applyScale multiplies each value by 10^n and rounds to the nearest
// integer, storing the result as a float64.
func applyScale(values []float64, n int) {
	factor := pow10(n)
	for i, v := range values {
		values[i] = math.Round(v * factor)
	}
}

// applyUnscale divides each value by 10^n.
func applyUnscale(values []float64, n int) {
	factor := pow10(n)
	for i, v := range values {
		values[i] = v / factor
	}
}

func pow10(n int) float64 {
	return math.Pow(10, float64(n))
}

// detectScale finds the smallest n in [0, MaxAutoScaleDecimals] such that
// every value equals its rounding to n decimals, using decimal-string
// inspection (strconv.FormatFloat's shortest exact representation) to avoid
// float drift. Falls back to 0 (no scaling) if any value needs more than
// MaxAutoScaleDecimals digits.
func detectScale(values []float64) int {
	maxNeeded := 0
	for _, v := range values {
		needed := decimalPlaces(v)
		if needed > MaxAutoScaleDecimals {
			return 0
		}
		if needed > maxNeeded {
			maxNeeded = needed
		}
	}

	return maxNeeded
}

// decimalPlaces returns the number of digits after the decimal point in v's
// shortest exact decimal representation, or a value greater than
// MaxAutoScaleDecimals if v is not finite or has no exact short form worth
// scaling (e.g. a tiny magnitude whose plain decimal form has many digits
// after the point).
func decimalPlaces(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MaxAutoScaleDecimals + 1
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	dot := -1
	for i, c := range s {
		if c == '.' {
			dot = i
			break
		}
	}
	if dot == -1 {
		return 0
	}

	return len(s) - dot - 1
}
