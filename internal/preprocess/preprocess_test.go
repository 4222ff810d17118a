package preprocess

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gorilla-ts/codec/errs"
)

func TestTransform_Disabled(t *testing.T) {
	values := []float64{1, 2, 3}
	out, scale, cleanup, err := Transform(values, Options{Enabled: false})
	require.NoError(t, err)
	defer cleanup()

	require.Equal(t, values, out)
	require.Equal(t, 0, scale)
}

func TestCounterDelta_RoundTrip(t *testing.T) {
	values := []float64{1000, 1010, 1030, 1030, 1090}

	out, scale, cleanup, err := Transform(values, Options{Enabled: true, IsCounter: true})
	require.NoError(t, err)
	require.Equal(t, 0, scale)
	expectedDeltas := []float64{1000, 10, 20, 0, 60}
	require.Equal(t, expectedDeltas, out)
	cleanup()

	restored, cleanup2 := Reverse(out, true, 0)
	defer cleanup2()
	require.Equal(t, values, restored)
}

func TestScale_Explicit(t *testing.T) {
	values := []float64{1.5, 2.25, 3.125}

	out, scale, cleanup, err := Transform(values, Options{Enabled: true, ScaleDecimals: 3})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, 3, scale)
	require.Equal(t, []float64{1500, 2250, 3125}, out)

	restored, cleanup2 := Reverse(out, false, 3)
	defer cleanup2()
	require.Equal(t, values, restored)
}

func TestScale_Auto(t *testing.T) {
	values := []float64{1.5, 2.25, 3.125}

	out, scale, cleanup, err := Transform(values, Options{Enabled: true, ScaleDecimals: AutoScaleDecimals})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, 3, scale)
	require.Equal(t, []float64{1500, 2250, 3125}, out)
}

func TestScale_Auto_FallsBackWhenTooPrecise(t *testing.T) {
	values := []float64{1.1234567} // needs 7 decimal digits, exceeds cap of 6

	_, scale, cleanup, err := Transform(values, Options{Enabled: true, ScaleDecimals: AutoScaleDecimals})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, 0, scale)
}

func TestScale_Auto_CappedAtSix(t *testing.T) {
	values := []float64{1.0, 2.123456}

	_, scale, cleanup, err := Transform(values, Options{Enabled: true, ScaleDecimals: AutoScaleDecimals})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, 6, scale)
}

func TestCounterDeltaAndScale_Combined(t *testing.T) {
	values := []float64{100.0, 110.5, 121.25}

	out, scale, cleanup, err := Transform(values, Options{Enabled: true, IsCounter: true, ScaleDecimals: 2})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, 2, scale)

	restored, cleanup2 := Reverse(out, true, 2)
	defer cleanup2()

	for i := range values {
		require.InDelta(t, values[i], restored[i], 0.005)
	}
}

func TestValidateScaleDecimals(t *testing.T) {
	require.NoError(t, ValidateScaleDecimals(AutoScaleDecimals))
	for n := 0; n <= MaxScaleDecimals; n++ {
		require.NoError(t, ValidateScaleDecimals(n))
	}

	require.Error(t, ValidateScaleDecimals(-2))
	require.Error(t, ValidateScaleDecimals(MaxScaleDecimals+1))
	require.Error(t, ValidateScaleDecimals(100))
}

func TestTransform_RejectsOutOfRangeScaleDecimals(t *testing.T) {
	values := []float64{1, 2, 3}

	_, _, cleanup, err := Transform(values, Options{Enabled: true, ScaleDecimals: 10})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	cleanup()

	_, _, cleanup, err = Transform(values, Options{Enabled: true, ScaleDecimals: -2})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	cleanup()
}

func TestReverse_NoOpWhenDisabled(t *testing.T) {
	values := []float64{5, 6, 7}
	restored, cleanup := Reverse(values, false, 0)
	defer cleanup()

	require.Equal(t, values, restored)
}

func TestDecimalPlaces(t *testing.T) {
	require.Equal(t, 0, decimalPlaces(5))
	require.Equal(t, 1, decimalPlaces(5.1))
	require.Equal(t, 3, decimalPlaces(5.125))
}
