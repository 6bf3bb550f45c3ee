//go:build linux || darwin

package objective_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convexmpc/convexmpc/jit"
	"github.com/convexmpc/convexmpc/mpcconfig"
	"github.com/convexmpc/convexmpc/numdiff"
	"github.com/convexmpc/convexmpc/objective"
)

// TestGradientAndHessianMatchFiniteDifferences checks the JIT-compiled
// evaluators for f(x) = x^3, whose gradient and Hessian are written by
// hand in the C source below, against a central finite-difference
// approximation of the value and gradient evaluators.
func TestGradientAndHessianMatchFiniteDifferences(t *testing.T) {
	source := `
#include <math.h>
#ifdef __cplusplus
extern "C" {
#endif
void value(const double* state, const double* param, double* out) {
    out[0] = state[0] * state[0] * state[0];
}
void grad(const double* state, const double* param, double* out) {
    out[0] = 3.0 * state[0] * state[0];
}
void hess(const double* state, const double* param, double* out) {
    out[0] = 6.0 * state[0];
}
#ifdef __cplusplus
}
#endif
`
	lib, err := jit.Load(mpcconfig.DefaultCompiler, source, nil)
	require.NoError(t, err)
	defer lib.Close()

	valuePtr, err := lib.Lookup("value")
	require.NoError(t, err)
	gradPtr, err := lib.Lookup("grad")
	require.NoError(t, err)
	hessPtr, err := lib.Lookup("hess")
	require.NoError(t, err)

	o := objective.New(1, 0, 0, 0)
	o.InstallValue(valuePtr)
	o.InstallGradient(gradPtr)
	o.InstallHessian(hessPtr)
	require.NoError(t, o.Validate())

	x0 := []float64{2.5}

	valueSpec := numdiff.ApproxSpec{
		N: 1, M: 1, Method: numdiff.Central,
		Object: func(x, y []float64) {
			v, err := o.Value(x)
			require.NoError(t, err)
			y[0] = v
		},
	}
	numericGrad := make([]float64, 1)
	require.NoError(t, valueSpec.Diff(x0, numericGrad))

	analyticGrad, err := o.Gradient(x0)
	require.NoError(t, err)
	assert.InDelta(t, analyticGrad[0], numericGrad[0], 1e-4)

	gradSpec := numdiff.ApproxSpec{
		N: 1, M: 1, Method: numdiff.Central,
		Object: func(x, y []float64) {
			g, err := o.Gradient(x)
			require.NoError(t, err)
			y[0] = g[0]
		},
	}
	numericHess := make([]float64, 1)
	require.NoError(t, gradSpec.Diff(x0, numericHess))

	analyticHess, err := o.Hessian(x0)
	require.NoError(t, err)
	assert.InDelta(t, analyticHess[0][0], numericHess[0], 1e-3)
}
