//go:build linux || darwin

package jit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convexmpc/convexmpc/jit"
	"github.com/convexmpc/convexmpc/mpcconfig"
	"github.com/convexmpc/convexmpc/mpcerr"
)

const sampleSource = `
#include <math.h>
#ifdef __cplusplus
extern "C" {
#endif
void value(const double* state, const double* param, double* out) {
    out[0] = state[0] * state[0];
}
#ifdef __cplusplus
}
#endif
`

func TestLoadCompilesAndResolvesSymbol(t *testing.T) {
	lib, err := jit.Load(mpcconfig.DefaultCompiler, sampleSource, nil)
	require.NoError(t, err)
	defer lib.Close()

	ptr, err := lib.Lookup("value")
	require.NoError(t, err)
	assert.NotNil(t, ptr)
}

func TestLookupMissingSymbolFails(t *testing.T) {
	lib, err := jit.Load(mpcconfig.DefaultCompiler, sampleSource, nil)
	require.NoError(t, err)
	defer lib.Close()

	_, err = lib.Lookup("doesNotExist")
	assert.ErrorIs(t, err, mpcerr.ErrSymbolMissing)
}

func TestLoadFailsWithInvalidCompiler(t *testing.T) {
	bad := mpcconfig.Compiler{Path: "convexmpc-no-such-compiler"}
	_, err := jit.Load(bad, sampleSource, nil)
	assert.ErrorIs(t, err, mpcerr.ErrCompileFailed)
}

func TestCloseIsIdempotent(t *testing.T) {
	lib, err := jit.Load(mpcconfig.DefaultCompiler, sampleSource, nil)
	require.NoError(t, err)
	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close())

	_, err = lib.Lookup("value")
	assert.Error(t, err)
}
