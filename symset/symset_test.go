package symset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/symset"
)

func TestAppendAndOrder(t *testing.T) {
	x, y, z := expr.Var("x"), expr.Var("y"), expr.Var("z")
	s, err := symset.New(x, y, z)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Size())
	i, ok := s.IndexOf(y)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.True(t, s.IsConsistent())
}

func TestAppendDuplicateFails(t *testing.T) {
	x := expr.Var("x")
	s, err := symset.New(x)
	require.NoError(t, err)
	err = s.Append(x)
	assert.ErrorIs(t, err, mpcerr.ErrInvalidArgument)
}

func TestInsertShiftsLaterEntries(t *testing.T) {
	x, y, z := expr.Var("x"), expr.Var("y"), expr.Var("z")
	s, err := symset.New(x, z)
	require.NoError(t, err)
	require.NoError(t, s.Insert(1, y))

	got, err := s.At(1)
	require.NoError(t, err)
	assert.Same(t, y, got)
	got, err = s.At(2)
	require.NoError(t, err)
	assert.Same(t, z, got)
	assert.True(t, s.IsConsistent())
}

func TestInsertOutOfRangeFails(t *testing.T) {
	x := expr.Var("x")
	s, err := symset.New(x)
	require.NoError(t, err)
	err = s.Insert(5, expr.Var("y"))
	assert.ErrorIs(t, err, mpcerr.ErrInvalidArgument)
}

func TestRemoveUnknownFails(t *testing.T) {
	s, err := symset.New(expr.Var("x"))
	require.NoError(t, err)
	err = s.Remove(expr.Var("y"))
	assert.ErrorIs(t, err, mpcerr.ErrUnknownSymbol)
}

func TestRemoveCompactsIndex(t *testing.T) {
	x, y, z := expr.Var("x"), expr.Var("y"), expr.Var("z")
	s, err := symset.New(x, y, z)
	require.NoError(t, err)
	require.NoError(t, s.Remove(y))
	assert.Equal(t, 2, s.Size())
	i, ok := s.IndexOf(z)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.True(t, s.IsConsistent())
}

func TestIsSubset(t *testing.T) {
	x, y, z := expr.Var("x"), expr.Var("y"), expr.Var("z")
	a, err := symset.New(x, y)
	require.NoError(t, err)
	b, err := symset.New(x, y, z)
	require.NoError(t, err)
	assert.True(t, a.IsSubset(b))
	assert.False(t, b.IsSubset(a))
}

func TestUnionPreservesFirstOrderAndDedups(t *testing.T) {
	x, y, z := expr.Var("x"), expr.Var("y"), expr.Var("z")
	a, err := symset.New(x, y)
	require.NoError(t, err)
	b, err := symset.New(y, z)
	require.NoError(t, err)
	u, err := symset.Union(a, b)
	require.NoError(t, err)
	assert.Equal(t, []*expr.Symbol{x, y, z}, u.Slice())
}
