// Package symset implements an ordered, duplicate-free set of symbols.
// Variable and parameter orderings throughout convexmpc - the columns of a
// Jacobian, the arguments of a generated evaluator function - are symsets:
// position in the set is position in the corresponding vector or matrix
// column, so insertion order is part of the set's observable identity.
//
// Grounded on the original engine's OrderedSet<T>: append/insert/remove/at/
// size/contains/isSubset/unionWith, adapted to Go idiom (explicit error
// returns instead of exceptions, sentinel errors from mpcerr).
package symset

import (
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
)

// Set is an ordered collection of distinct *expr.Symbol values.
type Set struct {
	order []*expr.Symbol
	index map[*expr.Symbol]int
}

// New builds an empty set, optionally seeded with the given symbols in
// order (duplicates among the seed are an error, matching Append).
func New(syms ...*expr.Symbol) (*Set, error) {
	s := &Set{index: map[*expr.Symbol]int{}}
	for _, sym := range syms {
		if err := s.Append(sym); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append adds sym to the end of the set. It fails with
// mpcerr.ErrInvalidArgument if sym is already a member.
func (s *Set) Append(sym *expr.Symbol) error {
	if sym == nil {
		return mpcerr.ErrInvalidArgument
	}
	if _, ok := s.index[sym]; ok {
		return mpcerr.ErrInvalidArgument
	}
	s.index[sym] = len(s.order)
	s.order = append(s.order, sym)
	return nil
}

// Insert adds sym at position i, shifting later entries up by one. i must
// be in [0, Size()]; i == Size() behaves like Append.
func (s *Set) Insert(i int, sym *expr.Symbol) error {
	if sym == nil || i < 0 || i > len(s.order) {
		return mpcerr.ErrInvalidArgument
	}
	if _, ok := s.index[sym]; ok {
		return mpcerr.ErrInvalidArgument
	}
	s.order = append(s.order, nil)
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = sym
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return nil
}

// Remove deletes sym from the set if present, shifting later entries down.
// It fails with mpcerr.ErrUnknownSymbol if sym is not a member.
func (s *Set) Remove(sym *expr.Symbol) error {
	i, ok := s.index[sym]
	if !ok {
		return mpcerr.ErrUnknownSymbol
	}
	delete(s.index, sym)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return nil
}

// At returns the symbol at position i. It fails with
// mpcerr.ErrInvalidArgument if i is out of range.
func (s *Set) At(i int) (*expr.Symbol, error) {
	if i < 0 || i >= len(s.order) {
		return nil, mpcerr.ErrInvalidArgument
	}
	return s.order[i], nil
}

// Size returns the number of symbols in the set.
func (s *Set) Size() int { return len(s.order) }

// Contains reports whether sym is a member.
func (s *Set) Contains(sym *expr.Symbol) bool {
	_, ok := s.index[sym]
	return ok
}

// IndexOf returns sym's position and true if it is a member, or (-1,
// false) otherwise.
func (s *Set) IndexOf(sym *expr.Symbol) (int, bool) {
	i, ok := s.index[sym]
	if !ok {
		return -1, false
	}
	return i, true
}

// Slice returns the set's members in order. The returned slice is a copy;
// mutating it does not affect the set.
func (s *Set) Slice() []*expr.Symbol {
	out := make([]*expr.Symbol, len(s.order))
	copy(out, s.order)
	return out
}

// IsSubset reports whether every member of s is also a member of other.
func (s *Set) IsSubset(other *Set) bool {
	for _, sym := range s.order {
		if !other.Contains(sym) {
			return false
		}
	}
	return true
}

// Union returns a new set containing every symbol in s followed by every
// symbol in other not already present, preserving s's internal order.
func Union(s, other *Set) (*Set, error) {
	out, err := New(s.order...)
	if err != nil {
		return nil, err
	}
	for _, sym := range other.order {
		if !out.Contains(sym) {
			if err := out.Append(sym); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// IsConsistent reports whether the set's internal index agrees with its
// order slice; it exists for defensive assertions in tests, mirroring the
// original's isConsistent invariant check.
func (s *Set) IsConsistent() bool {
	if len(s.order) != len(s.index) {
		return false
	}
	for i, sym := range s.order {
		if s.index[sym] != i {
			return false
		}
	}
	return true
}
