// Package solver implements an infeasible-start primal-dual interior-point
// method via log-barrier homotopy.
//
// # Problem
//
// minimize 𝛗(𝐱) subject to
//   - equality constraints: 𝐀𝐱 = 𝐛
//   - inequality constraints: 𝐄ᵢ(𝐱) < 0  (i = 1 ··· Q)
//
// The inequalities are folded into the objective as a log barrier
// 𝐁(𝐱) = Σᵢ −log(−𝐄ᵢ(𝐱)), and solved by homotopy on a barrier strength t:
//
//	𝐟ₜ(𝐱) = t·𝛗(𝐱) + 𝐁(𝐱)
//
// As t → ∞, the minimizer of 𝐟ₜ subject to 𝐀𝐱 = 𝐛 converges to the
// minimizer of the original constrained problem.
//
// # KKT system
//
// With equality constraints, each Newton step solves the saddle-point
// system
//
//	⎡ 𝛁²𝐟ₜ   𝐀ᵀ ⎤ ⎡ 𝚫𝐱 ⎤     ⎡ 𝛁𝐟ₜ    ⎤
//	⎣ 𝐀       0  ⎦ ⎣ 𝐰  ⎦  =  −⎣ 𝐀𝐱 − 𝐛 ⎦
//
// and sets 𝚫𝛎 = 𝐰 − 𝛎, since 𝐰 is the next dual iterate, not its
// increment. Without equality constraints the system reduces to
// 𝛁²𝐟ₜ·𝚫𝐱 = −𝛁𝐟ₜ and 𝚫𝛎 = 0.
//
// The residual 𝐫(𝐱, 𝛎, t) is the stacked KKT vector above (without the
// leading minus sign); ‖𝐫‖ is driven below residualEpsilon by an inner
// Newton loop at each fixed t, and the outer loop raises t until the
// duality-gap proxy Q/t falls below dualGapEpsilon.
//
// Grounded on the original engine's Solver::minimize, Solver::residualNorm
// and Solver::infeasibleLinesearch; the dense linear algebra is gonum's
// mat package, following the gonum-based solvers in the example pack.
package solver

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/mpclog"
)

// HyperParameters controls the homotopy loop, the inner Newton loop, and
// the backtracking line search. Field names and defaults match the
// original engine's HyperParameters record exactly.
type HyperParameters struct {
	NewtonStepsStageMaximum     int
	HomotopyStagesMaximum       int
	ResidualEpsilon             float64
	DualGapEpsilon              float64
	HomotopyParameterStart      float64
	HomotopyParameterMultiplier float64
	LineSearchAlpha             float64
	LineSearchBeta              float64
	LineSearchMaximumIterations int
	ValueThreshold              float64
}

// DefaultHyperParameters returns the original engine's defaults.
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		NewtonStepsStageMaximum:     100,
		HomotopyStagesMaximum:       50,
		ResidualEpsilon:             1e-3,
		DualGapEpsilon:              1e-3,
		HomotopyParameterStart:      1.0,
		HomotopyParameterMultiplier: 20.0,
		LineSearchAlpha:             0.25,
		LineSearchBeta:              0.5,
		LineSearchMaximumIterations: 100,
		ValueThreshold:              math.Inf(-1),
	}
}

// Objective is everything the solver needs from a problem instance. The
// function-pointer objective and any other adapter satisfying this shape
// can be minimized.
type Objective interface {
	NumVariables() int
	NumEqualityConstraints() int
	NumInequalityConstraints() int

	Value(x []float64) (float64, error)
	Gradient(x []float64) ([]float64, error)
	Hessian(x []float64) ([][]float64, error)

	EqualityConstraintMatrix() ([][]float64, error)
	EqualityConstraintVector() ([]float64, error)

	InequalityConstraintsValue(x []float64) (float64, error)
	InequalityConstraintsGradient(x []float64) ([]float64, error)
	InequalityConstraintsHessian(x []float64) ([][]float64, error)
}

// validatable is implemented by objectives that can check their own
// internal wiring (e.g. *objective.FunctionPointerObjective).
type validatable interface {
	Validate() error
}

// Solver minimizes one Objective. It is not safe for concurrent calls;
// distinct Solver instances over distinct objectives may run concurrently.
type Solver struct {
	obj    Objective
	hp     HyperParameters
	logger *slog.Logger
}

// New builds a Solver, validating obj if it implements Validate(). This
// mirrors the original engine's default (NO_VALIDATE_OBJECTIVE not
// configured); use NewUnvalidated to skip the check.
func New(obj Objective, hp HyperParameters, logger *slog.Logger) (*Solver, error) {
	if v, ok := obj.(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", mpcerr.ErrValidationFailed, err)
		}
	}
	return &Solver{obj: obj, hp: hp, logger: mpclog.OrDiscard(logger)}, nil
}

// NewUnvalidated builds a Solver without calling obj.Validate(), mirroring
// a NO_VALIDATE_OBJECTIVE build of the original engine.
func NewUnvalidated(obj Objective, hp HyperParameters, logger *slog.Logger) *Solver {
	return &Solver{obj: obj, hp: hp, logger: mpclog.OrDiscard(logger)}
}

// Result is the solver's output: the objective value at the returned
// point, the primal vector, and the dual vector.
type Result struct {
	Value float64
	X     []float64
	Nu    []float64
}

// Minimize runs the homotopy loop to convergence from primalStart and
// dualStart, defaulting to the zero vector and the all-ones vector
// respectively when nil. It fails with mpcerr.ErrDimensionMismatch if a
// supplied start disagrees with the objective's dimensions, and with
// mpcerr.ErrLineSearchExceeded if backtracking cannot find an acceptable
// step within lineSearchMaximumIterations contractions.
func (s *Solver) Minimize(primalStart, dualStart []float64) (Result, error) {
	n := s.obj.NumVariables()
	m := s.obj.NumEqualityConstraints()
	q := s.obj.NumInequalityConstraints()

	x, err := defaultOrCopy(primalStart, n, 0)
	if err != nil {
		return Result{}, err
	}
	nu, err := defaultOrCopy(dualStart, m, 1)
	if err != nil {
		return Result{}, err
	}

	A, b, err := s.eqSystem()
	if err != nil {
		return Result{}, err
	}

	t := s.hp.HomotopyParameterStart
	stage := 0

	value, err := s.obj.Value(x)
	if err != nil {
		return Result{}, err
	}

	for (q == 0 || float64(q)/t > s.hp.DualGapEpsilon) &&
		stage < s.hp.HomotopyStagesMaximum &&
		value > s.hp.ValueThreshold {

		lambda, err := s.residualNorm(x, nu, t, A, b)
		if err != nil {
			return Result{}, err
		}

		inner := 0
		for lambda > s.hp.ResidualEpsilon && inner < s.hp.NewtonStepsStageMaximum && value > s.hp.ValueThreshold {
			dx, dnu, err := s.newtonStep(x, nu, t, A, b)
			if err != nil {
				return Result{}, err
			}
			step, xNew, nuNew, err := s.lineSearch(x, nu, dx, dnu, t, A, b)
			if err != nil {
				return Result{}, err
			}
			x, nu = xNew, nuNew

			value, err = s.obj.Value(x)
			if err != nil {
				return Result{}, err
			}
			lambda, err = s.residualNorm(x, nu, t, A, b)
			if err != nil {
				return Result{}, err
			}
			inner++
			s.logger.Debug("solver: newton step", slog.Int("stage", stage), slog.Int("inner", inner),
				slog.Float64("step", step), slog.Float64("lambda", lambda), slog.Float64("value", value))
		}

		if q == 0 {
			break
		}
		t *= s.hp.HomotopyParameterMultiplier
		stage++
		s.logger.Debug("solver: homotopy stage advanced", slog.Int("stage", stage), slog.Float64("t", t))
	}

	return Result{Value: value, X: x, Nu: nu}, nil
}

func defaultOrCopy(v []float64, length int, fallback float64) ([]float64, error) {
	if v == nil {
		out := make([]float64, length)
		for i := range out {
			out[i] = fallback
		}
		return out, nil
	}
	if len(v) != length {
		return nil, mpcerr.ErrDimensionMismatch
	}
	return append([]float64(nil), v...), nil
}

func (s *Solver) eqSystem() ([][]float64, []float64, error) {
	A, err := s.obj.EqualityConstraintMatrix()
	if err != nil {
		return nil, nil, err
	}
	b, err := s.obj.EqualityConstraintVector()
	if err != nil {
		return nil, nil, err
	}
	return A, b, nil
}

// combinedValue returns f_t(x) = t*phi(x) + B(x).
func (s *Solver) combinedValue(x []float64, t float64) (float64, error) {
	phi, err := s.obj.Value(x)
	if err != nil {
		return 0, err
	}
	barrier, err := s.obj.InequalityConstraintsValue(x)
	if err != nil {
		return 0, err
	}
	return t*phi + barrier, nil
}

func (s *Solver) gradFt(x []float64, t float64) ([]float64, error) {
	g, err := s.obj.Gradient(x)
	if err != nil {
		return nil, err
	}
	bg, err := s.obj.InequalityConstraintsGradient(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(g))
	for i := range out {
		out[i] = t*g[i] + bg[i]
	}
	return out, nil
}

func (s *Solver) hessFt(x []float64, t float64) ([][]float64, error) {
	h, err := s.obj.Hessian(x)
	if err != nil {
		return nil, err
	}
	bh, err := s.obj.InequalityConstraintsHessian(x)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(h))
	for r := range out {
		out[r] = make([]float64, len(h[r]))
		for c := range out[r] {
			out[r][c] = t*h[r][c] + bh[r][c]
		}
	}
	return out, nil
}

// residualNorm returns ||r(x, nu, t)||, the KKT residual norm.
func (s *Solver) residualNorm(x, nu []float64, t float64, A [][]float64, b []float64) (float64, error) {
	n := len(x)
	m := len(b)

	grad, err := s.gradFt(x, t)
	if err != nil {
		return 0, err
	}

	r := make([]float64, n+m)
	copy(r[:n], grad)
	if m > 0 {
		for i := 0; i < n; i++ {
			for row := 0; row < m; row++ {
				r[i] += A[row][i] * nu[row]
			}
		}
		for row := 0; row < m; row++ {
			dot := 0.0
			for col := 0; col < n; col++ {
				dot += A[row][col] * x[col]
			}
			r[n+row] = dot - b[row]
		}
	}

	sum := 0.0
	for _, v := range r {
		sum += v * v
	}
	return math.Sqrt(sum), nil
}

// newtonStep solves the KKT system (or the reduced N x N system when
// there are no equality constraints) for the primal and dual steps.
func (s *Solver) newtonStep(x, nu []float64, t float64, A [][]float64, b []float64) ([]float64, []float64, error) {
	n := len(x)
	m := len(b)

	grad, err := s.gradFt(x, t)
	if err != nil {
		return nil, nil, err
	}
	hess, err := s.hessFt(x, t)
	if err != nil {
		return nil, nil, err
	}

	if m == 0 {
		H := mat.NewDense(n, n, flatten(hess))
		rhs := mat.NewVecDense(n, negate(grad))
		var qr mat.QR
		qr.Factorize(H)
		var sol mat.VecDense
		if err := qr.SolveVecTo(&sol, false, rhs); err != nil {
			return nil, nil, fmt.Errorf("solver: newton solve: %w", err)
		}
		dx := make([]float64, n)
		for i := range dx {
			dx[i] = sol.AtVec(i)
		}
		return dx, []float64{}, nil
	}

	size := n + m
	K := mat.NewDense(size, size, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			K.Set(r, c, hess[r][c])
		}
	}
	for r := 0; r < n; r++ {
		for c := 0; c < m; c++ {
			K.Set(r, n+c, A[c][r])
		}
	}
	for r := 0; r < m; r++ {
		for c := 0; c < n; c++ {
			K.Set(n+r, c, A[r][c])
		}
	}

	rhs := make([]float64, size)
	for i := 0; i < n; i++ {
		rhs[i] = -grad[i]
	}
	for row := 0; row < m; row++ {
		dot := 0.0
		for col := 0; col < n; col++ {
			dot += A[row][col] * x[col]
		}
		rhs[n+row] = -(dot - b[row])
	}
	rhsVec := mat.NewVecDense(size, rhs)

	var qr mat.QR
	qr.Factorize(K)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, rhsVec); err != nil {
		return nil, nil, fmt.Errorf("solver: newton solve: %w", err)
	}

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = sol.AtVec(i)
	}
	dnu := make([]float64, m)
	for i := range dnu {
		dnu[i] = sol.AtVec(n+i) - nu[i]
	}
	return dx, dnu, nil
}

// lineSearch performs infeasible-start backtracking on the residual norm,
// with NaN guards on both the shifted residual norm and the shifted
// barrier-augmented value: the gradient of -log(-E) stays finite where
// E >= 0 (a domain violation), so the residual norm alone would not catch
// a step that has jumped outside the barrier's domain.
func (s *Solver) lineSearch(x, nu, dx, dnu []float64, t float64, A [][]float64, b []float64) (float64, []float64, []float64, error) {
	currentNorm, err := s.residualNorm(x, nu, t, A, b)
	if err != nil {
		return 0, nil, nil, err
	}

	step := 1.0
	for i := 0; i < s.hp.LineSearchMaximumIterations; i++ {
		xNew := axpy(step, dx, x)
		nuNew := axpy(step, dnu, nu)

		shiftedNorm, err := s.residualNorm(xNew, nuNew, t, A, b)
		if err != nil {
			return 0, nil, nil, err
		}
		shiftedValue, err := s.combinedValue(xNew, t)
		if err != nil {
			return 0, nil, nil, err
		}

		if !math.IsNaN(shiftedNorm) && !math.IsNaN(shiftedValue) && shiftedNorm <= (1-s.hp.LineSearchAlpha*step)*currentNorm {
			return step, xNew, nuNew, nil
		}
		step *= s.hp.LineSearchBeta
	}
	return 0, nil, nil, mpcerr.ErrLineSearchExceeded
}

func flatten(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, 0, len(m)*len(m[0]))
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

func axpy(a float64, x, y []float64) []float64 {
	out := make([]float64, len(y))
	for i := range out {
		d := 0.0
		if i < len(x) {
			d = x[i]
		}
		out[i] = y[i] + a*d
	}
	return out
}
