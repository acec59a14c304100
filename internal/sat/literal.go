// Package sat implements a CDCL (Conflict-Driven Clause Learning) SAT
// solver core: a relocating clause arena, two-watched-literal propagation,
// first-UIP conflict analysis, VSIDS-style heuristics, and ML-guided
// clause-database reduction.
package sat

import "fmt"

// Var is a Boolean variable identifier in [0, nVars).
type Var uint32

// Lit is a literal: a variable together with a sign. Index() = 2*var +
// (sign?1:0), so two literals collide iff they differ only in sign.
type Lit int32

// MkLit builds the literal for variable v with the given sign (true means
// negated).
func MkLit(v Var, negated bool) Lit {
	l := Lit(v) << 1
	if negated {
		l |= 1
	}
	return l
}

// Var returns the literal's variable.
func (l Lit) Var() Var { return Var(uint32(l) >> 1) }

// Sign reports whether the literal is negated.
func (l Lit) Sign() bool { return l&1 != 0 }

// Neg returns the opposite literal.
func (l Lit) Neg() Lit { return l ^ 1 }

// Index returns 2*var + (sign?1:0), suitable for indexing per-literal
// arrays such as watch lists.
func (l Lit) Index() int { return int(l) }

func (l Lit) String() string {
	if l.Sign() {
		return fmt.Sprintf("-%d", l.Var()+1)
	}
	return fmt.Sprintf("%d", l.Var()+1)
}

// LitUndef is the sentinel literal used where no literal applies.
const LitUndef Lit = -1
