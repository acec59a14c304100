package sat

import "sort"

// Analyzer implements First-UIP conflict analysis with recursive
// minimization (spec §4.E). It holds scratch buffers shared across calls
// to avoid per-conflict allocation, matching the teacher's tmpLearnts /
// seenVar reuse pattern.
type Analyzer struct {
	trail   *Trail
	arena   *ClauseArena
	seen    *seenSet
	buf     []Lit
	tmpLits []Lit
	levels  []int

	varInc   float64
	varDecay float64
	tau      float64

	onBump    func(Var)
	onRescale func()
}

func NewAnalyzer(trail *Trail, arena *ClauseArena, varDecay float64, tau float64) *Analyzer {
	return &Analyzer{
		trail:    trail,
		arena:    arena,
		seen:     &seenSet{},
		varInc:   1,
		varDecay: varDecay,
		tau:      tau,
	}
}

// SetOrderNotify wires the Heuristics order-heap callbacks so bumpActivity
// and its rare rescaling keep the heap key of every still-undecided
// variable in sync with Trail's activity (spec §4.F: the decision heap
// tracks activity, which only the Analyzer mutates).
func (a *Analyzer) SetOrderNotify(onBump func(Var), onRescale func()) {
	a.onBump = onBump
	a.onRescale = onRescale
}

func (a *Analyzer) GrowVar() { a.seen.Grow() }

// VarInc returns the current activity bump increment (for Heuristics to
// read when scaling, spec §4.F).
func (a *Analyzer) VarInc() float64 { return a.varInc }

func (a *Analyzer) bumpActivity(v Var) {
	a.trail.BumpActivity(v, a.varInc)
	if a.trail.Activity(v) > 1e100 {
		a.trail.ScaleActivities(1e-100)
		a.varInc *= 1e-100
		if a.onRescale != nil {
			a.onRescale()
		}
	}
	if a.onBump != nil {
		a.onBump(v)
	}
}

// DecayVarActivity is called once per conflict (spec §4.F).
func (a *Analyzer) DecayVarActivity() { a.varInc /= a.varDecay }

// reasonLitsOfConflict returns the (already false) literals of the
// falsified clause/wedge.
func (a *Analyzer) reasonLitsOfConflict(c Conflict) []Lit {
	if c.Kind == ConflictLong {
		cl := a.arena.Deref(c.Ref)
		a.tmpLits = a.tmpLits[:0]
		for i := 0; i < cl.Size(); i++ {
			a.tmpLits = append(a.tmpLits, cl.Lit(i))
		}
		return a.tmpLits
	}
	return c.L[:c.N]
}

// reasonLitsOfVar returns the (already false) antecedent literals that
// justify the current assignment of v, excluding v itself. Decision and
// UnitLit reasons have none.
func (a *Analyzer) reasonLitsOfVar(v Var) []Lit {
	r := a.trail.Reason(v)
	switch r.Kind {
	case ReasonBinary:
		a.tmpLits = append(a.tmpLits[:0], r.Lit1)
		return a.tmpLits
	case ReasonTernary:
		a.tmpLits = append(a.tmpLits[:0], r.Lit1, r.Lit2)
		return a.tmpLits
	case ReasonLong:
		cl := a.arena.Deref(r.Ref)
		a.tmpLits = a.tmpLits[:0]
		for i := 1; i < cl.Size(); i++ {
			a.tmpLits = append(a.tmpLits, cl.Lit(i))
		}
		return a.tmpLits
	default:
		return nil
	}
}

// touchLongReason records a use of a long clause as an antecedent during
// analysis (spec §4.G): wasUIP1 marks the clause whose falsification
// directly produced this conflict's first-UIP derivation, as opposed to
// one merely resolved over along the way.
func (a *Analyzer) touchLongReason(ref ClauseRef, wasUIP1 bool, conflictNum uint32) {
	cl := a.arena.Deref(ref)
	if cl.Redundant() {
		cl.TouchUse(conflictNum, 1, wasUIP1, a.tau)
	}
}

// Analyze runs steps 1-7 of spec §4.E and returns the learnt clause, the
// backtrack level, and its glue (LBD). conflictNum is the search's current
// conflict count, used only to timestamp the ClauseStats touches above.
func (a *Analyzer) Analyze(conflict Conflict, conflictNum uint32) (learnt []Lit, btLevel int, glue int) {
	t := a.trail
	curLevel := t.DecisionLevel()

	a.seen.Clear()
	a.buf = append(a.buf[:0], LitUndef) // reserved slot for the asserting literal

	pathC := 0
	process := func(lits []Lit) {
		for _, q := range lits {
			v := q.Var()
			if a.seen.Contains(int(v)) {
				continue
			}
			a.seen.Add(int(v))
			if t.Level(v) == curLevel {
				pathC++
				continue
			}
			a.buf = append(a.buf, q)
			a.bumpActivity(v)
		}
	}

	// Copy: reasonLitsOfConflict reuses a.tmpLits, which process() does
	// not touch, but reasonLitsOfVar below does -- so snapshot first.
	first := append([]Lit(nil), a.reasonLitsOfConflict(conflict)...)
	if conflict.Kind == ConflictLong {
		a.touchLongReason(conflict.Ref, true, conflictNum)
	}
	process(first)

	idx := t.Len() - 1
	var uipLit Lit
	for {
		var v Var
		for {
			uipLit = t.At(idx)
			idx--
			v = uipLit.Var()
			if a.seen.Contains(int(v)) {
				break
			}
		}
		pathC--
		if pathC <= 0 {
			break
		}
		if r := t.Reason(v); r.Kind == ReasonLong {
			a.touchLongReason(r.Ref, false, conflictNum)
		}
		process(append([]Lit(nil), a.reasonLitsOfVar(v)...))
	}

	a.buf[0] = uipLit.Neg()

	learnt = a.minimize(a.buf)
	glue = a.computeGlue(learnt)

	if len(learnt) == 1 {
		btLevel = 0
		return learnt, btLevel, glue
	}

	// Order so learnt[1] has the highest level among the rest (spec step
	// 7), which is also exactly bt_level (spec step 6).
	maxAt := 1
	maxLevel := t.Level(learnt[1].Var())
	for i := 2; i < len(learnt); i++ {
		if lvl := t.Level(learnt[i].Var()); lvl > maxLevel {
			maxLevel = lvl
			maxAt = i
		}
	}
	learnt[1], learnt[maxAt] = learnt[maxAt], learnt[1]
	btLevel = maxLevel
	return learnt, btLevel, glue
}

// minimize applies recursive minimization (spec step 4): a literal q is
// redundant if every literal in its reason either already appears in
// out_learnt (is seen) or is itself redundant. Results are cached by
// marking the variable seen, exactly as spec mandates.
func (a *Analyzer) minimize(learnt []Lit) []Lit {
	out := append([]Lit(nil), learnt[0])
	for _, q := range learnt[1:] {
		if !a.litRedundant(q) {
			out = append(out, q)
		}
	}
	return out
}

func (a *Analyzer) litRedundant(q Lit) bool {
	r := a.trail.Reason(q.Var())
	if r.Kind == ReasonDecision || r.Kind == ReasonUnit {
		return false
	}
	for _, p := range append([]Lit(nil), a.reasonLitsOfVar(q.Var())...) {
		v := p.Var()
		if v == q.Var() {
			continue
		}
		if a.seen.Contains(int(v)) {
			continue
		}
		pr := a.trail.Reason(v)
		if pr.Kind == ReasonDecision || pr.Kind == ReasonUnit {
			return false
		}
		if !a.litRedundant(p) {
			return false
		}
		a.seen.Add(int(v))
	}
	return true
}

// computeGlue returns the number of distinct decision levels among
// learnt's variables (spec step 5).
func (a *Analyzer) computeGlue(learnt []Lit) int {
	a.levels = a.levels[:0]
	for _, l := range learnt {
		a.levels = append(a.levels, a.trail.Level(l.Var()))
	}
	sort.Ints(a.levels)
	n := 0
	for i, lv := range a.levels {
		if i == 0 || lv != a.levels[i-1] {
			n++
		}
	}
	return n
}
