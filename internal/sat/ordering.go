package sat

import (
	"math/rand"

	"github.com/rhartert/yagh"
)

// Heuristics picks the next decision variable/polarity: VSIDS activity via
// a binary order-heap, phase saving, and random tie-breaking (spec §4.F).
// It does not own assignment state -- it reads Trail's VarState and is
// notified of undos via Trail.CancelUntil's onUndo callback. yagh.IntMap
// is a min-heap, so activities are stored negated (teacher's convention).
type Heuristics struct {
	trail *Trail
	order *yagh.IntMap[float64]
	rng   *rand.Rand

	randVarFreq float64
	randPolFreq float64
	usePhase    bool
}

func NewHeuristics(trail *Trail, seed int64, randVarFreq, randPolFreq float64, usePhaseSaving bool) *Heuristics {
	return &Heuristics{
		trail:       trail,
		order:       yagh.New[float64](0),
		rng:         rand.New(rand.NewSource(seed)),
		randVarFreq: randVarFreq,
		randPolFreq: randPolFreq,
		usePhase:    usePhaseSaving,
	}
}

// NewVar registers a freshly created variable as undecided, inserting it
// into the order heap at zero activity.
func (h *Heuristics) NewVar(v Var) {
	h.order.GrowBy(1)
	h.order.Put(int(v), -h.trail.Activity(v))
}

// Undo is the onUndo callback passed to Trail.CancelUntil: a variable that
// becomes unassigned is reinserted into the order heap (spec §4.F: the
// heap only ever holds undecided variables).
func (h *Heuristics) Undo(v Var) {
	if !h.order.Contains(int(v)) {
		h.order.Put(int(v), -h.trail.Activity(v))
	}
}

// BumpActivityNotify is called by the Analyzer (NewSolver passes it in
// through Analyzer.SetOrderNotify) whenever a variable's activity changes,
// to keep the heap key in sync for variables still undecided.
func (h *Heuristics) BumpActivityNotify(v Var) {
	if h.order.Contains(int(v)) {
		h.order.Put(int(v), -h.trail.Activity(v))
	}
}

// RescaleNotify is called after Trail.ScaleActivities to resync every
// undecided variable's heap key (hit only on the rare activity-overflow
// rescale).
func (h *Heuristics) RescaleNotify() {
	for v := Var(0); int(v) < h.trail.NumVars(); v++ {
		if h.order.Contains(int(v)) {
			h.order.Put(int(v), -h.trail.Activity(v))
		}
	}
}

// PickBranchLit selects the next decision literal, or LitUndef if every
// variable is already assigned (spec §4.F decision procedure).
func (h *Heuristics) PickBranchLit() Lit {
	var v Var
	found := false

	if h.randVarFreq > 0 && h.rng.Float64() < h.randVarFreq {
		if cand := h.randomUndecided(); cand >= 0 {
			v, found = Var(cand), true
		}
	}

	for !found {
		next, ok := h.order.Pop()
		if !ok {
			return LitUndef
		}
		if h.trail.Value(Var(next.Elem)) != LUndef {
			continue // stale: assigned by propagation while still in the heap
		}
		v, found = Var(next.Elem), true
	}

	return MkLit(v, h.choosePolarity(v))
}

// randomUndecided scans linearly for an undecided variable; returns -1 if
// none remain. Used only behind random_var_freq, so its cost is amortized
// across the rare draw.
func (h *Heuristics) randomUndecided() int {
	n := h.trail.NumVars()
	if n == 0 {
		return -1
	}
	start := h.rng.Intn(n)
	for i := 0; i < n; i++ {
		v := Var((start + i) % n)
		if h.trail.Value(v) == LUndef {
			return int(v)
		}
	}
	return -1
}

func (h *Heuristics) choosePolarity(v Var) bool {
	if h.randPolFreq > 0 && h.rng.Float64() < h.randPolFreq {
		return h.rng.Intn(2) == 0
	}
	if h.usePhase {
		return h.trail.Polarity(v)
	}
	return false
}
