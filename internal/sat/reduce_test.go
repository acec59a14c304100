package sat

import (
	"testing"

	"github.com/satcore/yasscore/internal/sat/predictor"
)

func TestReducer_PredictorContractShape(t *testing.T) {
	h := predictor.Heuristic{}
	data := make([]float64, 3*predictor.Cols)
	data[0*predictor.Cols+0] = 1
	data[1*predictor.Cols+1] = 2
	data[2*predictor.Cols+2] = 3

	scores := h.Predict(data, 3)
	if len(scores) != 3 {
		t.Fatalf("Predict returned %d scores, want 3 (one per clause)", len(scores))
	}
}

func TestReducer_NeverDeletesLockedClause(t *testing.T) {
	tr := NewTrail()
	for i := 0; i < 4; i++ {
		tr.NewVar()
	}
	a := NewClauseArena(0.8, 0)
	w := NewWatchLists(4)

	lits := []Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false), MkLit(3, false)}
	ref, err := a.Alloc(lits, true)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	c := a.Deref(ref)
	w.AttachLong(c)

	// Make this clause x0's reason, as if it had just propagated it.
	tr.Assign(lits[0], PropBy{Kind: ReasonLong, Ref: ref})
	if !c.locked(tr) {
		t.Fatalf("clause serving as x0's reason should be locked")
	}

	// A real caller filters refs down to unlocked clauses before calling
	// Run (invariant 7); a locked ref should never even reach it.
	r := NewReducer(DefaultReduceOptions(), nil, nil)
	deleted := r.Run(a, nil, 1)
	if len(deleted) != 0 {
		t.Errorf("Run with no candidate refs deleted %d clauses, want 0", len(deleted))
	}
}

func TestReducer_RunSplitsKeepAndDeleteByRatio(t *testing.T) {
	a := NewClauseArena(0.8, 0)
	opts := DefaultReduceOptions()
	opts.KeepRatioShort = 0.5
	r := NewReducer(opts, nil, nil)

	var refs []ClauseRef
	for i := 0; i < 8; i++ {
		lits := []Lit{MkLit(Var(i*3), false), MkLit(Var(i*3+1), false), MkLit(Var(i*3+2), false)}
		ref, err := a.Alloc(lits, true)
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		c := a.Deref(ref)
		c.SetTier(uint8(TierShort))
		c.SetStats(ClauseStats{Activity: float32(i), PropsMade: uint32(i), Uip1Used: uint32(i)})
		refs = append(refs, ref)
	}

	deleted := r.Run(a, refs, 100)
	if len(deleted) != 4 {
		t.Errorf("deleted %d of 8 clauses at keep ratio 0.5, want 4", len(deleted))
	}

	// The clause with the strongest stats (last one, since rank favors
	// larger activity/uip/props) must survive.
	best := refs[len(refs)-1]
	for _, d := range deleted {
		if d == best {
			t.Errorf("clause with the strongest stats should not be among the deleted")
		}
	}
}

func TestReducer_DueCountsFromLastRound(t *testing.T) {
	opts := DefaultReduceOptions()
	opts.ReduceEvery = 100
	r := NewReducer(opts, nil, nil)

	if r.Due(50) {
		t.Errorf("Due(50) with threshold 100 and no prior rounds, want false")
	}
	if !r.Due(100) {
		t.Errorf("Due(100) with threshold 100, want true")
	}

	r.Run(NewClauseArena(0.8, 0), nil, 100)
	if r.rounds != 1 {
		t.Fatalf("rounds = %d after one Run, want 1", r.rounds)
	}
	if r.Due(150) {
		t.Errorf("Due(150) should not fire before conflictsAtLastReduce+threshold")
	}
	if !r.Due(200) {
		t.Errorf("Due(200) should fire once 100 conflicts have passed since the last round")
	}
}
