package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TestAnalyze_FirstUIPTwoLevelChain builds:
//
//	(¬x0 v x1)   -- forces x1 true once x0 is decided true at level 1
//	(¬x2 v ¬x1)  -- conflicts once x2 is decided true at level 2
//
// and checks that conflict analysis learns {¬x2, ¬x1} (x1 is the sole
// current-level-1 antecedent not itself minimizable away, since its own
// reason bottoms out at a decision variable not present in the learnt
// clause) asserting at level 1 with glue 2.
func TestAnalyze_FirstUIPTwoLevelChain(t *testing.T) {
	tr := NewTrail()
	x0 := tr.NewVar()
	x1 := tr.NewVar()
	x2 := tr.NewVar()

	w := NewWatchLists(3)
	a := NewClauseArena(0.8, 0)
	prop := NewPropagator(tr, w, a)

	w.AttachBinary(MkLit(x0, true), MkLit(x1, false), false)
	w.AttachBinary(MkLit(x2, true), MkLit(x1, true), false)

	tr.NewDecisionLevel()
	tr.Assign(MkLit(x0, false), reasonDecision)
	if conflict := prop.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict while propagating x0: %+v", conflict)
	}
	if tr.LitValue(MkLit(x1, false)) != LTrue {
		t.Fatalf("x1 was not propagated true")
	}

	tr.NewDecisionLevel()
	tr.Assign(MkLit(x2, false), reasonDecision)
	conflict := prop.Propagate()
	if conflict == nil {
		t.Fatalf("expected a conflict once x2 is decided")
	}

	an := NewAnalyzer(tr, a, 0.95, 10000)
	an.GrowVar()
	an.GrowVar()
	an.GrowVar()

	learnt, bt, glue := an.Analyze(*conflict, 0)

	want := []Lit{MkLit(x2, true), MkLit(x1, true)}
	if diff := cmp.Diff(want, learnt, cmpopts.EquateComparable()); diff != "" {
		t.Errorf("learnt clause mismatch (-want +got):\n%s", diff)
	}
	if bt != 1 {
		t.Errorf("backtrack level = %d, want 1", bt)
	}
	if glue != 2 {
		t.Errorf("glue = %d, want 2", glue)
	}
}
