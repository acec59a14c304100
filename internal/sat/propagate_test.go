package sat

import "testing"

func newTestPropagator(nVars int) (*Trail, *WatchLists, *ClauseArena, *Propagator) {
	tr := NewTrail()
	for i := 0; i < nVars; i++ {
		tr.NewVar()
	}
	w := NewWatchLists(nVars)
	a := NewClauseArena(0.8, 0)
	return tr, w, a, NewPropagator(tr, w, a)
}

func TestPropagate_BinaryUnitChain(t *testing.T) {
	// (¬x0 v x1) ∧ (¬x1 v x2): assigning x0 should force x1 then x2.
	tr, w, _, p := newTestPropagator(3)
	l0, l1, l2 := MkLit(0, false), MkLit(1, false), MkLit(2, false)

	w.AttachBinary(l0.Neg(), l1, false)
	w.AttachBinary(l1.Neg(), l2, false)

	tr.Assign(l0, reasonDecision)
	if conflict := p.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}

	if tr.LitValue(l1) != LTrue {
		t.Errorf("x1 not propagated true")
	}
	if tr.LitValue(l2) != LTrue {
		t.Errorf("x2 not propagated true")
	}
}

func TestPropagate_BinaryConflict(t *testing.T) {
	// (¬x0 v x1): force x1 false directly on the trail (bypassing
	// propagation, as if it had been assigned by an unrelated clause) then
	// assign x0 true and confirm Propagate reports the binary conflict.
	tr, w, _, p := newTestPropagator(2)
	l0, l1 := MkLit(0, false), MkLit(1, false)

	w.AttachBinary(l0.Neg(), l1, false)
	tr.Assign(l1.Neg(), reasonDecision)
	tr.DrainQueue() // treat x1's assignment as already fully propagated

	tr.Assign(l0, reasonDecision)
	conflict := p.Propagate()
	if conflict == nil {
		t.Fatalf("expected a conflict, got none")
	}
	if conflict.Kind != ConflictBinary {
		t.Errorf("Kind = %v, want ConflictBinary", conflict.Kind)
	}
}

func TestPropagate_LongClauseUnit(t *testing.T) {
	// (x0 v x1 v x2 v x3): falsifying x0,x1,x2 forces x3.
	tr, w, a, p := newTestPropagator(4)
	lits := []Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false), MkLit(3, false)}
	ref, err := a.Alloc(lits, false)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	c := a.Deref(ref)
	w.AttachLong(c)

	tr.Assign(lits[0].Neg(), reasonDecision)
	if conflict := p.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict after falsifying lit0: %+v", conflict)
	}
	tr.Assign(lits[1].Neg(), reasonDecision)
	if conflict := p.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict after falsifying lit1: %+v", conflict)
	}
	tr.Assign(lits[2].Neg(), reasonDecision)
	if conflict := p.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict after falsifying lit2: %+v", conflict)
	}

	if tr.LitValue(lits[3]) != LTrue {
		t.Errorf("lit3 not forced true once the other three literals are false")
	}
}

func TestPropagate_LongClauseConflict(t *testing.T) {
	tr, w, a, p := newTestPropagator(3)
	lits := []Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false)}
	ref, _ := a.Alloc(lits, false)
	c := a.Deref(ref)
	w.AttachLong(c)

	tr.Assign(lits[0].Neg(), reasonDecision)
	if conflict := p.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	tr.Assign(lits[1].Neg(), reasonDecision)
	if conflict := p.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	tr.Assign(lits[2].Neg(), reasonDecision)

	conflict := p.Propagate()
	if conflict == nil {
		t.Fatalf("expected conflict once all three literals are false")
	}
	if conflict.Kind != ConflictLong {
		t.Errorf("Kind = %v, want ConflictLong", conflict.Kind)
	}
}
