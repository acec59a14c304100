package sat

import "testing"

func hasBinWatch(list []Watch, other Lit) bool {
	for _, w := range list {
		if w.kind == watchBin && w.other == other {
			return true
		}
	}
	return false
}

func TestWatchLists_AttachBinarySymmetric(t *testing.T) {
	w := NewWatchLists(2)
	l1 := MkLit(0, false)
	l2 := MkLit(1, true)

	w.AttachBinary(l1, l2, false)

	if !hasBinWatch(w.list(l1.Neg()), l2) {
		t.Errorf("watch[¬l1] missing Bin(l2)")
	}
	if !hasBinWatch(w.list(l2.Neg()), l1) {
		t.Errorf("watch[¬l2] missing Bin(l1)")
	}
}

func TestWatchLists_DetachBinaryRemovesBoth(t *testing.T) {
	w := NewWatchLists(2)
	l1 := MkLit(0, false)
	l2 := MkLit(1, false)

	w.AttachBinary(l1, l2, false)
	w.DetachBinary(l1, l2)

	if hasBinWatch(w.list(l1.Neg()), l2) {
		t.Errorf("watch[¬l1] still has Bin(l2) after detach")
	}
	if hasBinWatch(w.list(l2.Neg()), l1) {
		t.Errorf("watch[¬l2] still has Bin(l1) after detach")
	}
}

func TestWatchLists_AttachTernarySymmetric(t *testing.T) {
	w := NewWatchLists(3)
	l1 := MkLit(0, false)
	l2 := MkLit(1, false)
	l3 := MkLit(2, true)

	w.AttachTernary(l1, l2, l3, false)

	total := 0
	for v := Var(0); v < 3; v++ {
		for _, sign := range []bool{false, true} {
			total += len(w.list(MkLit(v, sign)))
		}
	}
	if total != 3 {
		t.Errorf("total ternary watch entries = %d, want 3 (one per watched literal)", total)
	}
}

func TestWatchLists_AttachLongPicksMiddleBlocker(t *testing.T) {
	a := NewClauseArena(0.8, 0)
	lits := []Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false), MkLit(3, false), MkLit(4, false)}
	ref, _ := a.Alloc(lits, false)
	c := a.Deref(ref)

	w := NewWatchLists(5)
	w.AttachLong(c)

	list0 := w.list(c.Lit(0).Neg())
	if len(list0) != 1 || list0[0].kind != watchLong || list0[0].other != lits[2] {
		t.Errorf("watch[¬lit0] = %+v, want a single Long watcher blocked on %v", list0, lits[2])
	}
}

func TestWatchLists_RewriteRefs(t *testing.T) {
	a := NewClauseArena(0.8, 0)
	lits := []Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false), MkLit(3, false)}
	ref, _ := a.Alloc(lits, false)
	c := a.Deref(ref)

	w := NewWatchLists(4)
	w.AttachLong(c)

	relocation := map[ClauseRef]ClauseRef{ref: ref + 100}
	w.RewriteRefs(relocation)

	list := w.list(c.Lit(0).Neg())
	if len(list) != 1 || list[0].ref != ref+100 {
		t.Errorf("after RewriteRefs, watch ref = %+v, want ref %d", list, ref+100)
	}
}
