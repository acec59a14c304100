package sat

import "testing"

func TestClauseArena_AllocDeref(t *testing.T) {
	a := NewClauseArena(0.8, 0)

	lits := []Lit{MkLit(0, false), MkLit(1, true), MkLit(2, false)}
	ref, err := a.Alloc(lits, false)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	c := a.Deref(ref)
	if got := c.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
	for i, l := range lits {
		if got := c.Lit(i); got != l {
			t.Errorf("Lit(%d) = %v, want %v", i, got, l)
		}
	}
	if c.Redundant() {
		t.Errorf("Redundant() = true, want false")
	}
	if c.HasStats() {
		t.Errorf("HasStats() = true for irredundant clause, want false")
	}
}

func TestClauseArena_RedundantHasStats(t *testing.T) {
	a := NewClauseArena(0.8, 0)
	ref, err := a.Alloc([]Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false), MkLit(3, false)}, true)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	c := a.Deref(ref)
	if !c.Redundant() || !c.HasStats() {
		t.Errorf("Redundant()=%v HasStats()=%v, want true,true", c.Redundant(), c.HasStats())
	}

	c.SetGlue(3)
	if got := c.Glue(); got != 3 {
		t.Errorf("Glue() = %d, want 3", got)
	}

	stats := ClauseStats{PropsMade: 7, Uip1Used: 2, AvgGlue: 1.5}
	c.SetStats(stats)
	got := c.Stats()
	if got.PropsMade != 7 || got.Uip1Used != 2 || got.AvgGlue != 1.5 {
		t.Errorf("Stats() = %+v, want %+v", got, stats)
	}
}

func TestClauseArena_ShrinkKeepsSpan(t *testing.T) {
	a := NewClauseArena(0.8, 0)
	ref, err := a.Alloc([]Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false)}, false)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	c := a.Deref(ref)
	before := a.LiveBytes()

	c.Shrink(2)
	if got := c.Size(); got != 2 {
		t.Errorf("Size() after Shrink = %d, want 2", got)
	}
	if a.LiveBytes() != before {
		t.Errorf("LiveBytes() changed after in-place Shrink: got %d, want %d", a.LiveBytes(), before)
	}
}

func TestClauseArena_ConsolidateDropsFreedAndRelocates(t *testing.T) {
	a := NewClauseArena(0.8, 0)

	ref1, _ := a.Alloc([]Lit{MkLit(0, false), MkLit(1, false), MkLit(2, false)}, false)
	ref2, _ := a.Alloc([]Lit{MkLit(3, false), MkLit(4, false), MkLit(5, false)}, false)
	ref3, _ := a.Alloc([]Lit{MkLit(6, false), MkLit(7, false), MkLit(8, false)}, false)

	a.Free(ref2)

	relocation := a.Consolidate(true)
	if relocation == nil {
		t.Fatalf("Consolidate(true) returned nil relocation map")
	}
	if _, ok := relocation[ref2]; ok {
		t.Errorf("freed clause %d should not appear in relocation map", ref2)
	}
	newRef1, ok := relocation[ref1]
	if !ok {
		t.Fatalf("live clause %d missing from relocation map", ref1)
	}
	newRef3, ok := relocation[ref3]
	if !ok {
		t.Fatalf("live clause %d missing from relocation map", ref3)
	}

	c1 := a.Deref(newRef1)
	if got := c1.Lit(0); got != MkLit(0, false) {
		t.Errorf("relocated clause 1 lit 0 = %v, want %v", got, MkLit(0, false))
	}
	c3 := a.Deref(newRef3)
	if got := c3.Lit(0); got != MkLit(6, false) {
		t.Errorf("relocated clause 3 lit 0 = %v, want %v", got, MkLit(6, false))
	}
}

func TestClauseArena_ShouldConsolidateThreshold(t *testing.T) {
	a := NewClauseArena(0.5, 0)
	if a.ShouldConsolidate() {
		t.Errorf("empty arena should not request consolidation")
	}

	ref, _ := a.Alloc([]Lit{MkLit(0, false), MkLit(1, false)}, false)
	a.Free(ref)

	if !a.ShouldConsolidate() {
		t.Errorf("fully-freed arena should request consolidation at frag threshold 0.5")
	}
}
