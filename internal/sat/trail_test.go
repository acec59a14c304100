package sat

import "testing"

func TestTrail_AssignAndValue(t *testing.T) {
	tr := NewTrail()
	v := tr.NewVar()
	l := MkLit(v, false)

	tr.Assign(l, reasonDecision)

	if got := tr.LitValue(l); got != LTrue {
		t.Errorf("LitValue(l) = %v, want LTrue", got)
	}
	if got := tr.LitValue(l.Neg()); got != LFalse {
		t.Errorf("LitValue(¬l) = %v, want LFalse", got)
	}
	if got := tr.Level(v); got != 0 {
		t.Errorf("Level(v) = %d, want 0", got)
	}
}

func TestTrail_CancelUntilRestoresUndefAndKeepsPolarity(t *testing.T) {
	tr := NewTrail()
	v0 := tr.NewVar()
	v1 := tr.NewVar()

	tr.NewDecisionLevel()
	tr.Assign(MkLit(v0, false), reasonDecision)
	tr.NewDecisionLevel()
	tr.Assign(MkLit(v1, true), reasonDecision)

	var undone []Var
	tr.CancelUntil(0, func(v Var) { undone = append(undone, v) })

	if tr.DecisionLevel() != 0 {
		t.Errorf("DecisionLevel() = %d, want 0", tr.DecisionLevel())
	}
	if tr.Value(v0) != LUndef || tr.Value(v1) != LUndef {
		t.Errorf("expected both variables undef after CancelUntil(0)")
	}
	if !tr.Polarity(v1) {
		t.Errorf("Polarity(v1) = false, want true (phase saving keeps last sign)")
	}
	if len(undone) != 2 {
		t.Errorf("onUndo called %d times, want 2", len(undone))
	}
}

func TestTrail_QHeadAdvancesAndDrains(t *testing.T) {
	tr := NewTrail()
	v0 := tr.NewVar()
	v1 := tr.NewVar()
	tr.Assign(MkLit(v0, false), reasonDecision)
	tr.Assign(MkLit(v1, false), reasonDecision)

	if !tr.HasWork() {
		t.Fatalf("expected work after two assignments")
	}
	first := tr.NextToPropagate()
	if first != MkLit(v0, false) {
		t.Errorf("NextToPropagate() = %v, want lit(v0)", first)
	}
	tr.DrainQueue()
	if tr.HasWork() {
		t.Errorf("HasWork() = true after DrainQueue")
	}
}

func TestTrail_ActivityBumpAndScale(t *testing.T) {
	tr := NewTrail()
	v := tr.NewVar()

	tr.BumpActivity(v, 10)
	if got := tr.Activity(v); got != 10 {
		t.Errorf("Activity(v) = %f, want 10", got)
	}
	tr.ScaleActivities(0.1)
	if got := tr.Activity(v); got != 1 {
		t.Errorf("Activity(v) after scale = %f, want 1", got)
	}
}
