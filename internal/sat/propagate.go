package sat

// ConflictKind tags the shape of a Conflict.
type ConflictKind uint8

const (
	ConflictBinary ConflictKind = iota
	ConflictTernary
	ConflictLong
)

// Conflict describes a falsified clause or wedge discovered by
// Propagate. For Binary/Ternary conflicts, L holds the (already false)
// literals of the conflicting pair/triple directly, ready for
// conflict-analysis's explain step.
type Conflict struct {
	Kind ConflictKind
	L    [3]Lit
	N    int
	Ref  ClauseRef
}

// Propagator runs two-watched-literal BCP across binary, ternary, and
// long-clause watchers (spec §4.D). It owns no state of its own beyond a
// reusable scratch buffer; Trail, WatchLists, and the ClauseArena are
// passed in or held as views.
type Propagator struct {
	trail   *Trail
	watches *WatchLists
	arena   *ClauseArena
	tmp     []Watch

	conflictNum uint32
	tau         float64
}

func NewPropagator(trail *Trail, watches *WatchLists, arena *ClauseArena) *Propagator {
	return &Propagator{trail: trail, watches: watches, arena: arena}
}

// SetStatsContext tells Propagate the current conflict count and the
// Reducer's discounting time constant tau, so a long clause that fires as a
// propagation reason can record the use in its online ClauseStats (spec
// §4.G feature row). Call before each Propagate during search; the zero
// value is harmless since TouchUse is only invoked on redundant (learnt)
// clauses, which a root-only formula never allocates.
func (p *Propagator) SetStatsContext(conflictNum uint32, tau float64) {
	p.conflictNum = conflictNum
	p.tau = tau
}

// Propagate runs to fixpoint (qhead == trail length) or until a falsified
// clause is found, per spec §4.D. Deterministic; no parallelism; runs to
// completion of the current queue or conflict in one call, never
// suspending.
func (p *Propagator) Propagate() *Conflict {
	t := p.trail
	for t.HasWork() {
		lit := t.NextToPropagate()

		list := p.watches.list(lit)
		p.tmp = append(p.tmp[:0], list...)
		keep := list[:0]

		var conflict *Conflict
		for i := 0; i < len(p.tmp); i++ {
			w := p.tmp[i]

			switch w.kind {
			case watchBin:
				switch t.LitValue(w.other) {
				case LTrue:
					keep = append(keep, w)
				case LUndef:
					t.Assign(w.other, PropBy{Kind: ReasonBinary, Lit1: lit.Neg(), Redundant: w.redundant})
					keep = append(keep, w)
				default: // LFalse
					keep = append(keep, w)
					conflict = &Conflict{Kind: ConflictBinary, L: [3]Lit{lit.Neg(), w.other}, N: 2}
				}

			case watchTer:
				va, vb := t.LitValue(w.other), t.LitValue(w.other2)
				switch {
				case va == LTrue || vb == LTrue:
					keep = append(keep, w)
				case va == LFalse && vb == LFalse:
					keep = append(keep, w)
					conflict = &Conflict{Kind: ConflictTernary, L: [3]Lit{lit.Neg(), w.other, w.other2}, N: 3}
				case va == LUndef:
					t.Assign(w.other, PropBy{Kind: ReasonTernary, Lit1: lit.Neg(), Lit2: w.other2, Redundant: w.redundant})
					keep = append(keep, w)
				default: // vb == LUndef
					t.Assign(w.other2, PropBy{Kind: ReasonTernary, Lit1: lit.Neg(), Lit2: w.other, Redundant: w.redundant})
					keep = append(keep, w)
				}

			case watchLong:
				if t.LitValue(w.other) == LTrue {
					// Fast path: blocker already true, no deref needed.
					keep = append(keep, w)
					continue
				}

				c := p.arena.Deref(w.ref)
				falseLit := lit.Neg()
				if c.Lit(0) == falseLit {
					c.SetLit(0, c.Lit(1))
					c.SetLit(1, falseLit)
				}

				if t.LitValue(c.Lit(0)) == LTrue {
					keep = append(keep, Watch{kind: watchLong, ref: w.ref, other: c.Lit(0)})
					continue
				}

				moved := false
				for k := 2; k < c.Size(); k++ {
					if t.LitValue(c.Lit(k)) != LFalse {
						c.SetLit(1, c.Lit(k))
						c.SetLit(k, falseLit)
						p.watches.push(c.Lit(1).Neg(), Watch{kind: watchLong, ref: w.ref, other: c.Lit(0)})
						moved = true
						break
					}
				}
				if moved {
					continue // this watcher now lives on a different list
				}

				if t.LitValue(c.Lit(0)) == LFalse {
					keep = append(keep, w)
					conflict = &Conflict{Kind: ConflictLong, Ref: w.ref}
				} else {
					t.Assign(c.Lit(0), PropBy{Kind: ReasonLong, Ref: w.ref})
					if c.Redundant() {
						c.TouchUse(p.conflictNum, 1, false, p.tau)
					}
					keep = append(keep, w)
				}
			}

			if conflict != nil {
				keep = append(keep, p.tmp[i+1:]...)
				p.watches.replace(lit, keep)
				t.DrainQueue()
				return conflict
			}
		}

		p.watches.replace(lit, keep)
	}
	return nil
}
