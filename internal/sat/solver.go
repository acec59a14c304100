package sat

import (
	"fmt"
	"sync/atomic"

	"github.com/kr/pretty"
)

// Solver is the public CDCL engine (spec §2, §6): Trail, ClauseArena,
// WatchLists, Propagator, Analyzer, Heuristics, RestartPolicy, and Reducer
// wired together by SearchLoop's Solve method.
type Solver struct {
	opts Options

	trail   *Trail
	arena   *ClauseArena
	watches *WatchLists
	prop    *Propagator
	an      *Analyzer
	heur    *Heuristics
	restart *RestartPolicy
	reduce  *Reducer

	xorEngine XOREngine
	pool      *litPool

	// longRefs tracks every currently-live long clause ref (redundant or
	// not) in allocation order, so reduceIfDue can walk candidates without
	// scanning the whole arena.
	longRefs []ClauseRef

	conflicts uint32
	verbosity uint8
	interrupt int32 // atomic flag, spec §5

	model    []LBool
	coreConf []Lit // conflict() result: subset of assumptions that conflicted

	poisoned error
}

// NewSolver returns an empty Solver configured by opts.
func NewSolver(opts Options) *Solver {
	trail := NewTrail()
	arena := NewClauseArena(opts.ConsolidateWhenFrag, opts.MaxArenaBytes)
	watches := NewWatchLists(0)

	s := &Solver{
		opts:    opts,
		trail:   trail,
		arena:   arena,
		watches: watches,
		prop:    NewPropagator(trail, watches, arena),
		an:      NewAnalyzer(trail, arena, opts.VarDecay, opts.Reduce.Tau),
		heur:    NewHeuristics(trail, opts.RandomSeed, opts.RandomVarFreq, opts.RandomPolFreq, opts.UsePhaseSaving),
		restart: NewRestartPolicy(opts.RestartType, opts.RestartFirst, opts.RestartInc, opts.BlockedRestart),
		reduce:  NewReducer(opts.Reduce, nil, nil),
		pool:    newLitPool(),
	}
	s.an.SetOrderNotify(s.heur.BumpActivityNotify, s.heur.RescaleNotify)
	return s
}

// NewVar implements new_var (spec §6): registers a fresh variable, undecided,
// with no saved phase.
func (s *Solver) NewVar() (Var, error) {
	if s.poisoned != nil {
		return 0, s.poisoned
	}
	v := s.trail.NewVar()
	s.watches.Grow()
	s.an.GrowVar()
	s.heur.NewVar(v)
	return v, nil
}

// NewVars implements new_vars(n).
func (s *Solver) NewVars(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.NewVar(); err != nil {
			return err
		}
	}
	return nil
}

// AddClause implements add_clause (spec §6): lits is a disjunction of root
// (irredundant) literals. Requires decision_level()==0. Returns false iff
// the formula is now known UNSAT (an empty clause was derived, directly or
// after level-0 simplification).
func (s *Solver) AddClause(lits []Lit) (bool, error) {
	if s.poisoned != nil {
		return false, s.poisoned
	}
	if s.trail.DecisionLevel() != 0 {
		return false, &ApiMisuse{Op: "AddClause", Err: errNonRootAddition}
	}
	for _, l := range lits {
		if int(l.Var()) >= s.trail.NumVars() {
			return false, &ApiMisuse{Op: "AddClause", Err: errUnknownVariable}
		}
	}

	staging := s.pool.Get(len(lits))
	out := simplifyRootClause(s.trail, lits, *staging)
	*staging = out
	defer s.pool.Put(staging)

	if out == nil {
		return true, nil // tautology: no-op, formula state unchanged
	}
	if len(out) == 0 {
		return false, nil // empty clause: UNSAT
	}

	switch len(out) {
	case 1:
		if s.trail.LitValue(out[0]) == LFalse {
			return false, nil
		}
		if s.trail.LitValue(out[0]) == LUndef {
			s.trail.Assign(out[0], reasonUnit)
		}
	case 2:
		s.watches.AttachBinary(out[0], out[1], false)
	case 3:
		s.watches.AttachTernary(out[0], out[1], out[2], false)
	default:
		ref, err := s.arena.Alloc(out, false)
		if err != nil {
			return false, s.poison(err)
		}
		cl := s.arena.Deref(ref)
		s.watches.AttachLong(cl)
		s.longRefs = append(s.longRefs, ref)
	}

	s.prop.SetStatsContext(s.conflicts, s.opts.Reduce.Tau)
	if conflict := s.prop.Propagate(); conflict != nil {
		return false, nil
	}
	return true, nil
}

// simplifyRootClause drops duplicate literals and level-0 falsified
// literals, and reports a tautology (l and ¬l both present, or a
// level-0-true literal) as nil. buf is a pooled staging slice to append
// into, reused across calls to avoid a fresh allocation per add_clause.
func simplifyRootClause(t *Trail, lits []Lit, buf []Lit) []Lit {
	seen := map[Lit]bool{}
	out := buf[:0]
	for _, l := range lits {
		if seen[l.Neg()] {
			return nil // tautology
		}
		if seen[l] {
			continue
		}
		if t.DecisionLevel() == 0 {
			switch t.LitValue(l) {
			case LTrue:
				return nil
			case LFalse:
				continue
			}
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func (s *Solver) poison(err error) error {
	if f, ok := err.(*Fatal); ok {
		s.poisoned = f
		return f
	}
	f := &Fatal{Op: "Solver", Err: err}
	s.poisoned = f
	return f
}

// SetVerbosity implements set_verbosity (spec §6).
func (s *Solver) SetVerbosity(v uint8) { s.verbosity = v }

// SetRandomSeed implements set_random_seed: it records the seed in the
// solver's options and reseeds the Heuristics RNG used for random
// decisions and phase flips.
func (s *Solver) SetRandomSeed(seed int64) {
	s.opts.RandomSeed = seed
	s.heur.rng.Seed(seed)
}

// Interrupt implements interrupt(): sets the atomic cancellation flag
// (spec §5), polled between conflicts and between reductions.
func (s *Solver) Interrupt() { atomic.StoreInt32(&s.interrupt, 1) }

func (s *Solver) interrupted() bool { return atomic.LoadInt32(&s.interrupt) != 0 }

// Model implements model(): valid only after Solve returns LTrue.
func (s *Solver) Model() []LBool { return s.model }

// Conflict implements conflict(): valid only after Solve returns LFalse
// under a non-empty assumption vector.
func (s *Solver) Conflict() []Lit { return s.coreConf }

// Solve implements the SearchLoop pseudocode of spec §4.H.
func (s *Solver) Solve(assumptions []Lit, conflBudget int) (LBool, error) {
	if s.poisoned != nil {
		return LUndef, s.poisoned
	}
	atomic.StoreInt32(&s.interrupt, 0)
	s.model = nil
	s.coreConf = nil

	s.prop.SetStatsContext(s.conflicts, s.opts.Reduce.Tau)
	if conflict := s.prop.Propagate(); conflict != nil {
		return LFalse, nil
	}

	assumeIdx := 0
	budgetConfl := s.conflicts + uint32(conflBudget)
	unbounded := conflBudget <= 0

	for {
		if s.interrupted() {
			s.trail.CancelUntil(0, s.heur.Undo)
			return LUndef, nil
		}
		if !unbounded && s.conflicts >= budgetConfl {
			s.trail.CancelUntil(0, s.heur.Undo)
			return LUndef, nil
		}

		s.prop.SetStatsContext(s.conflicts, s.opts.Reduce.Tau)
		conflict := s.prop.Propagate()
		if conflict == nil {
			if assumeIdx < len(assumptions) {
				a := assumptions[assumeIdx]
				switch s.trail.LitValue(a) {
				case LFalse:
					s.coreConf = s.buildAssumptionCore(assumptions, assumeIdx)
					s.trail.CancelUntil(0, s.heur.Undo)
					return LFalse, nil
				case LTrue:
					assumeIdx++
					continue
				default:
					s.trail.NewDecisionLevel()
					s.trail.Assign(a, reasonDecision)
					assumeIdx++
					continue
				}
			}

			if s.restart.ShouldRestart() {
				s.trail.CancelUntil(0, s.heur.Undo)
				s.simplifyAtRoot()
				if s.poisoned != nil {
					return LUndef, s.poisoned
				}
				s.restart.OnRestart()
				s.reduceIfDue()
				continue
			}

			// PickBranchLit pops the variable off the order heap; it must
			// only be called once a restart on this iteration has already
			// been ruled out above, since nothing re-inserts a popped-but-
			// never-assigned variable (Trail.CancelUntil's Undo callback
			// only fires for variables that made it onto the trail).
			lit := s.heur.PickBranchLit()
			if lit == LitUndef {
				s.model = s.snapshotModel()
				s.trail.CancelUntil(0, s.heur.Undo)
				return LTrue, nil
			}

			s.trail.NewDecisionLevel()
			s.trail.Assign(lit, reasonDecision)
			continue
		}

		if s.trail.DecisionLevel() == 0 {
			return LFalse, nil
		}

		learnt, bt, glue := s.an.Analyze(*conflict, s.conflicts)
		if s.verbosity >= 2 {
			pretty.Println(learnt)
		}
		s.restart.OnConflict(glue, s.trail.Len())
		s.trail.CancelUntil(bt, s.heur.Undo)

		switch len(learnt) {
		case 1:
			s.trail.Assign(learnt[0], reasonUnit)
		case 2:
			s.watches.AttachBinary(learnt[0], learnt[1], true)
			s.trail.Assign(learnt[0], PropBy{Kind: ReasonBinary, Lit1: learnt[1], Redundant: true})
		default:
			ref, err := s.arena.Alloc(learnt, true)
			if err != nil {
				return LUndef, s.poison(err)
			}
			cl := s.arena.Deref(ref)
			cl.SetGlue(uint32(glue))
			s.watches.AttachLong(cl)
			s.longRefs = append(s.longRefs, ref)
			s.trail.Assign(learnt[0], PropBy{Kind: ReasonLong, Ref: ref})
		}

		s.an.DecayVarActivity()
		s.conflicts++
	}
}

func (s *Solver) snapshotModel() []LBool {
	out := make([]LBool, s.trail.NumVars())
	for v := 0; v < s.trail.NumVars(); v++ {
		out[v] = s.trail.Value(Var(v))
	}
	return out
}

// buildAssumptionCore returns the assumptions already tried through the
// failing index, as an approximate UNSAT core (spec §6: "subset of
// assumptions"). A tighter core would walk the falsifying reason chain;
// this is the minimal contract the spec requires.
func (s *Solver) buildAssumptionCore(assumptions []Lit, failedAt int) []Lit {
	return append([]Lit(nil), assumptions[:failedAt+1]...)
}

// simplifyAtRoot strips level-0-falsified literals from every live long
// clause (spec §4.A: a clause is "mutated only by strengthening", and only
// between restarts at decision level 0). A clause found satisfied at level
// 0 is detached and freed; one that collapses to a single literal is
// turned into a unit assignment instead of staying watched.
func (s *Solver) simplifyAtRoot() {
	if s.trail.DecisionLevel() != 0 {
		return
	}
	kept := s.longRefs[:0]
	for _, ref := range s.longRefs {
		cl := s.arena.Deref(ref)
		if cl.Freed() || cl.locked(s.trail) {
			kept = append(kept, ref)
			continue
		}

		s.watches.DetachLong(cl)
		satisfied := cl.Simplify(s.trail)
		switch {
		case satisfied:
			s.arena.Free(ref)
		case cl.Size() == 0:
			s.poison(errEmptyClauseAfterSimplify)
			kept = append(kept, ref)
		case cl.Size() == 1:
			if s.trail.LitValue(cl.Lit(0)) == LUndef {
				s.trail.Assign(cl.Lit(0), reasonUnit)
			}
			s.arena.Free(ref)
		default:
			s.watches.AttachLong(cl)
			kept = append(kept, ref)
		}
	}
	s.longRefs = kept
}

func (s *Solver) reduceIfDue() {
	if !s.reduce.Due(int(s.conflicts)) {
		return
	}
	var refs []ClauseRef
	for _, ref := range s.longRefs {
		cl := s.arena.Deref(ref)
		if cl.Freed() || !cl.Redundant() || cl.locked(s.trail) {
			continue
		}
		refs = append(refs, ref)
	}
	deleted := s.reduce.Run(s.arena, refs, s.conflicts)
	if len(deleted) == 0 {
		return
	}
	deadSet := make(map[ClauseRef]bool, len(deleted))
	for _, ref := range deleted {
		cl := s.arena.Deref(ref)
		s.watches.DetachLong(cl)
		s.arena.Free(ref)
		deadSet[ref] = true
	}
	kept := s.longRefs[:0]
	for _, ref := range s.longRefs {
		if !deadSet[ref] {
			kept = append(kept, ref)
		}
	}
	s.longRefs = kept

	if s.arena.ShouldConsolidate() {
		relocation := s.arena.Consolidate(false)
		if relocation != nil {
			s.watches.RewriteRefs(relocation)
			for i, ref := range s.longRefs {
				if nr, ok := relocation[ref]; ok {
					s.longRefs[i] = nr
				}
			}
			for v := 0; v < s.trail.NumVars(); v++ {
				r := s.trail.Reason(Var(v))
				if r.Kind == ReasonLong {
					if nr, ok := relocation[r.Ref]; ok {
						r.Ref = nr
						s.trail.vars[v].reason = r
					}
				}
			}
		}
	}
}

func (s *Solver) String() string {
	return fmt.Sprintf("Solver{vars=%d conflicts=%d}", s.trail.NumVars(), s.conflicts)
}
