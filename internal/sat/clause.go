package sat

import "math"

// This file holds the online per-clause statistics block (spec §4.G) and
// the small clause-level helpers the Reducer and SearchLoop need beyond
// the bare header accessors in arena.go: ClauseStats get/set, Simplify,
// and locked (a clause currently serving as some variable's reason must
// never be deleted, spec invariant 7).

// ClauseStats is a read side view of a redundant clause's online
// statistics block, used by the Reducer to build feature rows (spec
// §4.G). Obtained via Clause.Stats; zero value for clauses with
// HasStats()==false.
type ClauseStats struct {
	IntroducedAt    uint32
	LastTouched     uint32
	PropsMade       uint32
	Uip1Used        uint32
	SumPropsMade    float32
	SumUip1Used     float32
	GlueBeforeMinim uint32
	OrigGlue        uint32
	AvgGlue         float32
	AvgSize         float32
	AvgOverlap      float32
	Activity        float32
}

const (
	sIntroducedAt = iota
	sLastTouched
	sPropsMade
	sUip1Used
	sSumPropsMade
	sSumUip1Used
	sGlueBeforeMinim
	sOrigGlue
	sAvgGlue
	sAvgSize
	sAvgOverlap
	sActivity
)

func (c Clause) statWord(i int) uint32       { return c.a.words[c.statsBase()+i] }
func (c Clause) setStatWord(i int, v uint32) { c.a.words[c.statsBase()+i] = v }

// Stats returns the clause's online statistics. Valid only when HasStats.
func (c Clause) Stats() ClauseStats {
	return ClauseStats{
		IntroducedAt:    c.statWord(sIntroducedAt),
		LastTouched:     c.statWord(sLastTouched),
		PropsMade:       c.statWord(sPropsMade),
		Uip1Used:        c.statWord(sUip1Used),
		SumPropsMade:    math.Float32frombits(c.statWord(sSumPropsMade)),
		SumUip1Used:     math.Float32frombits(c.statWord(sSumUip1Used)),
		GlueBeforeMinim: c.statWord(sGlueBeforeMinim),
		OrigGlue:        c.statWord(sOrigGlue),
		AvgGlue:         math.Float32frombits(c.statWord(sAvgGlue)),
		AvgSize:         math.Float32frombits(c.statWord(sAvgSize)),
		AvgOverlap:      math.Float32frombits(c.statWord(sAvgOverlap)),
		Activity:        math.Float32frombits(c.statWord(sActivity)),
	}
}

// SetStats overwrites the clause's online statistics block.
func (c Clause) SetStats(s ClauseStats) {
	c.setStatWord(sIntroducedAt, s.IntroducedAt)
	c.setStatWord(sLastTouched, s.LastTouched)
	c.setStatWord(sPropsMade, s.PropsMade)
	c.setStatWord(sUip1Used, s.Uip1Used)
	c.setStatWord(sSumPropsMade, math.Float32bits(s.SumPropsMade))
	c.setStatWord(sSumUip1Used, math.Float32bits(s.SumUip1Used))
	c.setStatWord(sGlueBeforeMinim, s.GlueBeforeMinim)
	c.setStatWord(sOrigGlue, s.OrigGlue)
	c.setStatWord(sAvgGlue, math.Float32bits(s.AvgGlue))
	c.setStatWord(sAvgSize, math.Float32bits(s.AvgSize))
	c.setStatWord(sAvgOverlap, math.Float32bits(s.AvgOverlap))
	c.setStatWord(sActivity, math.Float32bits(s.Activity))
}

// TouchUse records one use of the clause as an antecedent during
// propagation or conflict analysis (spec §4.G: props_made, uip1_used,
// last_touched, exponentially-discounted sums with time constant tau).
func (c Clause) TouchUse(conflictNum uint32, props uint32, wasUIP1 bool, tau float64) {
	s := c.Stats()
	dt := float64(conflictNum) - float64(s.LastTouched)
	decay := math.Exp(-dt / tau)

	s.PropsMade += props
	s.SumPropsMade = float32(float64(s.SumPropsMade)*decay + float64(props))
	if wasUIP1 {
		s.Uip1Used++
		s.SumUip1Used = float32(float64(s.SumUip1Used)*decay + 1)
	} else {
		s.SumUip1Used = float32(float64(s.SumUip1Used) * decay)
	}
	s.LastTouched = conflictNum
	c.SetStats(s)
}

// Simplify drops literals already falsified at decision level 0 and
// reports whether the clause is satisfied at level 0 (in which case the
// caller should detach and free it). Only ever called between restarts at
// decision level 0 (spec §4.A lifecycle: "mutated only by strengthening").
func (c Clause) Simplify(t *Trail) (satisfied bool) {
	n := c.Size()
	out := 0
	for i := 0; i < n; i++ {
		l := c.Lit(i)
		switch t.LitValue(l) {
		case LTrue:
			return true
		case LFalse:
			continue
		default:
			c.SetLit(out, l)
			out++
		}
	}
	c.Shrink(out)
	return false
}

// locked reports whether this clause is currently the reason for some
// variable's assignment; the Reducer must never delete it (spec invariant
// 7). Only long clauses can be locked in this model -- binary/ternary
// reasons are stored by value in PropBy, not by ClauseRef.
func (c Clause) locked(t *Trail) bool {
	for i := 0; i < c.Size(); i++ {
		v := c.Lit(i).Var()
		if t.Value(v) == LUndef {
			continue
		}
		r := t.Reason(v)
		if r.Kind == ReasonLong && r.Ref == c.Ref {
			return true
		}
	}
	return false
}
