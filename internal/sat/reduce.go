package sat

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/satcore/yasscore/internal/sat/predictor"
)

// Tier classifies a redundant clause for reduction purposes (spec §4.G
// step 1). Binary/ternary clauses are never tiered -- they live purely in
// WatchLists and are never deleted by the Reducer.
type Tier uint8

const (
	TierShort Tier = iota
	TierLong
	TierForever
)

// ReduceOptions configures the Reducer (spec §6). ReduceEvery plays the
// role of reduce_base; there is no reduce_inc knob (the growth of the
// interval is fixed in Due). Only two keep ratios exist: the long and
// forever tiers both use KeepRatioLong.
type ReduceOptions struct {
	ReduceEvery    int // conflicts between reduction rounds
	KeepRatioShort float64
	KeepRatioLong  float64
	Tau            float64 // time constant for exponential discounting (spec §4.G)
}

func DefaultReduceOptions() ReduceOptions {
	return ReduceOptions{
		ReduceEvery:    2000,
		KeepRatioShort: 0.5,
		KeepRatioLong:  0.5,
		Tau:            10000,
	}
}

// Reducer periodically scores and physically deletes redundant long
// clauses (spec §4.G). It holds no clause identity of its own: each round
// the caller passes the candidate refs (solver.go collects them from its
// longRefs slice, as the teacher's ReduceDB walks its clause slice).
type Reducer struct {
	opts      ReduceOptions
	predShort predictor.Predictor
	predLong  predictor.Predictor

	conflictsAtLastReduce int
	rounds                int
}

// NewReducer returns a Reducer. predShort scores short/long tier
// transitions, predLong scores long/forever transitions (spec §4.G step
// 3's three scores are produced per round from whichever tier-specific
// predictor governs that clause's current tier).
func NewReducer(opts ReduceOptions, predShort, predLong predictor.Predictor) *Reducer {
	if predShort == nil {
		predShort = predictor.Heuristic{}
	}
	if predLong == nil {
		predLong = predictor.Heuristic{}
	}
	return &Reducer{opts: opts, predShort: predShort, predLong: predLong}
}

// Due reports whether a reduction round should run now (spec: "called
// periodically... when learnt-clause count exceeds a growing threshold").
// The growth uses reduce_inc-style scaling via the round counter.
func (r *Reducer) Due(conflicts int) bool {
	threshold := r.opts.ReduceEvery * (1 + r.rounds/4)
	return conflicts-r.conflictsAtLastReduce >= threshold
}

// clauseRec is the Reducer's working record for one redundant long
// clause during a round.
type clauseRec struct {
	ref   ClauseRef
	cl    Clause
	stats ClauseStats
	size  int
}

// Run performs one reduction round: rank, score, promote/demote, delete
// (spec §4.G steps 1-5). refs lists every currently-watched redundant long
// clause ref; conflictNum is the current global conflict counter (used for
// last_touched deltas). Returns the refs selected for deletion; Run does
// not touch WatchLists or free anything, the caller detaches and frees
// them afterwards (see solver.go).
//
// Binary and locked clauses are filtered out by the caller: refs must
// contain only Long, non-locked, redundant clauses.
func (r *Reducer) Run(arena *ClauseArena, refs []ClauseRef, conflictNum uint32) []ClauseRef {
	recs := make([]clauseRec, 0, len(refs))
	for _, ref := range refs {
		cl := arena.Deref(ref)
		recs = append(recs, clauseRec{ref: ref, cl: cl, stats: cl.Stats(), size: cl.Size()})
	}
	if len(recs) == 0 {
		r.conflictsAtLastReduce = int(conflictNum)
		r.rounds++
		return nil
	}

	byTier := map[Tier][]clauseRec{}
	for _, rec := range recs {
		byTier[Tier(rec.cl.Tier())] = append(byTier[Tier(rec.cl.Tier())], rec)
	}

	var toDelete []ClauseRef
	for tier, group := range byTier {
		toDelete = append(toDelete, r.runTier(tier, group, conflictNum)...)
	}

	r.conflictsAtLastReduce = int(conflictNum)
	r.rounds++
	return toDelete
}

func (r *Reducer) runTier(tier Tier, group []clauseRec, conflictNum uint32) []ClauseRef {
	n := len(group)
	actRank := rankOf(group, func(c clauseRec) float64 { return float64(c.stats.Activity) })
	uipRank := rankOf(group, func(c clauseRec) float64 { return float64(c.stats.Uip1Used) })
	propRank := rankOf(group, func(c clauseRec) float64 { return float64(c.stats.PropsMade) })

	sumUipPerTime := make([]float64, n)
	sumPropsPerTime := make([]float64, n)
	for i, c := range group {
		age := math.Max(1, float64(conflictNum)-float64(c.stats.IntroducedAt))
		sumUipPerTime[i] = safeDiv(float64(c.stats.SumUip1Used), age)
		sumPropsPerTime[i] = safeDiv(float64(c.stats.SumPropsMade), age)
	}
	uipTimeRank := rankOfValues(sumUipPerTime)
	propTimeRank := rankOfValues(sumPropsPerTime)

	medAct := median(actRank)
	medUip := median(uipRank)
	medProp := median(propRank)
	medUipTime := median(uipTimeRank)
	medPropTime := median(propTimeRank)

	data := make([]float64, n*predictor.Cols)
	for i, c := range group {
		row := data[i*predictor.Cols : (i+1)*predictor.Cols]
		buildFeatureRow(row, c, actRank[i], uipRank[i], propRank[i], uipTimeRank[i], propTimeRank[i],
			medAct, medUip, medProp, medUipTime, medPropTime)
	}

	pred := r.predShort
	if tier != TierShort {
		pred = r.predLong
	}
	scores := pred.Predict(data, n)

	keepRatio := r.opts.KeepRatioLong
	if tier == TierShort {
		keepRatio = r.opts.KeepRatioShort
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	scoreOf := func(i int) float64 {
		switch tier {
		case TierShort:
			return scores[i].Short
		case TierLong:
			return scores[i].Long
		default:
			return scores[i].Forever
		}
	}
	sort.Slice(order, func(a, b int) bool { return scoreOf(order[a]) > scoreOf(order[b]) })

	keep := int(math.Ceil(float64(n) * keepRatio))
	var deleted []ClauseRef
	for rank, idx := range order {
		c := group[idx]
		if rank < keep {
			c.cl.SetTier(uint8(retierUp(tier, scoreOf(idx))))
			continue
		}
		deleted = append(deleted, c.ref)
	}
	return deleted
}

// retierUp promotes a surviving clause to the next tier once its score
// crosses a threshold, matching the general promote/demote shape of spec
// §4.G step 4 without pinning exact thresholds the spec leaves
// unspecified; forever clauses never demote.
func retierUp(current Tier, score float64) Tier {
	const promoteThreshold = 0.75
	switch current {
	case TierShort:
		if score > promoteThreshold {
			return TierLong
		}
		return TierShort
	case TierLong:
		if score > promoteThreshold {
			return TierForever
		}
		return TierLong
	default:
		return TierForever
	}
}

func buildFeatureRow(row []float64, c clauseRec, actRank, uipRank, propRank, uipTimeRank, propTimeRank,
	medAct, medUip, medProp, medUipTime, medPropTime float64) {
	s := c.stats
	age := math.Max(1, float64(c.stats.LastTouched)-float64(c.stats.IntroducedAt))

	row[0] = actRank
	row[1] = uipRank
	row[2] = propRank
	row[3] = safeDivNaN(actRank, medAct)
	row[4] = safeDivNaN(uipRank, medUip)
	row[5] = safeDivNaN(propRank, medProp)
	row[6] = uipTimeRank
	row[7] = propTimeRank
	row[8] = safeDivNaN(uipTimeRank, medUipTime)
	row[9] = safeDivNaN(propTimeRank, medPropTime)
	row[10] = float64(s.GlueBeforeMinim)
	row[11] = float64(s.OrigGlue)
	row[12] = float64(c.cl.Glue())
	row[13] = safeDivNaN(float64(c.cl.Glue()), float64(s.OrigGlue))
	row[14] = float64(s.AvgGlue)
	row[15] = float64(s.AvgSize)
	row[16] = float64(s.AvgOverlap)
	row[17] = float64(c.size)
	row[18] = age
	row[19] = safeDivNaN(float64(s.SumPropsMade), age)
	row[20] = safeDivNaN(float64(s.SumUip1Used), age)
	row[21] = float64(s.Activity)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// safeDivNaN follows the source's convention (spec §9): a zero denominator
// yields a "missing value" NaN rather than zero, distinct from safeDiv
// which is used where a zero-age/zero-count fallback of zero is correct.
func safeDivNaN(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}

// rankOf returns, for each element, its 1-based descending rank by key
// (rank 1 is the clause with the largest key value) -- the "per-clause
// ranking position" of spec §4.G step 2.
func rankOf(group []clauseRec, key func(clauseRec) float64) []float64 {
	vals := make([]float64, len(group))
	for i, c := range group {
		vals[i] = key(c)
	}
	return rankOfValues(vals)
}

func rankOfValues(vals []float64) []float64 {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return vals[idx[a]] > vals[idx[b]] })
	ranks := make([]float64, len(vals))
	for r, i := range idx {
		ranks[i] = float64(r + 1)
	}
	return ranks
}

// median uses gonum/stat's quantile helper over a defensive sorted copy
// (spec §4.G step 2's "tier-wide medians").
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return stat.Quantile(0.5, stat.Empirical, cp, nil)
}
