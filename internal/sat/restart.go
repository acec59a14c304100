package sat

import "math"

// RestartType selects which restart policy Heuristics.ShouldRestart
// consults (spec §4.F, §6 restart_type). Glue-based is the default
// (DESIGN.md Open Question decision): it is the only scheme that also
// supports blocked-restart suppression.
type RestartType uint8

const (
	RestartGlue RestartType = iota
	RestartGeometric
	RestartLuby
)

// ema is an exponential moving average, adopted from the teacher's
// unfinished sat/avg.go.
type ema struct {
	decay float64
	value float64
	init  bool
}

func newEMA(decay float64) ema {
	return ema{decay: decay}
}

func (e *ema) add(x float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = e.decay*e.value + x*(1-e.decay)
}

func (e *ema) val() float64 { return e.value }

// boundedAvg is a fixed-window moving average backed by a ring buffer: once
// the window is full, adding a sample evicts the oldest one. This is the
// "short" half of the glue/trail bounded-queue comparisons (spec §4.F,
// SPEC_FULL.md §15), grounded on cryptominisat3/boundedqueue.h.
type boundedAvg struct {
	window *ring[float64]
	sum    float64
	cap    int
}

func newBoundedAvg(window int) *boundedAvg {
	return &boundedAvg{window: newRing[float64](window), cap: window}
}

func (b *boundedAvg) add(x float64) {
	if b.window.Size() == b.cap {
		b.sum -= b.window.Pop()
	}
	b.window.Push(x)
	b.sum += x
}

func (b *boundedAvg) ready() bool { return b.window.Size() == b.cap }

func (b *boundedAvg) val() float64 {
	if b.window.Size() == 0 {
		return 0
	}
	return b.sum / float64(b.window.Size())
}

// RestartPolicy tracks the statistics needed to decide when SearchLoop
// should cancel_until(0) between conflicts (spec §4.F).
type RestartPolicy struct {
	typ RestartType

	// Glucose-style glue EMAs: short window vs. long-term average.
	glueShort *boundedAvg
	glueLong  ema

	// Blocked-restart: short vs. long trail-length averages. A long trail
	// relative to history means the search is making real progress, so a
	// scheduled restart is suppressed (spec §4.F bullet 3).
	trailShort *boundedAvg
	trailLong  ema

	conflictsSinceRestart int
	restartCount          int

	// Geometric/Luby parameters (spec §6 restart_first, restart_inc).
	restartFirst int
	restartInc   float64

	blockK  float64
	glueK   float64
	blocked bool
}

// NewRestartPolicy returns a policy configured per Options (spec §6).
func NewRestartPolicy(typ RestartType, restartFirst int, restartInc float64, blocked bool) *RestartPolicy {
	return &RestartPolicy{
		typ:          typ,
		glueShort:    newBoundedAvg(50),
		glueLong:     newEMA(0.999),
		trailShort:   newBoundedAvg(5000),
		trailLong:    newEMA(0.999),
		restartFirst: restartFirst,
		restartInc:   restartInc,
		blockK:       1.4,
		glueK:        0.8,
		blocked:      blocked,
	}
}

// OnConflict records one conflict's glue and the trail length at the time
// of the conflict, and advances the geometric/Luby conflict counter.
func (r *RestartPolicy) OnConflict(glue int, trailLen int) {
	r.glueShort.add(float64(glue))
	r.glueLong.add(float64(glue))
	r.trailShort.add(float64(trailLen))
	r.trailLong.add(float64(trailLen))
	r.conflictsSinceRestart++
}

// ShouldRestart reports whether SearchLoop should restart now, per the
// configured policy (spec §4.F).
func (r *RestartPolicy) ShouldRestart() bool {
	switch r.typ {
	case RestartGlue:
		return r.shouldRestartGlue()
	case RestartGeometric:
		return r.shouldRestartGeometric()
	case RestartLuby:
		return r.shouldRestartLuby()
	default:
		return r.shouldRestartGlue()
	}
}

func (r *RestartPolicy) shouldRestartGlue() bool {
	if !r.glueShort.ready() {
		return false
	}
	if r.glueShort.val()*r.glueK <= r.glueLong.val() {
		return false
	}
	if r.blocked && r.trailShort.ready() && r.trailShort.val() > r.blockK*r.trailLong.val() {
		// Blocked restart: the recent trail is unusually long, suppress.
		return false
	}
	return true
}

func (r *RestartPolicy) shouldRestartGeometric() bool {
	threshold := float64(r.restartFirst) * math.Pow(r.restartInc, float64(r.restartCount))
	return float64(r.conflictsSinceRestart) >= threshold
}

func (r *RestartPolicy) shouldRestartLuby() bool {
	threshold := float64(r.restartFirst) * luby(r.restartInc, r.restartCount)
	return float64(r.conflictsSinceRestart) >= threshold
}

// OnRestart resets the per-restart conflict counter and empties the short
// glue window, so a glue restart cannot fire again until a fresh window
// of conflicts has been recorded. The long-run averages and the trail
// window are left untouched.
func (r *RestartPolicy) OnRestart() {
	r.conflictsSinceRestart = 0
	r.restartCount++
	r.glueShort.window.Clear()
	r.glueShort.sum = 0
}

// luby returns y^seq, where seq is the index of x within the Luby series,
// following the standard MiniSat-family recurrence (spec §4.F / §6's
// restart_inc as the base of the series for RestartLuby).
func luby(y float64, x int) float64 {
	size, seq := 1, 0
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		seq--
		x = x % size
	}
	return math.Pow(y, float64(seq))
}
