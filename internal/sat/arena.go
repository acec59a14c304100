package sat

import "math"

// ClauseRef is a stable-until-relocation offset into a ClauseArena. Every
// ClauseRef held by another component (WatchLists, VarState reasons,
// learnt/irredundant index vectors) must be rewritten after a
// relocation; see ClauseArena.Consolidate.
type ClauseRef uint32

// header word layout, relative to a clause's ClauseRef:
//
//	0  flags        (bit0 redundant, bit1 removed, bit2 freed, bit3 relocated, bits4-5 tier)
//	1  size         (current literal count)
//	2  abstractionLo
//	3  abstractionHi
//	4  glue
//	5  forwardRef   (valid iff relocated bit set)
//	6  hasStats     (0/1)
//	7  origSize     (literal count at alloc time; frozen across strengthening)
const (
	wFlags = iota
	wSize
	wAbsLo
	wAbsHi
	wGlue
	wForward
	wHasStats
	wOrigSize
	headerWords
)

const (
	flagRedundant = 1 << 0
	flagRemoved   = 1 << 1
	flagFreed     = 1 << 2
	flagRelocated = 1 << 3
	tierShift     = 4
	tierMask      = 0b11 << tierShift
)

// statsWords lays out the online statistics block (spec §4.G) immediately
// after a redundant clause's literals.
//
//	0  introducedAt
//	1  lastTouched
//	2  propsMade
//	3  uip1Used
//	4  sumPropsMade   (float32 bits)
//	5  sumUip1Used    (float32 bits)
//	6  glueBeforeMinim
//	7  origGlue
//	8  avgGlue        (float32 bits)
//	9  avgSize        (float32 bits)
//	10 avgOverlap     (float32 bits)
//	11 activity       (float32 bits)
const statsWords = 12

// MaxClauseSize is the largest number of literals a single clause may
// hold; allocation beyond it is a resource-fatal error (spec §7).
const MaxClauseSize = 1 << 30

// ClauseArena owns all clause storage in a single growable []uint32
// buffer, handing out 32-bit offsets (ClauseRef) and supporting
// relocating compaction (spec §4.A).
type ClauseArena struct {
	words     []uint32
	liveBytes int

	// consolidateWhenFrag and maxBytes mirror the Options knobs
	// max_arena_bytes / consolidate_when_frag (spec §6).
	fragThreshold float64
	maxBytes      int
}

// NewClauseArena returns an empty arena. fragThreshold is the live/capacity
// ratio below which Consolidate will compact (spec default 0.8); maxBytes,
// if > 0, forces a consolidation once liveBytes exceeds it.
func NewClauseArena(fragThreshold float64, maxBytes int) *ClauseArena {
	if fragThreshold <= 0 {
		fragThreshold = 0.8
	}
	return &ClauseArena{fragThreshold: fragThreshold, maxBytes: maxBytes}
}

// Clause is a lightweight handle into the arena: (arena, ref). Methods
// re-index the arena's current backing slice on every call, so a Clause
// value never goes stale across calls that don't themselves relocate the
// arena -- but per the contract in spec §4.A, a Clause obtained before a
// Consolidate must be discarded and re-derived from the relocation map
// afterwards.
type Clause struct {
	a   *ClauseArena
	Ref ClauseRef
}

// Deref returns a handle to the clause at ref. O(1).
func (a *ClauseArena) Deref(ref ClauseRef) Clause {
	return Clause{a: a, Ref: ref}
}

func (a *ClauseArena) word(ref ClauseRef, off int) uint32 {
	return a.words[int(ref)+off]
}

func (a *ClauseArena) setWord(ref ClauseRef, off int, v uint32) {
	a.words[int(ref)+off] = v
}

// Alloc appends a header + literal array (+ stats block, if redundant) to
// the arena and returns its ClauseRef. Amortized O(size).
func (a *ClauseArena) Alloc(lits []Lit, redundant bool) (ClauseRef, error) {
	n := len(lits)
	if n > MaxClauseSize {
		return 0, &Fatal{Op: "ClauseArena.Alloc", Err: errClauseTooLarge}
	}

	span := headerWords + n
	if redundant {
		span += statsWords
	}

	ref := ClauseRef(len(a.words))
	if int64(len(a.words))+int64(span) > math.MaxUint32 {
		return 0, &Fatal{Op: "ClauseArena.Alloc", Err: errArenaExhausted}
	}
	a.words = append(a.words, make([]uint32, span)...)

	flags := uint32(0)
	if redundant {
		flags |= flagRedundant
	}
	a.setWord(ref, wFlags, flags)
	a.setWord(ref, wSize, uint32(n))
	a.setWord(ref, wOrigSize, uint32(n))
	a.setWord(ref, wAbsLo, 0)
	a.setWord(ref, wAbsHi, 0)
	a.setWord(ref, wGlue, 0)
	a.setWord(ref, wForward, 0)
	if redundant {
		a.setWord(ref, wHasStats, 1)
	} else {
		a.setWord(ref, wHasStats, 0)
	}
	for i, l := range lits {
		a.setLitWord(ref, i, l)
	}
	c := a.Deref(ref)
	c.SetAbstraction(computeAbstraction(lits))

	a.liveBytes += span * 4
	return ref, nil
}

func (a *ClauseArena) setLitWord(ref ClauseRef, i int, l Lit) {
	a.words[int(ref)+headerWords+i] = uint32(int32(l))
}

// spanWords returns the total word span a clause occupies, based on its
// frozen origSize (strengthening shrinks `size` in place but never the
// span, leaving internal fragmentation per spec §4.A).
func (a *ClauseArena) spanWords(ref ClauseRef) int {
	span := headerWords + int(a.word(ref, wOrigSize))
	if a.word(ref, wHasStats) != 0 {
		span += statsWords
	}
	return span
}

// Free marks the clause freed and decrements the live-bytes counter by its
// original (not possibly-shrunken) size.
func (a *ClauseArena) Free(ref ClauseRef) {
	span := a.spanWords(ref)
	flags := a.word(ref, wFlags)
	a.setWord(ref, wFlags, flags|flagFreed)
	a.liveBytes -= span * 4
}

// LiveBytes returns the current count of bytes not yet freed.
func (a *ClauseArena) LiveBytes() int { return a.liveBytes }

// CapacityBytes returns the current backing buffer size in bytes.
func (a *ClauseArena) CapacityBytes() int { return len(a.words) * 4 }

// ShouldConsolidate reports whether Consolidate(false) would actually
// compact given the current fragmentation, per spec §4.A's threshold.
func (a *ClauseArena) ShouldConsolidate() bool {
	cap := a.CapacityBytes()
	if cap == 0 {
		return false
	}
	frag := float64(a.liveBytes) / float64(cap)
	if frag < a.fragThreshold {
		return true
	}
	if a.maxBytes > 0 && a.liveBytes > a.maxBytes {
		return true
	}
	return false
}

// Consolidate compacts the arena, dropping freed clauses, and returns the
// relocation map from every surviving old ClauseRef to its new one. Every
// external holder of a ClauseRef (WatchLists, VarState reasons, the
// learnt/irredundant index vectors) must be walked and rewritten using
// this map before any further arena operation. Returns nil if force is
// false and consolidation is not warranted.
func (a *ClauseArena) Consolidate(force bool) map[ClauseRef]ClauseRef {
	if !force && !a.ShouldConsolidate() {
		return nil
	}

	newWords := make([]uint32, 0, len(a.words))
	relocation := make(map[ClauseRef]ClauseRef)

	ref := ClauseRef(0)
	for int(ref) < len(a.words) {
		span := a.spanWords(ref)
		freed := a.word(ref, wFlags)&flagFreed != 0
		if !freed {
			newRef := ClauseRef(len(newWords))
			newWords = append(newWords, a.words[int(ref):int(ref)+span]...)
			relocation[ref] = newRef

			// Best-effort forwarding pointer in the old slot, matching the
			// source's "overwrite on relocate" convention (spec §9); the
			// old buffer is discarded right after this loop, so this is
			// purely documentary except for callers holding a stale
			// ClauseRef mid-loop (none do: consolidation runs only at
			// quiescent points, spec §5).
			flags := a.word(ref, wFlags) | flagRelocated
			a.setWord(ref, wFlags, flags)
			a.setWord(ref, wForward, uint32(newRef))
		}
		ref += ClauseRef(span)
	}

	a.words = newWords
	a.liveBytes = len(newWords) * 4
	return relocation
}

// computeAbstraction returns a Bloom-style fingerprint over the variables
// of lits, used for fast subset tests by external collaborators (e.g. a
// subsumption engine); the core itself only maintains the field.
func computeAbstraction(lits []Lit) uint64 {
	var abs uint64
	for _, l := range lits {
		abs |= 1 << (uint(l.Var()) & 63)
	}
	return abs
}

// --- Clause accessors ---

func (c Clause) Size() int { return int(c.a.word(c.Ref, wSize)) }

func (c Clause) Lit(i int) Lit {
	return Lit(int32(c.a.words[int(c.Ref)+headerWords+i]))
}

func (c Clause) SetLit(i int, l Lit) { c.a.setLitWord(c.Ref, i, l) }

// Shrink reduces the clause's logical size in place (strengthening). The
// arena span is unchanged (internal fragmentation, per spec §4.A).
func (c Clause) Shrink(newSize int) {
	c.a.setWord(c.Ref, wSize, uint32(newSize))
}

func (c Clause) Redundant() bool { return c.a.word(c.Ref, wFlags)&flagRedundant != 0 }

func (c Clause) Removed() bool { return c.a.word(c.Ref, wFlags)&flagRemoved != 0 }

func (c Clause) SetRemoved(v bool) {
	flags := c.a.word(c.Ref, wFlags)
	if v {
		flags |= flagRemoved
	} else {
		flags &^= flagRemoved
	}
	c.a.setWord(c.Ref, wFlags, flags)
}

func (c Clause) Freed() bool { return c.a.word(c.Ref, wFlags)&flagFreed != 0 }

func (c Clause) Relocated() bool { return c.a.word(c.Ref, wFlags)&flagRelocated != 0 }

func (c Clause) ForwardRef() ClauseRef { return ClauseRef(c.a.word(c.Ref, wForward)) }

func (c Clause) Glue() uint32 { return c.a.word(c.Ref, wGlue) }

func (c Clause) SetGlue(g uint32) { c.a.setWord(c.Ref, wGlue, g) }

func (c Clause) Abstraction() uint64 {
	lo := uint64(c.a.word(c.Ref, wAbsLo))
	hi := uint64(c.a.word(c.Ref, wAbsHi))
	return lo | hi<<32
}

func (c Clause) SetAbstraction(abs uint64) {
	c.a.setWord(c.Ref, wAbsLo, uint32(abs))
	c.a.setWord(c.Ref, wAbsHi, uint32(abs>>32))
}

func (c Clause) Tier() uint8 {
	return uint8((c.a.word(c.Ref, wFlags) & tierMask) >> tierShift)
}

func (c Clause) SetTier(t uint8) {
	flags := c.a.word(c.Ref, wFlags) &^ uint32(tierMask)
	flags |= uint32(t) << tierShift
	c.a.setWord(c.Ref, wFlags, flags)
}

func (c Clause) HasStats() bool { return c.a.word(c.Ref, wHasStats) != 0 }

// statsBase returns the word offset of the clause's stats block, valid
// only when HasStats() is true. It is based on origSize (the frozen
// span), not the current (possibly-shrunken) size.
func (c Clause) statsBase() int {
	return int(c.Ref) + headerWords + int(c.a.word(c.Ref, wOrigSize))
}

// Lits returns a freshly-copied slice of the clause's current literals.
// Callers must not rely on this staying valid across any call that can
// grow or relocate the arena.
func (c Clause) Lits() []Lit {
	out := make([]Lit, c.Size())
	for i := range out {
		out[i] = c.Lit(i)
	}
	return out
}

func (c Clause) String() string {
	if c.Size() == 0 {
		return "Clause[]"
	}
	s := "Clause["
	for i := 0; i < c.Size(); i++ {
		if i > 0 {
			s += " "
		}
		s += c.Lit(i).String()
	}
	return s + "]"
}
