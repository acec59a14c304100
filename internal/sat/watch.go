package sat

import "sort"

// watchKind tags the tagged-union Watch element (spec §3 "Watch element").
type watchKind uint8

const (
	watchBin watchKind = iota
	watchTer
	watchLong
)

// Watch is one entry of a per-literal watch list.
//
//	Bin(other, redundant)              kind == watchBin
//	Ter(other, other2, redundant)       kind == watchTer
//	Long(ref, blocker=other)            kind == watchLong
type Watch struct {
	kind      watchKind
	other     Lit
	other2    Lit
	redundant bool
	ref       ClauseRef
}

// WatchLists holds, for every literal index, the constraints to revisit
// when that literal becomes true, i.e. when its negation becomes false
// (spec §4.B).
type WatchLists struct {
	lists [][]Watch
}

// NewWatchLists returns an empty WatchLists sized for nVars variables.
func NewWatchLists(nVars int) *WatchLists {
	return &WatchLists{lists: make([][]Watch, 2*nVars)}
}

// Grow adds the two literal slots (positive/negative) of a freshly
// created variable.
func (w *WatchLists) Grow() {
	w.lists = append(w.lists, nil, nil)
}

func (w *WatchLists) list(l Lit) []Watch { return w.lists[l.Index()] }

func (w *WatchLists) replace(l Lit, entries []Watch) { w.lists[l.Index()] = entries }

func (w *WatchLists) push(l Lit, entry Watch) {
	w.lists[l.Index()] = append(w.lists[l.Index()], entry)
}

// AttachBinary registers a binary clause {l1, l2}: pushes Bin(l2) into
// watch[¬l1] and Bin(l1) into watch[¬l2] (spec §4.B contract).
func (w *WatchLists) AttachBinary(l1, l2 Lit, redundant bool) {
	w.push(l1.Neg(), Watch{kind: watchBin, other: l2, redundant: redundant})
	w.push(l2.Neg(), Watch{kind: watchBin, other: l1, redundant: redundant})
}

// DetachBinary is the symmetric inverse of AttachBinary.
func (w *WatchLists) DetachBinary(l1, l2 Lit) {
	w.removeBin(l1.Neg(), l2)
	w.removeBin(l2.Neg(), l1)
}

func (w *WatchLists) removeBin(watchLit, other Lit) {
	list := w.lists[watchLit.Index()]
	for i, e := range list {
		if e.kind == watchBin && e.other == other {
			list[i] = list[len(list)-1]
			w.lists[watchLit.Index()] = list[:len(list)-1]
			return
		}
	}
}

// AttachTernary registers a ternary clause {l1, l2, l3}: after ordering
// the three literals, pushes three symmetric Ter entries (spec §4.B).
func (w *WatchLists) AttachTernary(l1, l2, l3 Lit, redundant bool) {
	a, b, c := orderTernary(l1, l2, l3)
	w.push(a.Neg(), Watch{kind: watchTer, other: b, other2: c, redundant: redundant})
	w.push(b.Neg(), Watch{kind: watchTer, other: a, other2: c, redundant: redundant})
	w.push(c.Neg(), Watch{kind: watchTer, other: a, other2: b, redundant: redundant})
}

// DetachTernary is the symmetric inverse of AttachTernary.
func (w *WatchLists) DetachTernary(l1, l2, l3 Lit) {
	a, b, c := orderTernary(l1, l2, l3)
	w.removeTer(a.Neg(), b, c)
	w.removeTer(b.Neg(), a, c)
	w.removeTer(c.Neg(), a, b)
}

func (w *WatchLists) removeTer(watchLit, o1, o2 Lit) {
	list := w.lists[watchLit.Index()]
	for i, e := range list {
		if e.kind == watchTer && sameTerPair(e.other, e.other2, o1, o2) {
			list[i] = list[len(list)-1]
			w.lists[watchLit.Index()] = list[:len(list)-1]
			return
		}
	}
}

func sameTerPair(a1, a2, b1, b2 Lit) bool {
	return (a1 == b1 && a2 == b2) || (a1 == b2 && a2 == b1)
}

func orderTernary(l1, l2, l3 Lit) (Lit, Lit, Lit) {
	s := []Lit{l1, l2, l3}
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s[0], s[1], s[2]
}

// AttachLong watches a long clause's first two literals, choosing a
// blocker literal from the middle of the clause (spec §4.B contract).
func (w *WatchLists) AttachLong(c Clause) {
	blocker := c.Lit(c.Size() / 2)
	w.push(c.Lit(0).Neg(), Watch{kind: watchLong, ref: c.Ref, other: blocker})
	w.push(c.Lit(1).Neg(), Watch{kind: watchLong, ref: c.Ref, other: blocker})
}

// DetachLong removes both watchers of a long clause's current first two
// literals.
func (w *WatchLists) DetachLong(c Clause) {
	w.removeLong(c.Lit(0).Neg(), c.Ref)
	w.removeLong(c.Lit(1).Neg(), c.Ref)
}

func (w *WatchLists) removeLong(watchLit Lit, ref ClauseRef) {
	list := w.lists[watchLit.Index()]
	for i, e := range list {
		if e.kind == watchLong && e.ref == ref {
			list[i] = list[len(list)-1]
			w.lists[watchLit.Index()] = list[:len(list)-1]
			return
		}
	}
}

// RewriteRefs applies a relocation map (from ClauseArena.Consolidate) to
// every Long watcher across all lists.
func (w *WatchLists) RewriteRefs(relocation map[ClauseRef]ClauseRef) {
	for i, list := range w.lists {
		for j := range list {
			if list[j].kind == watchLong {
				if nr, ok := relocation[list[j].ref]; ok {
					list[j].ref = nr
				}
			}
		}
		_ = i
	}
}
