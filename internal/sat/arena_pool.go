package sat

import (
	"math/bits"
	"sync"
)

// litPool stages literal buffers for Solver.AddClause, avoiding a fresh
// allocation for every root clause added. Adapted from the teacher's
// clauses_alloc.go, which backed individually heap-allocated *Clause
// objects; here the pool only feeds AddClause's root-level simplification,
// whose result ClauseArena.Alloc copies in, and the staging buffer goes
// back to the pool when AddClause returns. Learnt clauses do not use it.

// nPools is the number of size-class slice pools.
const nPools = 4

// lastCapa is the requested capacity from which Get skips the size-class
// lookup and always uses the last pool.
const lastCapa = 1 << nPools

type litPool struct {
	pools [nPools]sync.Pool
}

// newLitPool initializes a fresh set of size-class pools. Pool i serves
// capacities in [2^i, 2^(i+1)-1] (pool 0 also serves 0) and creates new
// slices of capacity 2^(i+1); the last pool serves every capacity >=
// 2^(nPools-1).
func newLitPool() *litPool {
	p := &litPool{}
	for i := 0; i < nPools; i++ {
		capa := 1 << (i + 1)
		p.pools[i].New = func() any {
			s := make([]Lit, 0, capa)
			return &s
		}
	}
	return p
}

func pid(capa int) int {
	if capa >= lastCapa {
		return nPools - 1
	}
	id := bits.Len(uint(capa)) - 1
	if id < 0 {
		return 0
	}
	if capa < (1 << id) {
		id--
	}
	return id
}

// Get returns an empty, non-nil slice with at least the requested capacity.
func (p *litPool) Get(capa int) *[]Lit {
	ref := p.pools[pid(capa)].Get().(*[]Lit)
	if *ref == nil || cap(*ref) < capa {
		s := make([]Lit, 0, capa)
		ref = &s
	}
	return ref
}

// Put returns a staging buffer to the pool for reuse.
func (p *litPool) Put(s *[]Lit) {
	*s = (*s)[:0]
	p.pools[pid(cap(*s))].Put(s)
}
