// Package nodecache implements the children cache: the per-node
// working set the search driver uses to order moves, aggregate
// proof/disproof numbers, and detect when Threshold Controlling
// Algorithm inflation is needed. A Cache is large enough (every legal
// move plus its cached result) that recursing through one per stack
// frame would be wasteful; Pool hands them out from a reusable arena
// keyed to the driver's DoMove/UndoMove discipline instead.
package nodecache

import (
	"sort"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/dfpn"
)

// ChildEntry is one legal move's slot in a Cache: the move itself, the
// transposition-table result cached for the position it leads to, and
// bookkeeping the driver needs to decide how to recurse into it.
type ChildEntry struct {
	Move              board.Move
	Result            dfpn.SearchResult
	FirstVisit        bool
	FromOldGeneration bool
	SumMask           bool
}

// Cache holds one node's children, sorted for df-pn's best-first
// selection: ascending pn for an OR node (try the easiest child to
// prove first), ascending dn for an AND node (try the easiest to
// disprove first).
type Cache struct {
	IsOrNode bool
	Children []ChildEntry
}

// reset clears c for reuse by Pool without discarding its backing
// array, so repeated descents to the same depth do not re-allocate.
func (c *Cache) reset() {
	c.Children = c.Children[:0]
	c.IsOrNode = false
}

// Build populates c from pos's legal moves. lookup is called once per
// legal move, with pos still at the parent (the driver's callback plays
// and takes back the move itself), and supplies the move's cached TT
// result, whether this is the result's first
// visit, and whether the cached result came from an older TT
// generation than the current search.
func (c *Cache) Build(pos *board.Position, isOrNode bool, lookup func(m board.Move) (result dfpn.SearchResult, firstVisit bool, fromOldGeneration bool)) {
	c.IsOrNode = isOrNode
	moves := board.GenerateLegalMoves(pos)
	if cap(c.Children) < len(moves) {
		c.Children = make([]ChildEntry, 0, len(moves))
	}
	for _, m := range moves {
		result, firstVisit, fromOldGeneration := lookup(m)
		c.Children = append(c.Children, ChildEntry{
			Move:              m,
			Result:            result,
			FirstVisit:        firstVisit,
			FromOldGeneration: fromOldGeneration,
			SumMask:           true,
		})
	}
	c.sortByMetric()
}

func (c *Cache) primary(r dfpn.SearchResult) dfpn.PnDn {
	if c.IsOrNode {
		return r.Pn
	}
	return r.Dn
}

func (c *Cache) secondary(r dfpn.SearchResult) dfpn.PnDn {
	if c.IsOrNode {
		return r.Dn
	}
	return r.Pn
}

func (c *Cache) sortByMetric() {
	sort.SliceStable(c.Children, func(i, j int) bool {
		pi, pj := c.primary(c.Children[i].Result), c.primary(c.Children[j].Result)
		if pi != pj {
			return pi < pj
		}
		return c.Children[i].Result.Len.Less(c.Children[j].Result.Len)
	})
}

// DoesHaveOldChild reports whether any child's cached result came from
// an older TT generation, the signal that triggers TCA threshold
// inflation, since a stale shallow result can otherwise make the
// search believe a cycle is progress.
func (c *Cache) DoesHaveOldChild() bool {
	for _, ch := range c.Children {
		if ch.FromOldGeneration {
			return true
		}
	}
	return false
}

// CurrentResult aggregates c's children into this node's own result.
func (c *Cache) CurrentResult() dfpn.SearchResult {
	if len(c.Children) == 0 {
		// No legal moves. An OR node whose attacker cannot move is
		// disproven; an AND node whose defender has no legal reply is
		// proven at the zero mate length. The driver relies on the
		// latter to recognize mate.
		if c.IsOrNode {
			return dfpn.SearchResult{Pn: dfpn.Inf, Dn: 0, Len: dfpn.ZeroMateLen(), Amount: 1}
		}
		return dfpn.SearchResult{Pn: 0, Dn: dfpn.Inf, Len: dfpn.ZeroMateLen(), Amount: 1}
	}

	primaryMin := dfpn.Inf
	for _, ch := range c.Children {
		if p := c.primary(ch.Result); p < primaryMin {
			primaryMin = p
		}
	}

	var secondarySum dfpn.PnDn
	for _, ch := range c.Children {
		if ch.SumMask {
			secondarySum = dfpn.AddPnDn(secondarySum, c.secondary(ch.Result))
		}
	}

	var lenAgg dfpn.MateLen
	if c.IsOrNode {
		lenAgg = dfpn.MaxMateLen()
		for _, ch := range c.Children {
			if c.primary(ch.Result) == primaryMin && ch.Result.Len.Less(lenAgg) {
				lenAgg = ch.Result.Len
			}
		}
	} else {
		lenAgg = dfpn.ZeroMateLen()
		for _, ch := range c.Children {
			if lenAgg.Less(ch.Result.Len) {
				lenAgg = ch.Result.Len
			}
		}
	}

	var amount uint64
	for _, ch := range c.Children {
		if ch.Result.Amount > amount {
			amount = ch.Result.Amount
		}
	}

	result := dfpn.SearchResult{Len: lenAgg.PlusPly(1), Amount: amount + 1}
	if c.IsOrNode {
		result.Pn, result.Dn = primaryMin, secondarySum
	} else {
		result.Dn, result.Pn = primaryMin, secondarySum
	}
	return result
}

// BestMove returns the front child's move: the one df-pn would expand
// next.
func (c *Cache) BestMove() board.Move {
	if len(c.Children) == 0 {
		return board.NoMove
	}
	return c.Children[0].Move
}

// PnDnThresholds computes the child thresholds to pass when recursing
// into the front (best) child, given this node's own thresholds.
func (c *Cache) PnDnThresholds(thpn, thdn dfpn.PnDn) (dfpn.PnDn, dfpn.PnDn) {
	if len(c.Children) == 0 {
		return thpn, thdn
	}
	best := c.Children[0].Result
	secondBestPrimary := dfpn.Inf
	if len(c.Children) > 1 {
		secondBestPrimary = c.primary(c.Children[1].Result)
	}
	var secondarySum dfpn.PnDn
	for _, ch := range c.Children {
		if ch.SumMask {
			secondarySum = dfpn.AddPnDn(secondarySum, c.secondary(ch.Result))
		}
	}
	restSecondary := dfpn.SubPnDn(secondarySum, c.secondary(best))

	if c.IsOrNode {
		childThPn := minPnDn(thpn, dfpn.AddPnDn(secondBestPrimary, 1))
		childThDn := dfpn.SubPnDn(thdn, restSecondary)
		return childThPn, childThDn
	}
	childThDn := minPnDn(thdn, dfpn.AddPnDn(secondBestPrimary, 1))
	childThPn := dfpn.SubPnDn(thpn, restSecondary)
	return childThPn, childThDn
}

func minPnDn(a, b dfpn.PnDn) dfpn.PnDn {
	if a < b {
		return a
	}
	return b
}

// UpdateBestChild replaces the front child's cached result (the one
// the driver just recursed into) and re-sorts.
func (c *Cache) UpdateBestChild(result dfpn.SearchResult) {
	if len(c.Children) == 0 {
		return
	}
	c.Children[0].Result = result
	c.Children[0].FirstVisit = false
	c.sortByMetric()
}

// FrontIsFirstVisit reports whether the front (best) child has never
// been visited before.
func (c *Cache) FrontIsFirstVisit() bool {
	return len(c.Children) > 0 && c.Children[0].FirstVisit
}

// FrontSumMask reports whether the front (best) child currently
// contributes to the summed dimension.
func (c *Cache) FrontSumMask() bool {
	return len(c.Children) > 0 && c.Children[0].SumMask
}

// Pool hands out Caches from a reusable arena. It never shrinks: frames
// popped after a descent stay allocated and are reused by later Pushes,
// including those of later Searches.
type Pool struct {
	frames []*Cache
	depth  int
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{}
}

// Push returns the Cache for the next stack depth, extending the arena
// if this is the deepest the pool has ever gone.
func (p *Pool) Push() *Cache {
	if p.depth < len(p.frames) {
		c := p.frames[p.depth]
		c.reset()
		p.depth++
		return c
	}
	c := &Cache{}
	p.frames = append(p.frames, c)
	p.depth++
	return c
}

// Pop releases the deepest Cache back to the pool without freeing it.
func (p *Pool) Pop() {
	if p.depth == 0 {
		panic("nodecache: Pop called on an empty pool")
	}
	p.depth--
}

// Depth returns the number of Caches currently checked out.
func (p *Pool) Depth() int {
	return p.depth
}
