// Package tt implements the mate-search transposition table: a large,
// bounded, concurrent store of partial and final df-pn results keyed by
// a position key and the mover's hand (each entry also records the path
// key it was written under, but probes do not compare it). Entries live in
// small fixed-size clusters (a power-of-two count derived from a MiB
// budget) so that several hands' worth of result for the same position
// key can coexist and answer dominated-hand queries; a generation
// counter drives both ordinary replacement and mid-search garbage
// collection.
package tt

import (
	"sort"
	"sync/atomic"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/dfpn"
	"github.com/sanjo-shogi/mateengine/internal/key128"
	"github.com/sanjo-shogi/mateengine/internal/rwspin"
)

// ClusterSize is the number of entries sharing a cluster slot. Probes
// scan a cluster linearly, trading a little probe cost for the ability
// to hold several hands' worth of result for the same position key.
const ClusterSize = 8

// entry is one transposition-table slot. occupied is false for a slot
// that has never been written, which Verifier == 0 cannot distinguish
// from a real key that happens to hash to zero.
type entry struct {
	occupied    bool
	PositionKey key128.Key
	PathKey     key128.Key
	Hand        board.Hand
	Generation  uint32
	Pn          dfpn.PnDn
	Dn          dfpn.PnDn
	Len         dfpn.MateLen
	Amount      uint64
	IsRepetition bool
}

func (e *entry) result() dfpn.SearchResult {
	r := dfpn.SearchResult{Pn: e.Pn, Dn: e.Dn, Hand: e.Hand, Len: e.Len, Amount: e.Amount}
	r.Final.IsRepetition = e.IsRepetition
	return r
}

// cluster groups ClusterSize entries under one writer-serialization bit.
// The bit is separate from Table.mu: Table.mu's shared side covers
// ordinary lookups and writes, its exclusive side covers GC, and the
// per-cluster bit additionally serializes two concurrent writers that
// both only hold Table.mu's shared side.
type cluster struct {
	entries [ClusterSize]entry
	busy    int32
}

func (c *cluster) claim() bool {
	return atomic.CompareAndSwapInt32(&c.busy, 0, 1)
}

func (c *cluster) release() {
	atomic.StoreInt32(&c.busy, 0)
}

// Table is the transposition table. The zero value is not usable; build
// one with New.
type Table struct {
	mu         rwspin.Lock
	clusters   []cluster
	mask       uint64
	generation uint32
}

const bytesPerCluster = 8 + ClusterSize*64 // rough accounting, not a precise unsafe.Sizeof

// New allocates a table sized to fit within sizeMB MiB, rounding the
// cluster count down to a power of two for a mask-based index.
func New(sizeMB int) *Table {
	if sizeMB < 1 {
		sizeMB = 1
	}
	budget := uint64(sizeMB) * 1024 * 1024
	numClusters := budget / uint64(bytesPerCluster)
	numClusters = roundDownToPowerOfTwo(numClusters)
	if numClusters == 0 {
		numClusters = 1
	}
	return &Table{
		clusters: make([]cluster, numClusters),
		mask:     numClusters - 1,
	}
}

func roundDownToPowerOfTwo(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Resize reallocates the table, destroying all existing entries. Takes
// the exclusive lock: callers must not resize concurrently with search.
func (t *Table) Resize(sizeMB int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fresh := New(sizeMB)
	t.clusters = fresh.clusters
	t.mask = fresh.mask
	t.generation = 0
}

// NewGeneration starts a new search generation. Entries from the
// previous generation remain readable (and subsumable) but become
// eligible for GC and ordinary eviction.
func (t *Table) NewGeneration() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
}

func (t *Table) clusterFor(posKey key128.Key) *cluster {
	return &t.clusters[posKey.Index(t.mask)]
}

// Query binds a (position key, path key, hand, depth) tuple across a
// visit to one node, caching its resolved cluster so repeated
// LookUp/SetResult calls during that visit skip re-hashing.
type Query struct {
	table   *Table
	cluster *cluster
	posKey  key128.Key
	pathKey key128.Key
	hand    board.Hand
	depth   int
}

// NewQuery builds a Query and resolves its cluster immediately.
func (t *Table) NewQuery(posKey, pathKey key128.Key, hand board.Hand, depth int) Query {
	return Query{table: t, cluster: t.clusterFor(posKey), posKey: posKey, pathKey: pathKey, hand: hand, depth: depth}
}

// LookUp returns the best known result for the query's key, honoring
// the hand-domination subsumption rule: a proven entry whose hand is a
// subset of the query's hand, or a disproven entry whose hand is a
// superset, answers the query even without an exact hand match. On a
// genuine miss it returns a fresh initial estimate; if createIfMissing
// is set, that estimate is also written back so the slot is reserved
// for this key before the caller starts expanding it.
func (q *Query) LookUp(len dfpn.MateLen, createIfMissing bool) dfpn.SearchResult {
	r, _, _ := q.LookUpDetailed(len, createIfMissing)
	return r
}

// LookUpDetailed is LookUp plus the two bits of bookkeeping the
// children cache needs per child: whether this was the child's first
// visit (a genuine miss) and whether the answering entry was written
// in an older search generation than the table's current one, the
// signal that feeds DoesHaveOldChild/TCA threshold inflation.
func (q *Query) LookUpDetailed(len dfpn.MateLen, createIfMissing bool) (dfpn.SearchResult, bool, bool) {
	t := q.table
	t.mu.RLock()
	r, gen, found := q.probeLocked(len)
	curGen := atomic.LoadUint32(&t.generation)
	t.mu.RUnlock()
	if found {
		return r, false, gen != curGen
	}

	fresh := dfpn.InitialResult(q.hand)
	if createIfMissing {
		q.SetResult(fresh)
	}
	return fresh, true, false
}

// probeLocked scans the query's cluster for an answering entry. Final
// entries are length-gated: a proof answers only a query whose bound
// admits it (entry len at most query len), a disproof only a query at
// or below the length it disproved, so a mate-in-7 proof never
// satisfies a tightened mate-in-5 query during iterative refinement.
func (q *Query) probeLocked(len dfpn.MateLen) (dfpn.SearchResult, uint32, bool) {
	c := q.cluster
	for i := range c.entries {
		if !c.entries[i].occupied || !c.entries[i].PositionKey.Equal(q.posKey) {
			continue
		}
		// Copy the payload, then re-verify the key on the copy: a write
		// racing this probe within the cluster cannot hand back a torn
		// entry whose key and payload disagree.
		e := c.entries[i]
		if !e.occupied || !e.PositionKey.Equal(q.posKey) {
			continue
		}
		provenInBound := e.Pn == 0 && !len.Less(e.Len)
		disprovenInBound := e.Dn == 0 && !e.Len.Less(len)
		if e.Hand.Equal(q.hand) {
			if e.Pn != 0 && e.Dn != 0 || provenInBound || disprovenInBound {
				return e.result(), e.Generation, true
			}
			continue
		}
		if provenInBound && e.Hand.IsSubsetOf(q.hand) {
			return e.result(), e.Generation, true
		}
		if disprovenInBound && q.hand.IsSubsetOf(e.Hand) {
			return e.result(), e.Generation, true
		}
	}
	return dfpn.SearchResult{}, 0, false
}

// SetResult writes r into the query's cluster, either updating an
// existing exact-match entry or evicting a victim per the table's
// replacement policy.
func (q *Query) SetResult(r dfpn.SearchResult) {
	t := q.table
	t.mu.RLock()
	defer t.mu.RUnlock()

	c := q.cluster
	for !c.claim() {
	}
	defer c.release()

	gen := atomic.LoadUint32(&t.generation)
	idx := q.selectSlot(r)
	e := &c.entries[idx]
	if e.occupied && e.PositionKey.Equal(q.posKey) && e.Hand.Equal(q.hand) {
		wasFinal := e.Pn == 0 || e.Dn == 0
		isFinal := r.Pn == 0 || r.Dn == 0
		if wasFinal && !isFinal {
			// A proven or disproven entry is never downgraded back to a
			// non-final estimate for the same (key, hand).
			return
		}
	}
	e.occupied = true
	e.PositionKey = q.posKey
	e.PathKey = q.pathKey
	e.Hand = r.Hand
	e.Generation = gen
	e.Pn = r.Pn
	e.Dn = r.Dn
	e.Len = r.Len
	e.Amount = r.Amount
	e.IsRepetition = r.Final.IsRepetition
}

// selectSlot finds the entry to overwrite: an exact (key, hand) match
// if one exists, otherwise an empty slot, otherwise the eviction
// victim: the entry with the smallest Amount among those from an
// older generation than the table's current one, ties broken by the
// largest key distance from the slot being written. A final entry of
// the opposite polarity is not a match: "mate in 7" and "no mate
// within 5" are both true facts about the same key and must coexist as
// separate length-gated entries.
func (q *Query) selectSlot(r dfpn.SearchResult) int {
	c := q.cluster
	gen := atomic.LoadUint32(&q.table.generation)

	for i := range c.entries {
		e := &c.entries[i]
		if e.occupied && e.PositionKey.Equal(q.posKey) && e.Hand.Equal(q.hand) {
			opposite := (e.Pn == 0 && r.IsDisproven()) || (e.Dn == 0 && r.IsProven())
			if !opposite {
				return i
			}
		}
	}
	for i := range c.entries {
		if !c.entries[i].occupied {
			return i
		}
	}

	victim := -1
	var victimAmount uint64
	var victimDistance uint64
	for i := range c.entries {
		e := &c.entries[i]
		if e.Generation == gen {
			continue
		}
		distance := e.PositionKey.Lo ^ q.posKey.Lo
		switch {
		case victim == -1:
			victim, victimAmount, victimDistance = i, e.Amount, distance
		case e.Amount < victimAmount, e.Amount == victimAmount && distance > victimDistance:
			victim, victimAmount, victimDistance = i, e.Amount, distance
		}
	}
	if victim == -1 {
		// Every entry is from the current generation; overwrite the
		// least-valuable one anyway rather than dropping the write.
		victim, victimAmount = 0, c.entries[0].Amount
		for i := 1; i < len(c.entries); i++ {
			if c.entries[i].Amount < victimAmount {
				victim, victimAmount = i, c.entries[i].Amount
			}
		}
	}
	return victim
}

// GC removes entries from older generations whose Amount falls below
// an adaptively chosen threshold, aiming to leave roughly half of the
// eligible (older-generation) entries in place. Entries written during
// the current generation are never removed. It returns the fraction of
// occupied entries it freed, so the caller can back off its GC cadence
// when a pass could not free enough (for example when almost the whole
// table is current-generation). Takes the table's exclusive lock, so
// GC fully serializes against in-flight lookups.
func (t *Table) GC() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var amounts []uint64
	occupied := 0
	for ci := range t.clusters {
		c := &t.clusters[ci]
		for ei := range c.entries {
			e := &c.entries[ei]
			if !e.occupied {
				continue
			}
			occupied++
			if e.Generation != t.generation {
				amounts = append(amounts, e.Amount)
			}
		}
	}
	if occupied == 0 {
		// Nothing to free and no pressure either.
		return 1
	}
	if len(amounts) == 0 {
		return 0
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })
	threshold := amounts[len(amounts)/2]

	removed := 0
	for ci := range t.clusters {
		c := &t.clusters[ci]
		for ei := range c.entries {
			e := &c.entries[ei]
			if e.occupied && e.Generation != t.generation && e.Amount < threshold {
				*e = entry{}
				removed++
			}
		}
	}
	return float64(removed) / float64(occupied)
}

// Hashfull reports the fraction of entries, sampled from the first
// portion of the table, whose generation equals the table's current
// generation.
func (t *Table) Hashfull() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	const sampleClusters = 250
	n := len(t.clusters)
	if n > sampleClusters {
		n = sampleClusters
	}
	if n == 0 {
		return 0
	}

	total, used := 0, 0
	for ci := 0; ci < n; ci++ {
		c := &t.clusters[ci]
		for ei := range c.entries {
			total++
			if c.entries[ei].occupied && c.entries[ei].Generation == t.generation {
				used++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}
