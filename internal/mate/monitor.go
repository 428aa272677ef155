package mate

import (
	"sync/atomic"
	"time"
)

// histLen is the ring buffer size backing the monitor's NPS estimate:
// enough samples that the oldest one is several Tick intervals old once
// the ring has filled, without keeping unbounded history.
const histLen = 16

// SearchMonitor tracks node effort, depth, and elapsed time for one
// top-level Search call, and answers the two questions the recursion
// checks on every node visit: ShouldStop (a limit was hit) and ShouldGc
// (the transposition table's next collection point was reached).
// PushLimit/PopLimit form a stack of nested move-count ceilings so a
// subtree can impose a tighter bound than its ancestor without losing
// the ancestor's bound on return.
type SearchMonitor struct {
	startTime time.Time
	depth     int
	selDepth  int
	moveCount uint64

	limitStack []uint64
	moveLimit  uint64

	gcInterval  uint64
	nextGcCount uint64

	histTime  [histLen]time.Duration
	histCount [histLen]uint64
	histIdx   int

	// printFlag is the one monitor field touched from outside the search
	// goroutine (the USI observer sets it on each PvInterval tick).
	printFlag atomic.Bool
}

// NewSearchMonitor returns a monitor ready for its first Search.
func NewSearchMonitor() *SearchMonitor {
	return &SearchMonitor{}
}

// NewSearch resets m for a fresh top-level Search: clear the
// histories, reset the depth/move counters, restore the unbounded
// ceiling, and set the GC interval the caller computed from the
// table's capacity.
func (m *SearchMonitor) NewSearch(gcInterval uint64) {
	m.startTime = time.Now()
	m.depth = 0
	m.selDepth = 0
	m.moveCount = 0
	m.limitStack = m.limitStack[:0]
	m.moveLimit = ^uint64(0)
	m.histIdx = 0
	for i := range m.histTime {
		m.histTime[i] = 0
		m.histCount[i] = 0
	}
	m.gcInterval = gcInterval
	m.printFlag.Store(false)
	m.ResetNextGc()
}

// Visit records one recursive SearchImpl call at depth.
func (m *SearchMonitor) Visit(depth int) {
	m.moveCount++
	m.depth = depth
	if depth > m.selDepth {
		m.selDepth = depth
	}
}

// MoveCount returns the node-effort counter accumulated so far.
func (m *SearchMonitor) MoveCount() uint64 {
	return m.moveCount
}

// Tick records a (timestamp, move_count) sample into the ring history,
// used by GetInfo to compute a windowed nodes-per-second figure.
func (m *SearchMonitor) Tick() {
	m.histTime[m.histIdx%histLen] = time.Since(m.startTime)
	m.histCount[m.histIdx%histLen] = m.moveCount
	m.histIdx++
}

// ShouldStop reports whether the search must terminate now: the
// external stop flag is set, or the node-effort counter reached the
// current (possibly nested) move limit.
func (m *SearchMonitor) ShouldStop(stop *atomic.Bool) bool {
	if stop != nil && stop.Load() {
		return true
	}
	return m.moveCount >= m.moveLimit
}

// ShouldGc reports whether the node-effort counter has crossed the
// next scheduled garbage-collection point.
func (m *SearchMonitor) ShouldGc() bool {
	return m.moveCount >= m.nextGcCount
}

// ResetNextGc schedules the next GC point one gcInterval past the
// current node-effort count.
func (m *SearchMonitor) ResetNextGc() {
	m.nextGcCount = m.moveCount + m.gcInterval
}

// BackoffGc doubles the GC interval, the monitor's response to a GC
// pass that failed to free enough of the table: rather than thrashing
// GC every interval with no effect, it backs off.
func (m *SearchMonitor) BackoffGc() {
	m.gcInterval *= 2
	m.ResetNextGc()
}

// PushLimit imposes a new move-count ceiling no looser than the
// current one.
func (m *SearchMonitor) PushLimit(limit uint64) {
	m.limitStack = append(m.limitStack, m.moveLimit)
	if limit < m.moveLimit {
		m.moveLimit = limit
	}
}

// PopLimit restores the move-count ceiling in effect before the
// matching PushLimit.
func (m *SearchMonitor) PopLimit() {
	if len(m.limitStack) == 0 {
		return
	}
	m.moveLimit = m.limitStack[len(m.limitStack)-1]
	m.limitStack = m.limitStack[:len(m.limitStack)-1]
}

// SetPrintFlag requests that the next SearchImpl iteration emit an
// info line.
func (m *SearchMonitor) SetPrintFlag() {
	m.printFlag.Store(true)
}

// ConsumePrintFlag reports and clears the print flag.
func (m *SearchMonitor) ConsumePrintFlag() bool {
	return m.printFlag.Swap(false)
}

// nps estimates nodes per second from the oldest surviving ring sample
// once the ring has filled; before that it falls back to the whole
// elapsed-time average.
func (m *SearchMonitor) nps(elapsed time.Duration) uint64 {
	if m.histIdx >= histLen {
		oldest := m.histIdx % histLen
		dt := elapsed - m.histTime[oldest]
		dn := m.moveCount - m.histCount[oldest]
		if dt > 0 {
			return uint64(float64(dn) / dt.Seconds())
		}
	}
	if elapsed > 0 {
		return uint64(float64(m.moveCount) / elapsed.Seconds())
	}
	return 0
}

// GetInfo builds the seldepth/time/nodes/nps quarter of the USI info
// bundle; Hashfull and Score are filled in by the caller, which has
// access to the transposition table and the most recent result.
func (m *SearchMonitor) GetInfo() UsiInfo {
	elapsed := time.Since(m.startTime)
	var info UsiInfo
	info.SelDepth = m.selDepth
	info.TimeMs = elapsed.Milliseconds()
	info.Nodes = m.moveCount
	info.Nps = m.nps(elapsed)
	return info
}
