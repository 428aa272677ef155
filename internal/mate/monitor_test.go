package mate

import (
	"sync/atomic"
	"testing"
)

func TestPushPopLimitNesting(t *testing.T) {
	m := NewSearchMonitor()
	m.NewSearch(1000)
	m.PushLimit(10)
	m.PushLimit(3)
	if m.moveLimit != 3 {
		t.Fatalf("moveLimit = %d, want 3 after nested push", m.moveLimit)
	}
	m.PopLimit()
	if m.moveLimit != 10 {
		t.Fatalf("moveLimit = %d, want 10 after pop", m.moveLimit)
	}
	m.PopLimit()
	if m.moveLimit != ^uint64(0) {
		t.Fatalf("moveLimit = %d, want unlimited after popping to the root", m.moveLimit)
	}
}

func TestShouldStopHonorsMoveLimitAndFlag(t *testing.T) {
	m := NewSearchMonitor()
	m.NewSearch(1000)
	m.PushLimit(2)
	m.Visit(0)
	if m.ShouldStop(nil) {
		t.Fatal("ShouldStop should be false before the limit is reached")
	}
	m.Visit(0)
	if !m.ShouldStop(nil) {
		t.Fatal("ShouldStop should be true once move count reaches the limit")
	}

	m2 := NewSearchMonitor()
	m2.NewSearch(1000)
	m2.PushLimit(1000)
	var stop atomic.Bool
	stop.Store(true)
	if !m2.ShouldStop(&stop) {
		t.Fatal("ShouldStop must honor an externally set stop flag")
	}
}

func TestShouldGcAndResetNextGc(t *testing.T) {
	m := NewSearchMonitor()
	m.NewSearch(5)
	for i := 0; i < 5; i++ {
		m.Visit(0)
	}
	if !m.ShouldGc() {
		t.Fatal("ShouldGc should be true once move count reaches the interval")
	}
	m.ResetNextGc()
	if m.ShouldGc() {
		t.Fatal("ShouldGc should be false immediately after ResetNextGc")
	}
}

func TestBackoffGcDoublesInterval(t *testing.T) {
	m := NewSearchMonitor()
	m.NewSearch(4)
	before := m.gcInterval
	m.BackoffGc()
	if m.gcInterval != before*2 {
		t.Fatalf("gcInterval = %d, want %d after BackoffGc", m.gcInterval, before*2)
	}
}
