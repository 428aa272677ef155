package mate

import (
	"sync/atomic"
	"testing"

	"github.com/sanjo-shogi/mateengine/internal/board"
)

func newSearcher(t *testing.T) *KomoringHeights {
	t.Helper()
	kh := New()
	kh.Init()
	kh.Resize(1)
	return kh
}

func TestGcIntervalFormula(t *testing.T) {
	got := GcInterval(1)
	entries := uint64(1) * 1024 * 1024 / 64
	want := entries / 2 * 3
	if got != want {
		t.Fatalf("GcInterval(1) = %d, want %d", got, want)
	}
}

func TestNodeStateString(t *testing.T) {
	cases := map[NodeState]string{ProvenState: "proven", DisprovenState: "disproven", NullState: "null"}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestSearchFindsOnePlyMate(t *testing.T) {
	pos, err := board.ParseSFEN("k8/9/1R7/9/9/9/9/9/9 b G 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}

	kh := newSearcher(t)
	var stop atomic.Bool
	state := kh.Search(pos, true, &stop)

	if state != ProvenState {
		t.Fatalf("Search state = %v, want ProvenState", state)
	}
	moves := kh.BestMoves()
	if len(moves) != 1 {
		t.Fatalf("len(BestMoves()) = %d, want 1", len(moves))
	}
	if len(moves)%2 != 1 {
		t.Fatalf("PV parity mismatch: len(BestMoves())=%d, root is OR node", len(moves))
	}
}

func TestSearchDoesNotFabricateAMateWithBareKings(t *testing.T) {
	// Two bare kings can never produce a forced mate; within a generous
	// but bounded node budget the search must not report a proof.
	pos, err := board.ParseSFEN("k8/9/9/9/9/9/9/9/K8 b - 1")
	if err != nil {
		t.Fatalf("ParseSFEN error: %v", err)
	}

	kh := newSearcher(t)
	kh.SetMaxSearchNode(20000)
	var stop atomic.Bool
	state := kh.Search(pos, true, &stop)

	if state == ProvenState {
		t.Fatal("bare kings cannot produce a forced mate, but Search reported ProvenState")
	}
}

func TestSearchHonorsNodeLimit(t *testing.T) {
	pos := board.NewPosition()

	kh := newSearcher(t)
	kh.SetMaxSearchNode(1)
	var stop atomic.Bool
	state := kh.Search(pos, true, &stop)

	if state == ProvenState {
		t.Fatal("a one-node budget on the starting position should not find a proof")
	}
}
