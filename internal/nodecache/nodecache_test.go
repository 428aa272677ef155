package nodecache

import (
	"testing"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/dfpn"
)

func buildCache(t *testing.T, isOrNode bool) *Cache {
	t.Helper()
	pos := board.NewPosition()
	c := &Cache{}
	c.Build(pos, isOrNode, func(m board.Move) (dfpn.SearchResult, bool, bool) {
		return dfpn.InitialResult(board.Hand{}), true, false
	})
	return c
}

func TestBuildPopulatesEveryLegalMove(t *testing.T) {
	pos := board.NewPosition()
	want := len(board.GenerateLegalMoves(pos))
	c := buildCache(t, true)
	if len(c.Children) != want {
		t.Fatalf("len(Children) = %d, want %d", len(c.Children), want)
	}
}

func TestCurrentResultOrNodeTakesMinPn(t *testing.T) {
	c := &Cache{IsOrNode: true}
	c.Children = []ChildEntry{
		{Move: board.NewMove(board.NewSquare(0, 0), board.NewSquare(0, 1)), Result: dfpn.SearchResult{Pn: 5, Dn: 3, Len: dfpn.MateLen{Plies: 2}}, SumMask: true},
		{Move: board.NewMove(board.NewSquare(1, 0), board.NewSquare(1, 1)), Result: dfpn.SearchResult{Pn: 2, Dn: 4, Len: dfpn.MateLen{Plies: 4}}, SumMask: true},
	}
	c.sortByMetric()

	r := c.CurrentResult()
	if r.Pn != 2 {
		t.Fatalf("Pn = %d, want 2 (min over children)", r.Pn)
	}
	if r.Dn != 7 {
		t.Fatalf("Dn = %d, want 7 (sum over children)", r.Dn)
	}
	if r.Len.Plies != 5 {
		t.Fatalf("Len.Plies = %d, want 5 (winning child's 4 plies + 1)", r.Len.Plies)
	}
}

func TestBestMoveIsFrontAfterSort(t *testing.T) {
	c := buildCache(t, true)
	if c.BestMove() != c.Children[0].Move {
		t.Fatal("BestMove() does not match the front child")
	}
}

func TestUpdateBestChildResorts(t *testing.T) {
	c := &Cache{IsOrNode: true}
	c.Children = []ChildEntry{
		{Result: dfpn.SearchResult{Pn: 1, Dn: 1}, SumMask: true},
		{Result: dfpn.SearchResult{Pn: 5, Dn: 1}, SumMask: true},
	}
	c.UpdateBestChild(dfpn.SearchResult{Pn: 10, Dn: 1})
	if c.Children[0].Result.Pn != 5 {
		t.Fatalf("front child Pn = %d, want 5 after re-sort", c.Children[0].Result.Pn)
	}
}

func TestPoolReusesFramesAcrossPushPop(t *testing.T) {
	p := NewPool()
	a := p.Push()
	a.IsOrNode = true
	a.Children = append(a.Children, ChildEntry{})
	p.Pop()

	b := p.Push()
	if b != a {
		t.Fatal("Pool.Push did not reuse the released frame")
	}
	if len(b.Children) != 0 {
		t.Fatal("Pool.Push did not reset the reused frame")
	}
}

func TestPoolPopOnEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Pop on an empty pool to panic")
		}
	}()
	NewPool().Pop()
}
