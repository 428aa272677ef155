package usi

import (
	"testing"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/mate"
)

func newHandler(t *testing.T) *USI {
	t.Helper()
	kh := mate.New()
	kh.Init()
	kh.Resize(1)
	return New(kh)
}

func TestParseSetOption(t *testing.T) {
	cases := []struct {
		args       []string
		name, value string
	}{
		{[]string{"name", "USI_Hash", "value", "256"}, "USI_Hash", "256"},
		{[]string{"name", "Multi", "Word", "Name", "value", "two", "words"}, "Multi Word Name", "two words"},
		{[]string{"name", "DepthLimit"}, "DepthLimit", ""},
	}
	for _, c := range cases {
		name, value := parseSetOption(c.args)
		if name != c.name || value != c.value {
			t.Errorf("parseSetOption(%v) = (%q, %q), want (%q, %q)", c.args, name, value, c.name, c.value)
		}
	}
}

func TestHandlePositionStartposMoves(t *testing.T) {
	u := newHandler(t)
	u.handlePosition([]string{"startpos", "moves", "7g7f"})

	if u.position.SideToMove != board.White {
		t.Fatalf("side to move = %v, want White after one move", u.position.SideToMove)
	}
	to, err := board.ParseSquare("7f")
	if err != nil {
		t.Fatalf("ParseSquare error: %v", err)
	}
	if u.position.Board[to] == board.NoPiece {
		t.Fatalf("square 7f empty after 7g7f")
	}
}

func TestHandlePositionSFEN(t *testing.T) {
	u := newHandler(t)
	u.handlePosition([]string{"sfen", "k8/9/1R7/9/9/9/9/9/9", "b", "G", "1"})

	if u.position.SideToMove != board.Black {
		t.Fatalf("side to move = %v, want Black", u.position.SideToMove)
	}
	if u.position.Hands[board.Black].Count(board.Gold) != 1 {
		t.Fatalf("black hand gold count = %d, want 1", u.position.Hands[board.Black].Count(board.Gold))
	}
}

func TestHandlePositionRejectsIllegalMove(t *testing.T) {
	u := newHandler(t)
	u.handlePosition([]string{"startpos", "moves", "7g7f", "5i5h"})

	// The illegal second move must leave the position untouched past the
	// point of failure; the handler bails before applying anything else.
	if u.position.SideToMove != board.White {
		t.Fatalf("side to move = %v, want White (only the legal prefix applied)", u.position.SideToMove)
	}
}

func TestIsPosOrNode(t *testing.T) {
	u := newHandler(t)
	if !u.isPosOrNode() {
		t.Fatal("startpos should default to an OR root")
	}

	// Attacker with no king is always the OR side, checked or not.
	u.handlePosition([]string{"sfen", "k8/9/1R7/9/9/9/9/9/9", "b", "G", "1"})
	u.rootIsAndNodeIfChecked = true
	if !u.isPosOrNode() {
		t.Fatal("a kingless side to move must be the OR side")
	}

	// Both kings on board, side to move in check, option set: AND root.
	u.handlePosition([]string{"sfen", "4k4/9/9/9/9/9/9/4r4/4K4", "b", "-", "1"})
	if u.isPosOrNode() {
		t.Fatal("a checked root with RootIsAndNodeIfChecked must be an AND root")
	}
	u.rootIsAndNodeIfChecked = false
	if !u.isPosOrNode() {
		t.Fatal("without the option a checked root stays an OR root")
	}
}
