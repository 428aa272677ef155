package dfpn

import (
	"testing"

	"github.com/sanjo-shogi/mateengine/internal/board"
)

func TestAddPnDnSaturates(t *testing.T) {
	if got := AddPnDn(Inf, 5); got != Inf {
		t.Fatalf("AddPnDn(Inf, 5) = %d, want %d", got, Inf)
	}
	if got := AddPnDn(3, 4); got != 7 {
		t.Fatalf("AddPnDn(3, 4) = %d, want 7", got)
	}
}

func TestSubPnDnClampsAtZero(t *testing.T) {
	if got := SubPnDn(3, 5); got != 0 {
		t.Fatalf("SubPnDn(3, 5) = %d, want 0", got)
	}
	if got := SubPnDn(10, 4); got != 6 {
		t.Fatalf("SubPnDn(10, 4) = %d, want 6", got)
	}
}

func TestMateLenPrecSuccRoundTrip(t *testing.T) {
	l := MateLen{Plies: 5, ResidualHandCount: 3}
	if got := l.Succ().Prec(); got != l {
		t.Fatalf("Succ().Prec() = %+v, want %+v", got, l)
	}
	if got := l.Prec().Succ(); got != l {
		t.Fatalf("Prec().Succ() = %+v, want %+v", got, l)
	}
}

func TestMateLenPrecCarriesAcrossPlies(t *testing.T) {
	l := MateLen{Plies: 5, ResidualHandCount: 0}
	prec := l.Prec()
	if prec.Plies != 4 {
		t.Fatalf("Prec().Plies = %d, want 4", prec.Plies)
	}
	if !prec.Less(l) {
		t.Fatalf("%+v should sort before %+v", prec, l)
	}
}

func TestMateLenOrderingIsLexicographic(t *testing.T) {
	shorter := MateLen{Plies: 3, ResidualHandCount: 5}
	longer := MateLen{Plies: 4, ResidualHandCount: 0}
	if !shorter.Less(longer) {
		t.Fatal("expected fewer plies to sort first regardless of residual hand count")
	}
	if kZeroMateLen.Less(kZeroMateLen) {
		t.Fatal("a value must not be Less than itself")
	}
	if !kZeroMateLen.Less(kMaxMateLen) {
		t.Fatal("kZeroMateLen must sort before kMaxMateLen")
	}
}

func TestResultClassification(t *testing.T) {
	hand := board.Hand{}
	proven := ProvenResult(hand, MateLen{Plies: 3}, 10)
	if !proven.IsProven() || proven.IsDisproven() || !proven.IsFinal() {
		t.Fatalf("ProvenResult misclassified: %+v", proven)
	}

	disproven := DisprovenResult(hand, MateLen{Plies: 1}, 10)
	if !disproven.IsDisproven() || disproven.IsProven() || !disproven.IsFinal() {
		t.Fatalf("DisprovenResult misclassified: %+v", disproven)
	}

	budget := BudgetExhaustedResult(hand, MateLen{Plies: 1}, 10)
	if budget.IsFinal() {
		t.Fatalf("BudgetExhaustedResult must not be final: %+v", budget)
	}
	if !budget.Final.IsRepetition {
		t.Fatal("BudgetExhaustedResult must set IsRepetition")
	}
}
