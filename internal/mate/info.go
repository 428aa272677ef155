package mate

import (
	"fmt"
	"strings"

	"github.com/sanjo-shogi/mateengine/internal/dfpn"
)

// NodeState is the three-way outcome Search reports.
type NodeState int

const (
	// NullState means the search neither proved nor disproved the root
	// before stopping (budget exhaustion).
	NullState NodeState = iota
	ProvenState
	DisprovenState
)

func (s NodeState) String() string {
	switch s {
	case ProvenState:
		return "proven"
	case DisprovenState:
		return "disproven"
	default:
		return "null"
	}
}

// Score is the user-facing evaluation MakeScore would map a
// SearchResult onto. There is no meaningful pn/dn-to-centipawn mapping
// for a binary proof search, so the type carries nothing.
type Score struct{}

// MakeScore is deliberately empty; see Score's doc comment.
func MakeScore(r dfpn.SearchResult, rootIsOrNode bool) Score {
	return Score{}
}

// UsiInfo is the bundle behind a USI "info" line: seldepth, depth,
// time, nodes, nps, hashfull, score, pv. Fields are plain struct
// members rather than a map, since the set is fixed and known at
// compile time.
type UsiInfo struct {
	SelDepth int
	Depth    int
	TimeMs   int64
	Nodes    uint64
	Nps      uint64
	Hashfull int
	Score    Score
	Pv       string
}

// String formats info as a USI "info ..." line body, without the
// leading "info " token (the protocol layer owns the framing).
func (info UsiInfo) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	if info.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %d", info.SelDepth))
	}
	parts = append(parts, fmt.Sprintf("time %d", info.TimeMs))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("nps %d", info.Nps))
	if info.Hashfull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.Hashfull))
	}
	if info.Pv != "" {
		parts = append(parts, "pv "+info.Pv)
	}
	return strings.Join(parts, " ")
}
