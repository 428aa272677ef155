// Package usi implements the USI (Universal Shogi Interface) protocol
// dispatcher: the host-facing glue between stdin commands and the mate
// searcher. Only "go mate" runs a search; every other "go" answers
// "bestmove resign", since the engine never plays non-mate moves.
package usi

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sanjo-shogi/mateengine/internal/board"
	"github.com/sanjo-shogi/mateengine/internal/mate"
)

// USI is the protocol handler: one searcher, one current position, and
// the search/observer goroutine state for the in-flight "go mate".
type USI struct {
	kh       *mate.KomoringHeights
	position *board.Position

	pvIntervalMs           int
	rootIsAndNodeIfChecked bool

	searching  bool
	searchDone chan struct{}
	stop       atomic.Bool
}

// New creates a USI protocol handler around kh, which must already be
// initialized and resized.
func New(kh *mate.KomoringHeights) *USI {
	kh.OnInfo = func(info mate.UsiInfo) {
		fmt.Printf("info %s\n", info.String())
	}
	return &USI{
		kh:           kh,
		position:     board.NewPosition(),
		pvIntervalMs: 1000,
	}
}

// Run starts the USI main loop, reading commands from stdin until EOF
// or "quit".
func (u *USI) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "usi":
			u.handleUSI()
		case "isready":
			fmt.Println("readyok")
		case "usinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			fmt.Println(u.position.String())
		case "showvalues":
			u.handleShowValues(args)
		case "showpv":
			fmt.Print(u.kh.ShowPv(u.position, u.isPosOrNode()))
		}
	}
}

// handleUSI responds to the "usi" command.
func (u *USI) handleUSI() {
	fmt.Println("id name MateEngine")
	fmt.Println("id author MateEngine Team")
	fmt.Println()
	fmt.Println("option name USI_Hash type spin default 64 min 1 max 65536")
	fmt.Println("option name DepthLimit type spin default 0 min 0 max 10000")
	fmt.Println("option name NodesLimit type spin default 0 min 0 max 9223372036854775807")
	fmt.Println("option name PvInterval type spin default 1000 min 0 max 3600000")
	fmt.Println("option name YozumeNodeCount type spin default 300 min 0 max 1000000")
	fmt.Println("option name YozumePath type spin default 10000 min 0 max 100000000")
	fmt.Println("option name RootIsAndNodeIfChecked type check default false")
	fmt.Println("usiok")
}

// handleNewGame resets the position for a new game. The searcher's
// transposition table keeps whatever it learned; a host that wants a
// cold table sends setoption USI_Hash.
func (u *USI) handleNewGame() {
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves 7g7f 3c3d
//   - position sfen <sfen>
//   - position sfen <sfen> moves 7g7f
func (u *USI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	case "sfen":
		sfenEnd := len(args)
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				sfenEnd = i
				moveStart = i + 1
				break
			}
		}
		pos, err := board.ParseSFEN(strings.Join(args[1:sfenEnd], " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string Invalid SFEN: %v\n", err)
			return
		}
		u.position = pos
	default:
		return
	}

	for _, moveStr := range args[moveStart:] {
		move := u.matchLegalMove(moveStr)
		if move == board.NoMove {
			fmt.Fprintf(os.Stderr, "info string Invalid move: %s\n", moveStr)
			return
		}
		u.position.DoMove(move)
	}
}

// matchLegalMove parses a USI move string and matches it against the
// current position's legal moves.
func (u *USI) matchLegalMove(moveStr string) board.Move {
	move, err := board.ParseMove(moveStr)
	if err != nil {
		return board.NoMove
	}
	for _, m := range board.GenerateLegalMoves(u.position) {
		if m == move {
			return m
		}
	}
	return board.NoMove
}

// isPosOrNode resolves whether the current position is searched as an
// OR root: a side-to-move with no king is always the attacker, a
// defender with no king makes the root an AND node, and only when both
// kings are on the board does RootIsAndNodeIfChecked apply.
func (u *USI) isPosOrNode() bool {
	us := u.position.SideToMove
	if u.position.KingSquare[us] == board.NoSquare {
		return true
	}
	if u.position.KingSquare[us.Other()] == board.NoSquare {
		return false
	}
	if u.rootIsAndNodeIfChecked && u.position.InCheck(us) {
		return false
	}
	return true
}

// handleGo dispatches a "go" command. Only "go mate [<ms>|infinite]"
// searches; anything else resigns immediately.
func (u *USI) handleGo(args []string) {
	if len(args) == 0 || args[0] != "mate" {
		fmt.Println("bestmove resign")
		return
	}

	var timeout time.Duration
	if len(args) >= 2 && args[1] != "infinite" {
		ms, err := strconv.Atoi(args[1])
		if err != nil || ms < 0 {
			fmt.Fprintf(os.Stderr, "info string Invalid mate time: %s\n", args[1])
			return
		}
		timeout = time.Duration(ms) * time.Millisecond
	}

	u.searching = true
	u.stop.Store(false)
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()
	rootIsOrNode := u.isPosOrNode()

	go func() {
		defer close(u.searchDone)
		state := u.kh.Search(pos, rootIsOrNode, &u.stop)
		u.searching = false
		u.printResult(state)
	}()
	go u.observe(timeout)
}

// observe is the observer goroutine: 2ms samples for the first 100
// ticks, then 100ms, requesting an info line every PvInterval and
// setting the stop flag when the wall clock runs out.
func (u *USI) observe(timeout time.Duration) {
	start := time.Now()
	lastPrint := start
	pvInterval := time.Duration(u.pvIntervalMs) * time.Millisecond

	for tick := 0; ; tick++ {
		interval := 100 * time.Millisecond
		if tick < 100 {
			interval = 2 * time.Millisecond
		}
		select {
		case <-u.searchDone:
			return
		case <-time.After(interval):
		}

		now := time.Now()
		if timeout > 0 && now.Sub(start) >= timeout {
			u.stop.Store(true)
		}
		if pvInterval > 0 && now.Sub(lastPrint) >= pvInterval {
			lastPrint = now
			u.kh.SetPrintFlag()
		}
	}
}

// printResult emits the terminal line for a finished mate search.
func (u *USI) printResult(state mate.NodeState) {
	switch state {
	case mate.ProvenState:
		moves := u.kh.BestMoves()
		parts := make([]string, 0, len(moves))
		for _, m := range moves {
			parts = append(parts, m.String())
		}
		fmt.Printf("checkmate %s\n", strings.Join(parts, " "))
	case mate.DisprovenState:
		fmt.Println("checkmate nomate")
	default:
		fmt.Println("checkmate timeout")
	}
}

// handleStop stops the current search and waits for its terminal line.
func (u *USI) handleStop() {
	if u.searching {
		u.stop.Store(true)
		<-u.searchDone
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *USI) handleSetOption(args []string) {
	name, value := parseSetOption(args)

	switch strings.ToLower(name) {
	case "usi_hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			fmt.Fprintf(os.Stderr, "info string Invalid USI_Hash: %s\n", value)
			return
		}
		u.kh.Resize(mb)
	case "depthlimit":
		if d, err := strconv.Atoi(value); err == nil && d >= 0 {
			u.kh.SetMaxDepth(d)
		}
	case "nodeslimit":
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			u.kh.SetMaxSearchNode(n)
		}
	case "pvinterval":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			u.pvIntervalMs = ms
		}
	case "yozumenodecount":
		if n, err := strconv.Atoi(value); err == nil {
			u.kh.SetYozumeCount(n)
		}
	case "yozumepath":
		if n, err := strconv.Atoi(value); err == nil {
			u.kh.SetYozumePath(n)
		}
	case "rootisandnodeifchecked":
		b := strings.ToLower(value) == "true"
		u.rootIsAndNodeIfChecked = b
		u.kh.SetRootIsAndNodeIfChecked(b)
	}
}

// parseSetOption extracts the name and value tokens, each of which may
// span multiple words.
func parseSetOption(args []string) (name, value string) {
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}
	return name, value
}

// handleShowValues parses its arguments as a move sequence from the
// current position and prints the cached result of every legal move at
// the end of it.
func (u *USI) handleShowValues(args []string) {
	pos := u.position.Copy()
	var moves []board.Move
	for _, moveStr := range args {
		move, err := board.ParseMove(moveStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string Invalid move: %s\n", moveStr)
			return
		}
		legal := false
		for _, m := range board.GenerateLegalMoves(pos) {
			if m == move {
				legal = true
				break
			}
		}
		if !legal {
			fmt.Fprintf(os.Stderr, "info string Illegal move: %s\n", moveStr)
			return
		}
		pos.DoMove(move)
		moves = append(moves, move)
	}
	fmt.Print(u.kh.ShowValues(u.position, u.isPosOrNode(), moves))
}
