package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sanjo-shogi/mateengine/internal/key128"
)

// StartSFEN is the SFEN string for the standard shogi starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// handOrder is the conventional SFEN hand-piece ordering, most to least
// valuable, used when serializing.
var handOrder = [NumHandPieceTypes]PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// ParseSFEN parses a SFEN record: board, side to move, and hand. A
// trailing move-number field is accepted but ignored.
func ParseSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid SFEN: need at least 3 fields, got %d", len(fields))
	}

	pos := &Position{}
	for i := range pos.Board {
		pos.Board[i] = NoPiece
	}
	pos.KingSquare[Black] = NoSquare
	pos.KingSquare[White] = NoSquare

	if err := parseSFENBoard(pos, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "b":
		pos.SideToMove = Black
	case "w":
		pos.SideToMove = White
	default:
		return nil, fmt.Errorf("invalid SFEN side to move: %q", fields[1])
	}

	if err := parseSFENHand(pos, fields[2]); err != nil {
		return nil, err
	}

	pos.Key = computeKeyFromScratch(pos)
	return pos, nil
}

func parseSFENBoard(pos *Position, field string) error {
	rows := strings.Split(field, "/")
	if len(rows) != 9 {
		return fmt.Errorf("invalid SFEN board: need 9 ranks, got %d", len(rows))
	}
	for rank, row := range rows {
		file := 0
		promoted := false
		for i := 0; i < len(row); i++ {
			c := row[i]
			switch {
			case c == '+':
				promoted = true
			case c >= '1' && c <= '9':
				n, err := strconv.Atoi(string(c))
				if err != nil {
					return err
				}
				file += n
				promoted = false
			default:
				if file >= 9 {
					return fmt.Errorf("invalid SFEN board: rank %d overflows", rank)
				}
				pt, color, err := pieceFromSFENLetter(c)
				if err != nil {
					return err
				}
				if promoted {
					pt = pt.Promote()
				}
				sq := NewSquare(file, rank)
				pos.Board[sq] = NewPiece(pt, color)
				if pt == King {
					pos.KingSquare[color] = sq
				}
				file++
				promoted = false
			}
		}
	}
	return nil
}

func parseSFENHand(pos *Position, field string) error {
	if field == "-" {
		return nil
	}
	count := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c >= '1' && c <= '9' {
			count = count*10 + int(c-'0')
			continue
		}
		pt, color, err := pieceFromSFENLetter(c)
		if err != nil {
			return err
		}
		if count == 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			pos.Hands[color].Add(pt)
		}
		count = 0
	}
	return nil
}

func pieceFromSFENLetter(c byte) (PieceType, Color, error) {
	color := Black
	letter := c
	if c >= 'a' && c <= 'z' {
		color = White
		letter = c - 'a' + 'A'
	}
	pt, ok := letterToPieceType(letter)
	if !ok {
		return NoPieceType, NoColor, fmt.Errorf("invalid SFEN piece letter: %q", string(c))
	}
	return pt, color, nil
}

func letterToPieceType(c byte) (PieceType, bool) {
	if pt, ok := pieceTypeFromUSILetter(c); ok {
		return pt, true
	}
	if c == 'K' {
		return King, true
	}
	return NoPieceType, false
}

// ToSFEN serializes pos to a SFEN board/turn/hand record (without a move
// number, which the mate-search core never needs).
func (pos *Position) ToSFEN() string {
	var b strings.Builder
	for rank := 0; rank < 9; rank++ {
		if rank > 0 {
			b.WriteByte('/')
		}
		empty := 0
		for file := 0; file < 9; file++ {
			p := pos.Board[NewSquare(file, rank)]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(sfenPieceLetter(p))
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
	}

	b.WriteByte(' ')
	if pos.SideToMove == Black {
		b.WriteByte('b')
	} else {
		b.WriteByte('w')
	}

	b.WriteByte(' ')
	hand := sfenHand(pos)
	if hand == "" {
		b.WriteByte('-')
	} else {
		b.WriteString(hand)
	}

	return b.String()
}

func sfenPieceLetter(p Piece) string {
	s := p.Type().String()
	if p.Color() == White {
		return strings.ToLower(s)
	}
	return s
}

func sfenHand(pos *Position) string {
	var b strings.Builder
	for _, c := range [2]Color{Black, White} {
		for _, pt := range handOrder {
			n := pos.Hands[c].Count(pt)
			if n == 0 {
				continue
			}
			if n > 1 {
				b.WriteString(strconv.Itoa(n))
			}
			letter := pt.String()
			if c == White {
				letter = strings.ToLower(letter)
			}
			b.WriteString(letter)
		}
	}
	return b.String()
}

// computeKeyFromScratch derives pos.Key from Board, Hands and
// SideToMove. Used when constructing a Position outside of DoMove's
// incremental maintenance.
func computeKeyFromScratch(pos *Position) key128.Key {
	var k key128.Key
	for sq := Square(0); sq < NumSquares; sq++ {
		p := pos.Board[sq]
		if p == NoPiece {
			continue
		}
		k = k.Xor(zobristPiece[p.Color()][p.Type()][sq])
	}
	for _, c := range [2]Color{Black, White} {
		for i, pt := range HandPieceTypes {
			n := pos.Hands[c].Count(pt)
			k = k.Xor(handKey(c, i, n))
		}
	}
	if pos.SideToMove == White {
		k = k.Xor(zobristSideToMove)
	}
	return k
}
