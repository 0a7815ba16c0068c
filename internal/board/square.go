// Package board implements the Crazyhouse/Bughouse board model: bitboard
// piece placement, hands, castling, en passant, promoted-pawn tracking and
// an incrementally maintained attack-count table.
package board

import "fmt"

// Square represents a square on the chess board (0-63), plus a handful of
// reserved non-board values.
//
// Files occupy the high 3 bits, ranks the low 3 bits: sq = file*8 + rank.
// Incrementing a square by 1 moves one rank; by 8 moves one file. This is
// deliberately the mirror of the usual rank*8+file (LERF) layout.
const (
	A1 Square = iota
	A2
	A3
	A4
	A5
	A6
	A7
	A8
	B1
	B2
	B3
	B4
	B5
	B6
	B7
	B8
	C1
	C2
	C3
	C4
	C5
	C6
	C7
	C8
	D1
	D2
	D3
	D4
	D5
	D6
	D7
	D8
	E1
	E2
	E3
	E4
	E5
	E6
	E7
	E8
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	G1
	G2
	G3
	G4
	G5
	G6
	G7
	G8
	H1
	H2
	H3
	H4
	H5
	H6
	H7
	H8
)

// Square addresses a board square, or one of the reserved sentinel values
// below.
type Square uint8

const (
	// InHand marks the origin square of a drop move (from == InHand).
	InHand Square = 65
	// OffBoard is the sentinel for an absent en-passant square.
	OffBoard Square = 66
	// NoSquare marks an absent/unknown square.
	NoSquare Square = 64
)

// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) >> 3
}

// Rank returns the rank (row) of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) & 7
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq == InHand {
		return "@"
	}
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(file*8 + rank)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < 64
}

// mirrorSq swaps file and rank, i.e. maps the file-contiguous board onto the
// rank-contiguous one. Used to read rank attacks out of a board stored in
// file-major order (see attacks.go).
func mirrorSq(sq Square) Square {
	return Square(((sq & 7) << 3) | (sq >> 3))
}

// FlipRank mirrors a square across the rank axis (keeps file, flips rank),
// the standard trick for reusing a White-oriented piece-square table from
// Black's perspective.
func (sq Square) FlipRank() Square {
	return NewSquare(sq.File(), 7-sq.Rank())
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}
