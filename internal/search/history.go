package search

import "github.com/nullmove/sunshouse/internal/board"

// historyTable tracks how often a quiet move has caused a beta cutoff,
// indexed by color, piece type and destination square. It drives the
// "top square" ordering hint that movegen.GenerateNonCaptures uses to
// try a piece's historically best destination before its others.
type historyTable struct {
	score [2][6][64]int
}

const historyMax = 1 << 14

func (h *historyTable) update(pos *board.Position, m board.Move, depth int) {
	pt := m.MovedPiece().Type()
	us := pos.SideToMove
	to := m.To()
	h.score[us][pt][to] += depth * depth
	if h.score[us][pt][to] > historyMax {
		for c := board.White; c <= board.Black; c++ {
			for p := board.Pawn; p <= board.King; p++ {
				for sq := 0; sq < 64; sq++ {
					h.score[c][p][sq] /= 2
				}
			}
		}
	}
}

func (h *historyTable) age() {
	for c := board.White; c <= board.Black; c++ {
		for p := board.Pawn; p <= board.King; p++ {
			for sq := 0; sq < 64; sq++ {
				h.score[c][p][sq] /= 4
			}
		}
	}
}

// top returns, for each piece type of color us, its single
// highest-scoring destination square OR'd into one bitboard — the set
// GenerateNonCaptures treats as "try first" for every piece.
func (h *historyTable) top(us board.Color) board.Bitboard {
	var out board.Bitboard
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		best := -1
		bestSq := board.NoSquare
		for sq := 0; sq < 64; sq++ {
			if v := h.score[us][pt][sq]; v > best {
				best = v
				bestSq = board.Square(sq)
			}
		}
		if best > 0 && bestSq.IsValid() {
			out |= board.SquareBB(bestSq)
		}
	}
	return out
}

