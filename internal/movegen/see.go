package movegen

import "github.com/nullmove/sunshouse/internal/board"

// winningSEEThreshold is the cutoff above which a capture is "winning"
// rather than merely "not obviously losing": captures scoring at or above
// this are tried in the shallow-node capture pass and as quiescence
// extensions (see spec.md §4.3/4.5).
const winningSEEThreshold = 20

// SEE computes the Static Exchange Evaluation of a capture move: the
// material balance if both sides trade off on the destination square
// using their cheapest available attacker at each step, including
// x-ray attackers uncovered as pieces leave the line.
func SEE(p *board.Position, m board.Move) int {
	to := m.To()
	us := p.SideToMove
	them := us.Other()

	var gain [32]int
	depth := 0

	var captured board.PieceType
	if m.IsEnPassant(p) {
		captured = board.Pawn
	} else {
		captured = p.PieceAt(to).Type()
	}
	gain[0] = board.PieceValue[captured]

	attacker := m.MovedPiece().Type()
	attackerValue := board.PieceValue[attacker]

	occ := p.AllOccupied
	if !m.IsDrop() {
		occ &^= board.SquareBB(m.From())
	}
	if m.IsEnPassant(p) {
		var capSq board.Square
		if us == board.White {
			capSq = board.Square(int(to) - 1)
		} else {
			capSq = board.Square(int(to) + 1)
		}
		occ &^= board.SquareBB(capSq)
	}
	occ |= board.SquareBB(to)

	side := them
	lastValue := attackerValue

	for {
		attackers := p.AttackersByColor(to, side, occ)
		if attackers == 0 {
			break
		}
		from, pt := leastValuableAttacker(p, attackers, side)
		depth++
		gain[depth] = lastValue - gain[depth-1]
		if max(-gain[depth-1], gain[depth]) < 0 {
			// Pruned: even winning this exchange step can't recover the
			// loss already taken, so the sequence is settled.
			depth--
			break
		}
		occ &^= board.SquareBB(from)
		occ |= board.SquareBB(to)
		lastValue = board.PieceValue[pt]
		side = side.Other()
	}

	for depth > 0 {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
		depth--
	}

	return gain[0]
}

// leastValuableAttacker picks the cheapest piece of color side among
// attackers (a bitboard of that color's attackers of the target square).
func leastValuableAttacker(p *board.Position, attackers board.Bitboard, side board.Color) (board.Square, board.PieceType) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		bb := attackers & p.Pieces[side][pt]
		if bb != 0 {
			return bb.LSB(), pt
		}
	}
	return board.NoSquare, board.NoPieceType
}

// orderBySEE sorts a capture list descending by SEE score, in place,
// via a simple insertion sort (capture lists are short; this keeps the
// ordering stable).
func orderBySEE(p *board.Position, ml *board.MoveList) {
	n := ml.Len()
	scores := make([]int, n)
	for i := 0; i < n; i++ {
		scores[i] = SEE(p, ml.Get(i))
	}
	for i := 1; i < n; i++ {
		mv, sc := ml.Get(i), scores[i]
		j := i - 1
		for j >= 0 && scores[j] < sc {
			ml.Set(j+1, ml.Get(j))
			scores[j+1] = scores[j]
			j--
		}
		ml.Set(j+1, mv)
		scores[j+1] = sc
	}
}

// IsWinningCapture reports whether m's SEE score clears the winning
// threshold used to gate the shallow-node capture pass and quiescence.
func IsWinningCapture(p *board.Position, m board.Move) bool {
	return SEE(p, m) >= winningSEEThreshold
}
