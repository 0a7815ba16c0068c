// Package eval implements the static position evaluator: material (board
// and hand), piece development, board control, king safety scaled by the
// attacker's hand, and the holding/sit bonuses specific to Crazyhouse and
// Bughouse.
package eval

import (
	"github.com/nullmove/sunshouse/internal/board"
)

// boardControlZone excludes the outer two ranks/files from the board
// control term — attacks on the rim count for little.
var boardControlZone = board.BigCenter

const boardControlFactor = 2

// developmentTable holds White-oriented piece-square bonuses per piece
// type, mirrored across the rank axis for Black. Values are modest next
// to material since drops make classical development less decisive.
var developmentTable = [6][64]int{
	board.Pawn: {
		0, 5, 10, 25, 25, 10, 5, 0,
		0, 5, 10, 25, 25, 10, 5, 0,
		0, 5, 10, 25, 25, 10, 5, 0,
		0, 5, 10, 20, 20, 10, 5, 0,
		0, 5, 10, 20, 20, 10, 5, 0,
		0, 0, 5, 5, 5, 5, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.Knight: {
		-20, -10, 0, 5, 5, 0, -10, -20,
		-10, 0, 10, 15, 15, 10, 0, -10,
		0, 10, 15, 20, 20, 15, 10, 0,
		0, 10, 20, 20, 20, 20, 10, 0,
		0, 10, 20, 20, 20, 20, 10, 0,
		0, 10, 15, 20, 20, 15, 10, 0,
		-10, 0, 10, 15, 15, 10, 0, -10,
		-20, -10, 0, 5, 5, 0, -10, -20,
	},
	board.Bishop: {
		-10, 0, 0, 0, 0, 0, 0, -10,
		0, 5, 5, 10, 10, 5, 5, 0,
		0, 5, 10, 15, 15, 10, 5, 0,
		0, 10, 15, 15, 15, 15, 10, 0,
		0, 10, 15, 15, 15, 15, 10, 0,
		0, 5, 10, 15, 15, 10, 5, 0,
		0, 5, 5, 10, 10, 5, 5, 0,
		-10, 0, 0, 0, 0, 0, 0, -10,
	},
	board.Rook: {
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		5, 5, 10, 15, 15, 10, 5, 5,
		0, 0, 5, 10, 10, 5, 0, 0,
	},
	board.Queen: {
		-5, 0, 0, 5, 5, 0, 0, -5,
		0, 0, 5, 5, 5, 5, 0, 0,
		0, 5, 5, 10, 10, 5, 5, 0,
		5, 5, 10, 10, 10, 10, 5, 5,
		5, 5, 10, 10, 10, 10, 5, 5,
		0, 5, 5, 10, 10, 5, 5, 0,
		0, 0, 5, 5, 5, 5, 0, 0,
		-5, 0, 0, 5, 5, 0, 0, -5,
	},
	board.King: {
		20, 25, 5, 0, 0, 5, 25, 20,
		10, 10, -5, -15, -15, -5, 10, 10,
		-10, -20, -20, -25, -25, -20, -20, -10,
		-20, -30, -30, -35, -35, -30, -30, -20,
		-20, -30, -30, -35, -35, -30, -30, -20,
		-10, -20, -20, -25, -25, -20, -20, -10,
		10, 10, -5, -15, -15, -5, 10, 10,
		20, 25, 5, 0, 0, 5, 25, 20,
	},
}

// escapeValues maps a defender's attack count on a near-king square to
// the value of that square as an escape route: having two or more
// defenders on a square worth escaping to is barely better than one.
var escapeValues = [9]int{0, 4, 6, 7, 8, 8, 8, 8, 8}

// handBonus gives the bonus per piece type and count held, used by
// adjustInHand. Both arrays are indexed by PieceType; the bonus for a
// nonzero count is base + count*step, and count 0 contributes nothing.
var handBonusBase = [6]int{15, 20, 20, 20, 40, 0} // Pawn, Knight, Bishop, Rook, Queen, King
var handBonusStep = [6]int{7, 12, 12, 15, 20, 0}

func handBonus(pt board.PieceType, count int) int {
	if count == 0 {
		return 0
	}
	return handBonusBase[pt] + count*handBonusStep[pt]
}

// handMaterialBucket scales a king-safety score by how much material the
// attacking side holds in hand: a king is far less safe against an
// opponent who can drop a queen next to it. 9 buckets, nonlinear: the
// first piece in hand matters far more than the fifth.
var handMaterialBuckets = [9]int{100, 130, 155, 175, 190, 200, 207, 212, 216} // percent, /100

func handMaterialScale(handMaterial int) int {
	bucket := handMaterial / 100
	if bucket > 8 {
		bucket = 8
	}
	if bucket < 0 {
		bucket = 0
	}
	return handMaterialBuckets[bucket]
}

// Evaluate returns the static evaluation of pos from the side-to-move's
// perspective, summing material, development, board control, king
// safety, in-hand adjustment and (in Bughouse) the partner sit term.
func Evaluate(pos *board.Position, bughouse bool, partnerSitting bool) int {
	score := materialTerm(pos) +
		developmentTerm(pos) +
		boardControlTerm(pos) +
		-kingSafetyTerm(pos, board.White) + kingSafetyTerm(pos, board.Black) +
		adjustInHandTerm(pos)

	if bughouse {
		score += bughouseSitForTerm(pos, partnerSitting)
	}

	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// materialTerm sums board and hand material, white minus black.
func materialTerm(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		score += pos.Pieces[board.White][pt].PopCount() * board.PieceValue[pt]
		score -= pos.Pieces[board.Black][pt].PopCount() * board.PieceValue[pt]
		score += pos.Hand[board.White][pt] * board.PieceValue[pt]
		score -= pos.Hand[board.Black][pt] * board.PieceValue[pt]
	}
	return score
}

// developmentTerm sums piece-square bonuses, white minus black.
func developmentTerm(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt <= board.King; pt++ {
		bb := pos.Pieces[board.White][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			score += developmentTable[pt][sq]
		}
		bb = pos.Pieces[board.Black][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			score -= developmentTable[pt][sq.FlipRank()]
		}
	}
	return score
}

// boardControlTerm compares attack counts over the central zone.
func boardControlTerm(pos *board.Position) int {
	score := 0
	zone := boardControlZone
	for zone != 0 {
		sq := zone.PopLSB()
		score += int(pos.Attacks[board.White][sq]) - int(pos.Attacks[board.Black][sq])
	}
	return score * boardControlFactor
}

// kingSafetyTerm evaluates the safety of defender's king, returning a
// value that is positive when the king is in danger (i.e. bad for
// defender). The caller subtracts this when summing both sides so a
// dangerous White king lowers White's score and vice versa.
func kingSafetyTerm(pos *board.Position, defender board.Color) int {
	attacker := defender.Other()
	ksq := pos.KingSquare[defender]

	var taken, escape int
	near := board.NearSquares(ksq)
	for near != 0 {
		sq := near.PopLSB()
		ourAtt := int(pos.Attacks[defender][sq])
		oppAtt := int(pos.Attacks[attacker][sq])

		if oppAtt >= ourAtt {
			penalty := 2*(oppAtt-ourAtt) + 5
			if penalty > 0 {
				taken += penalty
			}
		} else if oppAtt == 0 {
			idx := ourAtt
			if idx > 8 {
				idx = 8
			}
			escape += escapeValues[idx]
		}
	}

	if escape > taken/2 {
		escape = taken / 2
	}

	danger := taken - escape
	if danger < 0 {
		danger = 0
	}

	handMaterial := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		handMaterial += pos.Hand[attacker][pt] * board.PieceValue[pt]
	}

	return danger * handMaterialScale(handMaterial) / 100
}

// adjustInHandTerm sums the per-piece hand bonus, white minus black.
func adjustInHandTerm(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		score += handBonus(pt, pos.Hand[board.White][pt])
		score -= handBonus(pt, pos.Hand[board.Black][pt])
	}
	return score
}

// bughouseSitForTerm rewards having a partner who is not under pressure
// to sit: for each piece type the opponent cannot easily drop (they hold
// none in hand), we gain a small bonus, symmetrically negated for the
// opponent's view of our partner. When partnerSitting is true our side
// is already being protected, so the bonus collapses to zero (there is
// nothing further to gain from the opponent's empty hand while we wait).
func bughouseSitForTerm(pos *board.Position, partnerSitting bool) int {
	if partnerSitting {
		return 0
	}

	const sitForBonus = 6
	score := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		if pos.Hand[board.Black][pt] == 0 {
			score += sitForBonus
		}
		if pos.Hand[board.White][pt] == 0 {
			score -= sitForBonus
		}
	}
	return score
}
