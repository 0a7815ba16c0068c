// Package movegen produces pseudo-legal and legal move lists for a
// Crazyhouse/Bughouse position: the four-tier ordering scheme (hash move,
// captures, mate tries, non-captures), the fifth skipped-promotions pass,
// check-evasion generation, and Static Exchange Evaluation used to order
// and prune captures.
package movegen

import "github.com/nullmove/sunshouse/internal/board"

func init() {
	board.SetLegalMovesProbe(HasLegalMove)
}

// IsLegal reports whether pseudo-legal move m, played in p, leaves the
// mover's own king safe. It makes the move, reads the incrementally
// maintained attack count on the king's square (O(1), no re-scan), then
// unmakes — the "make/unmake plus isInCheck of the previous mover" test.
func IsLegal(p *board.Position, m board.Move) bool {
	ksq := p.KingSquare[p.SideToMove]
	if !m.IsDrop() && m.MovedPiece().Type() == board.King {
		ksq = m.To()
	}
	undo := p.MakeMove(m)
	illegal := p.Attacks[p.SideToMove][ksq] > 0
	p.UnmakeMove(m, undo)
	return !illegal
}

// HasLegalMove reports whether the side to move has at least one legal
// move, short-circuiting on the first one found.
func HasLegalMove(p *board.Position) bool {
	var ml *board.MoveList
	if p.InCheck() {
		ml = GenerateEvasions(p)
	} else {
		ml = NewPseudoLegalList(p)
	}
	for i := 0; i < ml.Len(); i++ {
		if IsLegal(p, ml.Get(i)) {
			return true
		}
	}
	return false
}

// GenerateLegal returns every legal move in the position, in no
// particular tier order; used by perft and by callers (the root search,
// SAN parsing) that just need the full legal set.
func GenerateLegal(p *board.Position) *board.MoveList {
	var pseudo *board.MoveList
	if p.InCheck() {
		pseudo = GenerateEvasions(p)
	} else {
		pseudo = NewPseudoLegalList(p)
	}
	out := board.NewMoveList()
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if IsLegal(p, m) {
			out.Add(m)
		}
	}
	return out
}

// NewPseudoLegalList concatenates every non-evasion tier (captures +
// Q/N promotions, non-captures, skipped R/B promotions) into one list,
// without SEE ordering. Mate tries are not added separately: every mate
// try is already a non-capture. Used by perft and HasLegalMove, where
// tier order doesn't matter.
func NewPseudoLegalList(p *board.Position) *board.MoveList {
	ml := board.NewMoveList()
	generateCaptures(p, ml, true)
	generateNonCaptures(p, ml, nil)
	generateSkippedPromotions(p, ml)
	return ml
}

func addPromotions(ml *board.MoveList, from, to board.Square, piece board.Piece, includeMinor bool) {
	ml.Add(board.NewPromotion(from, to, piece, board.Queen))
	ml.Add(board.NewPromotion(from, to, piece, board.Knight))
	if includeMinor {
		ml.Add(board.NewPromotion(from, to, piece, board.Rook))
		ml.Add(board.NewPromotion(from, to, piece, board.Bishop))
	}
}

// pawnPushDelta returns the +1/-1 square delta of a single forward push
// for color c (a rank step, since rank is the low bit here).
func pawnPushDelta(c board.Color) int {
	if c == board.White {
		return 1
	}
	return -1
}

// GenerateCaptures returns tier 2: every capture (including en passant)
// plus promotions to queen/knight, legal-filtered and SEE-ordered
// descending.
func GenerateCaptures(p *board.Position) *board.MoveList {
	ml := board.NewMoveList()
	generateCaptures(p, ml, true)
	legal := filterLegal(p, ml)
	orderBySEE(p, legal)
	return legal
}

// generateCaptures appends capture moves (and, if includePromoQN, the
// queen/knight promotion pushes, which the spec groups into tier 2 since
// they are forcing) to ml.
func generateCaptures(p *board.Position, ml *board.MoveList, includePromoQN bool) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occ := p.AllOccupied

	pawns := p.Pieces[us][board.Pawn]
	pawnPiece := board.NewPiece(board.Pawn, us)
	var attackL, attackR, pushPromo board.Bitboard
	var promoRank board.Bitboard
	if us == board.White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		pushPromo = pawns.North() & ^occ & board.Rank8
		promoRank = board.Rank8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		pushPromo = pawns.South() & ^occ & board.Rank1
		promoRank = board.Rank1
	}

	emit := func(attacks board.Bitboard, fileDelta int) {
		nonPromo := attacks & ^promoRank
		for nonPromo != 0 {
			to := nonPromo.PopLSB()
			from := board.NewSquare(to.File()-fileDelta, to.Rank()-pawnPushDelta(us))
			ml.Add(board.NewMove(from, to, pawnPiece))
		}
		if includePromoQN {
			promo := attacks & promoRank
			for promo != 0 {
				to := promo.PopLSB()
				from := board.NewSquare(to.File()-fileDelta, to.Rank()-pawnPushDelta(us))
				addPromotions(ml, from, to, pawnPiece, false)
			}
		}
	}
	emit(attackL, -1)
	emit(attackR, 1)

	if includePromoQN {
		for pushPromo != 0 {
			to := pushPromo.PopLSB()
			from := board.NewSquare(to.File(), to.Rank()-pawnPushDelta(us))
			addPromotions(ml, from, to, pawnPiece, false)
		}
	}

	if p.EnPassant != board.OffBoard {
		epBB := board.SquareBB(p.EnPassant)
		var epAttackers board.Bitboard
		if us == board.White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(board.NewMove(from, p.EnPassant, pawnPiece))
		}
	}

	addPieceCaptures := func(pt board.PieceType, attacksFn func(board.Square) board.Bitboard) {
		bb := p.Pieces[us][pt]
		piece := board.NewPiece(pt, us)
		for bb != 0 {
			from := bb.PopLSB()
			atk := attacksFn(from) & enemies
			for atk != 0 {
				to := atk.PopLSB()
				ml.Add(board.NewMove(from, to, piece))
			}
		}
	}
	addPieceCaptures(board.Knight, board.KnightAttacks)
	addPieceCaptures(board.Bishop, func(sq board.Square) board.Bitboard { return board.BishopAttacks(sq, occ) })
	addPieceCaptures(board.Rook, func(sq board.Square) board.Bitboard { return board.RookAttacks(sq, occ) })
	addPieceCaptures(board.Queen, func(sq board.Square) board.Bitboard { return board.QueenAttacks(sq, occ) })

	from := p.KingSquare[us]
	kAtk := board.KingAttacks(from) & enemies
	king := board.NewPiece(board.King, us)
	for kAtk != 0 {
		to := kAtk.PopLSB()
		ml.Add(board.NewMove(from, to, king))
	}
}

// generateSkippedPromotions appends tier 5: promotions to rook/bishop.
func generateSkippedPromotions(p *board.Position, ml *board.MoveList) {
	us := p.SideToMove
	them := us.Other()
	occ := p.AllOccupied
	empty := ^occ
	enemies := p.Occupied[them]
	pawns := p.Pieces[us][board.Pawn]
	pawnPiece := board.NewPiece(board.Pawn, us)

	var push, attackL, attackR board.Bitboard
	if us == board.White {
		push = pawns.North() & empty & board.Rank8
		attackL = pawns.NorthWest() & enemies & board.Rank8
		attackR = pawns.NorthEast() & enemies & board.Rank8
	} else {
		push = pawns.South() & empty & board.Rank1
		attackL = pawns.SouthWest() & enemies & board.Rank1
		attackR = pawns.SouthEast() & enemies & board.Rank1
	}

	for push != 0 {
		to := push.PopLSB()
		from := board.NewSquare(to.File(), to.Rank()-pawnPushDelta(us))
		ml.Add(board.NewPromotion(from, to, pawnPiece, board.Rook))
		ml.Add(board.NewPromotion(from, to, pawnPiece, board.Bishop))
	}
	for attackL != 0 {
		to := attackL.PopLSB()
		from := board.NewSquare(to.File()-1, to.Rank()-pawnPushDelta(us))
		ml.Add(board.NewPromotion(from, to, pawnPiece, board.Rook))
		ml.Add(board.NewPromotion(from, to, pawnPiece, board.Bishop))
	}
	for attackR != 0 {
		to := attackR.PopLSB()
		from := board.NewSquare(to.File()+1, to.Rank()-pawnPushDelta(us))
		ml.Add(board.NewPromotion(from, to, pawnPiece, board.Rook))
		ml.Add(board.NewPromotion(from, to, pawnPiece, board.Bishop))
	}
}

// GenerateMateTries returns tier 3: moves/drops of queen, rook, bishop or
// knight to a square adjacent-or-leaping to the enemy king, where the
// moved piece survives (attacks[us][to] >= 1 and attacks[opp][to] <= 1,
// or, for a knight destination, attacks[opp][to] == 0), plus
// check-giving pawn drops.
func GenerateMateTries(p *board.Position) *board.MoveList {
	ml := board.NewMoveList()
	us := p.SideToMove
	them := us.Other()
	oppKing := p.KingSquare[them]
	occ := p.AllOccupied
	empty := ^occ

	survivesSlider := func(to board.Square) bool {
		return p.Attacks[us][to] >= 1 && p.Attacks[them][to] <= 1
	}
	survivesKnight := func(to board.Square) bool {
		return p.Attacks[them][to] == 0
	}

	tryBoardMoves := func(pt board.PieceType, contactFn func(board.Square) board.Bitboard, survives func(board.Square) bool) {
		bb := p.Pieces[us][pt]
		piece := board.NewPiece(pt, us)
		targets := contactFn(oppKing)
		for bb != 0 {
			from := bb.PopLSB()
			var reach board.Bitboard
			switch pt {
			case board.Queen:
				reach = board.QueenAttacks(from, occ)
			case board.Rook:
				reach = board.RookAttacks(from, occ)
			case board.Bishop:
				reach = board.BishopAttacks(from, occ)
			case board.Knight:
				reach = board.KnightAttacks(from)
			}
			dests := reach & targets & empty
			for dests != 0 {
				to := dests.PopLSB()
				if survives(to) {
					ml.Add(board.NewMove(from, to, piece))
				}
			}
		}
	}
	tryBoardMoves(board.Queen, board.ContactQueenAttacks, survivesSlider)
	tryBoardMoves(board.Rook, board.ContactRookAttacks, survivesSlider)
	tryBoardMoves(board.Bishop, board.ContactBishopAttacks, survivesSlider)
	tryBoardMoves(board.Knight, board.ContactKnightAttacks, survivesKnight)

	tryDrops := func(pt board.PieceType, contactFn func(board.Square) board.Bitboard, survives func(board.Square) bool) {
		if p.Hand[us][pt] == 0 {
			return
		}
		piece := board.NewPiece(pt, us)
		dests := contactFn(oppKing) & empty
		for dests != 0 {
			to := dests.PopLSB()
			if survives(to) {
				ml.Add(board.NewDrop(to, piece))
			}
		}
	}
	tryDrops(board.Queen, board.ContactQueenAttacks, survivesSlider)
	tryDrops(board.Rook, board.ContactRookAttacks, survivesSlider)
	tryDrops(board.Bishop, board.ContactBishopAttacks, survivesSlider)
	tryDrops(board.Knight, board.ContactKnightAttacks, survivesKnight)

	if p.Hand[us][board.Pawn] > 0 {
		pawnPiece := board.NewPiece(board.Pawn, us)
		checkSquares := board.PawnAttacks(oppKing, them) & empty &^ (board.Rank1 | board.Rank8)
		for checkSquares != 0 {
			to := checkSquares.PopLSB()
			ml.Add(board.NewDrop(to, pawnPiece))
		}
	}

	return filterLegal(p, ml)
}

// GenerateNonCaptures returns tier 4: quiet piece moves, pawn pushes, and
// drops, with a piece's destinations in historyTop emitted before its
// other destinations.
func GenerateNonCaptures(p *board.Position, historyTop board.Bitboard) *board.MoveList {
	ml := board.NewMoveList()
	generateNonCaptures(p, ml, &historyTop)
	return filterLegal(p, ml)
}

func generateNonCaptures(p *board.Position, ml *board.MoveList, historyTop *board.Bitboard) {
	us := p.SideToMove
	them := us.Other()
	occ := p.AllOccupied
	empty := ^occ

	pawns := p.Pieces[us][board.Pawn]
	pawnPiece := board.NewPiece(board.Pawn, us)
	var push1, push2 board.Bitboard
	var promoRank board.Bitboard
	if us == board.White {
		push1 = pawns.North() & empty
		push2 = (push1 & board.Rank3).North() & empty
		promoRank = board.Rank8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & board.Rank6).South() & empty
		promoRank = board.Rank1
	}
	nonPromoPush := push1 & ^promoRank
	for nonPromoPush != 0 {
		to := nonPromoPush.PopLSB()
		from := board.NewSquare(to.File(), to.Rank()-pawnPushDelta(us))
		ml.Add(board.NewMove(from, to, pawnPiece))
	}
	for push2 != 0 {
		to := push2.PopLSB()
		from := board.NewSquare(to.File(), to.Rank()-2*pawnPushDelta(us))
		ml.Add(board.NewMove(from, to, pawnPiece))
	}

	emitPieceQuiets := func(pt board.PieceType, attacksFn func(board.Square) board.Bitboard) {
		bb := p.Pieces[us][pt]
		piece := board.NewPiece(pt, us)
		for bb != 0 {
			from := bb.PopLSB()
			dests := attacksFn(from) & empty
			var top, rest board.Bitboard
			if historyTop != nil {
				top = dests & *historyTop
				rest = dests &^ *historyTop
			} else {
				rest = dests
			}
			for top != 0 {
				to := top.PopLSB()
				ml.Add(board.NewMove(from, to, piece))
			}
			for rest != 0 {
				to := rest.PopLSB()
				ml.Add(board.NewMove(from, to, piece))
			}
		}
	}
	emitPieceQuiets(board.Knight, board.KnightAttacks)
	emitPieceQuiets(board.Bishop, func(sq board.Square) board.Bitboard { return board.BishopAttacks(sq, occ) })
	emitPieceQuiets(board.Rook, func(sq board.Square) board.Bitboard { return board.RookAttacks(sq, occ) })
	emitPieceQuiets(board.Queen, func(sq board.Square) board.Bitboard { return board.QueenAttacks(sq, occ) })

	from := p.KingSquare[us]
	king := board.NewPiece(board.King, us)
	kDests := board.KingAttacks(from) & empty
	for kDests != 0 {
		to := kDests.PopLSB()
		ml.Add(board.NewMove(from, to, king))
	}
	generateCastling(p, ml, us, them)

	for pt := board.Pawn; pt <= board.Queen; pt++ {
		if p.Hand[us][pt] == 0 {
			continue
		}
		piece := board.NewPiece(pt, us)
		dests := empty
		if pt == board.Pawn {
			dests &^= board.Rank1 | board.Rank8
		}
		for dests != 0 {
			to := dests.PopLSB()
			ml.Add(board.NewDrop(to, piece))
		}
	}
}

func generateCastling(p *board.Position, ml *board.MoveList, us, them board.Color) {
	if us == board.White {
		if p.CastlingRights&board.WhiteKingSideCastle != 0 &&
			p.AllOccupied&(board.SquareBB(board.F1)|board.SquareBB(board.G1)) == 0 &&
			!p.IsSquareAttacked(board.E1, them) && !p.IsSquareAttacked(board.F1, them) && !p.IsSquareAttacked(board.G1, them) {
			ml.Add(board.NewMove(board.E1, board.G1, board.NewPiece(board.King, us)))
		}
		if p.CastlingRights&board.WhiteQueenSideCastle != 0 &&
			p.AllOccupied&(board.SquareBB(board.B1)|board.SquareBB(board.C1)|board.SquareBB(board.D1)) == 0 &&
			!p.IsSquareAttacked(board.E1, them) && !p.IsSquareAttacked(board.D1, them) && !p.IsSquareAttacked(board.C1, them) {
			ml.Add(board.NewMove(board.E1, board.C1, board.NewPiece(board.King, us)))
		}
		return
	}
	if p.CastlingRights&board.BlackKingSideCastle != 0 &&
		p.AllOccupied&(board.SquareBB(board.F8)|board.SquareBB(board.G8)) == 0 &&
		!p.IsSquareAttacked(board.E8, them) && !p.IsSquareAttacked(board.F8, them) && !p.IsSquareAttacked(board.G8, them) {
		ml.Add(board.NewMove(board.E8, board.G8, board.NewPiece(board.King, us)))
	}
	if p.CastlingRights&board.BlackQueenSideCastle != 0 &&
		p.AllOccupied&(board.SquareBB(board.B8)|board.SquareBB(board.C8)|board.SquareBB(board.D8)) == 0 &&
		!p.IsSquareAttacked(board.E8, them) && !p.IsSquareAttacked(board.D8, them) && !p.IsSquareAttacked(board.C8, them) {
		ml.Add(board.NewMove(board.E8, board.C8, board.NewPiece(board.King, us)))
	}
}

// GenerateEvasions generates the check-evasion move set: with a single
// checker, captures of the checker (king included, guarded against
// attacked destinations) plus interpositions on the ray between king and
// checker; with multiple checkers, king flight moves only.
func GenerateEvasions(p *board.Position) *board.MoveList {
	ml := board.NewMoveList()
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	checkers := p.Checkers

	kingMoves := board.KingAttacks(ksq) & ^p.Occupied[us]
	occWithoutKing := p.AllOccupied &^ board.SquareBB(ksq)
	king := board.NewPiece(board.King, us)
	for kingMoves != 0 {
		to := kingMoves.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) == 0 {
			ml.Add(board.NewMove(ksq, to, king))
		}
	}

	if checkers.PopCount() > 1 {
		return ml
	}

	checkerSq := checkers.LSB()
	blockSquares := board.SquaresTo(ksq, checkerSq) &^ board.SquareBB(ksq)

	attackersOfChecker := p.AttackersByColor(checkerSq, us, p.AllOccupied) &^ p.Pieces[us][board.King]
	for attackersOfChecker != 0 {
		from := attackersOfChecker.PopLSB()
		piece := p.PieceAt(from)
		if piece.Type() == board.Pawn && checkerSq.RelativeRank(us) == 7 {
			addPromotions(ml, from, checkerSq, piece, true)
		} else {
			ml.Add(board.NewMove(from, checkerSq, piece))
		}
	}

	if p.EnPassant != board.OffBoard {
		var epCapturedSq board.Square
		if us == board.White {
			epCapturedSq = board.Square(int(p.EnPassant) - 1)
		} else {
			epCapturedSq = board.Square(int(p.EnPassant) + 1)
		}
		if epCapturedSq == checkerSq {
			pawns := p.Pieces[us][board.Pawn]
			epBB := board.SquareBB(p.EnPassant)
			var epAttackers board.Bitboard
			if us == board.White {
				epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
			} else {
				epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
			}
			for epAttackers != 0 {
				from := epAttackers.PopLSB()
				ml.Add(board.NewMove(from, p.EnPassant, board.NewPiece(board.Pawn, us)))
			}
		}
	}

	blocks := blockSquares
	for blocks != 0 {
		sq := blocks.PopLSB()
		generateInterpositionsTo(p, ml, us, sq)
	}

	return filterLegal(p, ml)
}

// generateInterpositionsTo appends every non-king board move or drop that
// lands a piece on sq, used to block a single check.
func generateInterpositionsTo(p *board.Position, ml *board.MoveList, us board.Color, sq board.Square) {
	occ := p.AllOccupied
	empty := ^occ
	if !empty.IsSet(sq) {
		return
	}

	attackers := board.Bitboard(0)
	attackers |= board.KnightAttacks(sq) & p.Pieces[us][board.Knight]
	attackers |= board.BishopAttacks(sq, occ) & (p.Pieces[us][board.Bishop] | p.Pieces[us][board.Queen])
	attackers |= board.RookAttacks(sq, occ) & (p.Pieces[us][board.Rook] | p.Pieces[us][board.Queen])
	for attackers != 0 {
		from := attackers.PopLSB()
		ml.Add(board.NewMove(from, sq, p.PieceAt(from)))
	}

	pawnPiece := board.NewPiece(board.Pawn, us)
	pawns := p.Pieces[us][board.Pawn]
	promoRank := board.Rank8
	if us == board.Black {
		promoRank = board.Rank1
	}
	delta := pawnPushDelta(us)
	if from := board.Square(int(sq) - delta); from.IsValid() && pawns.IsSet(from) {
		if board.SquareBB(sq)&promoRank != 0 {
			addPromotions(ml, from, sq, pawnPiece, true)
		} else {
			ml.Add(board.NewMove(from, sq, pawnPiece))
		}
	}
	doublePushRank := board.Rank4
	if us == board.Black {
		doublePushRank = board.Rank5
	}
	if board.SquareBB(sq)&doublePushRank != 0 {
		from := board.Square(int(sq) - 2*delta)
		mid := board.Square(int(sq) - delta)
		if from.IsValid() && pawns.IsSet(from) && empty.IsSet(mid) {
			ml.Add(board.NewMove(from, sq, pawnPiece))
		}
	}

	for pt := board.Pawn; pt <= board.Queen; pt++ {
		if p.Hand[us][pt] == 0 {
			continue
		}
		if pt == board.Pawn && (board.SquareBB(sq)&(board.Rank1|board.Rank8) != 0) {
			continue
		}
		ml.Add(board.NewDrop(sq, board.NewPiece(pt, us)))
	}
}

func filterLegal(p *board.Position, ml *board.MoveList) *board.MoveList {
	out := board.NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if IsLegal(p, m) {
			out.Add(m)
		}
	}
	return out
}
